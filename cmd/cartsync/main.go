package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Aminu222/tradelink-sub001/internal/badge"
	"github.com/Aminu222/tradelink-sub001/internal/domain"
	"github.com/Aminu222/tradelink-sub001/internal/guest"
	"github.com/Aminu222/tradelink-sub001/internal/reconciler"
	"github.com/Aminu222/tradelink-sub001/internal/remote"
	"github.com/Aminu222/tradelink-sub001/internal/store"
)

const usage = `usage: cartsync <command> [args]

commands:
  add <product-id> <quantity> [name] [price]   add a product to the cart
  remove <product-id>                          remove a product from the cart
  update <product-id> <quantity>               overwrite a line's quantity
  list                                         print the cart
  total                                        print the cart total
  count                                        print the badge counts
  wish <product-id>                            toggle wishlist membership
  merge                                        log in (TRADELINK_TOKEN) and merge the guest store
`

func main() {
	// Configuration
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("skipping .env: %v", err)
	}

	apiBase := getEnv("TRADELINK_API_URL", "http://localhost:5000/api")
	profileDir := getEnv("TRADELINK_PROFILE_DIR", defaultProfileDir())
	redisAddr := os.Getenv("TRADELINK_REDIS_ADDR")
	token := os.Getenv("TRADELINK_TOKEN")

	localStore, err := buildStore(profileDir, redisAddr)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}

	deviceID := ensureDeviceID(localStore)

	guestCart := guest.NewCart(localStore)
	guestWish := guest.NewWishlist(localStore)
	api := remote.NewClient(apiBase)

	hub := badge.NewHub()
	unsubscribe := hub.Subscribe(func(c badge.Counts) {
		log.Printf("badge update: cart=%d wishlist=%d", c.Cart, c.Wishlist)
	})
	defer unsubscribe()

	rec := reconciler.New(guestCart, guestWish, api, hub)

	ctx := context.Background()
	if token != "" {
		report, err := rec.OnLogin(ctx, remote.NewStaticToken(token))
		if err != nil {
			log.Printf("login failed, continuing as guest: %v", err)
		} else if len(os.Args) > 1 && os.Args[1] == "merge" {
			printMergeReport(report)
			return
		}
	}

	log.Printf("device %s, store at %s", deviceID, profileDir)
	if err := run(ctx, rec, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, rec *reconciler.Reconciler, args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) < 3 {
			return errors.New("add needs <product-id> <quantity>")
		}
		line := domain.CartLine{
			ProductID: parseInt64(args[1]),
			Quantity:  parseInt(args[2]),
		}
		if len(args) > 3 {
			line.Name = args[3]
		}
		if len(args) > 4 {
			price, err := strconv.ParseFloat(args[4], 64)
			if err != nil {
				return fmt.Errorf("bad price: %w", err)
			}
			line.Price = price
		}
		return rec.AddToCart(ctx, line)

	case "remove":
		if len(args) < 2 {
			return errors.New("remove needs <product-id>")
		}
		return rec.RemoveFromCart(ctx, parseInt64(args[1]))

	case "update":
		if len(args) < 3 {
			return errors.New("update needs <product-id> <quantity>")
		}
		return rec.UpdateQuantity(ctx, parseInt64(args[1]), parseInt(args[2]))

	case "list":
		lines, err := rec.Cart(ctx)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Printf("%d\t%s\tx%d\t%.2f %s/%s\n",
				line.ProductID, line.Name, line.Quantity, line.Price, line.Currency, line.PriceUnit)
		}
		return nil

	case "total":
		total, err := rec.CartTotal(ctx)
		if err != nil {
			return err
		}
		fmt.Println(total.StringFixed(2))
		return nil

	case "count":
		counts := rec.RefreshCounts(ctx)
		fmt.Printf("cart=%d wishlist=%d\n", counts.Cart, counts.Wishlist)
		return nil

	case "wish":
		if len(args) < 2 {
			return errors.New("wish needs <product-id>")
		}
		added, err := rec.ToggleWishlist(ctx, parseInt64(args[1]))
		if err != nil {
			return err
		}
		if added {
			fmt.Println("added")
		} else {
			fmt.Println("removed")
		}
		return nil

	case "merge":
		return errors.New("merge needs TRADELINK_TOKEN set")

	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func buildStore(profileDir, redisAddr string) (store.Store, error) {
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Printf("using redis store at %s", redisAddr)
		return store.NewRedisStore(client, "tradelink"), nil
	}
	return store.NewFileStore(profileDir)
}

// ensureDeviceID mints a stable id for this profile on first use; it tags
// log lines so merges can be correlated across devices.
func ensureDeviceID(s store.Store) string {
	if data, err := s.Read("device_id"); err == nil && len(data) > 0 {
		return string(data)
	}
	id := uuid.NewString()
	if err := s.Write("device_id", []byte(id)); err != nil {
		log.Printf("failed to persist device id: %v", err)
	}
	return id
}

func printMergeReport(report *reconciler.MergeReport) {
	fmt.Printf("merged %d cart line(s), %d wishlist item(s)\n",
		len(report.CartMerged), len(report.WishlistMerged))
	for _, dropped := range report.CartDropped {
		fmt.Printf("dropped product %d (qty %d): %s\n", dropped.ProductID, dropped.Quantity, dropped.Reason)
	}
	for _, id := range report.WishlistSkipped {
		fmt.Printf("wishlist product %d already present remotely\n", id)
	}
}

func defaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tradelink"
	}
	return filepath.Join(home, ".tradelink")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
