// Package reconciler decides, per action, whether the guest store or the
// remote store is authoritative, merges guest contents into the remote store
// on login, and keeps badge counts consistent across subscribers.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/Aminu222/tradelink-sub001/internal/badge"
	"github.com/Aminu222/tradelink-sub001/internal/domain"
	"github.com/Aminu222/tradelink-sub001/internal/guest"
	"github.com/Aminu222/tradelink-sub001/internal/remote"
)

// API is the remote surface the reconciler depends on. Consumers define this
// interface, not the HTTP client.
type API interface {
	FetchCart(ctx context.Context, token string) ([]domain.RemoteCartItem, error)
	AddCartItem(ctx context.Context, token string, productID int64, quantity int) error
	UpdateCartItem(ctx context.Context, token string, cartItemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, token string, cartItemID int64) error
	FetchWishlist(ctx context.Context, token string) ([]domain.WishlistItem, error)
	AddWishlistItem(ctx context.Context, token string, productID int64) error
	RemoveWishlistItem(ctx context.Context, token string, wishlistItemID int64) error
}

type Reconciler struct {
	guestCart *guest.Cart
	guestWish *guest.Wishlist
	api       API
	hub       *badge.Hub
	sfg       singleflight.Group

	mu     sync.Mutex
	tokens remote.TokenSource
}

func New(cart *guest.Cart, wish *guest.Wishlist, api API, hub *badge.Hub) *Reconciler {
	return &Reconciler{
		guestCart: cart,
		guestWish: wish,
		api:       api,
		hub:       hub,
		tokens:    remote.NoSession{},
	}
}

// token asks the current source on every call: auth state can change during
// a session, so the answer is never cached.
func (r *Reconciler) token() (string, bool) {
	r.mu.Lock()
	source := r.tokens
	r.mu.Unlock()

	tok, err := source.Token()
	if err != nil {
		return "", false
	}
	return tok, true
}

// AddToCart routes the add to whichever store is authoritative. An
// authentication failure mid-action degrades to the guest store rather than
// failing the caller.
func (r *Reconciler) AddToCart(ctx context.Context, line domain.CartLine) error {
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	if token, ok := r.token(); ok {
		err := r.api.AddCartItem(ctx, token, line.ProductID, line.Quantity)
		if err == nil {
			r.publishCounts(ctx)
			return nil
		}
		if !errors.Is(err, remote.ErrAuthentication) {
			return fmt.Errorf("remote add to cart failed: %w", err)
		}
		log.Printf("credential rejected during add, falling back to guest cart")
	}

	if err := r.guestCart.Add(line); err != nil {
		return err
	}
	r.publishCounts(ctx)
	return nil
}

// RemoveFromCart deletes the line for productID from the authoritative
// store. Removing an absent product is a no-op in both stores.
func (r *Reconciler) RemoveFromCart(ctx context.Context, productID int64) error {
	if token, ok := r.token(); ok {
		err := r.removeRemoteLine(ctx, token, productID)
		if err == nil {
			r.publishCounts(ctx)
			return nil
		}
		if !errors.Is(err, remote.ErrAuthentication) {
			return err
		}
		log.Printf("credential rejected during remove, falling back to guest cart")
	}

	if err := r.guestCart.Remove(productID); err != nil {
		return err
	}
	r.publishCounts(ctx)
	return nil
}

func (r *Reconciler) removeRemoteLine(ctx context.Context, token string, productID int64) error {
	items, err := r.api.FetchCart(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to fetch cart before remove: %w", err)
	}
	for _, item := range items {
		if item.ProductID == productID {
			if err := r.api.RemoveCartItem(ctx, token, item.ID); err != nil {
				return fmt.Errorf("remote remove failed: %w", err)
			}
			return nil
		}
	}
	return nil
}

// UpdateQuantity overwrites the quantity for productID. Validation happens
// before any store is touched.
func (r *Reconciler) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	if token, ok := r.token(); ok {
		err := r.updateRemoteLine(ctx, token, productID, quantity)
		if err == nil {
			r.publishCounts(ctx)
			return nil
		}
		if !errors.Is(err, remote.ErrAuthentication) {
			return err
		}
		log.Printf("credential rejected during update, falling back to guest cart")
	}

	if err := r.guestCart.UpdateQuantity(productID, quantity); err != nil {
		return err
	}
	r.publishCounts(ctx)
	return nil
}

func (r *Reconciler) updateRemoteLine(ctx context.Context, token string, productID int64, quantity int) error {
	items, err := r.api.FetchCart(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to fetch cart before update: %w", err)
	}
	for _, item := range items {
		if item.ProductID == productID {
			if err := r.api.UpdateCartItem(ctx, token, item.ID, quantity); err != nil {
				return fmt.Errorf("remote quantity update failed: %w", err)
			}
			return nil
		}
	}
	return nil
}

// Cart returns the authoritative store's lines, remote items mapped onto the
// guest line shape so callers render one type.
func (r *Reconciler) Cart(ctx context.Context) ([]domain.CartLine, error) {
	token, ok := r.token()
	if !ok {
		return r.guestCart.Items(), nil
	}

	items, err := r.api.FetchCart(ctx, token)
	if errors.Is(err, remote.ErrAuthentication) {
		log.Printf("credential rejected during cart fetch, serving guest cart")
		return r.guestCart.Items(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote cart: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.CartLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Currency:  item.Currency,
			PriceUnit: item.PriceUnit,
			Category:  item.Category,
			Image:     item.Image,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

// CartTotal sums price times quantity over the authoritative store.
func (r *Reconciler) CartTotal(ctx context.Context) (decimal.Decimal, error) {
	lines, err := r.Cart(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, line := range lines {
		price := decimal.NewFromFloat(line.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total, nil
}

// ToggleWishlist flips membership for productID in the authoritative store
// and reports whether the product ended up wishlisted.
func (r *Reconciler) ToggleWishlist(ctx context.Context, productID int64) (bool, error) {
	if token, ok := r.token(); ok {
		added, err := r.toggleRemoteWishlist(ctx, token, productID)
		if err == nil {
			r.publishCounts(ctx)
			return added, nil
		}
		if !errors.Is(err, remote.ErrAuthentication) {
			return false, err
		}
		log.Printf("credential rejected during wishlist toggle, falling back to guest wishlist")
	}

	added, err := r.guestWish.Toggle(productID)
	if err != nil {
		return false, err
	}
	r.publishCounts(ctx)
	return added, nil
}

func (r *Reconciler) toggleRemoteWishlist(ctx context.Context, token string, productID int64) (bool, error) {
	items, err := r.api.FetchWishlist(ctx, token)
	if err != nil {
		return false, fmt.Errorf("failed to fetch wishlist before toggle: %w", err)
	}
	for _, item := range items {
		if item.Product.ID == productID {
			if err := r.api.RemoveWishlistItem(ctx, token, item.ID); err != nil {
				return false, fmt.Errorf("remote wishlist remove failed: %w", err)
			}
			return false, nil
		}
	}
	if err := r.api.AddWishlistItem(ctx, token, productID); err != nil {
		return false, fmt.Errorf("remote wishlist add failed: %w", err)
	}
	return true, nil
}

// Wishlist returns the authoritative store's wishlisted product ids.
func (r *Reconciler) Wishlist(ctx context.Context) ([]int64, error) {
	token, ok := r.token()
	if !ok {
		return r.guestWish.IDs(), nil
	}

	items, err := r.api.FetchWishlist(ctx, token)
	if errors.Is(err, remote.ErrAuthentication) {
		log.Printf("credential rejected during wishlist fetch, serving guest wishlist")
		return r.guestWish.IDs(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote wishlist: %w", err)
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Product.ID)
	}
	return ids, nil
}

// RefreshCounts computes the authoritative badge counts and publishes them.
// Concurrent refreshes collapse into one computation. On remote failure the
// last published snapshot is republished instead: stale, never zero, never
// an error state.
func (r *Reconciler) RefreshCounts(ctx context.Context) badge.Counts {
	v, _, _ := r.sfg.Do("badge-counts", func() (interface{}, error) {
		return r.publishCounts(ctx), nil
	})
	return v.(badge.Counts)
}

func (r *Reconciler) publishCounts(ctx context.Context) badge.Counts {
	counts, err := r.computeCounts(ctx)
	if err != nil {
		log.Printf("badge refresh failed, keeping last-known counts: %v", err)
		if last, ok := r.hub.Last(); ok {
			return last
		}
		// Nothing published yet; fall back to whatever the guest store holds
		// so a cold start still shows something sensible.
		counts = badge.Counts{Cart: r.guestCart.Count(), Wishlist: r.guestWish.Count()}
	}
	r.hub.Publish(counts)
	return counts
}

func (r *Reconciler) computeCounts(ctx context.Context) (badge.Counts, error) {
	token, ok := r.token()
	if !ok {
		return badge.Counts{Cart: r.guestCart.Count(), Wishlist: r.guestWish.Count()}, nil
	}

	items, err := r.api.FetchCart(ctx, token)
	if errors.Is(err, remote.ErrAuthentication) {
		return badge.Counts{Cart: r.guestCart.Count(), Wishlist: r.guestWish.Count()}, nil
	}
	if err != nil {
		return badge.Counts{}, err
	}
	cartCount := 0
	for _, item := range items {
		cartCount += item.Quantity
	}

	wish, err := r.api.FetchWishlist(ctx, token)
	if err != nil {
		return badge.Counts{}, err
	}
	return badge.Counts{Cart: cartCount, Wishlist: len(wish)}, nil
}
