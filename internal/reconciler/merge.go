package reconciler

import (
	"context"
	"fmt"
	"log"

	"github.com/Aminu222/tradelink-sub001/internal/remote"
)

// DroppedLine records one guest line that could not be merged, kept for
// optional user notification. Never a blocking error.
type DroppedLine struct {
	ProductID int64
	Quantity  int
	Reason    string
}

// MergeReport summarizes one merge-on-login run.
type MergeReport struct {
	CartMerged      []int64
	CartDropped     []DroppedLine
	WishlistMerged  []int64
	WishlistSkipped []int64
}

// OnLogin installs the new session's token source and migrates guest
// contents into the remote store. Lines are replayed strictly sequentially;
// a failed line is logged and skipped, and the guest store is cleared
// unconditionally afterwards, so a partially merged cart never gets stuck
// retrying forever.
func (r *Reconciler) OnLogin(ctx context.Context, tokens remote.TokenSource) (*MergeReport, error) {
	token, err := tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("cannot merge without a session: %w", err)
	}

	r.mu.Lock()
	r.tokens = tokens
	r.mu.Unlock()

	report := &MergeReport{}
	r.mergeCart(ctx, token, report)
	r.mergeWishlist(ctx, token, report)

	// The remote store is authoritative now; badges re-source from it.
	r.publishCounts(ctx)
	return report, nil
}

// Logout drops the session; the guest store becomes authoritative again.
func (r *Reconciler) Logout(ctx context.Context) {
	r.mu.Lock()
	r.tokens = remote.NoSession{}
	r.mu.Unlock()
	r.publishCounts(ctx)
}

func (r *Reconciler) mergeCart(ctx context.Context, token string, report *MergeReport) {
	lines := r.guestCart.Items()
	for _, line := range lines {
		// One call in flight at a time: deterministic replay order and no
		// write burst against the remote store.
		if err := r.api.AddCartItem(ctx, token, line.ProductID, line.Quantity); err != nil {
			log.Printf("merge: dropping cart line product=%d qty=%d: %v", line.ProductID, line.Quantity, err)
			report.CartDropped = append(report.CartDropped, DroppedLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Reason:    err.Error(),
			})
			continue
		}
		report.CartMerged = append(report.CartMerged, line.ProductID)
	}

	if err := r.guestCart.Clear(); err != nil {
		log.Printf("merge: failed to clear guest cart: %v", err)
	}
}

func (r *Reconciler) mergeWishlist(ctx context.Context, token string, report *MergeReport) {
	ids := r.guestWish.IDs()
	if len(ids) == 0 {
		return
	}

	// Membership semantics: skip products already wishlisted remotely.
	existing := make(map[int64]bool)
	remoteItems, err := r.api.FetchWishlist(ctx, token)
	if err != nil {
		log.Printf("merge: wishlist pre-fetch failed, relying on server dedup: %v", err)
	} else {
		for _, item := range remoteItems {
			existing[item.Product.ID] = true
		}
	}

	for _, id := range ids {
		if existing[id] {
			report.WishlistSkipped = append(report.WishlistSkipped, id)
			continue
		}
		if err := r.api.AddWishlistItem(ctx, token, id); err != nil {
			log.Printf("merge: dropping wishlist product=%d: %v", id, err)
			continue
		}
		report.WishlistMerged = append(report.WishlistMerged, id)
	}

	if err := r.guestWish.Clear(); err != nil {
		log.Printf("merge: failed to clear guest wishlist: %v", err)
	}
}
