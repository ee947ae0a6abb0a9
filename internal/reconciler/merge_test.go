package reconciler

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aminu222/tradelink-sub001/internal/domain"
	"github.com/Aminu222/tradelink-sub001/internal/remote"
)

func TestOnLogin_MergeCorrectness(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.guestCart.Add(cartLine(42, 500, 2)))
	require.NoError(t, f.guestCart.Add(cartLine(7, 100, 1)))

	report, err := f.rec.OnLogin(ctx, stubSession{token: "tok"})
	require.NoError(t, err)

	require.Len(t, f.api.cart, 2)
	assert.Equal(t, int64(42), f.api.cart[0].ProductID)
	assert.Equal(t, 2, f.api.cart[0].Quantity)
	assert.Equal(t, int64(7), f.api.cart[1].ProductID)
	assert.Equal(t, 1, f.api.cart[1].Quantity)

	assert.Empty(t, f.guestCart.Items(), "guest cart cleared after merge")
	assert.Equal(t, []int64{42, 7}, report.CartMerged)
	assert.Empty(t, report.CartDropped)
}

func TestOnLogin_SequentialReplayOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, id := range []int64{5, 3, 9, 1} {
		require.NoError(t, f.guestCart.Add(cartLine(id, 10, 1)))
	}

	_, err := f.rec.OnLogin(ctx, stubSession{token: "tok"})
	require.NoError(t, err)

	assert.Equal(t, []int64{5, 3, 9, 1}, f.api.addOrder)
}

func TestOnLogin_PartialMergeResilience(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.guestCart.Add(cartLine(42, 500, 2)))
	require.NoError(t, f.guestCart.Add(cartLine(7, 100, 1)))
	f.api.addErr[7] = errors.New("connection reset")

	report, err := f.rec.OnLogin(ctx, stubSession{token: "tok"})
	require.NoError(t, err)

	// Product 42 made it across, the failed line was dropped, not retried
	require.Len(t, f.api.cart, 1)
	assert.Equal(t, int64(42), f.api.cart[0].ProductID)

	assert.Empty(t, f.guestCart.Items(), "guest cart cleared even on partial failure")

	require.Len(t, report.CartDropped, 1)
	assert.Equal(t, int64(7), report.CartDropped[0].ProductID)
	assert.Equal(t, 1, report.CartDropped[0].Quantity)
}

func TestOnLogin_MergesIntoExistingRemoteLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.api.cart = []domain.RemoteCartItem{{ID: 1, ProductID: 42, Quantity: 1}}
	f.api.nextID = 2
	require.NoError(t, f.guestCart.Add(cartLine(42, 500, 2)))

	_, err := f.rec.OnLogin(ctx, stubSession{token: "tok"})
	require.NoError(t, err)

	// The server sums quantities, so no duplicate row appears
	require.Len(t, f.api.cart, 1)
	assert.Equal(t, 3, f.api.cart[0].Quantity)
}

func TestOnLogin_WishlistMembershipDedup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.api.wishlist = []domain.WishlistItem{{ID: 1, Product: domain.WishlistProduct{ID: 7}}}
	f.api.nextID = 2
	_, err := f.guestWish.Toggle(7)
	require.NoError(t, err)
	_, err = f.guestWish.Toggle(9)
	require.NoError(t, err)

	report, err := f.rec.OnLogin(ctx, stubSession{token: "tok"})
	require.NoError(t, err)

	require.Len(t, f.api.wishlist, 2)
	assert.Equal(t, []int64{9}, report.WishlistMerged)
	assert.Equal(t, []int64{7}, report.WishlistSkipped)
	assert.Equal(t, 0, f.guestWish.Count())
}

func TestOnLogin_WithoutSessionFails(t *testing.T) {
	f := newFixture()

	_, err := f.rec.OnLogin(context.Background(), remote.NoSession{})
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

// The end-to-end shopping journey: guest adds, logs in, badge re-sources
// from the remote store.
func TestGuestToLoginJourney(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.rec.AddToCart(ctx, cartLine(42, 500, 1)))
	require.NoError(t, f.rec.AddToCart(ctx, cartLine(42, 500, 1)))
	require.NoError(t, f.rec.AddToCart(ctx, cartLine(7, 120.5, 3)))

	assert.Equal(t, 5, f.guestCart.Count())
	total, err := f.rec.CartTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromFloat(500*2+120.5*3)), "got %s", total)

	_, err = f.rec.OnLogin(ctx, stubSession{token: "tok"})
	require.NoError(t, err)

	require.Len(t, f.api.cart, 2)
	assert.Equal(t, 2, f.api.cart[0].Quantity)
	assert.Equal(t, 3, f.api.cart[1].Quantity)
	assert.Empty(t, f.guestCart.Items())

	counts := f.rec.RefreshCounts(ctx)
	assert.Equal(t, 5, counts.Cart, "badge count sourced from the remote store")
}
