package guest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aminu222/tradelink-sub001/internal/store"
)

func TestWishlist_ToggleAddsThenRemoves(t *testing.T) {
	wl := NewWishlist(store.NewMemoryStore())

	added, err := wl.Toggle(42)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, wl.Has(42))
	assert.Equal(t, 1, wl.Count())

	added, err = wl.Toggle(42)
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, wl.Has(42))
	assert.Equal(t, 0, wl.Count())
}

func TestWishlist_NoDuplicateMembership(t *testing.T) {
	wl := NewWishlist(store.NewMemoryStore())

	_, err := wl.Toggle(7)
	require.NoError(t, err)
	_, err = wl.Toggle(9)
	require.NoError(t, err)
	_, err = wl.Toggle(7) // removes
	require.NoError(t, err)
	_, err = wl.Toggle(7) // re-adds, appended at the end
	require.NoError(t, err)

	assert.Equal(t, []int64{9, 7}, wl.IDs())
}

func TestWishlist_MalformedPayloadTreatedAsEmpty(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Write("guest_wishlist", []byte(`"oops"`)))

	wl := NewWishlist(s)
	assert.Empty(t, wl.IDs())

	_, err := wl.Toggle(1)
	require.NoError(t, err)
	assert.Equal(t, 1, wl.Count())
}

func TestWishlist_Clear(t *testing.T) {
	wl := NewWishlist(store.NewMemoryStore())
	_, err := wl.Toggle(1)
	require.NoError(t, err)
	_, err = wl.Toggle(2)
	require.NoError(t, err)

	require.NoError(t, wl.Clear())
	assert.Equal(t, 0, wl.Count())
}
