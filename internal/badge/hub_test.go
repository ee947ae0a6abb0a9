package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_AllSubscribersSeeSameCounts(t *testing.T) {
	hub := NewHub()

	var navbar, header Counts
	hub.Subscribe(func(c Counts) { navbar = c })
	hub.Subscribe(func(c Counts) { header = c })

	hub.Publish(Counts{Cart: 5, Wishlist: 2})

	assert.Equal(t, Counts{Cart: 5, Wishlist: 2}, navbar)
	assert.Equal(t, navbar, header)
}

func TestHub_ReplayOnSubscribe(t *testing.T) {
	hub := NewHub()
	hub.Publish(Counts{Cart: 3})

	// A component mounting later must not render a flash of zero
	var got Counts
	hub.Subscribe(func(c Counts) { got = c })
	assert.Equal(t, Counts{Cart: 3}, got)
}

func TestHub_NoReplayBeforeFirstPublish(t *testing.T) {
	hub := NewHub()

	called := false
	hub.Subscribe(func(Counts) { called = true })
	assert.False(t, called)

	_, seeded := hub.Last()
	assert.False(t, seeded)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()

	calls := 0
	cancel := hub.Subscribe(func(Counts) { calls++ })
	hub.Publish(Counts{Cart: 1})
	cancel()
	hub.Publish(Counts{Cart: 2})

	assert.Equal(t, 1, calls)
}

func TestHub_Last(t *testing.T) {
	hub := NewHub()
	hub.Publish(Counts{Cart: 4, Wishlist: 1})
	hub.Publish(Counts{Cart: 6, Wishlist: 1})

	last, seeded := hub.Last()
	assert.True(t, seeded)
	assert.Equal(t, Counts{Cart: 6, Wishlist: 1}, last)
}
