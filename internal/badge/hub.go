// Package badge fans badge counts out to every UI surface that displays
// them, so the navbar and header never disagree about the same store.
package badge

import "sync"

// Counts is one consistent snapshot of both badges.
type Counts struct {
	Cart     int
	Wishlist int
}

// Subscriber receives each published snapshot.
type Subscriber func(Counts)

// Hub retains the last published counts and replays them to new subscribers
// immediately, so a component mounting mid-session never renders a flash of
// zero.
type Hub struct {
	mu     sync.Mutex
	last   Counts
	seeded bool
	nextID int
	subs   map[int]Subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]Subscriber)}
}

// Subscribe registers fn and returns an unsubscribe func. If a snapshot has
// ever been published, fn sees it before Subscribe returns.
func (h *Hub) Subscribe(fn Subscriber) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	replay := h.seeded
	last := h.last
	h.mu.Unlock()

	if replay {
		fn(last)
	}

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Publish pushes one snapshot to every subscriber. Callbacks run outside the
// hub lock; a subscriber that unsubscribed concurrently may still see this
// snapshot, which is harmless for an unmounted component that ignores it.
func (h *Hub) Publish(c Counts) {
	h.mu.Lock()
	h.last = c
	h.seeded = true
	subs := make([]Subscriber, 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(c)
	}
}

// Last returns the most recent snapshot, used as the stale fallback when a
// remote refresh fails.
func (h *Hub) Last() (Counts, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.seeded
}
