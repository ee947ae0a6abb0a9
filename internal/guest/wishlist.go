package guest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Aminu222/tradelink-sub001/internal/store"
)

type wishlistEnvelope struct {
	Version  int     `json:"version"`
	Products []int64 `json:"products"`
}

// Wishlist tracks product membership for an anonymous shopper. At most one
// entry per product id.
type Wishlist struct {
	mu    sync.Mutex
	store store.Store
}

func NewWishlist(s store.Store) *Wishlist {
	return &Wishlist{store: s}
}

// Toggle adds productID when absent and removes it when present. Returns
// true when the product ended up in the wishlist.
func (w *Wishlist) Toggle(productID int64) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := w.loadIDs()
	for i, id := range ids {
		if id == productID {
			return false, w.saveIDs(append(ids[:i], ids[i+1:]...))
		}
	}
	return true, w.saveIDs(append(ids, productID))
}

func (w *Wishlist) Has(productID int64) bool {
	for _, id := range w.IDs() {
		if id == productID {
			return true
		}
	}
	return false
}

// IDs returns wishlist product ids in insertion order.
func (w *Wishlist) IDs() []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadIDs()
}

func (w *Wishlist) Count() int {
	return len(w.IDs())
}

func (w *Wishlist) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.store.Remove(wishlistKey); err != nil {
		return fmt.Errorf("failed to clear guest wishlist: %w", err)
	}
	return nil
}

func (w *Wishlist) loadIDs() []int64 {
	data, err := w.store.Read(wishlistKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("guest wishlist read error: %v", err)
		return nil
	}

	var env wishlistEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version > 0 {
		return env.Products
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		log.Printf("discarding malformed guest wishlist payload: %v", err)
		return nil
	}
	return ids
}

func (w *Wishlist) saveIDs(ids []int64) error {
	data, err := json.Marshal(wishlistEnvelope{Version: schemaVersion, Products: ids})
	if err != nil {
		return fmt.Errorf("failed to marshal guest wishlist: %w", err)
	}
	if err := w.store.Write(wishlistKey, data); err != nil {
		return fmt.Errorf("failed to persist guest wishlist: %w", err)
	}
	return nil
}
