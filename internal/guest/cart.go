package guest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aminu222/tradelink-sub001/internal/domain"
	"github.com/Aminu222/tradelink-sub001/internal/store"
)

const (
	cartKey     = "guest_cart"
	wishlistKey = "guest_wishlist"

	schemaVersion = 1
)

// cartEnvelope is the persisted shape. Older installs wrote a bare line
// array without the version tag; loadLines still accepts that form.
type cartEnvelope struct {
	Version int               `json:"version"`
	Lines   []domain.CartLine `json:"lines"`
}

// Cart maintains an anonymous shopper's cart in the local store. Every
// read-modify-write cycle holds the mutex, so two overlapping adds for the
// same product converge to the summed quantity.
type Cart struct {
	mu    sync.Mutex
	store store.Store
}

func NewCart(s store.Store) *Cart {
	return &Cart{store: s}
}

// Add merges by product id: an existing line keeps its snapshot and gains
// the incoming quantity, a new line is appended in insertion order.
func (c *Cart) Add(line domain.CartLine) error {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.Currency == "" {
		line.Currency = domain.DefaultCurrency
	}
	if line.PriceUnit == "" {
		line.PriceUnit = domain.DefaultPriceUnit
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.loadLines()
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			return c.saveLines(lines)
		}
	}
	return c.saveLines(append(lines, line))
}

// Remove deletes the line for productID. Removing an absent product is a
// no-op.
func (c *Cart) Remove(productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.loadLines()
	for i, line := range lines {
		if line.ProductID == productID {
			return c.saveLines(append(lines[:i], lines[i+1:]...))
		}
	}
	return nil
}

// UpdateQuantity overwrites the quantity for productID.
func (c *Cart) UpdateQuantity(productID int64, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.loadLines()
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			return c.saveLines(lines)
		}
	}
	return nil
}

// Items returns the cart lines in insertion order.
func (c *Cart) Items() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLines()
}

// Count is the total quantity across all lines, the number shown in UI
// badges.
func (c *Cart) Count() int {
	total := 0
	for _, line := range c.Items() {
		total += line.Quantity
	}
	return total
}

// Total sums price times quantity across lines. No currency conversion: the
// cart is assumed to hold a single currency.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items() {
		price := decimal.NewFromFloat(line.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Clear empties the cart; used after merge into the remote store.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Remove(cartKey); err != nil {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}

// loadLines recovers from any malformed persisted content by treating it as
// an empty cart. Callers must hold c.mu.
func (c *Cart) loadLines() []domain.CartLine {
	data, err := c.store.Read(cartKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("guest cart read error: %v", err)
		return nil
	}

	var env cartEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version > 0 {
		return env.Lines
	}

	// Pre-versioning installs persisted a bare array.
	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		log.Printf("discarding malformed guest cart payload: %v", err)
		return nil
	}
	return lines
}

func (c *Cart) saveLines(lines []domain.CartLine) error {
	data, err := json.Marshal(cartEnvelope{Version: schemaVersion, Lines: lines})
	if err != nil {
		return fmt.Errorf("failed to marshal guest cart: %w", err)
	}
	if err := c.store.Write(cartKey, data); err != nil {
		return fmt.Errorf("failed to persist guest cart: %w", err)
	}
	return nil
}
