package service

import (
	"sync"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Cart is the in-memory ledger of (item, quantity) lines for one session.
// It has no side effects beyond its own state; persistence and rendering
// belong to the caller.
type Cart struct {
	mu    sync.Mutex
	shop  string
	lines []models.CartLine
}

// NewCart creates an empty cart for a shop
func NewCart(shop string) *Cart {
	return &Cart{shop: shop}
}

// Shop returns the shop this cart belongs to
func (c *Cart) Shop() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shop
}

// SetShop switches the cart to another shop, clearing it on change
func (c *Cart) SetShop(shop string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shop != shop {
		c.shop = shop
		c.lines = nil
	}
}

// Add inserts a line for the item, snapshotting its price and name. If the
// item is already present its quantity is replaced, not added to; callers
// that want a delta use UpdateQuantity.
func (c *Cart) Add(item models.MenuItem, quantity int) {
	if quantity < 1 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == item.ID {
			c.lines[i].Quantity = quantity
			return
		}
	}

	shop := item.Shop
	if shop == "" {
		shop = c.shop
	}
	c.lines = append(c.lines, models.CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  quantity,
		Shop:      shop,
	})
}

// UpdateQuantity adds delta to an existing line's quantity, removing the
// line when the result drops to zero or below. A positive delta for an
// absent item is a caller error: the ledger cannot materialize a line from
// a delta alone, so it logs and does nothing.
func (c *Cart) UpdateQuantity(itemID string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			newQuantity := c.lines[i].Quantity + delta
			if newQuantity <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity = newQuantity
			}
			return
		}
	}

	if delta > 0 {
		util.GetLogger().Warn("Item not in cart; first insertion must go through Add",
			zap.String("item_id", itemID))
	}
}

// Remove deletes a line unconditionally; absent ids are a no-op
func (c *Cart) Remove(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Line returns the line for an item id, or nil if absent
func (c *Cart) Line(itemID string) *models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			line := c.lines[i]
			return &line
		}
	}
	return nil
}

// Lines returns a snapshot copy of the current lines
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]models.CartLine, len(c.lines))
	copy(snapshot, c.lines)
	return snapshot
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// TotalQuantity sums all line quantities
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums price x quantity over all lines using each line's
// captured unit price
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, line := range c.lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// CartRegistry owns one cart per browsing session
type CartRegistry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewCartRegistry creates an empty registry
func NewCartRegistry() *CartRegistry {
	return &CartRegistry{carts: make(map[string]*Cart)}
}

// CartFor returns the session's cart, creating it on first use
func (r *CartRegistry) CartFor(sessionID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[sessionID]
	if !ok {
		cart = NewCart("")
		r.carts[sessionID] = cart
	}
	return cart
}

// Drop removes a session's cart
func (r *CartRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
}
