// Package cart holds the line items of a browsing session that have not been
// submitted yet. Totals are derived from the item list on every read.
package cart

import (
	"github.com/docecupcake/cupcake-backend/pkg/util"
	"github.com/shopspring/decimal"
)

// Product is the catalog data a line captures when it is added.
type Product struct {
	ID    uint
	Name  string
	Image string
	Price float64
}

// Item is one cart line. ID is the catalog id of the cupcake.
type Item struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Notes     string  `json:"notes,omitempty"`
}

// Subtotal is UnitPrice x Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return util.LineTotal(i.UnitPrice, i.Quantity)
}

// Cart is not safe for concurrent use; the owning session serializes access.
type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

// AddItem increments the quantity of an existing line or appends a new one
// priced at p.Price.
func (c *Cart) AddItem(p Product, quantity int) {
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Quantity += quantity
		return
	}
	c.items = append(c.items, Item{
		ID:        p.ID,
		Name:      p.Name,
		Image:     p.Image,
		UnitPrice: p.Price,
		Quantity:  quantity,
	})
}

func (c *Cart) RemoveItem(id uint) {
	if i := c.index(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// UpdateQuantity sets the quantity exactly; anything below 1 removes the line.
// Unknown ids are ignored.
func (c *Cart) UpdateQuantity(id uint, quantity int) {
	if quantity < 1 {
		c.RemoveItem(id)
		return
	}
	if i := c.index(id); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

// UpdateNotes replaces the note of a line, "" clears it. Unknown ids are ignored.
func (c *Cart) UpdateNotes(id uint, notes string) {
	if i := c.index(id); i >= 0 {
		c.items[i].Notes = notes
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Has(id uint) bool {
	return c.index(id) >= 0
}

func (c *Cart) TotalItems() int {
	return TotalItems(c.items)
}

func (c *Cart) TotalPrice() decimal.Decimal {
	return TotalPrice(c.items)
}

// TotalItems sums the quantities of items.
func TotalItems(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// TotalPrice sums unit price x quantity over items.
func TotalPrice(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total.Round(util.MoneyPlaces)
}

func (c *Cart) index(id uint) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
