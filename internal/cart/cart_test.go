package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	chocolate = Product{ID: 1, Name: "Chocolate Delight", Price: 12.90}
	morango   = Product{ID: 2, Name: "Morango Fresco", Price: 13.90}
	caramelo  = Product{ID: 3, Name: "Caramelo Salgado", Price: 14.90}
)

func TestCart_AddTwiceIncrementsQuantity(t *testing.T) {
	c := New()
	c.AddItem(chocolate, 2)

	assert.Equal(t, "25.8", c.TotalPrice().String())
	assert.Equal(t, 2, c.TotalItems())

	c.AddItem(chocolate, 1)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.Items()[0].Quantity)
}

func TestCart_UpdateQuantityBelowOneRemoves(t *testing.T) {
	c := New()
	c.AddItem(chocolate, 1)
	c.UpdateQuantity(chocolate.ID, 0)

	assert.Zero(t, c.Len())
	assert.True(t, c.TotalPrice().IsZero())
	assert.Zero(t, c.TotalItems())
}

func TestCart_UpdateQuantityNegativeEqualsRemove(t *testing.T) {
	a, b := New(), New()
	for _, c := range []*Cart{a, b} {
		c.AddItem(chocolate, 2)
		c.AddItem(morango, 1)
	}
	a.UpdateQuantity(chocolate.ID, -3)
	b.RemoveItem(chocolate.ID)

	assert.Equal(t, b.Items(), a.Items())
}

func TestCart_UpdateQuantitySetsExactly(t *testing.T) {
	c := New()
	c.AddItem(morango, 5)
	c.UpdateQuantity(morango.ID, 2)

	assert.Equal(t, 2, c.Items()[0].Quantity)
	assert.Equal(t, "27.8", c.TotalPrice().String())
}

func TestCart_MissingIDsAreIgnored(t *testing.T) {
	c := New()
	c.AddItem(chocolate, 1)

	c.UpdateQuantity(99, 4)
	c.UpdateNotes(99, "sem açúcar")
	c.RemoveItem(99)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Items()[0].Quantity)
	assert.Empty(t, c.Items()[0].Notes)
}

func TestCart_UpdateNotes(t *testing.T) {
	c := New()
	c.AddItem(caramelo, 1)

	c.UpdateNotes(caramelo.ID, "cartão de aniversário")
	assert.Equal(t, "cartão de aniversário", c.Items()[0].Notes)

	c.UpdateNotes(caramelo.ID, "")
	assert.Empty(t, c.Items()[0].Notes)
}

func TestCart_PriceCapturedAtAddTime(t *testing.T) {
	c := New()
	p := chocolate
	c.AddItem(p, 1)

	p.Price = 99
	c.AddItem(p, 1)

	assert.Equal(t, 12.90, c.Items()[0].UnitPrice)
	assert.Equal(t, "25.8", c.TotalPrice().String())
}

func TestCart_ItemsReturnsCopy(t *testing.T) {
	c := New()
	c.AddItem(chocolate, 1)

	items := c.Items()
	items[0].Quantity = 50

	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestCart_Clear(t *testing.T) {
	c := New()
	c.AddItem(chocolate, 1)
	c.AddItem(morango, 1)
	c.Clear()

	assert.Zero(t, c.Len())
	assert.Empty(t, c.Items())
}

// Totals must always be recomputable from the item list alone.
func TestCart_TotalsMatchItemsUnderRandomOperations(t *testing.T) {
	products := []Product{chocolate, morango, caramelo}
	rng := rand.New(rand.NewSource(42))
	c := New()

	for step := 0; step < 500; step++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(3) {
		case 0:
			c.AddItem(p, rng.Intn(4)+1)
		case 1:
			c.RemoveItem(p.ID)
		case 2:
			c.UpdateQuantity(p.ID, rng.Intn(6)-1)
		}

		wantItems := 0
		wantPrice := decimal.Zero
		seen := map[uint]bool{}
		for _, it := range c.Items() {
			require.False(t, seen[it.ID], "duplicate line for product %d", it.ID)
			seen[it.ID] = true
			require.GreaterOrEqual(t, it.Quantity, 1)
			wantItems += it.Quantity
			wantPrice = wantPrice.Add(decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		require.Equal(t, wantItems, c.TotalItems())
		require.True(t, wantPrice.Round(2).Equal(c.TotalPrice()), "step %d: want %s got %s", step, wantPrice, c.TotalPrice())
	}
}
