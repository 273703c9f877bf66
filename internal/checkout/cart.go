package checkout

import (
	"strconv"
	"sync"
)

// CartTotals exposes the live cart grand total. The orchestrator re-reads it
// at every point an amount is built, never caching across steps.
type CartTotals interface {
	GrandTotal() float64
}

// Cart holds the checkout grand total as reported by the storefront.
type Cart struct {
	mu         sync.RWMutex
	grandTotal float64
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) SetGrandTotal(v float64) {
	c.mu.Lock()
	c.grandTotal = v
	c.mu.Unlock()
}

func (c *Cart) GrandTotal() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.grandTotal
}

// formatAmount renders a total with exactly two fractional digits.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
