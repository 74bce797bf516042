// Package cart holds the in-memory cart of a console session and the totals
// derived from it.
package cart

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/pos-console/internal/domain/catalog"
)

// Line is a single cart entry. Quantity is always at least 1.
type Line struct {
	ItemID    int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Cart is an ordered list of lines, one per item. Insertion order is display
// order.
//
// Cart is not safe for concurrent use; a session owns it and serialises
// access.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends the item with quantity 1, or bumps the quantity of the existing
// line for the same item.
func (c *Cart) Add(item catalog.Item) {
	for i := range c.lines {
		if c.lines[i].ItemID == item.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  1,
	})
}

// SetQuantity sets the quantity of the line at index from raw user input.
// Non-numeric input and values below 1 become 1. An out-of-range index is
// ignored.
func (c *Cart) SetQuantity(index int, value string) {
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines[index].Quantity = ParseQuantity(value)
}

// Remove deletes the line at index. An out-of-range index is ignored.
func (c *Cart) Remove(index int) {
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Snapshot returns a copy of the lines in display order.
func (c *Cart) Snapshot() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Count returns the total number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// ParseQuantity converts a quantity field to an integer clamped to a minimum
// of 1. Like a number input, a leading integer is accepted ("3.7" is 3), but
// trailing letters make the field invalid: "3abc" is 1, not 3.
func ParseQuantity(value string) int {
	s := strings.TrimSpace(value)
	if i := strings.IndexFunc(s, func(r rune) bool { return r == '.' || r == 'e' || r == 'E' }); i > 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
