package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawTotal returns the sum of unit price times quantity over all lines. The
// result is not rounded.
func RawTotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// DiscountedTotal returns RawTotal minus an absolute discount amount, floored
// at zero. A negative discount counts as no discount.
func DiscountedTotal(lines []Line, discount decimal.Decimal) decimal.Decimal {
	total := RawTotal(lines).Sub(floorAtZero(discount))
	return floorAtZero(total)
}

// ParseDiscount reads the discount field as an amount of at least zero.
// Blank, negative or non-numeric input is zero. The whole field must be a
// number: unlike a leading-number parse, "100abc" is zero, not 100.
func ParseDiscount(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return floorAtZero(d)
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
