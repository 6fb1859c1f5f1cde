package util

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places prices are kept in (BRL cents).
const MoneyPlaces = 2

// Money converts a float price to a decimal rounded to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(MoneyPlaces)
}

// LineTotal returns unitPrice x quantity rounded to cents.
func LineTotal(unitPrice float64, quantity int) decimal.Decimal {
	return Money(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).Round(MoneyPlaces)
}

// ToFloat converts a decimal amount back to float64 for storage and JSON.
func ToFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(MoneyPlaces).Float64()
	return f
}

// SameAmount compares two float amounts at cent precision.
func SameAmount(a, b float64) bool {
	return Money(a).Equal(Money(b))
}
