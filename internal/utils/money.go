package utils

import (
	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds a money value to cents, half away from zero.
// 2.345 -> 2.35, -2.345 -> -2.35
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(domain.MoneyPlaces)
}

// RoundQuantity rounds a quantity to the persisted precision
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(domain.QuantityPlaces)
}

// PercentOf returns total * pct / 100, unrounded
func PercentOf(total, pct decimal.Decimal) decimal.Decimal {
	return total.Mul(pct).Div(hundred)
}

// SharePercent returns part / total * 100, or zero when total is not positive
func SharePercent(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}

// MinDecimal returns the smaller of a and b
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// SumDecimals adds up values
func SumDecimals(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
