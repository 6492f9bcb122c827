// Package money rounds currency values for display and persistence.
//
// Amounts are accumulated as float64 and rounded once at the edge, which keeps
// summed prices free of binary artifacts like 0.30000000000000004.
package money

import "github.com/shopspring/decimal"

// Round2 rounds v to two decimals, halves away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Mul returns price*quantity rounded to two decimals.
func Mul(price float64, quantity int) float64 {
	f, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()
	return f
}

// Sum adds the values with decimal arithmetic and rounds the result.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// Percent returns pct percent of base, rounded.
func Percent(base, pct float64) float64 {
	f, _ := decimal.NewFromFloat(base).Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100)).Round(2).Float64()
	return f
}
