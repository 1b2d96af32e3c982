package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CentPrecise reports whether d has no more than two decimal places.
// All committed amounts must satisfy this so the exact-equality
// balance check never meets sub-cent residues.
func CentPrecise(d decimal.Decimal) bool {
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Floor())
}
