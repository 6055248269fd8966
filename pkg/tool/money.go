package tool

import "github.com/shopspring/decimal"

// MinorToMajor converts an amount in minor currency units (cents) to major units.
func MinorToMajor(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// MajorToMinor converts major units to cents, rounding half away from zero.
func MajorToMinor(major decimal.Decimal) int64 {
	return major.Shift(2).Round(0).IntPart()
}
