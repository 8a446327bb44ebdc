package auctions

import "math"

// ToCents converts a euro amount from the API boundary into integer cents
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents back into a euro amount
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
