package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// round2 rounds half away from zero to two decimal places using the shortest
// decimal representation of v, so 1.005 rounds to 1.01. NaN and infinities
// are returned unchanged.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
