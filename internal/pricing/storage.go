package pricing

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// cubicCmPerCubicFoot converts cm³ to ft³.
const cubicCmPerCubicFoot = 28316.8

// ErrInvalidDimensions is returned when a dimension string is not "L x W x H" with positive values.
var ErrInvalidDimensions = errors.New("pricing: invalid dimensions")

var dimensionNoise = regexp.MustCompile(`[^0-9.x]`)

// ParseDimensions reads "L x W x H" in centimetres. Units and spacing are ignored.
func ParseDimensions(raw string) (l, w, h float64, err error) {
	cleaned := dimensionNoise.ReplaceAllString(strings.ToLower(raw), "")
	parts := strings.Split(cleaned, "x")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDimensions, raw)
	}

	var vals [3]float64
	for i, p := range parts {
		v, perr := strconv.ParseFloat(p, 64)
		if perr != nil || v <= 0 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDimensions, raw)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}

// CubicFeet converts centimetre dimensions to cubic feet, rounded to four places.
func CubicFeet(l, w, h float64) decimal.Decimal {
	cm3 := decimal.NewFromFloat(l).Mul(decimal.NewFromFloat(w)).Mul(decimal.NewFromFloat(h))
	return cm3.Div(decimal.NewFromFloat(cubicCmPerCubicFoot)).Round(4)
}

// StorageFee charges rate per cubic foot of parcel volume, with a minimum
// charge. Items without usable dimensions pay the size tier fallback; the
// returned error explains the fallback and is informational only.
func StorageFee(dimensions string, rate float64, sizeTier string, opts Options) (float64, error) {
	if strings.TrimSpace(dimensions) == "" {
		return storageFallback(sizeTier, opts), fmt.Errorf("%w: missing", ErrInvalidDimensions)
	}

	l, w, h, err := ParseDimensions(dimensions)
	if err != nil {
		return storageFallback(sizeTier, opts), err
	}

	fee := CubicFeet(l, w, h).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64()
	if fee < opts.StorageMinimumFee {
		fee = opts.StorageMinimumFee
	}
	return fee, nil
}

func storageFallback(sizeTier string, opts Options) float64 {
	tier := strings.TrimSpace(sizeTier)
	if tier == "" || strings.EqualFold(tier, SizeStandard) {
		return opts.StorageFallbackStandard
	}
	return opts.StorageFallbackOther
}

// activeStorageRate is the first configured rate, or the default when the table is empty.
func activeStorageRate(catalog FeeCatalog, opts Options) float64 {
	if len(catalog.Storage) > 0 {
		return catalog.Storage[0].Rate
	}
	return opts.DefaultStorageRate
}
