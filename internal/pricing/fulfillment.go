package pricing

import (
	"math"
	"sort"
	"strings"
)

// Fulfillment is the weight handling charge split into its two parts.
type Fulfillment struct {
	Flat     float64
	PickPack float64
}

// Total is the combined fulfillment charge.
func (f Fulfillment) Total() float64 {
	return f.Flat + f.PickPack
}

// FulfillmentFee looks up the weight band for sizeTier. Weights above the
// heaviest band use that band; incremental bands add one step fee per started
// step above the band's lower bound. ok is false when no band applies.
func FulfillmentFee(sizeTier string, weight float64, rules []ShippingFeeRule) (Fulfillment, bool) {
	tier := strings.TrimSpace(sizeTier)
	if tier == "" {
		tier = SizeStandard
	}

	bands := make([]ShippingFeeRule, 0, len(rules))
	for _, r := range rules {
		if strings.EqualFold(strings.TrimSpace(r.SizeTier), tier) {
			bands = append(bands, r)
		}
	}
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].WeightMin < bands[j].WeightMin })

	rule, ok := selectRule(bands, ruleSelector[ShippingFeeRule]{
		contains:  func(r ShippingFeeRule) bool { return weight >= r.WeightMin && weight <= r.WeightMax },
		lower:     func(r ShippingFeeRule) float64 { return r.WeightMin },
		openEnded: func(ShippingFeeRule) bool { return exceedsAllBands(weight, bands) },
	})
	if !ok {
		return Fulfillment{}, false
	}

	flat := rule.Fee
	if rule.Incremental && rule.StepSize > 0 && rule.StepFee > 0 {
		extra := math.Max(0, weight-(rule.WeightMin-1))
		steps := math.Ceil(extra / rule.StepSize)
		flat += steps * rule.StepFee
	}
	return Fulfillment{Flat: round2(flat), PickPack: rule.PickPackFee}, true
}

func exceedsAllBands(weight float64, bands []ShippingFeeRule) bool {
	for _, b := range bands {
		if weight <= b.WeightMax {
			return false
		}
	}
	return true
}
