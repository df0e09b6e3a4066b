package pricing

import "sort"

// ReferralFee computes the commission for price under rule. A price above the
// last tier is charged at the last tier's percentage.
func ReferralFee(rule ReferralFeeRule, price float64) float64 {
	if len(rule.Tiers) == 0 {
		return 0
	}

	tiers := make([]ReferralTier, len(rule.Tiers))
	copy(tiers, rule.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinPrice < tiers[j].MinPrice })

	for _, t := range tiers {
		if price >= t.MinPrice && price <= t.MaxPrice {
			return round2(price * t.Percentage / 100)
		}
	}

	last := tiers[len(tiers)-1]
	if price > last.MaxPrice {
		return round2(price * last.Percentage / 100)
	}
	return 0
}
