package pricing

import "strings"

// ClassifyReturn derives the return fee class from a category label.
func ClassifyReturn(categoryLabel string) ReturnClass {
	label := strings.ToLower(categoryLabel)
	switch {
	case strings.Contains(label, "shoes"), strings.Contains(label, "footwear"):
		return ReturnShoes
	case strings.Contains(label, "apparel"), strings.Contains(label, "clothing"):
		return ReturnApparel
	default:
		return ReturnGeneral
	}
}

// ReturnFee reads the processing fee for a returned unit from the matrix row
// matching the category class and price. Unknown service tiers read the
// Standard column.
func ReturnFee(price float64, serviceTier, categoryLabel string, rules []ReturnFeeRule) float64 {
	class := ClassifyReturn(categoryLabel)
	for _, r := range rules {
		if r.Class != class || price < r.MinPrice || price > r.MaxPrice {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(serviceTier)) {
		case "basic":
			return r.Basic
		case "advanced":
			return r.Advanced
		case "premium":
			return r.Premium
		default:
			return r.Standard
		}
	}
	return 0
}
