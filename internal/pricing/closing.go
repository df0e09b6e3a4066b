package pricing

import "strings"

// ClosingMatch reports which closing rule was applied and how it was found.
type ClosingMatch struct {
	Rule   ClosingFeeRule
	Source string
}

type closingStep struct {
	name       string
	candidates func(item CatalogItem, catalog FeeCatalog) []ClosingFeeRule
}

// closingCascade mirrors the category cascade over the closing table, whose
// rules carry their own category and node tags.
var closingCascade = []closingStep{
	{SourceNodeMap, closingByNodeMapping},
	{SourceRuleNode, closingByRuleNode},
	{SourceNameMap, closingByNameMapping},
	{SourceLeafName, closingByName},
	{SourcePrice, closingByPrice},
}

// ClosingFee returns the closing fee for price and the rule that produced it.
// When the table yields nothing, prices above the legacy threshold pay the
// legacy flat fee.
func ClosingFee(item CatalogItem, price float64, catalog FeeCatalog, opts Options) (float64, ClosingMatch, bool) {
	sel := ruleSelector[ClosingFeeRule]{
		preferred: func(r ClosingFeeRule) bool { return strings.EqualFold(strings.TrimSpace(r.SellerType), SellerTypeFC) },
		contains:  func(r ClosingFeeRule) bool { return price >= r.MinPrice && price <= r.MaxPrice },
		lower:     func(r ClosingFeeRule) float64 { return r.MinPrice },
	}

	for _, step := range closingCascade {
		rule, ok := selectRule(step.candidates(item, catalog), sel)
		if ok {
			return rule.Fee, ClosingMatch{Rule: rule, Source: step.name}, true
		}
	}

	if price > opts.ClosingLegacyThreshold {
		return opts.ClosingLegacyFee, ClosingMatch{Source: SourceLegacy}, false
	}
	return 0, ClosingMatch{}, false
}

func closingWithCategory(rules []ClosingFeeRule, category string) []ClosingFeeRule {
	if category == "" {
		return nil
	}
	var out []ClosingFeeRule
	for _, r := range rules {
		if r.Category != "" && strings.EqualFold(r.Category, category) {
			out = append(out, r)
		}
	}
	return out
}

func closingByNodeMapping(item CatalogItem, catalog FeeCatalog) []ClosingFeeRule {
	m, ok := catalog.nodeMapping(item.nodeID())
	if !ok {
		return nil
	}
	return closingWithCategory(catalog.Closing, m.FeeCategory)
}

func closingByRuleNode(item CatalogItem, catalog FeeCatalog) []ClosingFeeRule {
	node := item.nodeID()
	if node == "" {
		return nil
	}
	var out []ClosingFeeRule
	for _, r := range catalog.Closing {
		if r.NodeID != "" && strings.TrimSpace(r.NodeID) == node {
			out = append(out, r)
		}
	}
	return out
}

func closingByNameMapping(item CatalogItem, catalog FeeCatalog) []ClosingFeeRule {
	m, ok := catalog.nameMapping(item)
	if !ok {
		return nil
	}
	return closingWithCategory(catalog.Closing, m.FeeCategory)
}

// closingByName tries the leaf label first, then the best fuzzy rule category.
func closingByName(item CatalogItem, catalog FeeCatalog) []ClosingFeeRule {
	if exact := closingWithCategory(catalog.Closing, item.Category); len(exact) > 0 {
		return exact
	}

	labels := make([]string, 0, len(catalog.Closing))
	for _, r := range catalog.Closing {
		if r.Category != "" {
			labels = append(labels, r.Category)
		}
	}
	category, _, ok := bestMatch(labels, item.path())
	if !ok {
		return nil
	}
	return closingWithCategory(catalog.Closing, category)
}

func closingByPrice(_ CatalogItem, catalog FeeCatalog) []ClosingFeeRule {
	return catalog.Closing
}
