package pricing

import "strings"

// Match sources recorded on a Resolution and on closing fee matches.
const (
	SourceNodeMap  = "node-map"
	SourceRuleNode = "rule-node"
	SourceNameMap  = "name-map"
	SourceLeafName = "leaf-name"
	SourceFuzzy    = "fuzzy"
	SourceLegacy   = "legacy"
	SourcePrice    = "price"
)

// Resolution is the outcome of the category cascade.
type Resolution struct {
	Category string
	Source   string
}

// Resolved reports whether any cascade step produced a category.
func (r Resolution) Resolved() bool {
	return r.Category != ""
}

type categoryMatcher struct {
	name  string
	match func(item CatalogItem, catalog FeeCatalog) (string, bool)
}

// categoryCascade is evaluated in order; the first matcher yielding a known
// referral category wins.
var categoryCascade = []categoryMatcher{
	{SourceNodeMap, matchNodeMapping},
	{SourceRuleNode, matchRuleNode},
	{SourceNameMap, matchNameMapping},
	{SourceLeafName, matchLeafName},
	{SourceFuzzy, matchFuzzyCategory},
	{SourceLegacy, matchLegacyKeyword},
}

// ResolveCategory maps an item onto a referral fee category. An unresolved
// result has an empty Category.
func ResolveCategory(item CatalogItem, catalog FeeCatalog) Resolution {
	for _, m := range categoryCascade {
		category, ok := m.match(item, catalog)
		if !ok {
			continue
		}
		if rule, known := catalog.referralRule(category); known {
			return Resolution{Category: rule.Category, Source: m.name}
		}
	}
	return Resolution{}
}

func matchNodeMapping(item CatalogItem, catalog FeeCatalog) (string, bool) {
	m, ok := catalog.nodeMapping(item.nodeID())
	return m.FeeCategory, ok
}

func matchRuleNode(item CatalogItem, catalog FeeCatalog) (string, bool) {
	node := item.nodeID()
	if node == "" {
		return "", false
	}
	for _, r := range catalog.Referral {
		if r.NodeID != "" && strings.TrimSpace(r.NodeID) == node {
			return r.Category, true
		}
	}
	return "", false
}

func matchNameMapping(item CatalogItem, catalog FeeCatalog) (string, bool) {
	m, ok := catalog.nameMapping(item)
	return m.FeeCategory, ok
}

func matchLeafName(item CatalogItem, catalog FeeCatalog) (string, bool) {
	leaf := item.leaf()
	if leaf == "" {
		return "", false
	}
	for _, r := range catalog.Referral {
		if strings.ToLower(r.Category) == leaf {
			return r.Category, true
		}
	}
	return "", false
}

func matchFuzzyCategory(item CatalogItem, catalog FeeCatalog) (string, bool) {
	labels := make([]string, 0, len(catalog.Referral))
	for _, r := range catalog.Referral {
		labels = append(labels, r.Category)
	}
	category, _, ok := bestMatch(labels, item.path())
	return category, ok
}

var legacyKeywords = []struct {
	keyword  string
	category string
}{
	{"book", "Books"},
	{"mobile", "Mobile Phones"},
}

func matchLegacyKeyword(item CatalogItem, _ FeeCatalog) (string, bool) {
	path := item.path()
	for _, k := range legacyKeywords {
		if strings.Contains(path, k.keyword) {
			return k.category, true
		}
	}
	return "", false
}
