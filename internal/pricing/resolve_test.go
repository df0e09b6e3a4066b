package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resolverCatalog() FeeCatalog {
	return FeeCatalog{
		Referral: []ReferralFeeRule{
			{Category: "Books"},
			{Category: "Mobile Phones"},
			{Category: "Kitchen Appliances", NodeID: "1380045031"},
			{Category: "Toys"},
			{Category: "Electronics"},
		},
		NodeMappings: []CategoryNodeMapping{
			{NodeID: "999", FeeCategory: "toys"},
			{NodeID: "555", FeeCategory: "Garden"},
		},
		NameMappings: []CategoryNameMapping{
			{Source: "Small Appliance", FeeCategory: "Kitchen Appliances"},
			{Source: "gadgets", FeeCategory: "Electronics"},
		},
	}
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name       string
		item       CatalogItem
		wantCat    string
		wantSource string
	}{
		{
			name:       "node mapping outranks name mapping",
			item:       CatalogItem{NodeID: " 999 ", Category: "Kettles", CategoryPath: "Home > Kitchen > Small Appliance > Kettles"},
			wantCat:    "Toys",
			wantSource: SourceNodeMap,
		},
		{
			name:       "node mapping to unknown category falls through",
			item:       CatalogItem{NodeID: "555", Category: "Kettles", CategoryPath: "Home > Kitchen > Small Appliance > Kettles"},
			wantCat:    "Kitchen Appliances",
			wantSource: SourceNameMap,
		},
		{
			name:       "node id on referral rule",
			item:       CatalogItem{NodeID: "1380045031", Category: "Toasters"},
			wantCat:    "Kitchen Appliances",
			wantSource: SourceRuleNode,
		},
		{
			name:       "name mapping on leaf label without path",
			item:       CatalogItem{Category: "Gadgets"},
			wantCat:    "Electronics",
			wantSource: SourceNameMap,
		},
		{
			name:       "exact leaf label",
			item:       CatalogItem{Category: "toys", CategoryPath: "Hobbies > toys"},
			wantCat:    "Toys",
			wantSource: SourceLeafName,
		},
		{
			name:       "fuzzy path score",
			item:       CatalogItem{Category: "Headphones", CategoryPath: "Electronics > Headphones"},
			wantCat:    "Electronics",
			wantSource: SourceFuzzy,
		},
		{
			name:       "legacy keyword",
			item:       CatalogItem{Category: "Bookends", CategoryPath: "Office > Bookends"},
			wantCat:    "Books",
			wantSource: SourceLegacy,
		},
		{
			name: "unresolved",
			item: CatalogItem{Category: "Hoses", CategoryPath: "Garden > Hoses"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveCategory(tc.item, resolverCatalog())
			assert.Equal(t, tc.wantCat, got.Category)
			assert.Equal(t, tc.wantSource, got.Source)
			assert.Equal(t, tc.wantCat != "", got.Resolved())
		})
	}
}

func TestCategoryCascadeOrder(t *testing.T) {
	names := make([]string, 0, len(categoryCascade))
	for _, m := range categoryCascade {
		names = append(names, m.name)
	}
	assert.Equal(t, []string{SourceNodeMap, SourceRuleNode, SourceNameMap, SourceLeafName, SourceFuzzy, SourceLegacy}, names)
}

func TestResolveCategoryLegacyNeedsKnownRule(t *testing.T) {
	catalog := FeeCatalog{Referral: []ReferralFeeRule{{Category: "Toys"}}}

	got := ResolveCategory(CatalogItem{CategoryPath: "Office > Bookends"}, catalog)

	assert.False(t, got.Resolved())
}
