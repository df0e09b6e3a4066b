package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closingCatalog() FeeCatalog {
	return FeeCatalog{
		Closing: []ClosingFeeRule{
			{ID: 1, MinPrice: 0, MaxPrice: 500, Fee: 10},
			{ID: 2, MinPrice: 501, MaxPrice: 1000, Fee: 20},
			{ID: 3, MinPrice: 0, MaxPrice: 1000, Fee: 30, Category: "Toys", SellerType: "SF"},
			{ID: 4, MinPrice: 0, MaxPrice: 1000, Fee: 12, Category: "Toys", SellerType: "fc"},
			{ID: 5, MinPrice: 0, MaxPrice: UnboundedPrice, Fee: 7, NodeID: "42"},
			{ID: 6, MinPrice: 0, MaxPrice: 250, Fee: 4, Category: "Kitchen Appliances"},
			{ID: 7, MinPrice: 251, MaxPrice: 600, Fee: 6, Category: "Kitchen Appliances"},
		},
		NodeMappings: []CategoryNodeMapping{{NodeID: "999", FeeCategory: "Toys"}},
		NameMappings: []CategoryNameMapping{{Source: "small appliance", FeeCategory: "Kitchen Appliances"}},
	}
}

func TestClosingFeeCascade(t *testing.T) {
	tests := []struct {
		name       string
		item       CatalogItem
		price      float64
		wantFee    float64
		wantRule   int64
		wantSource string
	}{
		{
			name:       "node mapping prefers FC seller type",
			item:       CatalogItem{NodeID: "999", CategoryPath: "Home > Small Appliance"},
			price:      200,
			wantFee:    12,
			wantRule:   4,
			wantSource: SourceNodeMap,
		},
		{
			name:       "node id on rule",
			item:       CatalogItem{NodeID: "42"},
			price:      5000,
			wantFee:    7,
			wantRule:   5,
			wantSource: SourceRuleNode,
		},
		{
			name:       "name mapping picks range",
			item:       CatalogItem{Category: "Kettles", CategoryPath: "Home > Small Appliance > Kettles"},
			price:      300,
			wantFee:    6,
			wantRule:   7,
			wantSource: SourceNameMap,
		},
		{
			name:       "name mapping open ended uses highest min price",
			item:       CatalogItem{Category: "Kettles", CategoryPath: "Home > Small Appliance > Kettles"},
			price:      900,
			wantFee:    6,
			wantRule:   7,
			wantSource: SourceNameMap,
		},
		{
			name:       "exact leaf label",
			item:       CatalogItem{Category: "Toys"},
			price:      100,
			wantFee:    12,
			wantRule:   4,
			wantSource: SourceLeafName,
		},
		{
			name:       "fuzzy rule category",
			item:       CatalogItem{Category: "Blenders", CategoryPath: "Kitchen > Blenders"},
			price:      100,
			wantFee:    4,
			wantRule:   6,
			wantSource: SourceLeafName,
		},
		{
			name:       "price only still prefers FC rules",
			item:       CatalogItem{Category: "Hoses", CategoryPath: "Garden > Hoses"},
			price:      700,
			wantFee:    12,
			wantRule:   4,
			wantSource: SourcePrice,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fee, match, ok := ClosingFee(tc.item, tc.price, closingCatalog(), DefaultOptions())
			require.True(t, ok)
			assert.InDelta(t, tc.wantFee, fee, 1e-9)
			assert.Equal(t, tc.wantRule, match.Rule.ID)
			assert.Equal(t, tc.wantSource, match.Source)
		})
	}
}

func TestClosingFeePriceOnlyOpenEnded(t *testing.T) {
	catalog := FeeCatalog{Closing: []ClosingFeeRule{
		{ID: 1, MinPrice: 501, MaxPrice: 1000, Fee: 20},
		{ID: 2, MinPrice: 0, MaxPrice: 500, Fee: 10},
	}}

	fee, match, ok := ClosingFee(CatalogItem{}, 5000, catalog, DefaultOptions())

	require.True(t, ok)
	assert.InDelta(t, 20, fee, 1e-9)
	assert.Equal(t, int64(1), match.Rule.ID)
}

func TestClosingFeeLegacyFallback(t *testing.T) {
	opts := DefaultOptions()

	fee, match, ok := ClosingFee(CatalogItem{}, 1500, FeeCatalog{}, opts)
	assert.False(t, ok)
	assert.InDelta(t, 51, fee, 1e-9)
	assert.Equal(t, SourceLegacy, match.Source)

	fee, _, ok = ClosingFee(CatalogItem{}, 1000, FeeCatalog{}, opts)
	assert.False(t, ok)
	assert.Zero(t, fee)

	opts.ClosingLegacyFee = 60
	opts.ClosingLegacyThreshold = 200
	fee, _, _ = ClosingFee(CatalogItem{}, 300, FeeCatalog{}, opts)
	assert.InDelta(t, 60, fee, 1e-9)
}

func TestClosingCascadeOrder(t *testing.T) {
	names := make([]string, 0, len(closingCascade))
	for _, step := range closingCascade {
		names = append(names, step.name)
	}
	assert.Equal(t, []string{SourceNodeMap, SourceRuleNode, SourceNameMap, SourceLeafName, SourcePrice}, names)
}
