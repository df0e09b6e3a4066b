package pricing

import "strings"

// Status tracks where an item is in the enrichment and calculation lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusFetched    Status = "fetched"
	StatusCalculated Status = "calculated"
	StatusError      Status = "error"
)

// Size tiers used by fulfillment rules.
const (
	SizeStandard = "Standard"
	SizeHeavy    = "Heavy"
	SizeOversize = "Oversize"
)

// Service tiers used by the return fee matrix.
const (
	ServiceBasic    = "Basic"
	ServiceStandard = "Standard"
	ServiceAdvanced = "Advanced"
	ServicePremium  = "Premium"
)

// ReturnClass groups categories that share a return fee table.
type ReturnClass string

const (
	ReturnGeneral ReturnClass = "General"
	ReturnApparel ReturnClass = "Apparel"
	ReturnShoes   ReturnClass = "Shoes"
)

// SellerTypeFC marks closing fee rules preferred for fulfilled-by-operator listings.
const SellerTypeFC = "FC"

// UnboundedPrice is the conventional sentinel for an open upper price bound.
const UnboundedPrice = 999999999

// CatalogItem is a listing enriched with catalog data. The engine only reads it;
// callers attach the computed fees.
type CatalogItem struct {
	ID            int64
	Identifier    string
	Title         string
	Price         float64
	Weight        float64
	Dimensions    string
	Category      string
	CategoryPath  string
	NodeID        string
	SizeTier      string
	ServiceTier   string
	ReturnPercent float64
	Status        Status
	ErrorMessage  string
}

// path returns the lowercased breadcrumb used for matching, falling back to the leaf label.
func (i CatalogItem) path() string {
	if strings.TrimSpace(i.CategoryPath) != "" {
		return strings.ToLower(i.CategoryPath)
	}
	return strings.ToLower(i.Category)
}

func (i CatalogItem) leaf() string {
	return strings.ToLower(i.Category)
}

func (i CatalogItem) nodeID() string {
	return strings.TrimSpace(i.NodeID)
}

// ReferralTier is one commission band of a referral rule.
type ReferralTier struct {
	MinPrice   float64
	MaxPrice   float64
	Percentage float64
}

// ReferralFeeRule holds the commission tiers for one fee category.
type ReferralFeeRule struct {
	ID       int64
	Category string
	NodeID   string
	Tiers    []ReferralTier
}

// ClosingFeeRule is a flat per-item slab, optionally scoped to a category, node or seller type.
type ClosingFeeRule struct {
	ID         int64
	MinPrice   float64
	MaxPrice   float64
	Fee        float64
	Category   string
	NodeID     string
	SellerType string
}

// ShippingFeeRule is a weight band of the fulfillment fee table.
type ShippingFeeRule struct {
	ID          int64
	SizeTier    string
	WeightMin   float64
	WeightMax   float64
	Fee         float64
	PickPackFee float64
	Incremental bool
	StepSize    float64
	StepFee     float64
}

// StorageRate is the monthly warehouse charge per cubic foot.
type StorageRate struct {
	ID       int64
	Duration string
	Rate     float64
}

// ReturnFeeRule is one price row of the return processing matrix.
type ReturnFeeRule struct {
	ID       int64
	MinPrice float64
	MaxPrice float64
	Class    ReturnClass
	Basic    float64
	Standard float64
	Advanced float64
	Premium  float64
}

// CategoryNameMapping maps a source category substring to a fee category.
type CategoryNameMapping struct {
	ID          int64
	Source      string
	FeeCategory string
}

// CategoryNodeMapping maps a taxonomy node id to a fee category.
type CategoryNodeMapping struct {
	ID          int64
	NodeID      string
	FeeCategory string
}

// FeeCatalog is the read-only snapshot of every fee table used by one run.
type FeeCatalog struct {
	Referral     []ReferralFeeRule
	Closing      []ClosingFeeRule
	Shipping     []ShippingFeeRule
	Storage      []StorageRate
	Returns      []ReturnFeeRule
	NameMappings []CategoryNameMapping
	NodeMappings []CategoryNodeMapping
}

// referralRule finds the referral rule for a category, ignoring case.
func (c FeeCatalog) referralRule(category string) (ReferralFeeRule, bool) {
	for _, r := range c.Referral {
		if strings.EqualFold(r.Category, category) {
			return r, true
		}
	}
	return ReferralFeeRule{}, false
}

func (c FeeCatalog) nodeMapping(nodeID string) (CategoryNodeMapping, bool) {
	if nodeID == "" {
		return CategoryNodeMapping{}, false
	}
	for _, m := range c.NodeMappings {
		if strings.TrimSpace(m.NodeID) == nodeID {
			return m, true
		}
	}
	return CategoryNodeMapping{}, false
}

// nameMapping returns the first mapping whose source occurs in the path or equals the leaf.
func (c FeeCatalog) nameMapping(item CatalogItem) (CategoryNameMapping, bool) {
	path, leaf := item.path(), item.leaf()
	for _, m := range c.NameMappings {
		src := strings.ToLower(m.Source)
		if src == "" {
			continue
		}
		if strings.Contains(path, src) || leaf == src {
			return m, true
		}
	}
	return CategoryNameMapping{}, false
}
