package seed

import "github.com/Simplici0/feeworks/internal/pricing"

var defaultReferralFees = []pricing.ReferralFeeRule{
	{Category: "Books", Tiers: []pricing.ReferralTier{
		{MinPrice: 0, MaxPrice: 250, Percentage: 3},
		{MinPrice: 251, MaxPrice: 500, Percentage: 4.5},
		{MinPrice: 501, MaxPrice: unbounded, Percentage: 9},
	}},
	{Category: "Mobile Phones", Tiers: []pricing.ReferralTier{
		{MinPrice: 0, MaxPrice: unbounded, Percentage: 5},
	}},
	{Category: "Electronics", Tiers: []pricing.ReferralTier{
		{MinPrice: 0, MaxPrice: 300, Percentage: 5},
		{MinPrice: 301, MaxPrice: unbounded, Percentage: 9},
	}},
	{Category: "Kitchen Appliances", Tiers: []pricing.ReferralTier{
		{MinPrice: 0, MaxPrice: 500, Percentage: 6},
		{MinPrice: 501, MaxPrice: unbounded, Percentage: 9},
	}},
	{Category: "Clothing", Tiers: []pricing.ReferralTier{
		{MinPrice: 0, MaxPrice: 300, Percentage: 5},
		{MinPrice: 301, MaxPrice: 1000, Percentage: 11},
		{MinPrice: 1001, MaxPrice: unbounded, Percentage: 19},
	}},
}

var defaultClosingFees = []pricing.ClosingFeeRule{
	{MinPrice: 0, MaxPrice: 300, Fee: 25, SellerType: pricing.SellerTypeFC},
	{MinPrice: 301, MaxPrice: 500, Fee: 20, SellerType: pricing.SellerTypeFC},
	{MinPrice: 501, MaxPrice: 1000, Fee: 45, SellerType: pricing.SellerTypeFC},
	{MinPrice: 1001, MaxPrice: unbounded, Fee: 61, SellerType: pricing.SellerTypeFC},
}

var defaultShippingFees = []pricing.ShippingFeeRule{
	{SizeTier: pricing.SizeStandard, WeightMin: 0, WeightMax: 500, Fee: 29, PickPackFee: 14},
	{SizeTier: pricing.SizeStandard, WeightMin: 501, WeightMax: 1000, Fee: 38, PickPackFee: 14},
	{SizeTier: pricing.SizeStandard, WeightMin: 1001, WeightMax: 2000, Fee: 65, PickPackFee: 14},
	{SizeTier: pricing.SizeStandard, WeightMin: 2001, WeightMax: 5000, Fee: 122, PickPackFee: 14, Incremental: true, StepSize: 1000, StepFee: 34},
	{SizeTier: pricing.SizeHeavy, WeightMin: 0, WeightMax: 5000, Fee: 120, PickPackFee: 20},
	{SizeTier: pricing.SizeHeavy, WeightMin: 5001, WeightMax: 12000, Fee: 190, PickPackFee: 20, Incremental: true, StepSize: 1000, StepFee: 26},
	{SizeTier: pricing.SizeOversize, WeightMin: 0, WeightMax: 30000, Fee: 300, PickPackFee: 30, Incremental: true, StepSize: 5000, StepFee: 60},
}

var defaultReturnFees = []pricing.ReturnFeeRule{
	{MinPrice: 0, MaxPrice: 300, Class: pricing.ReturnGeneral, Basic: 40, Standard: 50, Advanced: 60, Premium: 65},
	{MinPrice: 301, MaxPrice: 500, Class: pricing.ReturnGeneral, Basic: 55, Standard: 70, Advanced: 80, Premium: 90},
	{MinPrice: 501, MaxPrice: 1000, Class: pricing.ReturnGeneral, Basic: 70, Standard: 85, Advanced: 100, Premium: 110},
	{MinPrice: 1001, MaxPrice: unbounded, Class: pricing.ReturnGeneral, Basic: 90, Standard: 110, Advanced: 125, Premium: 140},
	{MinPrice: 0, MaxPrice: 500, Class: pricing.ReturnApparel, Basic: 25, Standard: 35, Advanced: 40, Premium: 45},
	{MinPrice: 501, MaxPrice: unbounded, Class: pricing.ReturnApparel, Basic: 35, Standard: 45, Advanced: 55, Premium: 60},
	{MinPrice: 0, MaxPrice: 500, Class: pricing.ReturnShoes, Basic: 20, Standard: 25, Advanced: 28, Premium: 30},
	{MinPrice: 501, MaxPrice: unbounded, Class: pricing.ReturnShoes, Basic: 30, Standard: 38, Advanced: 42, Premium: 48},
}

var defaultNameMappings = []pricing.CategoryNameMapping{
	{Source: "Small Kitchen Appliances", FeeCategory: "Kitchen Appliances"},
	{Source: "Cell Phones", FeeCategory: "Mobile Phones"},
	{Source: "Headphones", FeeCategory: "Electronics"},
}

var defaultNodeMappings = []pricing.CategoryNodeMapping{
	{NodeID: "1389401031", FeeCategory: "Mobile Phones"},
}
