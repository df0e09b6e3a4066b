package pricing

// Components are the per-item fee amounts produced by the evaluators.
type Components struct {
	Referral    float64
	Closing     float64
	Fulfillment Fulfillment
	Storage     float64
	Return      float64
}

// Breakdown contains every line item of the fee calculation.
type Breakdown struct {
	ReferralFee      float64
	ClosingFee       float64
	FulfillmentFee   float64
	PickPackFee      float64
	FulfillmentTotal float64
	StorageFee       float64
	Tax              float64
	ReturnFee        float64
}

// Totals contains roll-up values, including the return-adjusted variant.
type Totals struct {
	TotalFees             float64
	NetProfit             float64
	MarginPercent         float64
	ReturnProcessingCost  float64
	AdjustedNetProfit     float64
	AdjustedMarginPercent float64
}

// Result groups the full fee output for one item.
type Result struct {
	Breakdown Breakdown
	Totals    Totals
}

// Aggregate combines fee components into totals and margins. Tax applies to
// referral, closing and fulfillment only. The return processing cost leaves
// out the referral fee, which the marketplace refunds on a return.
func Aggregate(price, returnPercent float64, c Components, taxRate float64) Result {
	if price <= 0 {
		return Result{}
	}

	fulfillment := c.Fulfillment.Total()
	tax := round2((c.Referral + c.Closing + fulfillment) * taxRate)
	totalFees := round2(c.Referral + c.Closing + fulfillment + c.Storage + tax)
	netProfit := round2(price - totalFees)
	margin := round2(netProfit / price * 100)
	returnCost := round2(c.Closing + fulfillment + c.Storage + tax + c.Return)

	adjustedProfit, adjustedMargin := netProfit, margin
	if returnPercent > 0 {
		r := returnPercent / 100
		adjustedProfit = round2(netProfit*(1-r) - returnCost*r)
		adjustedMargin = round2(adjustedProfit / price * 100)
	}

	return Result{
		Breakdown: Breakdown{
			ReferralFee:      c.Referral,
			ClosingFee:       c.Closing,
			FulfillmentFee:   c.Fulfillment.Flat,
			PickPackFee:      c.Fulfillment.PickPack,
			FulfillmentTotal: round2(fulfillment),
			StorageFee:       c.Storage,
			Tax:              tax,
			ReturnFee:        c.Return,
		},
		Totals: Totals{
			TotalFees:             totalFees,
			NetProfit:             netProfit,
			MarginPercent:         margin,
			ReturnProcessingCost:  returnCost,
			AdjustedNetProfit:     adjustedProfit,
			AdjustedMarginPercent: adjustedMargin,
		},
	}
}

func (r Result) finite() bool {
	b, t := r.Breakdown, r.Totals
	return finite(
		b.ReferralFee, b.ClosingFee, b.FulfillmentFee, b.PickPackFee, b.FulfillmentTotal, b.StorageFee, b.Tax, b.ReturnFee,
		t.TotalFees, t.NetProfit, t.MarginPercent, t.ReturnProcessingCost, t.AdjustedNetProfit, t.AdjustedMarginPercent,
	)
}
