package pricing

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidPrice marks items that cannot be priced because their price is missing or not positive.
	ErrInvalidPrice = errors.New("pricing: price is zero or invalid")
	// ErrFeeOverflow marks items whose fee amounts are not finite numbers.
	ErrFeeOverflow = errors.New("pricing: fee amounts overflow")
)

// Default values for Options. The closing fee and storage floor constants are
// carried over from the historical fee sheets and are kept overridable.
const (
	DefaultTaxRate                 = 0.18
	DefaultClosingLegacyThreshold  = 1000
	DefaultClosingLegacyFee        = 51
	DefaultStorageMinimumFee       = 1.0
	DefaultStorageFallbackStandard = 5
	DefaultStorageFallbackOther    = 20
	DefaultStorageRate             = 45
)

// Options holds the tunable constants of the fee pipeline.
type Options struct {
	TaxRate                 float64
	ClosingLegacyThreshold  float64
	ClosingLegacyFee        float64
	StorageMinimumFee       float64
	StorageFallbackStandard float64
	StorageFallbackOther    float64
	DefaultStorageRate      float64
}

// DefaultOptions returns the historical defaults.
func DefaultOptions() Options {
	return Options{
		TaxRate:                 DefaultTaxRate,
		ClosingLegacyThreshold:  DefaultClosingLegacyThreshold,
		ClosingLegacyFee:        DefaultClosingLegacyFee,
		StorageMinimumFee:       DefaultStorageMinimumFee,
		StorageFallbackStandard: DefaultStorageFallbackStandard,
		StorageFallbackOther:    DefaultStorageFallbackOther,
		DefaultStorageRate:      DefaultStorageRate,
	}
}

// Diagnostic is a soft, non-fatal note about how a fee was derived.
type Diagnostic struct {
	Stage   string
	Message string
}

// ComputedFees is the outcome of pricing one item.
type ComputedFees struct {
	ItemID       int64
	Status       Status
	ErrorMessage string
	Result       Result
	Category     Resolution
	Closing      ClosingMatch
	Diagnostics  []Diagnostic

	err error
}

// Err returns the failure carried by an error outcome, or nil. Outcomes built
// by the engine keep the original error, so errors.Is works on them.
func (c ComputedFees) Err() error {
	if c.Status != StatusError {
		return nil
	}
	if c.err != nil {
		return c.err
	}
	return errors.New(c.ErrorMessage)
}

func failed(itemID int64, err error) ComputedFees {
	return ComputedFees{ItemID: itemID, Status: StatusError, ErrorMessage: err.Error(), err: err}
}

// Engine runs the fee pipeline. It holds no per-run state and is safe for concurrent use.
type Engine struct {
	opts    Options
	workers int
}

// NewEngine returns an engine using opts and at most workers concurrent
// computations per batch. workers <= 0 means GOMAXPROCS.
func NewEngine(opts Options, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{opts: opts, workers: workers}
}

// Compute prices one item against the catalog snapshot. It is a pure function
// of its inputs and never panics; a failure becomes an error outcome.
func (e *Engine) Compute(item CatalogItem, catalog FeeCatalog) (out ComputedFees) {
	defer func() {
		if r := recover(); r != nil {
			out = failed(item.ID, fmt.Errorf("calculation failed: %v", r))
		}
	}()
	return e.compute(item, catalog)
}

func (e *Engine) compute(item CatalogItem, catalog FeeCatalog) ComputedFees {
	out := ComputedFees{ItemID: item.ID}
	if !finite(item.Price) || item.Price <= 0 {
		return failed(item.ID, ErrInvalidPrice)
	}

	var diags []Diagnostic
	note := func(stage, format string, args ...any) {
		diags = append(diags, Diagnostic{Stage: stage, Message: fmt.Sprintf(format, args...)})
	}

	var c Components

	out.Category = ResolveCategory(item, catalog)
	if rule, ok := catalog.referralRule(out.Category.Category); out.Category.Resolved() && ok {
		c.Referral = ReferralFee(rule, item.Price)
	} else {
		note("category", "no fee category for %q (node %q)", item.Category, item.NodeID)
	}

	closing, match, matched := ClosingFee(item, item.Price, catalog, e.opts)
	c.Closing = closing
	out.Closing = match
	if !matched {
		note("closing", "no closing fee rule matched, charged %.2f", closing)
	}

	fulfillment, banded := FulfillmentFee(item.SizeTier, item.Weight, catalog.Shipping)
	c.Fulfillment = fulfillment
	if !banded {
		note("fulfillment", "no %s band covers %.0fg", sizeTierOrDefault(item.SizeTier), item.Weight)
	}

	storage, err := StorageFee(item.Dimensions, activeStorageRate(catalog, e.opts), item.SizeTier, e.opts)
	if err != nil {
		note("storage", "fallback storage fee %.2f: %v", storage, err)
	}
	c.Storage = storage

	c.Return = ReturnFee(item.Price, item.ServiceTier, item.Category, catalog.Returns)

	res := Aggregate(item.Price, item.ReturnPercent, c, e.opts.TaxRate)
	if !res.finite() {
		return failed(item.ID, ErrFeeOverflow)
	}
	out.Result = res
	out.Status = StatusCalculated
	out.Diagnostics = diags
	return out
}

// ComputeBatch prices every item on a bounded pool of workers. The result has
// one outcome per item, in input order.
func (e *Engine) ComputeBatch(items []CatalogItem, catalog FeeCatalog) []ComputedFees {
	results := make([]ComputedFees, len(items))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range items {
		g.Go(func() error {
			results[i] = e.Compute(items[i], catalog)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func sizeTierOrDefault(tier string) string {
	if tier == "" {
		return SizeStandard
	}
	return tier
}
