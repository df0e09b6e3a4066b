package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/feeworks/internal/pricing"
	"github.com/Simplici0/feeworks/internal/store"
)

type fakeStore struct {
	catalog   pricing.FeeCatalog
	records   []store.ItemRecord
	loadCalls int
	listed    []pricing.Status
	backfills int
	saved     []pricing.ComputedFees
	saveErr   map[int64]error
	onSave    func()
}

func (f *fakeStore) LoadCatalog(context.Context) (pricing.FeeCatalog, error) {
	f.loadCalls++
	return f.catalog, nil
}

func (f *fakeStore) ListItems(_ context.Context, statuses ...pricing.Status) ([]store.ItemRecord, error) {
	f.listed = statuses
	allowed := make(map[pricing.Status]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}
	out := make([]store.ItemRecord, 0, len(f.records))
	for _, rec := range f.records {
		if allowed[rec.Item.Status] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) BackfillServiceTier(_ context.Context, tier string) (int64, error) {
	var n int64
	for i := range f.records {
		if f.records[i].Item.ServiceTier == "" {
			f.records[i].Item.ServiceTier = tier
			n++
		}
	}
	f.backfills++
	return n, nil
}

func (f *fakeStore) SaveResult(_ context.Context, fees pricing.ComputedFees, _ time.Time) error {
	if f.onSave != nil {
		f.onSave()
	}
	if err := f.saveErr[fees.ItemID]; err != nil {
		return err
	}
	f.saved = append(f.saved, fees)
	return nil
}

func testCatalog() pricing.FeeCatalog {
	return pricing.FeeCatalog{
		Referral: []pricing.ReferralFeeRule{
			{Category: "Books", Tiers: []pricing.ReferralTier{{MinPrice: 0, MaxPrice: pricing.UnboundedPrice, Percentage: 5}}},
		},
		Closing: []pricing.ClosingFeeRule{{MinPrice: 0, MaxPrice: pricing.UnboundedPrice, Fee: 10}},
		Shipping: []pricing.ShippingFeeRule{
			{SizeTier: pricing.SizeStandard, WeightMin: 0, WeightMax: 1000, Fee: 30, PickPackFee: 10},
		},
		Storage: []pricing.StorageRate{{Duration: "Monthly", Rate: 45}},
		Returns: []pricing.ReturnFeeRule{
			{MinPrice: 0, MaxPrice: pricing.UnboundedPrice, Class: pricing.ReturnGeneral, Basic: 40, Standard: 50, Advanced: 60, Premium: 70},
		},
	}
}

func record(id int64, status pricing.Status, price float64) store.ItemRecord {
	return store.ItemRecord{Item: pricing.CatalogItem{
		ID:         id,
		Identifier: "ITEM-" + string(rune('A'+id)),
		Price:      price,
		Weight:     500,
		Dimensions: "10x10x10",
		Category:   "Books",
		Status:     status,
	}}
}

func newTestRunner(s Store, ttl time.Duration) *Runner {
	return NewRunner(s, pricing.NewEngine(pricing.DefaultOptions(), 4), ttl, zap.NewNop())
}

func TestRunPersistsEveryComputableItem(t *testing.T) {
	fs := &fakeStore{
		catalog: testCatalog(),
		records: []store.ItemRecord{
			record(1, pricing.StatusFetched, 300),
			record(2, pricing.StatusPending, 300),
			record(3, pricing.StatusError, 0),
			record(4, pricing.StatusCalculated, 200),
		},
	}
	r := newTestRunner(fs, time.Minute)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Calculated)
	assert.Equal(t, 1, report.Errored)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, int64(3), report.Failures[0].ItemID)
	assert.Equal(t, pricing.ErrInvalidPrice.Error(), report.Failures[0].Error)

	assert.NotContains(t, fs.listed, pricing.StatusPending)
	require.Len(t, fs.saved, 3)
	assert.Equal(t, int64(1), fs.saved[0].ItemID)
	assert.Equal(t, pricing.StatusCalculated, fs.saved[0].Status)
	assert.Equal(t, "Books", fs.saved[0].Category.Category)
	assert.Equal(t, pricing.StatusError, fs.saved[1].Status)
	assert.Zero(t, fs.saved[1].Result)
}

func TestRunBackfillsServiceTier(t *testing.T) {
	fs := &fakeStore{catalog: testCatalog(), records: []store.ItemRecord{record(1, pricing.StatusFetched, 300)}}
	r := newTestRunner(fs, time.Minute)

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fs.backfills)
	assert.Equal(t, pricing.ServiceStandard, fs.records[0].Item.ServiceTier)
	// Standard column of the General row.
	assert.Equal(t, 50.0, fs.saved[0].Result.Breakdown.ReturnFee)
}

func TestRunIsolatesSaveFailures(t *testing.T) {
	fs := &fakeStore{
		catalog: testCatalog(),
		records: []store.ItemRecord{
			record(1, pricing.StatusFetched, 300),
			record(2, pricing.StatusFetched, 300),
			record(3, pricing.StatusFetched, 300),
		},
		saveErr: map[int64]error{2: errors.New("disk full")},
	}
	r := newTestRunner(fs, time.Minute)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Calculated)
	assert.Equal(t, 1, report.Errored)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, int64(2), report.Failures[0].ItemID)
	assert.Contains(t, report.Failures[0].Error, "disk full")
	assert.Len(t, fs.saved, 2)
}

func TestRunStopsBetweenItemsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs := &fakeStore{
		catalog: testCatalog(),
		records: []store.ItemRecord{
			record(1, pricing.StatusFetched, 300),
			record(2, pricing.StatusFetched, 300),
			record(3, pricing.StatusFetched, 300),
		},
		onSave: cancel,
	}
	r := newTestRunner(fs, time.Minute)

	report, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fs.saved, 1)
	assert.Equal(t, 1, report.Calculated)
}

func TestCatalogIsCachedForTTL(t *testing.T) {
	fs := &fakeStore{catalog: testCatalog()}
	r := newTestRunner(fs, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Catalog(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fs.loadCalls)

	r.InvalidateCatalog()
	_, err := r.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fs.loadCalls)
}

func TestCatalogWithoutTTLReloads(t *testing.T) {
	fs := &fakeStore{catalog: testCatalog()}
	r := newTestRunner(fs, 0)

	for i := 0; i < 3; i++ {
		_, err := r.Catalog(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fs.loadCalls)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	fs := &fakeStore{catalog: testCatalog()}
	r := newTestRunner(fs, time.Minute)

	fees, err := r.Preview(context.Background(), pricing.CatalogItem{Price: 300, Weight: 500, Dimensions: "10x10x10", Category: "Books"})
	require.NoError(t, err)

	assert.Equal(t, pricing.StatusCalculated, fees.Status)
	assert.Equal(t, 15.0, fees.Result.Breakdown.ReferralFee)
	assert.Equal(t, 50.0, fees.Result.Breakdown.ReturnFee)
	assert.Empty(t, fs.saved)
}

func TestPreviewHugePriceIsAnErrorOutcome(t *testing.T) {
	fs := &fakeStore{catalog: testCatalog()}
	r := newTestRunner(fs, time.Minute)

	var (
		fees pricing.ComputedFees
		err  error
	)
	require.NotPanics(t, func() {
		fees, err = r.Preview(context.Background(), pricing.CatalogItem{Price: 1.7e308, Weight: 500, Dimensions: "10x10x10", Category: "Books"})
	})
	require.NoError(t, err)

	assert.Equal(t, pricing.StatusError, fees.Status)
	assert.ErrorIs(t, fees.Err(), pricing.ErrFeeOverflow)
}
