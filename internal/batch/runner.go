package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Simplici0/feeworks/internal/logging"
	"github.com/Simplici0/feeworks/internal/pricing"
	"github.com/Simplici0/feeworks/internal/store"
)

const catalogCacheKey = "fee-catalog"

// computable are the statuses a run picks up. Pending items have not been
// enriched yet and are left alone.
var computable = []pricing.Status{pricing.StatusFetched, pricing.StatusCalculated, pricing.StatusError}

// Store is the persistence the runner needs.
type Store interface {
	LoadCatalog(ctx context.Context) (pricing.FeeCatalog, error)
	ListItems(ctx context.Context, statuses ...pricing.Status) ([]store.ItemRecord, error)
	BackfillServiceTier(ctx context.Context, tier string) (int64, error)
	SaveResult(ctx context.Context, fees pricing.ComputedFees, at time.Time) error
}

// ItemFailure describes one item that ended in error or could not be saved.
type ItemFailure struct {
	ItemID     int64  `json:"item_id"`
	Identifier string `json:"identifier"`
	Error      string `json:"error"`
}

// Report summarizes one run.
type Report struct {
	RunID      string        `json:"run_id"`
	Calculated int           `json:"calculated"`
	Errored    int           `json:"errored"`
	Failures   []ItemFailure `json:"failures"`
}

// Runner loads the fee catalog and items, prices them, and persists each outcome.
type Runner struct {
	store  Store
	engine *pricing.Engine
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewRunner builds a runner. The catalog snapshot is reused for ttl; ttl <= 0
// reloads it on every call.
func NewRunner(s Store, engine *pricing.Engine, ttl time.Duration, logger *zap.Logger) *Runner {
	cleanup := ttl * 2
	if ttl <= 0 {
		cleanup = 0
	}
	return &Runner{
		store:  s,
		engine: engine,
		cache:  cache.New(ttl, cleanup),
		ttl:    ttl,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

// Catalog returns the cached fee catalog, loading it from the store when the
// snapshot is missing or expired.
func (r *Runner) Catalog(ctx context.Context) (pricing.FeeCatalog, error) {
	if cached, found := r.cache.Get(catalogCacheKey); found {
		return cached.(pricing.FeeCatalog), nil
	}

	c, err := r.store.LoadCatalog(ctx)
	if err != nil {
		return pricing.FeeCatalog{}, fmt.Errorf("load fee catalog: %w", err)
	}
	if r.ttl > 0 {
		r.cache.Set(catalogCacheKey, c, r.ttl)
	}
	return c, nil
}

// InvalidateCatalog drops the cached snapshot so the next call reloads it.
func (r *Runner) InvalidateCatalog() {
	r.cache.Delete(catalogCacheKey)
}

// Preview prices a single item against the current catalog without saving it.
func (r *Runner) Preview(ctx context.Context, item pricing.CatalogItem) (pricing.ComputedFees, error) {
	c, err := r.Catalog(ctx)
	if err != nil {
		return pricing.ComputedFees{}, err
	}
	if item.ServiceTier == "" {
		item.ServiceTier = pricing.ServiceStandard
	}
	return r.engine.Compute(item, c), nil
}

// Run prices every computable item. Per-item errors and failed saves are
// collected in the report; only catalog or listing failures and cancellation
// abort the run.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), Failures: []ItemFailure{}}
	log := r.logger.With(zap.String("run_id", report.RunID))

	c, err := r.Catalog(ctx)
	if err != nil {
		return report, err
	}

	filled, err := r.store.BackfillServiceTier(ctx, pricing.ServiceStandard)
	if err != nil {
		return report, err
	}
	if filled > 0 {
		log.Info("service tier backfilled", zap.Int64("items", filled), zap.String("tier", pricing.ServiceStandard))
	}

	records, err := r.store.ListItems(ctx, computable...)
	if err != nil {
		return report, fmt.Errorf("list computable items: %w", err)
	}

	items := make([]pricing.CatalogItem, len(records))
	for i, rec := range records {
		items[i] = rec.Item
	}
	log.Info("calculation started", zap.Int("items", len(items)))

	results := r.engine.ComputeBatch(items, c)
	at := r.now().UTC()
	for i, fees := range results {
		if err := ctx.Err(); err != nil {
			log.Warn("calculation cancelled", zap.Int("saved", i), zap.Error(err))
			return report, err
		}

		item := items[i]
		for _, d := range fees.Diagnostics {
			log.Debug("fee diagnostic",
				zap.Int64("item_id", item.ID),
				zap.String("stage", d.Stage),
				zap.String("detail", d.Message))
		}

		if err := r.store.SaveResult(ctx, fees, at); err != nil {
			log.Error("save calculation result", zap.Int64("item_id", item.ID), zap.Error(err))
			report.Errored++
			report.Failures = append(report.Failures, ItemFailure{ItemID: item.ID, Identifier: item.Identifier, Error: err.Error()})
			continue
		}

		if err := fees.Err(); err != nil {
			log.Warn("item calculation failed", zap.Int64("item_id", item.ID), zap.Error(err))
			report.Errored++
			report.Failures = append(report.Failures, ItemFailure{ItemID: item.ID, Identifier: item.Identifier, Error: err.Error()})
			continue
		}
		report.Calculated++
	}

	log.Info("calculation finished",
		zap.Int("calculated", report.Calculated),
		zap.Int("errored", report.Errored))
	return report, nil
}
