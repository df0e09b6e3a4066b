package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/feeworks/internal/pricing"
)

// ErrNotFound is returned when an item does not exist.
var ErrNotFound = errors.New("store: not found")

// Store reads fee tables and reads/writes catalog items in SQLite.
type Store struct {
	db *sql.DB
}

// New wraps an open database whose schema is migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ItemRecord is a stored item with the fees from its last calculation.
type ItemRecord struct {
	Item         pricing.CatalogItem
	FeeCategory  string
	Result       pricing.Result
	CalculatedAt *time.Time
}

// LoadCatalog reads every fee table into an immutable snapshot.
func (s *Store) LoadCatalog(ctx context.Context) (pricing.FeeCatalog, error) {
	var (
		c   pricing.FeeCatalog
		err error
	)
	if c.Referral, err = s.listReferralFees(ctx); err != nil {
		return pricing.FeeCatalog{}, err
	}
	if c.Closing, err = s.listClosingFees(ctx); err != nil {
		return pricing.FeeCatalog{}, err
	}
	if c.Shipping, err = s.listShippingFees(ctx); err != nil {
		return pricing.FeeCatalog{}, err
	}
	if c.Storage, err = s.listStorageRates(ctx); err != nil {
		return pricing.FeeCatalog{}, err
	}
	if c.Returns, err = s.listReturnFees(ctx); err != nil {
		return pricing.FeeCatalog{}, err
	}
	if c.NameMappings, err = s.listNameMappings(ctx); err != nil {
		return pricing.FeeCatalog{}, err
	}
	if c.NodeMappings, err = s.listNodeMappings(ctx); err != nil {
		return pricing.FeeCatalog{}, err
	}
	return c, nil
}

func (s *Store) listReferralFees(ctx context.Context) ([]pricing.ReferralFeeRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.category, r.node_id, t.min_price, t.max_price, t.percentage
		FROM referral_fees r
		LEFT JOIN referral_fee_tiers t ON t.referral_fee_id = r.id
		ORDER BY r.id, t.min_price, t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query referral fees: %w", err)
	}
	defer rows.Close()

	rules := make([]pricing.ReferralFeeRule, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id               int64
			category, nodeID string
			minP, maxP, pct  sql.NullFloat64
		)
		if err := rows.Scan(&id, &category, &nodeID, &minP, &maxP, &pct); err != nil {
			return nil, fmt.Errorf("scan referral fee: %w", err)
		}
		i, ok := index[id]
		if !ok {
			rules = append(rules, pricing.ReferralFeeRule{ID: id, Category: category, NodeID: nodeID})
			i = len(rules) - 1
			index[id] = i
		}
		if minP.Valid {
			rules[i].Tiers = append(rules[i].Tiers, pricing.ReferralTier{MinPrice: minP.Float64, MaxPrice: maxP.Float64, Percentage: pct.Float64})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referral fees: %w", err)
	}
	return rules, nil
}

func (s *Store) listClosingFees(ctx context.Context) ([]pricing.ClosingFeeRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, min_price, max_price, fee, category, node_id, seller_type
		FROM closing_fees
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query closing fees: %w", err)
	}
	defer rows.Close()

	rules := make([]pricing.ClosingFeeRule, 0)
	for rows.Next() {
		var r pricing.ClosingFeeRule
		if err := rows.Scan(&r.ID, &r.MinPrice, &r.MaxPrice, &r.Fee, &r.Category, &r.NodeID, &r.SellerType); err != nil {
			return nil, fmt.Errorf("scan closing fee: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closing fees: %w", err)
	}
	return rules, nil
}

func (s *Store) listShippingFees(ctx context.Context) ([]pricing.ShippingFeeRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, size_tier, weight_min, weight_max, fee, pick_pack_fee, incremental, step_size, step_fee
		FROM shipping_fees
		ORDER BY size_tier, weight_min, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query shipping fees: %w", err)
	}
	defer rows.Close()

	rules := make([]pricing.ShippingFeeRule, 0)
	for rows.Next() {
		var r pricing.ShippingFeeRule
		if err := rows.Scan(&r.ID, &r.SizeTier, &r.WeightMin, &r.WeightMax, &r.Fee, &r.PickPackFee, &r.Incremental, &r.StepSize, &r.StepFee); err != nil {
			return nil, fmt.Errorf("scan shipping fee: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipping fees: %w", err)
	}
	return rules, nil
}

func (s *Store) listStorageRates(ctx context.Context) ([]pricing.StorageRate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, duration, rate FROM storage_rates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query storage rates: %w", err)
	}
	defer rows.Close()

	rates := make([]pricing.StorageRate, 0)
	for rows.Next() {
		var r pricing.StorageRate
		if err := rows.Scan(&r.ID, &r.Duration, &r.Rate); err != nil {
			return nil, fmt.Errorf("scan storage rate: %w", err)
		}
		rates = append(rates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate storage rates: %w", err)
	}
	return rates, nil
}

func (s *Store) listReturnFees(ctx context.Context) ([]pricing.ReturnFeeRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, min_price, max_price, class, basic, standard, advanced, premium
		FROM return_fees
		ORDER BY class, min_price, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query return fees: %w", err)
	}
	defer rows.Close()

	rules := make([]pricing.ReturnFeeRule, 0)
	for rows.Next() {
		var (
			r     pricing.ReturnFeeRule
			class string
		)
		if err := rows.Scan(&r.ID, &r.MinPrice, &r.MaxPrice, &class, &r.Basic, &r.Standard, &r.Advanced, &r.Premium); err != nil {
			return nil, fmt.Errorf("scan return fee: %w", err)
		}
		r.Class = pricing.ReturnClass(class)
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate return fees: %w", err)
	}
	return rules, nil
}

func (s *Store) listNameMappings(ctx context.Context) ([]pricing.CategoryNameMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, fee_category FROM category_name_mappings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query category name mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]pricing.CategoryNameMapping, 0)
	for rows.Next() {
		var m pricing.CategoryNameMapping
		if err := rows.Scan(&m.ID, &m.Source, &m.FeeCategory); err != nil {
			return nil, fmt.Errorf("scan category name mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category name mappings: %w", err)
	}
	return mappings, nil
}

func (s *Store) listNodeMappings(ctx context.Context) ([]pricing.CategoryNodeMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, node_id, fee_category FROM category_node_mappings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query category node mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]pricing.CategoryNodeMapping, 0)
	for rows.Next() {
		var m pricing.CategoryNodeMapping
		if err := rows.Scan(&m.ID, &m.NodeID, &m.FeeCategory); err != nil {
			return nil, fmt.Errorf("scan category node mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category node mappings: %w", err)
	}
	return mappings, nil
}
