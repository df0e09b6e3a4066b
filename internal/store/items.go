package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/feeworks/internal/pricing"
)

const itemColumns = `
	id, identifier, title, price, weight, dimensions, category, category_path, node_id,
	size_tier, service_tier, return_percent, status, error_message,
	fee_category, referral_fee, closing_fee, fulfillment_fee, pick_pack_fee, storage_fee, tax,
	return_fee, total_fees, net_profit, margin_percent, return_processing_cost,
	adjusted_net_profit, adjusted_margin_percent, calculated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(sc rowScanner) (ItemRecord, error) {
	var (
		rec        ItemRecord
		status     string
		calculated sql.NullTime
	)
	it, b, t := &rec.Item, &rec.Result.Breakdown, &rec.Result.Totals
	if err := sc.Scan(
		&it.ID, &it.Identifier, &it.Title, &it.Price, &it.Weight, &it.Dimensions, &it.Category, &it.CategoryPath, &it.NodeID,
		&it.SizeTier, &it.ServiceTier, &it.ReturnPercent, &status, &it.ErrorMessage,
		&rec.FeeCategory, &b.ReferralFee, &b.ClosingFee, &b.FulfillmentFee, &b.PickPackFee, &b.StorageFee, &b.Tax,
		&b.ReturnFee, &t.TotalFees, &t.NetProfit, &t.MarginPercent, &t.ReturnProcessingCost,
		&t.AdjustedNetProfit, &t.AdjustedMarginPercent, &calculated,
	); err != nil {
		return ItemRecord{}, err
	}
	it.Status = pricing.Status(status)
	b.FulfillmentTotal = b.FulfillmentFee + b.PickPackFee
	if calculated.Valid {
		ts := calculated.Time.UTC()
		rec.CalculatedAt = &ts
	}
	return rec, nil
}

// ListItems returns stored items ordered by id, optionally filtered by status.
func (s *Store) ListItems(ctx context.Context, statuses ...pricing.Status) ([]ItemRecord, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (?` + strings.Repeat(", ?", len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query catalog items: %w", err)
	}
	defer rows.Close()

	items := make([]ItemRecord, 0)
	for rows.Next() {
		rec, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog items: %w", err)
	}
	return items, nil
}

// GetItem returns one stored item.
func (s *Store) GetItem(ctx context.Context, id int64) (ItemRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE id = ?`, id)
	rec, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ItemRecord{}, ErrNotFound
	}
	if err != nil {
		return ItemRecord{}, fmt.Errorf("query catalog item %d: %w", id, err)
	}
	return rec, nil
}

// InsertItem stores an enriched item and returns its id.
func (s *Store) InsertItem(ctx context.Context, item pricing.CatalogItem) (int64, error) {
	status := item.Status
	if status == "" {
		status = pricing.StatusPending
	}
	sizeTier := item.SizeTier
	if sizeTier == "" {
		sizeTier = pricing.SizeStandard
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_items (
			identifier, title, price, weight, dimensions, category, category_path, node_id,
			size_tier, service_tier, return_percent, status
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.Identifier, item.Title, item.Price, item.Weight, item.Dimensions, item.Category, item.CategoryPath, item.NodeID,
		sizeTier, item.ServiceTier, item.ReturnPercent, string(status))
	if err != nil {
		return 0, fmt.Errorf("insert catalog item %q: %w", item.Identifier, err)
	}
	return result.LastInsertId()
}

// BackfillServiceTier sets tier on items that have none and returns how many changed.
func (s *Store) BackfillServiceTier(ctx context.Context, tier string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE catalog_items
		SET service_tier = ?, updated_at = CURRENT_TIMESTAMP
		WHERE TRIM(service_tier) = ''
	`, tier)
	if err != nil {
		return 0, fmt.Errorf("backfill service tier: %w", err)
	}
	return result.RowsAffected()
}

// SaveResult writes a calculation outcome onto its item. Error outcomes zero every fee field.
func (s *Store) SaveResult(ctx context.Context, fees pricing.ComputedFees, at time.Time) error {
	b, t := fees.Result.Breakdown, fees.Result.Totals
	result, err := s.db.ExecContext(ctx, `
		UPDATE catalog_items
		SET
			status = ?,
			error_message = ?,
			fee_category = ?,
			referral_fee = ?,
			closing_fee = ?,
			fulfillment_fee = ?,
			pick_pack_fee = ?,
			storage_fee = ?,
			tax = ?,
			return_fee = ?,
			total_fees = ?,
			net_profit = ?,
			margin_percent = ?,
			return_processing_cost = ?,
			adjusted_net_profit = ?,
			adjusted_margin_percent = ?,
			calculated_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(fees.Status), fees.ErrorMessage, fees.Category.Category,
		b.ReferralFee, b.ClosingFee, b.FulfillmentFee, b.PickPackFee, b.StorageFee, b.Tax,
		b.ReturnFee, t.TotalFees, t.NetProfit, t.MarginPercent, t.ReturnProcessingCost,
		t.AdjustedNetProfit, t.AdjustedMarginPercent, at.UTC(), fees.ItemID)
	if err != nil {
		return fmt.Errorf("save result for item %d: %w", fees.ItemID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save result for item %d: %w", fees.ItemID, err)
	}
	if affected == 0 {
		return fmt.Errorf("save result for item %d: %w", fees.ItemID, ErrNotFound)
	}
	return nil
}
