package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/feeworks/internal/pricing"
)

const unbounded = pricing.UnboundedPrice

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// Run seeds the default fee catalog in an idempotent way. A table that already
// has rows is left untouched, so edited tables survive restarts.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	steps := []func(context.Context, *sql.Tx, *Stats) error{
		ensureReferralFees,
		ensureClosingFees,
		ensureShippingFees,
		ensureStorageRate,
		ensureReturnFees,
		ensureCategoryMappings,
	}
	for _, step := range steps {
		if err := step(ctx, tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func tableEmpty(ctx context.Context, tx *sql.Tx, table string) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` LIMIT 1)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s existence: %w", table, err)
	}
	return !exists, nil
}

func ensureReferralFees(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	empty, err := tableEmpty(ctx, tx, "referral_fees")
	if err != nil || !empty {
		if err == nil {
			stats.Skipped++
		}
		return err
	}

	for _, rule := range defaultReferralFees {
		result, err := tx.ExecContext(ctx, `INSERT INTO referral_fees (category, node_id) VALUES (?, ?)`, rule.Category, rule.NodeID)
		if err != nil {
			return fmt.Errorf("insert referral fee %q: %w", rule.Category, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("read referral fee id: %w", err)
		}
		stats.Inserts++

		for _, tier := range rule.Tiers {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO referral_fee_tiers (referral_fee_id, min_price, max_price, percentage)
				VALUES (?, ?, ?, ?)
			`, id, tier.MinPrice, tier.MaxPrice, tier.Percentage); err != nil {
				return fmt.Errorf("insert referral tier for %q: %w", rule.Category, err)
			}
			stats.Inserts++
		}
	}
	return nil
}

func ensureClosingFees(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	empty, err := tableEmpty(ctx, tx, "closing_fees")
	if err != nil || !empty {
		if err == nil {
			stats.Skipped++
		}
		return err
	}

	for _, r := range defaultClosingFees {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO closing_fees (min_price, max_price, fee, category, node_id, seller_type)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.MinPrice, r.MaxPrice, r.Fee, r.Category, r.NodeID, r.SellerType); err != nil {
			return fmt.Errorf("insert closing fee: %w", err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureShippingFees(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	empty, err := tableEmpty(ctx, tx, "shipping_fees")
	if err != nil || !empty {
		if err == nil {
			stats.Skipped++
		}
		return err
	}

	for _, r := range defaultShippingFees {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO shipping_fees (size_tier, weight_min, weight_max, fee, pick_pack_fee, incremental, step_size, step_fee)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.SizeTier, r.WeightMin, r.WeightMax, r.Fee, r.PickPackFee, r.Incremental, r.StepSize, r.StepFee); err != nil {
			return fmt.Errorf("insert shipping fee: %w", err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureStorageRate(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	empty, err := tableEmpty(ctx, tx, "storage_rates")
	if err != nil || !empty {
		if err == nil {
			stats.Skipped++
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO storage_rates (duration, rate) VALUES (?, ?)`, "Monthly", pricing.DefaultStorageRate); err != nil {
		return fmt.Errorf("insert storage rate: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureReturnFees(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	empty, err := tableEmpty(ctx, tx, "return_fees")
	if err != nil || !empty {
		if err == nil {
			stats.Skipped++
		}
		return err
	}

	for _, r := range defaultReturnFees {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO return_fees (min_price, max_price, class, basic, standard, advanced, premium)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.MinPrice, r.MaxPrice, string(r.Class), r.Basic, r.Standard, r.Advanced, r.Premium); err != nil {
			return fmt.Errorf("insert return fee: %w", err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureCategoryMappings(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	empty, err := tableEmpty(ctx, tx, "category_name_mappings")
	if err != nil {
		return err
	}
	if empty {
		for _, m := range defaultNameMappings {
			if _, err := tx.ExecContext(ctx, `INSERT INTO category_name_mappings (source, fee_category) VALUES (?, ?)`, m.Source, m.FeeCategory); err != nil {
				return fmt.Errorf("insert category name mapping %q: %w", m.Source, err)
			}
			stats.Inserts++
		}
	} else {
		stats.Skipped++
	}

	empty, err = tableEmpty(ctx, tx, "category_node_mappings")
	if err != nil {
		return err
	}
	if !empty {
		stats.Skipped++
		return nil
	}
	for _, m := range defaultNodeMappings {
		if _, err := tx.ExecContext(ctx, `INSERT INTO category_node_mappings (node_id, fee_category) VALUES (?, ?)`, m.NodeID, m.FeeCategory); err != nil {
			return fmt.Errorf("insert category node mapping %q: %w", m.NodeID, err)
		}
		stats.Inserts++
	}
	return nil
}
