package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"rationtrack/forecast"
	"rationtrack/models"
)

// SupplyStore holds the time-stamped arrival/stock observations and the
// government schedule feed. Observations are append-only facts.
type SupplyStore struct {
	db *pgxpool.Pool
}

func NewSupplyStore(db *pgxpool.Pool) *SupplyStore {
	return &SupplyStore{db: db}
}

// InsertObservations writes a batch of observations inside one transaction.
// Re-imports of the same (shop, commodity, day) overwrite the previous row.
func (s *SupplyStore) InsertObservations(ctx context.Context, observations []forecast.Observation) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO observations (shop_id, commodity, observed_on, stock_level, arrival_amount, is_scheduled, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (shop_id, commodity, observed_on) DO UPDATE SET
			stock_level = EXCLUDED.stock_level,
			arrival_amount = EXCLUDED.arrival_amount,
			is_scheduled = EXCLUDED.is_scheduled,
			capacity = EXCLUDED.capacity
	`
	count := 0
	for _, o := range observations {
		if _, err := tx.Exec(ctx, query,
			o.ShopID, o.Commodity, o.Date, o.StockLevel, o.ArrivalAmount, o.IsScheduled, o.Capacity); err != nil {
			return 0, fmt.Errorf("failed to insert observation for %s/%s on %s: %w",
				o.ShopID, o.Commodity, o.Date.Format("2006-01-02"), err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit observation batch: %w", err)
	}
	return count, nil
}

// ListObservations returns observations for one shop and commodity from the
// given day onward, oldest first.
func (s *SupplyStore) ListObservations(ctx context.Context, shopID, commodity string, from time.Time) ([]forecast.Observation, error) {
	query := `
		SELECT shop_id, commodity, observed_on, stock_level, arrival_amount, is_scheduled, capacity
		FROM observations
		WHERE shop_id = $1 AND commodity = $2 AND observed_on >= $3
		ORDER BY observed_on
	`
	rows, err := s.db.Query(ctx, query, shopID, commodity, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	observations := make([]forecast.Observation, 0)
	for rows.Next() {
		var o forecast.Observation
		if err := rows.Scan(&o.ShopID, &o.Commodity, &o.Date, &o.StockLevel, &o.ArrivalAmount, &o.IsScheduled, &o.Capacity); err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

// AllObservations returns every observation from the given day onward,
// oldest first. Used by data export.
func (s *SupplyStore) AllObservations(ctx context.Context, from time.Time) ([]forecast.Observation, error) {
	query := `
		SELECT shop_id, commodity, observed_on, stock_level, arrival_amount, is_scheduled, capacity
		FROM observations
		WHERE observed_on >= $1
		ORDER BY shop_id, commodity, observed_on
	`
	rows, err := s.db.Query(ctx, query, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	observations := make([]forecast.Observation, 0)
	for rows.Next() {
		var o forecast.Observation
		if err := rows.Scan(&o.ShopID, &o.Commodity, &o.Date, &o.StockLevel, &o.ArrivalAmount, &o.IsScheduled, &o.Capacity); err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

// InsertScheduleEntries writes a batch of declared future arrivals.
// Re-declaring a (shop, commodity, day) updates the expected amount.
func (s *SupplyStore) InsertScheduleEntries(ctx context.Context, entries []forecast.ScheduleEntry) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO schedule_entries (shop_id, commodity, scheduled_on, expected_amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shop_id, commodity, scheduled_on) DO UPDATE SET
			expected_amount = EXCLUDED.expected_amount
	`
	count := 0
	for _, e := range entries {
		if _, err := tx.Exec(ctx, query, e.ShopID, e.Commodity, e.Date, e.ExpectedAmount); err != nil {
			return 0, fmt.Errorf("failed to insert schedule entry for %s/%s on %s: %w",
				e.ShopID, e.Commodity, e.Date.Format("2006-01-02"), err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit schedule batch: %w", err)
	}
	return count, nil
}

// ListSchedule returns declared arrivals for one shop and commodity from
// the given day onward.
func (s *SupplyStore) ListSchedule(ctx context.Context, shopID, commodity string, from time.Time) ([]forecast.ScheduleEntry, error) {
	query := `
		SELECT shop_id, commodity, scheduled_on, expected_amount
		FROM schedule_entries
		WHERE shop_id = $1 AND commodity = $2 AND scheduled_on >= $3
		ORDER BY scheduled_on
	`
	rows, err := s.db.Query(ctx, query, shopID, commodity, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]forecast.ScheduleEntry, 0)
	for rows.Next() {
		var e forecast.ScheduleEntry
		if err := rows.Scan(&e.ShopID, &e.Commodity, &e.Date, &e.ExpectedAmount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LatestStockLevels returns the most recent observation per commodity at a
// shop, with the dashboard status derived from stock versus capacity.
func (s *SupplyStore) LatestStockLevels(ctx context.Context, shopID string) ([]models.StockLevel, error) {
	query := `
		SELECT DISTINCT ON (commodity)
		       commodity, stock_level, capacity, observed_on
		FROM observations
		WHERE shop_id = $1
		ORDER BY commodity, observed_on DESC
	`
	rows, err := s.db.Query(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make([]models.StockLevel, 0)
	for rows.Next() {
		level := models.StockLevel{ShopID: shopID}
		if err := rows.Scan(&level.Commodity, &level.CurrentStock, &level.Capacity, &level.LastUpdated); err != nil {
			return nil, err
		}
		level.Status = StockStatus(level.CurrentStock, level.Capacity)
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

// StockStatus buckets a stock position for the dashboard.
func StockStatus(stock float64, capacity *float64) string {
	if stock <= 0 {
		return "out"
	}
	if capacity == nil || *capacity <= 0 {
		return "good"
	}
	switch ratio := stock / *capacity; {
	case ratio < 0.15:
		return "critical"
	case ratio < 0.40:
		return "low"
	default:
		return "good"
	}
}
