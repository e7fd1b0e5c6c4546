package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"rationtrack/models"
	"rationtrack/notify"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const uniqueViolation = "23505"

// AlertStore is the durable record of stock alerts, subscriber preferences
// and sent-notification idempotency rows. It implements notify.Recorder.
type AlertStore struct {
	db *pgxpool.Pool
}

func NewAlertStore(db *pgxpool.Pool) *AlertStore {
	return &AlertStore{db: db}
}

// CreateAlert inserts a new alert with a fresh ID and returns it.
func (s *AlertStore) CreateAlert(ctx context.Context, alert models.StockAlert) (models.StockAlert, error) {
	alert.ID = uuid.NewString()

	query := `
		INSERT INTO stock_alerts (id, shop_id, shop_name, commodity_name, arrival_date, quantity_kg, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := s.db.QueryRow(ctx, query,
		alert.ID, alert.ShopID, alert.ShopName, alert.CommodityName,
		alert.ArrivalDate, alert.QuantityKg, alert.Message,
	).Scan(&alert.CreatedAt)
	if err != nil {
		return models.StockAlert{}, fmt.Errorf("failed to create alert: %w", err)
	}
	return alert, nil
}

func (s *AlertStore) GetAlert(ctx context.Context, alertID string) (models.StockAlert, error) {
	query := `
		SELECT id, shop_id, shop_name, commodity_name, arrival_date, quantity_kg, message, created_at, sent_at
		FROM stock_alerts
		WHERE id = $1
	`
	var alert models.StockAlert
	err := s.db.QueryRow(ctx, query, alertID).Scan(
		&alert.ID, &alert.ShopID, &alert.ShopName, &alert.CommodityName,
		&alert.ArrivalDate, &alert.QuantityKg, &alert.Message, &alert.CreatedAt, &alert.SentAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return models.StockAlert{}, ErrNotFound
		}
		return models.StockAlert{}, err
	}
	return alert, nil
}

// ListAlerts returns a page of alerts, newest first, plus the total count.
func (s *AlertStore) ListAlerts(ctx context.Context, limit, offset int) ([]models.StockAlert, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM stock_alerts").Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, shop_id, shop_name, commodity_name, arrival_date, quantity_kg, message, created_at, sent_at
		FROM stock_alerts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	alerts := make([]models.StockAlert, 0)
	for rows.Next() {
		var alert models.StockAlert
		if err := rows.Scan(
			&alert.ID, &alert.ShopID, &alert.ShopName, &alert.CommodityName,
			&alert.ArrivalDate, &alert.QuantityKg, &alert.Message, &alert.CreatedAt, &alert.SentAt,
		); err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, total, rows.Err()
}

// ListUnsentAlerts returns alerts whose dispatch has not completed yet,
// oldest first. Used by the periodic dispatch sweep.
func (s *AlertStore) ListUnsentAlerts(ctx context.Context) ([]models.StockAlert, error) {
	query := `
		SELECT id, shop_id, shop_name, commodity_name, arrival_date, quantity_kg, message, created_at, sent_at
		FROM stock_alerts
		WHERE sent_at IS NULL
		ORDER BY created_at
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]models.StockAlert, 0)
	for rows.Next() {
		var alert models.StockAlert
		if err := rows.Scan(
			&alert.ID, &alert.ShopID, &alert.ShopName, &alert.CommodityName,
			&alert.ArrivalDate, &alert.QuantityKg, &alert.Message, &alert.CreatedAt, &alert.SentAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// MarkAlertSent stamps the alert's sent_at. Safe to call more than once;
// the first stamp wins.
func (s *AlertStore) MarkAlertSent(ctx context.Context, alertID string, sentAt time.Time) error {
	_, err := s.db.Exec(ctx,
		"UPDATE stock_alerts SET sent_at = $2 WHERE id = $1 AND sent_at IS NULL", alertID, sentAt)
	return err
}

// RecordSent inserts the (user, alert, channel) idempotency row. A unique
// violation means another run already recorded the pair; that is reported
// as (false, nil), never as an error.
func (s *AlertStore) RecordSent(ctx context.Context, userID, alertID string, channel notify.Channel) (bool, error) {
	_, err := s.db.Exec(ctx,
		"INSERT INTO sent_notifications (user_id, alert_id, channel) VALUES ($1, $2, $3)",
		userID, alertID, string(channel))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListSentForAlert returns all idempotency rows recorded for an alert.
func (s *AlertStore) ListSentForAlert(ctx context.Context, alertID string) ([]models.SentNotification, error) {
	rows, err := s.db.Query(ctx,
		"SELECT user_id, alert_id, channel, sent_at FROM sent_notifications WHERE alert_id = $1", alertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sent := make([]models.SentNotification, 0)
	for rows.Next() {
		var n models.SentNotification
		if err := rows.Scan(&n.UserID, &n.AlertID, &n.Channel, &n.SentAt); err != nil {
			return nil, err
		}
		sent = append(sent, n)
	}
	return sent, rows.Err()
}

// UpsertPreference saves a subscriber's notification configuration, one row
// per user.
func (s *AlertStore) UpsertPreference(ctx context.Context, pref models.AlertPreference) error {
	query := `
		INSERT INTO alert_preferences (user_id, email_enabled, sms_enabled, phone_number, preferred_shops, preferred_commodities, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			email_enabled = EXCLUDED.email_enabled,
			sms_enabled = EXCLUDED.sms_enabled,
			phone_number = EXCLUDED.phone_number,
			preferred_shops = EXCLUDED.preferred_shops,
			preferred_commodities = EXCLUDED.preferred_commodities,
			updated_at = NOW()
	`
	_, err := s.db.Exec(ctx, query,
		pref.UserID, pref.EmailEnabled, pref.SMSEnabled, nullIfEmpty(pref.PhoneNumber),
		pref.PreferredShops, pref.PreferredCommodities)
	return err
}

func (s *AlertStore) GetPreference(ctx context.Context, userID string) (models.AlertPreference, error) {
	query := `
		SELECT p.user_id, u.email, p.email_enabled, p.sms_enabled,
		       COALESCE(p.phone_number, ''), p.preferred_shops, p.preferred_commodities, p.updated_at
		FROM alert_preferences p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`
	var pref models.AlertPreference
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&pref.UserID, &pref.Email, &pref.EmailEnabled, &pref.SMSEnabled,
		&pref.PhoneNumber, &pref.PreferredShops, &pref.PreferredCommodities, &pref.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return models.AlertPreference{}, ErrNotFound
		}
		return models.AlertPreference{}, err
	}
	return pref, nil
}

// ListPreferences returns every active subscriber's preference with the
// account email joined in, ready for dispatch matching.
func (s *AlertStore) ListPreferences(ctx context.Context) ([]models.AlertPreference, error) {
	query := `
		SELECT p.user_id, u.email, p.email_enabled, p.sms_enabled,
		       COALESCE(p.phone_number, ''), p.preferred_shops, p.preferred_commodities, p.updated_at
		FROM alert_preferences p
		JOIN users u ON u.id = p.user_id
		WHERE u.is_active = TRUE
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefs := make([]models.AlertPreference, 0)
	for rows.Next() {
		var pref models.AlertPreference
		if err := rows.Scan(
			&pref.UserID, &pref.Email, &pref.EmailEnabled, &pref.SMSEnabled,
			&pref.PhoneNumber, &pref.PreferredShops, &pref.PreferredCommodities, &pref.UpdatedAt,
		); err != nil {
			return nil, err
		}
		prefs = append(prefs, pref)
	}
	return prefs, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
