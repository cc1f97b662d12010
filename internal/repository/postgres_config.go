package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"

	"go.uber.org/zap"
)

// PostgresConfigRepo backs the database tier of configuration lookups and
// the per-site alert recipient lists.
type PostgresConfigRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresConfigRepo(db *sql.DB, logger *zap.Logger) *PostgresConfigRepo {
	return &PostgresConfigRepo{db: db, logger: logger}
}

// Value returns the stored override for key, or "" when no row exists.
func (r *PostgresConfigRepo) Value(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT config_value FROM configurations WHERE config_key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query configuration %q: %w", key, err)
	}
	return value, nil
}

func (r *PostgresConfigRepo) SetValue(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO configurations (config_key, config_value)
		VALUES ($1, $2)
		ON CONFLICT (config_key) DO UPDATE SET config_value = EXCLUDED.config_value`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set configuration %q: %w", key, err)
	}
	return nil
}

func (r *PostgresConfigRepo) AlertMobiles(ctx context.Context, siteID int) ([]domain.AlertMobileNumber, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, mobile_number, site_id FROM alert_mobile_numbers WHERE site_id = $1 ORDER BY id`,
		siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert mobiles: %w", err)
	}
	defer rows.Close()

	var result []domain.AlertMobileNumber
	for rows.Next() {
		var m domain.AlertMobileNumber
		if err := rows.Scan(&m.ID, &m.Name, &m.MobileNumber, &m.SiteID); err != nil {
			return nil, fmt.Errorf("failed to scan alert mobile: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *PostgresConfigRepo) AlertEmails(ctx context.Context, siteID int) ([]domain.AlertEmailAddress, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email_id, site_id FROM alert_email_addresses WHERE site_id = $1 ORDER BY id`,
		siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert emails: %w", err)
	}
	defer rows.Close()

	var result []domain.AlertEmailAddress
	for rows.Next() {
		var e domain.AlertEmailAddress
		if err := rows.Scan(&e.ID, &e.Name, &e.EmailID, &e.SiteID); err != nil {
			return nil, fmt.Errorf("failed to scan alert email: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *PostgresConfigRepo) AddAlertMobile(ctx context.Context, siteID int, name, mobile string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alert_mobile_numbers (name, mobile_number, site_id) VALUES ($1, $2, $3)`,
		name, mobile, siteID)
	if err != nil {
		return fmt.Errorf("failed to add alert mobile: %w", err)
	}
	return nil
}

func (r *PostgresConfigRepo) DeleteAlertMobile(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM alert_mobile_numbers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete alert mobile: %w", err)
	}
	return nil
}

func (r *PostgresConfigRepo) AddAlertEmail(ctx context.Context, siteID int, name, email string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alert_email_addresses (name, email_id, site_id) VALUES ($1, $2, $3)`,
		name, email, siteID)
	if err != nil {
		return fmt.Errorf("failed to add alert email: %w", err)
	}
	return nil
}

func (r *PostgresConfigRepo) DeleteAlertEmail(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM alert_email_addresses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete alert email: %w", err)
	}
	return nil
}
