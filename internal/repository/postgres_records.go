package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresRecordsRepo reads the temperature and mask capture streams.
// All timestamp matching happens at whole-second granularity
// (date_trunc('second', ...)), day scoping at calendar-date granularity.
type PostgresRecordsRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresRecordsRepo(db *sql.DB, logger *zap.Logger) *PostgresRecordsRepo {
	return &PostgresRecordsRepo{db: db, logger: logger}
}

func (r *PostgresRecordsRepo) TemperatureAt(ctx context.Context, ts time.Time) (*domain.TemperatureRecord, error) {
	query := `
		SELECT temperature_record_id, person_uid, person_name, device_id,
		       temperature, timestamp,
		       COALESCE(image_path, ''), COALESCE(image_base64, ''),
		       COALESCE(ic, ''), COALESCE(mobile, '')
		FROM temperature_records
		WHERE date_trunc('second', timestamp) = $1
		LIMIT 1`

	var rec domain.TemperatureRecord
	err := r.db.QueryRowContext(ctx, query, domain.TruncateSecond(ts)).Scan(
		&rec.TemperatureRecordID, &rec.PersonUID, &rec.PersonName, &rec.DeviceID,
		&rec.Temperature, &rec.Timestamp, &rec.ImagePath, &rec.ImageBase64,
		&rec.IC, &rec.Mobile)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query temperature record: %w", err)
	}
	return &rec, nil
}

func (r *PostgresRecordsRepo) MaskAt(ctx context.Context, ts time.Time) (*domain.MaskRecord, error) {
	query := `
		SELECT mask_record_id, person_uid, person_name, device_id,
		       mask_value, timestamp,
		       COALESCE(image_path, ''), COALESCE(image_base64, ''),
		       COALESCE(ic, ''), COALESCE(mobile, '')
		FROM mask_records
		WHERE date_trunc('second', timestamp) = $1
		LIMIT 1`

	var rec domain.MaskRecord
	err := r.db.QueryRowContext(ctx, query, domain.TruncateSecond(ts)).Scan(
		&rec.MaskRecordID, &rec.PersonUID, &rec.PersonName, &rec.DeviceID,
		&rec.MaskValue, &rec.Timestamp, &rec.ImagePath, &rec.ImageBase64,
		&rec.IC, &rec.Mobile)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mask record: %w", err)
	}
	return &rec, nil
}

// subjectClause selects the per-subject filter: employees by UID, visitors
// by the mobile captured on the record.
func subjectClause(subject domain.Subject) (string, any) {
	if subject.IsVisitor() {
		return "t.mobile = $2", subject.Mobile
	}
	return "t.person_uid = $2", subject.UID
}

const temperatureObservationSelect = `
	SELECT DISTINCT t.person_uid, t.person_name, COALESCE(t.mobile, ''),
	       t.device_id, g.additional_details, t.temperature, t.timestamp,
	       COALESCE(t.image_path, ''), COALESCE(t.image_base64, '')
	FROM temperature_records t
	JOIN devices d ON d.device_id = t.device_id
	JOIN gates g ON g.gate_id = d.gate_id`

const maskObservationSelect = `
	SELECT DISTINCT t.person_uid, t.person_name, COALESCE(t.mobile, ''),
	       t.device_id, g.additional_details, t.mask_value, t.timestamp,
	       COALESCE(t.image_path, ''), COALESCE(t.image_base64, '')
	FROM mask_records t
	JOIN devices d ON d.device_id = t.device_id
	JOIN gates g ON g.gate_id = d.gate_id`

func (r *PostgresRecordsRepo) TemperatureBySubject(ctx context.Context, subject domain.Subject, since time.Time) ([]TemperatureObservation, error) {
	clause, arg := subjectClause(subject)
	query := temperatureObservationSelect + `
	WHERE t.timestamp >= $1 AND ` + clause
	return r.queryTemperatureObservations(ctx, query, since, arg)
}

func (r *PostgresRecordsRepo) MaskBySubject(ctx context.Context, subject domain.Subject, since time.Time) ([]MaskObservation, error) {
	clause, arg := subjectClause(subject)
	query := maskObservationSelect + `
	WHERE t.timestamp >= $1 AND ` + clause
	return r.queryMaskObservations(ctx, query, since, arg)
}

func (r *PostgresRecordsRepo) TemperatureInWindow(ctx context.Context, deviceIDs []string, start, end time.Time) ([]TemperatureObservation, error) {
	query := temperatureObservationSelect + `
	WHERE t.timestamp >= $1 AND t.timestamp <= $2 AND t.device_id = ANY($3)`
	return r.queryTemperatureObservations(ctx, query, start, end, pq.Array(deviceIDs))
}

func (r *PostgresRecordsRepo) TemperatureByDateRange(ctx context.Context, deviceIDs []string, start, end time.Time) ([]TemperatureObservation, error) {
	query := temperatureObservationSelect + `
	WHERE t.timestamp::date >= $1::date AND t.timestamp::date <= $2::date
	  AND t.device_id = ANY($3)`
	return r.queryTemperatureObservations(ctx, query, start, end, pq.Array(deviceIDs))
}

func (r *PostgresRecordsRepo) MaskByDateRange(ctx context.Context, deviceIDs []string, start, end time.Time) ([]MaskObservation, error) {
	query := maskObservationSelect + `
	WHERE t.timestamp::date >= $1::date AND t.timestamp::date <= $2::date
	  AND t.device_id = ANY($3)`
	return r.queryMaskObservations(ctx, query, start, end, pq.Array(deviceIDs))
}

func (r *PostgresRecordsRepo) queryTemperatureObservations(ctx context.Context, query string, args ...any) ([]TemperatureObservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query temperature observations: %w", err)
	}
	defer rows.Close()

	var obs []TemperatureObservation
	for rows.Next() {
		var o TemperatureObservation
		if err := rows.Scan(&o.PersonUID, &o.PersonName, &o.Mobile, &o.DeviceID,
			&o.Location, &o.Temperature, &o.Timestamp, &o.ImagePath, &o.ImageBase64); err != nil {
			return nil, fmt.Errorf("failed to scan temperature observation: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

func (r *PostgresRecordsRepo) queryMaskObservations(ctx context.Context, query string, args ...any) ([]MaskObservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mask observations: %w", err)
	}
	defer rows.Close()

	var obs []MaskObservation
	for rows.Next() {
		var o MaskObservation
		if err := rows.Scan(&o.PersonUID, &o.PersonName, &o.Mobile, &o.DeviceID,
			&o.Location, &o.MaskValue, &o.Timestamp, &o.ImagePath, &o.ImageBase64); err != nil {
			return nil, fmt.Errorf("failed to scan mask observation: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// CountEmployeesPresent counts distinct employees with any record on an
// in-scope device that day; presence, not alerting.
func (r *PostgresRecordsRepo) CountEmployeesPresent(ctx context.Context, deviceIDs []string, day time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM (
			SELECT e.employee_id
			FROM employees e
			JOIN temperature_records t ON t.person_uid = e.uid
			WHERE t.device_id = ANY($1) AND t.timestamp::date = $2::date
			UNION
			SELECT e.employee_id
			FROM employees e
			JOIN mask_records m ON m.person_uid = e.uid
			WHERE m.device_id = ANY($1) AND m.timestamp::date = $2::date
		) present`
	return r.queryCount(ctx, query, pq.Array(deviceIDs), day)
}

// CountVisitorMobiles counts distinct non-empty visitor mobiles across both
// streams that day.
func (r *PostgresRecordsRepo) CountVisitorMobiles(ctx context.Context, deviceIDs []string, day time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM (
			SELECT t.mobile
			FROM temperature_records t
			WHERE t.person_uid = $1 AND t.device_id = ANY($2)
			  AND t.timestamp::date = $3::date
			  AND COALESCE(t.mobile, '') <> ''
			UNION
			SELECT m.mobile
			FROM mask_records m
			WHERE m.person_uid = $1 AND m.device_id = ANY($2)
			  AND m.timestamp::date = $3::date
			  AND COALESCE(m.mobile, '') <> ''
		) visitors`
	return r.queryCount(ctx, query, domain.VisitorUID, pq.Array(deviceIDs), day)
}

func (r *PostgresRecordsRepo) CountEmployeeTemperatureAlerts(ctx context.Context, deviceIDs []string, day time.Time, threshold float64) (int, error) {
	query := `
		SELECT COUNT(DISTINCT e.employee_id)
		FROM employees e
		JOIN temperature_records t ON t.person_uid = e.uid
		WHERE t.temperature > $1 AND t.device_id = ANY($2)
		  AND t.timestamp::date = $3::date`
	return r.queryCount(ctx, query, threshold, pq.Array(deviceIDs), day)
}

func (r *PostgresRecordsRepo) CountVisitorTemperatureAlerts(ctx context.Context, deviceIDs []string, day time.Time, threshold float64) (int, error) {
	query := `
		SELECT COUNT(DISTINCT t.mobile)
		FROM temperature_records t
		WHERE t.person_uid = $1 AND t.temperature > $2
		  AND t.device_id = ANY($3) AND t.timestamp::date = $4::date
		  AND COALESCE(t.mobile, '') <> ''`
	return r.queryCount(ctx, query, domain.VisitorUID, threshold, pq.Array(deviceIDs), day)
}

func (r *PostgresRecordsRepo) CountEmployeeMaskAlerts(ctx context.Context, deviceIDs []string, day time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT e.employee_id)
		FROM employees e
		JOIN mask_records m ON m.person_uid = e.uid
		WHERE m.mask_value = $1 AND m.device_id = ANY($2)
		  AND m.timestamp::date = $3::date`
	return r.queryCount(ctx, query, domain.NoMaskValue, pq.Array(deviceIDs), day)
}

// CountVisitorMaskAlerts filters by the no-mask value like the employee
// branch does; visitors are keyed by mobile.
func (r *PostgresRecordsRepo) CountVisitorMaskAlerts(ctx context.Context, deviceIDs []string, day time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT m.mobile)
		FROM mask_records m
		WHERE m.person_uid = $1 AND m.mask_value = $2
		  AND m.device_id = ANY($3) AND m.timestamp::date = $4::date
		  AND COALESCE(m.mobile, '') <> ''`
	return r.queryCount(ctx, query, domain.VisitorUID, domain.NoMaskValue, pq.Array(deviceIDs), day)
}

func (r *PostgresRecordsRepo) queryCount(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to query count: %w", err)
	}
	return n, nil
}
