package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"

	"go.uber.org/zap"
)

// PostgresTopologyRepo resolves the site topology with plain SQL joins.
type PostgresTopologyRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresTopologyRepo(db *sql.DB, logger *zap.Logger) *PostgresTopologyRepo {
	return &PostgresTopologyRepo{db: db, logger: logger}
}

func (r *PostgresTopologyRepo) ListSites(ctx context.Context) ([]domain.Site, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT site_id, site_name, site_description FROM sites ORDER BY site_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		var s domain.Site
		if err := rows.Scan(&s.SiteID, &s.SiteName, &s.SiteDescription); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

func (r *PostgresTopologyRepo) SiteDevices(ctx context.Context, siteID int) ([]domain.SiteDeviceRow, error) {
	query := `
		SELECT b.building_id, b.building_name,
		       f.floor_id, f.floor_number, f.floor_details,
		       g.gate_id, g.gate_number,
		       d.device_id, d.device_details
		FROM buildings b
		JOIN floors f ON f.building_id = b.building_id
		JOIN gates g ON g.floor_id = f.floor_id
		JOIN devices d ON d.gate_id = g.gate_id
		WHERE b.site_id = $1
		ORDER BY b.building_id, f.floor_id, g.gate_id, d.device_id`

	rows, err := r.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query site devices: %w", err)
	}
	defer rows.Close()

	var result []domain.SiteDeviceRow
	for rows.Next() {
		var row domain.SiteDeviceRow
		if err := rows.Scan(&row.BuildingID, &row.BuildingName,
			&row.FloorID, &row.FloorNumber, &row.FloorDetails,
			&row.GateID, &row.GateNumber,
			&row.DeviceID, &row.DeviceDetails); err != nil {
			return nil, fmt.Errorf("failed to scan site device row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *PostgresTopologyRepo) DeviceIDsForSite(ctx context.Context, siteID int) ([]string, error) {
	query := `
		SELECT DISTINCT d.device_id
		FROM devices d
		JOIN gates g ON g.gate_id = d.gate_id
		JOIN floors f ON f.floor_id = g.floor_id
		JOIN buildings b ON b.building_id = f.building_id
		WHERE b.site_id = $1`
	return r.queryDeviceIDs(ctx, query, siteID)
}

func (r *PostgresTopologyRepo) DeviceIDsForBuilding(ctx context.Context, buildingID int) ([]string, error) {
	query := `
		SELECT DISTINCT d.device_id
		FROM devices d
		JOIN gates g ON g.gate_id = d.gate_id
		JOIN floors f ON f.floor_id = g.floor_id
		WHERE f.building_id = $1`
	return r.queryDeviceIDs(ctx, query, buildingID)
}

func (r *PostgresTopologyRepo) DeviceIDsForFloor(ctx context.Context, floorID int) ([]string, error) {
	query := `
		SELECT DISTINCT d.device_id
		FROM devices d
		JOIN gates g ON g.gate_id = d.gate_id
		WHERE g.floor_id = $1`
	return r.queryDeviceIDs(ctx, query, floorID)
}

func (r *PostgresTopologyRepo) DeviceIDsForGate(ctx context.Context, gateID int) ([]string, error) {
	return r.queryDeviceIDs(ctx,
		`SELECT DISTINCT device_id FROM devices WHERE gate_id = $1`, gateID)
}

func (r *PostgresTopologyRepo) GateDeviceIDs(ctx context.Context, deviceID string) ([]string, error) {
	query := `
		SELECT DISTINCT d2.device_id
		FROM devices d1
		JOIN devices d2 ON d2.gate_id = d1.gate_id
		WHERE d1.device_id = $1`
	return r.queryDeviceIDs(ctx, query, deviceID)
}

func (r *PostgresTopologyRepo) DeviceLocation(ctx context.Context, deviceID string) (*domain.DeviceLocation, error) {
	query := `
		SELECT d.device_id, g.gate_id, g.gate_number, b.building_name, b.site_id
		FROM devices d
		JOIN gates g ON g.gate_id = d.gate_id
		JOIN floors f ON f.floor_id = g.floor_id
		JOIN buildings b ON b.building_id = f.building_id
		WHERE d.device_id = $1`

	var loc domain.DeviceLocation
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&loc.DeviceID, &loc.GateID, &loc.GateNumber, &loc.BuildingName, &loc.SiteID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device location: %w", err)
	}
	return &loc, nil
}

func (r *PostgresTopologyRepo) ClearUpdatedThresholdFlags(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE devices SET updated_threshold = FALSE`); err != nil {
		return fmt.Errorf("failed to clear device threshold flags: %w", err)
	}
	return nil
}

func (r *PostgresTopologyRepo) queryDeviceIDs(ctx context.Context, query string, arg any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query device ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan device id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
