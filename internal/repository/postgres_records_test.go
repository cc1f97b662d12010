package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRecordsRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresRecordsRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresRecordsRepo(db, zap.NewNop())
}

var recordTS = time.Date(2020, 7, 28, 13, 4, 22, 0, time.UTC)

func TestTemperatureAt_Found(t *testing.T) {
	db, mock, repo := setupRecordsRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"temperature_record_id", "person_uid", "person_name", "device_id",
		"temperature", "timestamp", "image_path", "image_base64", "ic", "mobile",
	}).AddRow(1, "uid-1", "Abhishek", "dev-1", 38.2, recordTS, "/img/a.jpg", "", "", "")

	// The repo matches on the second-truncated timestamp.
	mock.ExpectQuery(`FROM temperature_records`).
		WithArgs(recordTS).
		WillReturnRows(rows)

	rec, err := repo.TemperatureAt(context.Background(), recordTS.Add(420*time.Millisecond))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "uid-1", rec.PersonUID)
	assert.Equal(t, 38.2, rec.Temperature)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemperatureAt_NoMatchIsNotAnError(t *testing.T) {
	db, mock, repo := setupRecordsRepo(t)
	defer db.Close()

	mock.ExpectQuery(`FROM temperature_records`).
		WithArgs(recordTS).
		WillReturnError(sql.ErrNoRows)

	rec, err := repo.TemperatureAt(context.Background(), recordTS)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMaskAt_Found(t *testing.T) {
	db, mock, repo := setupRecordsRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"mask_record_id", "person_uid", "person_name", "device_id",
		"mask_value", "timestamp", "image_path", "image_base64", "ic", "mobile",
	}).AddRow(5, domain.VisitorUID, "Visitor", "dev-2", domain.NoMaskValue, recordTS, "", "", "", "91234567")

	mock.ExpectQuery(`FROM mask_records`).
		WithArgs(recordTS).
		WillReturnRows(rows)

	rec, err := repo.MaskAt(context.Background(), recordTS)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.NoMaskValue, rec.MaskValue)
	assert.True(t, rec.Subject().IsVisitor())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func observationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"person_uid", "person_name", "mobile", "device_id",
		"additional_details", "temperature", "timestamp", "image_path", "image_base64",
	})
}

func TestTemperatureBySubject_EmployeeKeyedByUID(t *testing.T) {
	db, mock, repo := setupRecordsRepo(t)
	defer db.Close()

	since := recordTS.Add(-24 * time.Hour)
	rows := observationRows().
		AddRow("uid-1", "Abhishek", "", "dev-1", "Floor 3 Reception Gate", 36.7, recordTS, "", "")

	mock.ExpectQuery(`t.person_uid = \$2`).
		WithArgs(since, "uid-1").
		WillReturnRows(rows)

	obs, err := repo.TemperatureBySubject(context.Background(), domain.EmployeeSubject("uid-1"), since)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "Floor 3 Reception Gate", obs[0].Location)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemperatureBySubject_VisitorKeyedByMobile(t *testing.T) {
	db, mock, repo := setupRecordsRepo(t)
	defer db.Close()

	since := recordTS.Add(-24 * time.Hour)
	rows := observationRows().
		AddRow(domain.VisitorUID, "Visitor", "91234567", "dev-1", "Lobby Gate", 37.9, recordTS, "", "")

	mock.ExpectQuery(`t.mobile = \$2`).
		WithArgs(since, "91234567").
		WillReturnRows(rows)

	obs, err := repo.TemperatureBySubject(context.Background(), domain.VisitorSubject("91234567"), since)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "91234567", obs[0].Mobile)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemperatureInWindow(t *testing.T) {
	db, mock, repo := setupRecordsRepo(t)
	defer db.Close()

	start := recordTS.Add(-time.Hour)
	end := recordTS.Add(time.Hour)
	rows := observationRows().
		AddRow("uid-1", "Abhishek", "", "dev-1", "Lobby Gate", 36.7, recordTS, "", "").
		AddRow(domain.VisitorUID, "Visitor", "555", "dev-2", "Lobby Gate", 37.2, recordTS.Add(time.Minute), "", "")

	mock.ExpectQuery(`t.device_id = ANY`).
		WithArgs(start, end, pq.Array([]string{"dev-1", "dev-2"})).
		WillReturnRows(rows)

	obs, err := repo.TemperatureInWindow(context.Background(), []string{"dev-1", "dev-2"}, start, end)
	require.NoError(t, err)
	assert.Len(t, obs, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountEmployeesPresent(t *testing.T) {
	db, mock, repo := setupRecordsRepo(t)
	defer db.Close()

	day := time.Date(2020, 7, 28, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM`).
		WithArgs(pq.Array([]string{"dev-1"}), day).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountEmployeesPresent(context.Background(), []string{"dev-1"}, day)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountVisitorMaskAlerts_FiltersByNoMaskValue(t *testing.T) {
	db, mock, repo := setupRecordsRepo(t)
	defer db.Close()

	day := time.Date(2020, 7, 28, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT m.mobile\)`).
		WithArgs(domain.VisitorUID, domain.NoMaskValue, pq.Array([]string{"dev-1"}), day).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountVisitorMaskAlerts(context.Background(), []string{"dev-1"}, day)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountEmployeeTemperatureAlerts(t *testing.T) {
	db, mock, repo := setupRecordsRepo(t)
	defer db.Close()

	day := time.Date(2020, 7, 28, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT e.employee_id\)`).
		WithArgs(37.5, pq.Array([]string{"dev-1"}), day).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountEmployeeTemperatureAlerts(context.Background(), []string{"dev-1"}, day, 37.5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
