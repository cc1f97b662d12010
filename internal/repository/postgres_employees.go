package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresEmployeesRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresEmployeesRepo(db *sql.DB, logger *zap.Logger) *PostgresEmployeesRepo {
	return &PostgresEmployeesRepo{db: db, logger: logger}
}

func (r *PostgresEmployeesRepo) ByUID(ctx context.Context, uid string) (*EmployeeRef, error) {
	query := `
		SELECT employee_id, employee_name, COALESCE(image_base64, '')
		FROM employees
		WHERE uid = $1`

	var ref EmployeeRef
	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&ref.EmployeeID, &ref.EmployeeName, &ref.ImageBase64)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query employee by uid: %w", err)
	}
	return &ref, nil
}

func (r *PostgresEmployeesRepo) ByUIDs(ctx context.Context, uids []string) (map[string]EmployeeRef, error) {
	if len(uids) == 0 {
		return map[string]EmployeeRef{}, nil
	}

	query := `
		SELECT uid, employee_id, employee_name, COALESCE(image_base64, '')
		FROM employees
		WHERE uid = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uids))
	if err != nil {
		return nil, fmt.Errorf("failed to query employees by uids: %w", err)
	}
	defer rows.Close()

	result := make(map[string]EmployeeRef, len(uids))
	for rows.Next() {
		var uid string
		var ref EmployeeRef
		if err := rows.Scan(&uid, &ref.EmployeeID, &ref.EmployeeName, &ref.ImageBase64); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		result[uid] = ref
	}
	return result, rows.Err()
}
