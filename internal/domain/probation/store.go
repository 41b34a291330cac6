package probation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hospitalhr/internal/platform/db"
)

const uniqueViolationCode = "23505"

const recordColumns = `tenant_id, employee_ref, date_of_joining, probation_months, probation_end_date, extension_end_date, status, version, created_at, updated_at`

type Store struct {
	DB db.Queryer
}

func NewStore(q db.Queryer) *Store {
	return &Store{DB: q}
}

func (s *Store) Create(ctx context.Context, r Record) (Record, error) {
	row := db.From(ctx, s.DB).QueryRow(ctx, `
    INSERT INTO probation_records (tenant_id, employee_ref, date_of_joining, probation_months, probation_end_date, extension_end_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING `+recordColumns,
		r.TenantID, r.EmployeeRef, r.DateOfJoining, r.ProbationMonths, r.ProbationEndDate, nullableTime(r.ExtensionEndDate), string(r.Status))
	created, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Record{}, ErrAlreadyExists
		}
		return Record{}, err
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, tenantID, employeeRef string) (Record, error) {
	row := db.From(ctx, s.DB).QueryRow(ctx, `SELECT `+recordColumns+` FROM probation_records WHERE tenant_id = $1 AND employee_ref = $2`, tenantID, employeeRef)
	return scanRecord(row)
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM probation_records`
	var (
		args    []any
		clauses []string
	)
	if filter.TenantID != "" {
		args = append(args, filter.TenantID)
		clauses = append(clauses, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			args = append(args, string(status))
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY tenant_id, employee_ref"

	rows, err := db.From(ctx, s.DB).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Replace(ctx context.Context, r Record, expectedVersion int) (Record, error) {
	q := db.From(ctx, s.DB)
	row := q.QueryRow(ctx, `
    UPDATE probation_records
    SET extension_end_date = $1, status = $2, version = version + 1, updated_at = now()
    WHERE tenant_id = $3 AND employee_ref = $4 AND version = $5
    RETURNING `+recordColumns,
		nullableTime(r.ExtensionEndDate), string(r.Status), r.TenantID, r.EmployeeRef, expectedVersion)
	updated, err := scanRecord(row)
	if errors.Is(err, ErrNotFound) {
		if _, getErr := s.Get(ctx, r.TenantID, r.EmployeeRef); getErr != nil {
			return Record{}, getErr
		}
		return Record{}, ErrConflict
	}
	return updated, err
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		r         Record
		status    string
		extension sql.NullTime
	)
	err := row.Scan(&r.TenantID, &r.EmployeeRef, &r.DateOfJoining, &r.ProbationMonths, &r.ProbationEndDate, &extension, &status, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	r.Status = Status(status)
	if extension.Valid {
		t := extension.Time.UTC()
		r.ExtensionEndDate = &t
	}
	r.DateOfJoining = r.DateOfJoining.UTC()
	r.ProbationEndDate = r.ProbationEndDate.UTC()
	return r, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
