package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/report-portal/internal/domain"
)

// ReportFilter narrows a listing. A nil District lists every district.
type ReportFilter struct {
	District *string
}

// AttachFunc runs after a report row is reserved and before it becomes visible.
// Returning an error discards the reservation.
type AttachFunc func(ctx context.Context, report *domain.Report) error

// ReportRepository is the authoritative registry of submitted reports.
type ReportRepository interface {
	// Create inserts the report and runs attach inside the same unit of work.
	// A taken (district, year, quarter) slot yields ErrPeriodTaken.
	Create(ctx context.Context, report *domain.Report, attach AttachFunc) error
	Exists(ctx context.Context, key domain.PeriodKey) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Report, error)
	// List returns reports newest first, ties broken by id descending.
	List(ctx context.Context, filter ReportFilter) ([]domain.Report, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a Postgres-backed registry.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report, attach AttachFunc) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const query = `
        INSERT INTO reports (district, year, quarter, title, description, filename, submitted_at, submitted_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, submitted_at`
	err = tx.QueryRow(ctx, query,
		report.District,
		report.Year,
		report.Quarter,
		report.Title,
		report.Description,
		report.Filename,
		report.SubmittedAt,
		report.SubmittedBy,
	).Scan(&report.ID, &report.SubmittedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPeriodTaken
		}
		return err
	}

	if attach != nil {
		if err = attach(ctx, report); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *reportRepository) Exists(ctx context.Context, key domain.PeriodKey) (bool, error) {
	const query = `
        SELECT EXISTS (SELECT 1 FROM reports WHERE district=$1 AND year=$2 AND quarter=$3)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, key.District, key.Year, key.Quarter).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	const query = `
        SELECT id, district, year, quarter, title, description, filename, submitted_at, submitted_by
        FROM reports WHERE id=$1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]domain.Report, error) {
	const query = `
        SELECT id, district, year, quarter, title, description, filename, submitted_at, submitted_by
        FROM reports
        WHERE ($1::text IS NULL OR district = $1)
        ORDER BY submitted_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, filter.District)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *report)
	}
	return result, rows.Err()
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var report domain.Report
	if err := row.Scan(
		&report.ID,
		&report.District,
		&report.Year,
		&report.Quarter,
		&report.Title,
		&report.Description,
		&report.Filename,
		&report.SubmittedAt,
		&report.SubmittedBy,
	); err != nil {
		return nil, err
	}
	return &report, nil
}
