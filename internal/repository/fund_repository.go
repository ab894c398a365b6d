package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/dateutil"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
)

// FundRepository provides data access methods for the fund and fund_price
// tables. It is the persistence half of the fund cache: a per-fund daily
// price series plus a last-updated timestamp.
type FundRepository struct {
	db *sql.DB
}

// NewFundRepository creates a new FundRepository with the provided database connection.
func NewFundRepository(db *sql.DB) *FundRepository {
	return &FundRepository{db: db}
}

// GetSeries retrieves the cached price series for a fund in ascending date
// order, restricted to [start, end] when those bounds are non-zero. A fund
// with no cached data yields an empty series and a zero last-updated time;
// that is not an error.
func (r *FundRepository) GetSeries(fundName string, start, end time.Time) ([]model.PricePoint, time.Time, error) {
	var lastUpdated time.Time
	var lastUpdatedStr string

	err := r.db.QueryRow(`SELECT last_updated FROM fund WHERE name = ?`, fundName).Scan(&lastUpdatedStr)
	switch {
	case err == sql.ErrNoRows:
		return []model.PricePoint{}, time.Time{}, nil
	case err != nil:
		return nil, time.Time{}, fmt.Errorf("failed to query fund table: %w", err)
	default:
		lastUpdated, err = ParseTime(lastUpdatedStr)
		if err != nil {
			return nil, time.Time{}, err
		}
	}

	query := `
        SELECT id, fund_name, date, price
        FROM fund_price
        WHERE fund_name = ?
    `
	args := []any{fundName}

	if !start.IsZero() {
		query += ` AND date >= ?`
		args = append(args, dateutil.FormatDate(start))
	}
	if !end.IsZero() {
		query += ` AND date <= ?`
		args = append(args, dateutil.FormatDate(end))
	}
	query += ` ORDER BY date ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query fund_price table: %w", err)
	}
	defer rows.Close()

	series := []model.PricePoint{}

	for rows.Next() {
		var dateStr string
		var p model.PricePoint

		if err := rows.Scan(&p.ID, &p.Fund, &dateStr, &p.Price); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan fund_price results: %w", err)
		}

		p.Date, err = ParseTime(dateStr)
		if err != nil || p.Date.IsZero() {
			return nil, time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}

		series = append(series, p)
	}
	if err = rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("error iterating fund_price table: %w", err)
	}

	return series, lastUpdated, nil
}

// MergeSeries unions the given points into the stored series for fundName,
// overwriting any existing values at colliding dates, and refreshes the
// fund's last-updated timestamp. The fund record is created when absent.
//
// The merge runs in a single transaction so a concurrent reader can never
// observe a half-applied state. When the storage medium is out of capacity
// the transaction rolls back, nothing changes, and the error maps to
// apperrors.ErrStorageQuota.
func (r *FundRepository) MergeSeries(ctx context.Context, fundName string, points []model.PricePoint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
        INSERT INTO fund (name, last_updated) VALUES (?, ?)
        ON CONFLICT(name) DO UPDATE SET last_updated = excluded.last_updated
    `, fundName, now)
	if err != nil {
		if isQuotaError(err) {
			return fmt.Errorf("%w: %v", apperrors.ErrStorageQuota, err)
		}
		return fmt.Errorf("failed to upsert fund record: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO fund_price (id, fund_name, date, price)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(fund_name, date) DO UPDATE SET price = excluded.price
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare price upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(),
			fundName,
			dateutil.FormatDate(p.Date),
			p.Price,
		)
		if err != nil {
			if isQuotaError(err) {
				return fmt.Errorf("%w: %v", apperrors.ErrStorageQuota, err)
			}
			return fmt.Errorf("failed to upsert price for %s: %w", dateutil.FormatDate(p.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isQuotaError(err) {
			return fmt.Errorf("%w: %v", apperrors.ErrStorageQuota, err)
		}
		return fmt.Errorf("failed to commit merge: %w", err)
	}

	return nil
}

// ListCachedFunds returns every cached fund with its point count, ordered by name.
func (r *FundRepository) ListCachedFunds() ([]model.Fund, error) {
	query := `
        SELECT f.name, f.last_updated, COUNT(fp.id)
        FROM fund f
        LEFT JOIN fund_price fp ON fp.fund_name = f.name
        GROUP BY f.name, f.last_updated
        ORDER BY f.name ASC
    `

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached funds: %w", err)
	}
	defer rows.Close()

	funds := []model.Fund{}

	for rows.Next() {
		var f model.Fund
		var lastUpdatedStr string

		if err := rows.Scan(&f.Name, &lastUpdatedStr, &f.PointCount); err != nil {
			return nil, fmt.Errorf("failed to scan cached fund: %w", err)
		}

		f.LastUpdated, err = ParseTime(lastUpdatedStr)
		if err != nil {
			return nil, err
		}

		funds = append(funds, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached funds: %w", err)
	}

	return funds, nil
}

// Clear removes one fund and its entire price series. Irreversible.
// Returns apperrors.ErrFundNotFound when nothing was cached under that name.
func (r *FundRepository) Clear(ctx context.Context, fundName string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM fund WHERE name = ?`, fundName)
	if err != nil {
		return fmt.Errorf("failed to clear fund %q: %w", fundName, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrFundNotFound
	}

	return nil
}

// ClearAll removes every cached fund record and price series. Irreversible.
func (r *FundRepository) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM fund`); err != nil {
		return fmt.Errorf("failed to clear fund cache: %w", err)
	}
	return nil
}

// UsageSummary reports an estimate of the bytes consumed by the cache and
// the count of distinct cached funds. The byte figure comes from sqlite's
// page accounting and is approximate by design.
func (r *FundRepository) UsageSummary() (model.CacheUsage, error) {
	var pageCount, pageSize int64
	if err := r.db.QueryRow(`PRAGMA page_count`).Scan(&pageCount); err != nil {
		return model.CacheUsage{}, fmt.Errorf("failed to read page count: %w", err)
	}
	if err := r.db.QueryRow(`PRAGMA page_size`).Scan(&pageSize); err != nil {
		return model.CacheUsage{}, fmt.Errorf("failed to read page size: %w", err)
	}

	var fundCount int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM fund`).Scan(&fundCount); err != nil {
		return model.CacheUsage{}, fmt.Errorf("failed to count cached funds: %w", err)
	}

	usedBytes := pageCount * pageSize
	return model.CacheUsage{
		UsedBytes:   usedBytes,
		UsedMB:      float64(usedBytes) / (1024 * 1024),
		CachedFunds: fundCount,
	}, nil
}
