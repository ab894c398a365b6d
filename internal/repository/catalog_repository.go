package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// CatalogRepository stores the discovered list of known fund names. The
// catalog is a read-mostly record, independent of per-fund series storage,
// and is replaced wholesale on each save.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new CatalogRepository with the provided database connection.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListFunds returns the catalog in stored order. An empty catalog yields an
// empty slice, not an error.
func (r *CatalogRepository) ListFunds() ([]string, error) {
	rows, err := r.db.Query(`SELECT name FROM fund_catalog ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund catalog: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund catalog: %w", err)
	}

	return names, nil
}

// SaveFunds replaces the stored catalog with the given ordered names in a
// single transaction.
func (r *CatalogRepository) SaveFunds(ctx context.Context, names []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin catalog transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM fund_catalog`); err != nil {
		return fmt.Errorf("failed to clear fund catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fund_catalog (position, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	for i, name := range names {
		if _, err := stmt.ExecContext(ctx, i, name); err != nil {
			return fmt.Errorf("failed to insert catalog entry %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}

	return nil
}
