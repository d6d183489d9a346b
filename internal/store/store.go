// Package store runs regenerated Koron queries against a SQLite database.
//
// The store is strictly read-only: the validated queries are SELECTs by
// construction, and the query_only pragma enforces it at the connection
// level regardless.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a read-only handle to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens an existing SQLite database at the given path.
//
// The connection is configured with:
//   - query_only mode, rejecting any write statement
//   - 5-second busy timeout for lock contention with concurrent writers
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps the pragmas applied below in effect for
	// every query.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Row is one record fetched by a data-extraction query: the aggregated
// column's value, and the filtered column's raw value when the query
// projects one. Filter keeps the driver's native type (int64, float64,
// []byte or nil for NULL) so the caller can apply comparison semantics.
type Row struct {
	Value  sql.NullFloat64
	Filter any
}

// QueryRows runs a data-extraction query and returns every row. The first
// projected column is the aggregated value; a second column, when present,
// carries the filtered column. SQLite coerces numeric text, so affinity
// mismatches surface as scan errors rather than silent zeros.
func (s *Store) QueryRows(ctx context.Context, query string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []Row
	for rows.Next() {
		var row Row
		dest := make([]any, len(cols))
		dest[0] = &row.Value
		for i := 1; i < len(dest); i++ {
			dest[i] = &row.Filter
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return result, nil
}

// QueryText runs a data-aggregation query and returns its single text
// result. A NULL result (e.g. an aggregate over zero rows) comes back as
// the empty string with ok=false.
func (s *Store) QueryText(ctx context.Context, query string) (string, bool, error) {
	var result sql.NullString
	if err := s.db.QueryRowContext(ctx, query).Scan(&result); err != nil {
		return "", false, fmt.Errorf("failed to execute query: %w", err)
	}
	if !result.Valid {
		return "", false, nil
	}
	return result.String, true, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA query_only = ON",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
