package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/marcboeker/go-duckdb" // DuckDB driver

	"github.com/querypilot/nl2sql/internal/options"
)

// SQLExecutor implements the SQL-execution collaborator contract over
// database/sql. Connection pools are opened lazily per system and
// reused across requests.
type SQLExecutor struct {
	provider Provider
	mu       sync.Mutex
	pools    map[string]*sql.DB
}

// NewSQLExecutor creates an executor backed by the given provider
func NewSQLExecutor(provider Provider) *SQLExecutor {
	return &SQLExecutor{
		provider: provider,
		pools:    make(map[string]*sql.DB),
	}
}

// Execute runs an already-validated read-only statement and returns at
// most maxRows rows.
func (e *SQLExecutor) Execute(
	ctx context.Context,
	systemID, sqlText string,
	maxRows int,
) (*options.QueryResult, error) {
	if maxRows <= 0 {
		maxRows = options.DefaultMaxRows
	}

	db, err := e.pool(ctx, systemID)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := &options.QueryResult{Columns: columns}

	for rows.Next() {
		if len(result.Rows) >= maxRows {
			break
		}

		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}

		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return result, nil
}

// Close releases all connection pools
func (e *SQLExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error

	for systemID, db := range e.pools {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}

		delete(e.pools, systemID)
	}

	return firstErr
}

// pool returns the connection pool for a system, opening it on first use
func (e *SQLExecutor) pool(ctx context.Context, systemID string) (*sql.DB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if db, ok := e.pools[systemID]; ok {
		return db, nil
	}

	definition, err := e.provider.GetBySystemID(ctx, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve datasource: %w", err)
	}

	db, err := sql.Open(definition.Driver, definition.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open datasource: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	e.pools[systemID] = db

	return db, nil
}

// normalizeValue converts driver byte slices to strings so rows are
// comparable and renderable.
func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}

	return v
}
