// Package options reduces query results into label/value option lists
// used to populate selection lists during guided parameter collection.
package options

import (
	"context"
	"fmt"

	"github.com/querypilot/nl2sql/internal/errors"
	"github.com/querypilot/nl2sql/internal/metrics"
)

// DefaultMaxRows caps the result set handed back by the execution
// collaborator.
const DefaultMaxRows = 1000

// Item is a single label/value pair
type Item struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// QueryResult is the row set produced by the external execution
// collaborator.
type QueryResult struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// Executor is the external SQL-execution collaborator. It only ever
// receives statements that already passed read-only validation.
type Executor interface {
	Execute(ctx context.Context, systemID, sqlText string, maxRows int) (*QueryResult, error)
}

// Mapper executes a generated statement and reduces the row set into
// option items.
type Mapper struct {
	executor Executor
	maxRows  int
}

// NewMapper creates a new result-to-option mapper
func NewMapper(executor Executor, maxRows int) *Mapper {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	return &Mapper{executor: executor, maxRows: maxRows}
}

// Execute runs the statement and maps each row to an option item. Row
// order is preserved exactly as returned; no sorting or deduplication.
// A missing or null column value becomes the empty string so every item
// is safely renderable.
func (m *Mapper) Execute(
	ctx context.Context,
	systemID, sqlText, labelColumn, valueColumn string,
) ([]Item, error) {
	result, err := m.executor.Execute(ctx, systemID, sqlText, m.maxRows)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeExecution,
			"failed to execute statement for system %s", systemID)
	}

	metrics.IncrementStatementExecuted()

	items := make([]Item, 0, len(result.Rows))
	for _, row := range result.Rows {
		items = append(items, Item{
			Label: stringValue(row[labelColumn]),
			Value: stringValue(row[valueColumn]),
		})
	}

	return items, nil
}

// stringValue renders a cell value for display
func stringValue(v interface{}) string {
	if v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}
