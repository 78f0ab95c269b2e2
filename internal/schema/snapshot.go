package schema

import (
	"context"
	"strings"

	"github.com/querypilot/nl2sql/internal/errors"
)

// Column sample values are illustrative data for the prompt; more than
// a few adds tokens without adding signal.
const maxSampleValues = 3

// Provider is the external schema collaborator that returns raw table
// metadata for a tenant.
type Provider interface {
	GetTableList(ctx context.Context, systemID string) ([]Table, error)
	GetForeignKeys(ctx context.Context, systemID string) ([]string, error)
}

// SnapshotBuilder fetches raw table metadata for a tenant and
// normalizes it into an in-memory schema model.
type SnapshotBuilder struct {
	provider Provider
}

// NewSnapshotBuilder creates a new snapshot builder
func NewSnapshotBuilder(provider Provider) *SnapshotBuilder {
	return &SnapshotBuilder{provider: provider}
}

// BuildSchema returns a fresh schema model for the tenant. An empty
// table list or any provider error is a hard failure because no further
// stage can proceed without a schema. No retries are performed.
func (b *SnapshotBuilder) BuildSchema(ctx context.Context, systemID string) (*Model, error) {
	tables, err := b.provider.GetTableList(ctx, systemID)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeSchemaNotFound,
			"failed to fetch schema for system %s", systemID).
			WithSuggestion("check that the schema provider is reachable")
	}

	if len(tables) == 0 {
		return nil, errors.Newf(errors.ErrTypeSchemaNotFound,
			"no tables discovered for system %s", systemID).
			WithSuggestion("verify the system identifier and the schema metadata for it")
	}

	normalized := make([]Table, 0, len(tables))
	for _, table := range tables {
		normalized = append(normalized, normalizeTable(table))
	}

	// Foreign keys are optional; a lookup failure only costs prompt context.
	foreignKeys, err := b.provider.GetForeignKeys(ctx, systemID)
	if err != nil {
		foreignKeys = nil
	}

	return NewModel(systemID, normalized, foreignKeys)
}

// normalizeTable trims names, defaults descriptions, and caps sample values
func normalizeTable(table Table) Table {
	table.Name = strings.TrimSpace(table.Name)

	if strings.TrimSpace(table.Description) == "" {
		table.Description = table.Name
	}

	for i, column := range table.Columns {
		column.Name = strings.TrimSpace(column.Name)

		// Sample values for surrogate id columns are noise.
		if column.Name == "id" {
			column.SampleValues = nil
		} else if len(column.SampleValues) > maxSampleValues {
			column.SampleValues = column.SampleValues[:maxSampleValues]
		}

		table.Columns[i] = column
	}

	return table
}
