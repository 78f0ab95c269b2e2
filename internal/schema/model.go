package schema

import (
	"fmt"
	"strings"
)

// Model represents one tenant's database shape for a single request. It
// is built fresh per request and never persisted or cached by the
// engine. TableCount must equal len(Tables) at all times; Retain keeps
// the two in sync when the table list shrinks.
type Model struct {
	Name        string   `json:"name"`
	Tables      []Table  `json:"tables"`
	TableCount  int      `json:"table_count"`
	ForeignKeys []string `json:"foreign_keys,omitempty"`
}

// Table describes a single table of the tenant schema
type Table struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []Column `json:"columns"`
	PrimaryKeys []string `json:"primary_keys,omitempty"`
}

// Column describes a single column of a table
type Column struct {
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	Description  string            `json:"description,omitempty"`
	SampleValues []string          `json:"sample_values,omitempty"`
	ValueMapping map[string]string `json:"value_mapping,omitempty"`
}

// NewModel builds a Model and establishes the TableCount invariant
func NewModel(name string, tables []Table, foreignKeys []string) (*Model, error) {
	m := &Model{
		Name:        name,
		Tables:      tables,
		TableCount:  len(tables),
		ForeignKeys: foreignKeys,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks the structural invariants of the model
func (m *Model) Validate() error {
	if m.TableCount != len(m.Tables) {
		return fmt.Errorf(
			"table count %d does not match table list length %d",
			m.TableCount, len(m.Tables),
		)
	}

	for _, table := range m.Tables {
		columnNames := make(map[string]bool, len(table.Columns))
		for _, column := range table.Columns {
			columnNames[column.Name] = true
		}

		for _, pk := range table.PrimaryKeys {
			if !columnNames[pk] {
				return fmt.Errorf(
					"primary key %s of table %s is not a column",
					pk, table.Name,
				)
			}
		}
	}

	return nil
}

// TableNames returns the table names in declared order
func (m *Model) TableNames() []string {
	names := make([]string, 0, len(m.Tables))
	for _, table := range m.Tables {
		names = append(names, table.Name)
	}

	return names
}

// Retain keeps only tables whose lower-cased name appears in the given
// set and updates TableCount in the same step so the invariant holds.
func (m *Model) Retain(lowerNames map[string]bool) {
	kept := make([]Table, 0, len(m.Tables))

	for _, table := range m.Tables {
		if lowerNames[strings.ToLower(table.Name)] {
			kept = append(kept, table)
		}
	}

	m.Tables = kept
	m.TableCount = len(kept)
}
