// Package datasource resolves tenant datasource definitions and
// executes validated statements against them.
package datasource

import (
	"context"
	"fmt"

	"github.com/querypilot/nl2sql/internal/config"
)

// Definition describes one tenant datasource
type Definition struct {
	SystemID string
	Driver   string
	DSN      string
	Dialect  string
}

// Provider resolves the datasource definition for a system identifier.
// Absence is non-fatal for dialect resolution; the engine falls back to
// a default dialect.
type Provider interface {
	GetBySystemID(ctx context.Context, systemID string) (*Definition, error)
}

// StaticProvider serves definitions loaded once from configuration
type StaticProvider struct {
	definitions map[string]Definition
}

// NewStaticProvider builds a provider from the configured datasource map
func NewStaticProvider(configs map[string]config.DatasourceConfig) *StaticProvider {
	definitions := make(map[string]Definition, len(configs))

	for systemID, cfg := range configs {
		definitions[systemID] = Definition{
			SystemID: systemID,
			Driver:   cfg.Driver,
			DSN:      cfg.DSN,
			Dialect:  cfg.Dialect,
		}
	}

	return &StaticProvider{definitions: definitions}
}

// GetBySystemID returns the definition for the system identifier
func (p *StaticProvider) GetBySystemID(_ context.Context, systemID string) (*Definition, error) {
	definition, ok := p.definitions[systemID]
	if !ok {
		return nil, fmt.Errorf("no datasource configured for system %s", systemID)
	}

	return &definition, nil
}
