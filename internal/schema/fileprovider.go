package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// fileDocument is the on-disk layout: one entry per system identifier
type fileDocument map[string]struct {
	Tables      []Table  `json:"tables"`
	ForeignKeys []string `json:"foreign_keys,omitempty"`
}

// FileProvider serves schema metadata from a JSON document. The file is
// re-read on every lookup so edits take effect without a restart.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider reading from the given path
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// GetTableList returns the raw table metadata for the system identifier
func (p *FileProvider) GetTableList(_ context.Context, systemID string) ([]Table, error) {
	doc, err := p.load()
	if err != nil {
		return nil, err
	}

	entry, ok := doc[systemID]
	if !ok {
		return nil, fmt.Errorf("system %s not present in schema file %s", systemID, p.path)
	}

	return entry.Tables, nil
}

// GetForeignKeys returns the foreign key descriptions for the system
// identifier.
func (p *FileProvider) GetForeignKeys(_ context.Context, systemID string) ([]string, error) {
	doc, err := p.load()
	if err != nil {
		return nil, err
	}

	entry, ok := doc[systemID]
	if !ok {
		return nil, fmt.Errorf("system %s not present in schema file %s", systemID, p.path)
	}

	return entry.ForeignKeys, nil
}

func (p *FileProvider) load() (fileDocument, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", p.path, err)
	}

	return doc, nil
}
