// Package catalog loads asset-type metadata and merges it into records by
// asset name.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"glbstats/internal/asset"
	"glbstats/internal/logger"
)

// Entry is the catalog view of one asset type.
type Entry struct {
	Name              string
	Path              string
	PhysicsCost       json.RawMessage // nil when the constant is absent
	Category          json.RawMessage // nil when the constant is absent
	LevelRestrictions []string
}

// Map is keyed by asset type name. It is read-only once loaded.
type Map map[string]Entry

type fileFormat struct {
	AssetTypes []assetType `json:"AssetTypes"`
}

type assetType struct {
	Type              string     `json:"type"`
	Directory         string     `json:"directory"`
	LevelRestrictions []string   `json:"levelRestrictions"`
	Constants         []constant `json:"constants"`
}

type constant struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// Load reads a catalog file.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	logger.Debug("catalog loaded", zap.String("path", path), zap.Int("entries", len(m)))
	return m, nil
}

// Parse decodes the AssetTypes document. Entries without a type name are
// skipped; a later entry with the same name replaces an earlier one.
func Parse(data []byte) (Map, error) {
	var doc fileFormat
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	m := make(Map, len(doc.AssetTypes))
	for _, at := range doc.AssetTypes {
		if at.Type == "" {
			continue
		}
		constants := make(map[string]json.RawMessage, len(at.Constants))
		for _, c := range at.Constants {
			constants[c.Name] = c.Value
		}

		e := Entry{
			Name:              at.Type,
			Path:              at.Directory,
			PhysicsCost:       nonNull(constants["physicsCost"]),
			Category:          nonNull(constants["category"]),
			LevelRestrictions: at.LevelRestrictions,
		}
		if e.LevelRestrictions == nil {
			e.LevelRestrictions = []string{}
		}
		m[at.Type] = e
	}
	return m, nil
}

func nonNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

// Lookup returns the entry for an asset name.
func (m Map) Lookup(name string) (Entry, bool) {
	e, ok := m[name]
	return e, ok
}

// Fields converts the entry into the record's catalog block.
func (e Entry) Fields() *asset.Catalog {
	return &asset.Catalog{
		Path:              e.Path,
		PhysicsCost:       e.PhysicsCost,
		Category:          e.Category,
		LevelRestrictions: e.LevelRestrictions,
	}
}

// Merge attaches the catalog block of the entry matching r.Name. Names
// without an entry, and a nil Map, leave the record untouched.
func (m Map) Merge(r *asset.Record) bool {
	e, ok := m.Lookup(r.Name)
	if !ok {
		return false
	}
	r.Catalog = e.Fields()
	return true
}
