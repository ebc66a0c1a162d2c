package asset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes records as a 2-space indented JSON array, creating
// parent directories as needed. An empty slice is written as [].
func WriteFile(path string, records []Record) error {
	data, err := Marshal(records)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("asset: create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("asset: write %s: %w", path, err)
	}
	return nil
}

// Marshal encodes records the way WriteFile stores them.
func Marshal(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("asset: encode records: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadFile loads a JSON array of records.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asset: read %s: %w", path, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("asset: %s is not a JSON array of records: %w", path, err)
	}
	return records, nil
}

// MarshalIndented encodes a single record with 2-space indentation.
func MarshalIndented(r Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("asset: encode %s: %w", r.Name, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
