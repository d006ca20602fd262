// Package jsonfile reads and writes the pipeline's intermediate JSON files.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/body-trend-etl/internal/domain"
)

// ErrNotArray is returned when a records file does not hold a JSON array.
var ErrNotArray = errors.New("expected a JSON array of objects")

// Encode renders v as 2-space indented JSON without HTML escaping and without
// a trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteRecords encodes records and replaces path atomically, creating the
// parent directory if needed. A nil slice is written as [].
func WriteRecords(path string, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	data, err := Encode(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFile(path, data)
}

// ReadRecords decodes a JSON array of objects, keeping each object's key order.
func ReadRecords(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// DecodeRecords parses a JSON array of objects.
func DecodeRecords(data []byte) ([]domain.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var records []domain.Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

// DecodeValue parses arbitrary JSON. Arrays of objects and single objects
// decode to records so their key order survives a rewrite; anything else
// decodes to the generic encoding/json types.
func DecodeValue(data []byte) (any, error) {
	if records, err := DecodeRecords(data); err == nil {
		return records, nil
	}
	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err == nil {
		return rec, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// WriteFile writes data to a temporary sibling and renames it over path, so
// readers never observe a partially written file.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
