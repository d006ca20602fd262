package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Column names with special handling during ingestion and sampling.
const (
	FieldTime   = "time"
	FieldWeight = "weight"
	FieldHeight = "height"
	FieldBMI    = "bmi"
)

// Record is one normalized measurement row: CSV header names mapped to their
// coerced values. Keys keep their insertion (header) order so that encoding a
// record is reproducible; lookups are by name only.
//
// Values are string for pass-through columns, float64 for numeric columns
// (NaN when the source text was not a number) and nil for fields missing
// from a short row. Records decoded from JSON may hold any JSON value.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty record with room for n fields.
func NewRecord(n int) Record {
	return Record{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set stores value under key. An existing key keeps its position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in record order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.keys) }

// Time returns the time field when it is a string.
func (r Record) Time() (string, bool) {
	s, ok := r.values[FieldTime].(string)
	return s, ok
}

// Weight returns the weight field as a number, NaN when absent or non-numeric.
func (r Record) Weight() float64 {
	return r.Number(FieldWeight)
}

// Number coerces the named field to a float64. Numeric strings (which appear
// when a header carried a stray carriage return and skipped coercion) are
// parsed the same way ingestion parses numeric columns. Anything else is NaN.
func (r Record) Number(key string) float64 {
	switch v := r.values[key].(type) {
	case float64:
		return v
	case json.Number:
		return ParseNumber(v.String())
	case string:
		return ParseNumber(v)
	default:
		return math.NaN()
	}
}

// MarshalJSON encodes the record as a JSON object in field order. NaN and
// infinite floats have no JSON form and are written as null.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(&buf, k); err != nil {
			return nil, fmt.Errorf("encode key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := encodeValue(&buf, jsonSafe(r.values[k])); err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the order its keys appear in.
// A repeated key overwrites the earlier value in place.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("decode record: expected JSON object")
	}

	*r = NewRecord(8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode record key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode record: unexpected key token %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode record field %q: %w", key, err)
		}
		r.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder.Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// jsonSafe replaces values encoding/json refuses with their JSON stand-ins.
func jsonSafe(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = jsonSafe(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = jsonSafe(val)
		}
		return out
	}
	return v
}
