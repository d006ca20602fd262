package domain

import (
	"sort"
	"strings"
)

// Sanitize returns a copy of v with every carriage return removed from
// object keys and string values, recursively. Records and maps are rebuilt,
// so keys that only differ by a carriage return collapse into one; the value
// written last wins (record order for Record, sorted key order for maps).
// Numbers, booleans and nil pass through unchanged. Sanitize is idempotent.
func Sanitize(v any) any {
	switch x := v.(type) {
	case Record:
		return sanitizeRecord(x)
	case *Record:
		if x == nil {
			return x
		}
		r := sanitizeRecord(*x)
		return &r
	case []Record:
		return SanitizeRecords(x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(x))
		for _, k := range keys {
			out[stripCR(k)] = Sanitize(x[k])
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = Sanitize(x[i])
		}
		return out
	case string:
		return stripCR(x)
	default:
		return v
	}
}

// SanitizeRecords applies Sanitize to every record, preserving order.
func SanitizeRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i := range records {
		out[i] = sanitizeRecord(records[i])
	}
	return out
}

// ContainsCR reports whether any key or string value inside v holds a
// carriage return.
func ContainsCR(v any) bool {
	switch x := v.(type) {
	case Record:
		for _, k := range x.keys {
			if strings.ContainsRune(k, '\r') || ContainsCR(x.values[k]) {
				return true
			}
		}
	case *Record:
		return x != nil && ContainsCR(*x)
	case []Record:
		for i := range x {
			if ContainsCR(x[i]) {
				return true
			}
		}
	case map[string]any:
		for k, val := range x {
			if strings.ContainsRune(k, '\r') || ContainsCR(val) {
				return true
			}
		}
	case []any:
		for _, val := range x {
			if ContainsCR(val) {
				return true
			}
		}
	case string:
		return strings.ContainsRune(x, '\r')
	}
	return false
}

func sanitizeRecord(r Record) Record {
	out := NewRecord(len(r.keys))
	for _, k := range r.keys {
		out.Set(stripCR(k), Sanitize(r.values[k]))
	}
	return out
}

func stripCR(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	return strings.ReplaceAll(s, "\r", "")
}
