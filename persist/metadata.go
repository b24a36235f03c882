package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// NormalizeRecord returns rec in the exact form Load produces for it: a deep
// copy holding only JSON types, with integral numbers as int64 and every
// other number as float64.
func NormalizeRecord(rec map[string]any) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("persist: encode metadata: %w", err)
	}
	var out map[string]any
	if err := decodeJSON(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// CloneRecord deep-copies a normalized record.
func CloneRecord(rec map[string]any) map[string]any {
	if rec == nil {
		return nil
	}
	return cloneValue(rec).(map[string]any)
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func decodeRecords(data []byte) ([]map[string]any, error) {
	var records []map[string]any
	if err := decodeJSON(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// decodeJSON decodes exactly one JSON value into v and converts numbers.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("persist: decode metadata: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("persist: decode metadata: trailing data")
	}
	switch x := v.(type) {
	case *map[string]any:
		convertNumbers(*x)
	case *[]map[string]any:
		for _, rec := range *x {
			convertNumbers(rec)
		}
	}
	return nil
}

func convertNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = convertNumbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = convertNumbers(e)
		}
		return x
	default:
		return v
	}
}
