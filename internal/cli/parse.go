package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// parseEmbedding reads "0.1,0.2,0.3", optionally wrapped in brackets.
func parseEmbedding(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty embedding")
	}
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("embedding value %d: %w", i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// readEmbeddingFile reads a JSON array of numbers.
func readEmbeddingFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []float32
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func embeddingArg(inline, file string) ([]float32, error) {
	switch {
	case inline != "" && file != "":
		return nil, fmt.Errorf("use either --embedding or --embedding-file")
	case file != "":
		return readEmbeddingFile(file)
	case inline != "":
		return parseEmbedding(inline)
	default:
		return nil, fmt.Errorf("an embedding is required (--embedding or --embedding-file)")
	}
}

// parseFields turns key=value pairs into metadata. Values that parse as JSON
// keep their type (12.5, true, null); anything else is a string.
func parseFields(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("field %q is not key=value", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			fields[key] = decoded
			continue
		}
		fields[key] = value
	}
	return fields, nil
}

// formatMetadata renders a record as sorted key=value pairs.
func formatMetadata(meta map[string]any) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, meta[k])
	}
	return strings.Join(parts, " ")
}
