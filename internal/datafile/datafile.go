package datafile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// extensions lists sidecar suffixes probed in order.
var extensions = []string{".json", ".yaml", ".yml"}

// Find returns the sidecar data path for a template relative path, probing
// <root>/<rel>.json, then the YAML variants.
func Find(dataRoot string, relTemplatePath string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(dataRoot, relTemplatePath+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Load reads one data file into a render context. JSON numbers are decoded
// through json.Number and normalized to int64 where they fit, so embedded
// code sees integers rather than floats for integral values.
func Load(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file %q: %w", path, err)
	}

	var payload any
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode data YAML %q: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode data JSON %q: %w", path, err)
		}
		payload = normalizeNumbers(payload)
	}

	data, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("data file %q must hold a top-level object", path)
	}
	return data, nil
}

// normalizeNumbers rewrites json.Number values to int64 or float64 in place.
func normalizeNumbers(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalizeNumbers(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = normalizeNumbers(item)
		}
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, err := v.Float64()
		if err != nil {
			return v
		}
		if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return int64(f)
		}
		return f
	default:
		return value
	}
}
