package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	apperrors "github.com/kbukum/factorygirl/errors"
)

// attributesKey is the required top-level key holding default attributes.
const attributesKey = "attributes"

// Decode parses a factory source in the given format ("yaml", "yml",
// "json" or "toml") into a generic mapping. Numbers keep their integer
// type where the source has one.
func Decode(format string, data []byte) (map[string]any, error) {
	var raw map[string]any

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported factory format %q", format)
	}

	out, _ := normalize(raw).(map[string]any)
	return out, nil
}

// ParseDefinition builds a definition from a decoded source. raw must hold
// an "attributes" mapping; every other key names an alias mapping.
func ParseDefinition(className, tableName string, raw map[string]any) (*Definition, error) {
	value, ok := raw[attributesKey]
	if !ok {
		return nil, apperrors.Configuration(fmt.Sprintf("factory %s has no %q key", className, attributesKey)).
			WithDetail("class", className)
	}
	attrs, ok := value.(map[string]any)
	if !ok {
		return nil, apperrors.Configuration(fmt.Sprintf("factory %s: %q must be a mapping, got %T", className, attributesKey, value)).
			WithDetail("class", className)
	}

	aliases := make(map[string]Attributes, len(raw)-1)
	for name, value := range raw {
		if name == attributesKey {
			continue
		}
		overlay, ok := value.(map[string]any)
		if !ok {
			return nil, apperrors.Configuration(fmt.Sprintf("factory %s: alias %q must be a mapping, got %T", className, name, value)).
				WithDetails(map[string]any{"class": className, "alias": name})
		}
		aliases[name] = overlay
	}

	return NewDefinition(className, tableName, attrs, aliases)
}

// LoadDefinitionFile reads and parses one factory file. The format comes
// from the file extension.
func LoadDefinitionFile(path, className, tableName string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Configuration(fmt.Sprintf("read factory file %s", path)).WithCause(err)
	}

	raw, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, apperrors.Configuration(fmt.Sprintf("malformed factory file %s", path)).
			WithCause(err).WithDetail("path", path)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	d, err := ParseDefinition(className, tableName, raw)
	if err != nil {
		return nil, err
	}
	d.Source = path
	return d, nil
}

// normalize converts decoder-specific shapes to map[string]any, []any and
// plain numbers.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalize(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = normalize(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalize(inner)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
