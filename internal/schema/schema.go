// Package schema generates JSON schemas from Go struct definitions at
// runtime, so the published schema for .trunkgate.yml can never drift from
// the config struct.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/swaggest/jsonschema-go"
)

// LabelConfig identifies the gate configuration schema.
const LabelConfig = "config"

type schemaEntry struct {
	value      any
	skipFields []string
}

var (
	registry      = make(map[string]schemaEntry)
	registryMu    sync.RWMutex
	schemaCache   = make(map[string]string)
	schemaCacheMu sync.RWMutex
)

// Register adds a type to the schema registry. The schema is generated on
// first access via Get().
func Register(label string, v any, skipFields ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[label] = schemaEntry{value: v, skipFields: skipFields}
}

// Get returns the JSON schema string for a registered label, cached after
// first generation.
func Get(label string) (string, error) {
	schemaCacheMu.RLock()
	if cached, ok := schemaCache[label]; ok {
		schemaCacheMu.RUnlock()
		return cached, nil
	}
	schemaCacheMu.RUnlock()

	registryMu.RLock()
	entry, ok := registry[label]
	registryMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown schema label: %s", label)
	}

	schema, err := GenerateJSON(entry.value, entry.skipFields...)
	if err != nil {
		return "", fmt.Errorf("failed to generate schema for %s: %w", label, err)
	}

	schemaCacheMu.Lock()
	schemaCache[label] = schema
	schemaCacheMu.Unlock()

	return schema, nil
}

// GenerateJSON generates a JSON schema string from a Go type. Fields can be
// excluded by naming them in skipFields.
func GenerateJSON(v any, skipFields ...string) (string, error) {
	r := jsonschema.Reflector{}

	opts := []func(*jsonschema.ReflectContext){
		jsonschema.InlineRefs,
	}

	if len(skipFields) > 0 {
		skipSet := make(map[string]bool)
		for _, f := range skipFields {
			skipSet[f] = true
		}
		opts = append(opts, jsonschema.InterceptProp(
			func(params jsonschema.InterceptPropParams) error {
				if skipSet[params.Name] {
					return jsonschema.ErrSkipProperty
				}
				return nil
			},
		))
	}

	schema, err := r.Reflect(v, opts...)
	if err != nil {
		return "", err
	}

	bytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
