package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// configSchema constrains the shape of a JSON config file: scalar types for
// every known Engine/Score field so a typo like `"max_memory_mb": "512"`
// fails fast with a pointer to the offending key, instead of surfacing as a
// confusing koanf unmarshal error or, worse, silently zero-valuing the
// field.
const configSchemaDoc = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"analysis": {"type": "object"},
		"score": {"type": "object"},
		"engine": {
			"type": "object",
			"properties": {
				"include_analyses": {"type": "array", "items": {"type": "string"}},
				"dag_type": {"type": "string", "enum": ["import", "full"]},
				"cache_strategy": {"type": "string", "enum": ["lazy", "warm"]},
				"max_depth": {"type": "integer", "minimum": 0},
				"entry_points": {"type": "array", "items": {"type": "string"}},
				"max_memory_mb": {"type": "integer", "minimum": 0},
				"parallel_workers": {"type": "integer", "minimum": 0},
				"warmup_patterns": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`

var (
	schemaOnce    sync.Once
	compiledSchem *jsonschema.Schema
	schemaErr     error
)

func compiledConfigSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(configSchemaDoc), &doc); err != nil {
			schemaErr = fmt.Errorf("config: invalid embedded schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("strata-config.json", doc); err != nil {
			schemaErr = fmt.Errorf("config: failed to register schema: %w", err)
			return
		}
		compiledSchem, schemaErr = c.Compile("strata-config.json")
	})
	return compiledSchem, schemaErr
}

// validateJSONSchema validates a raw JSON config document's shape before it
// reaches koanf's unmarshal step. Only called for .json config files --
// TOML/YAML documents are structurally typed by their own parsers and don't
// need a second schema pass.
func validateJSONSchema(raw []byte) error {
	schema, err := compiledConfigSchema()
	if err != nil {
		return err
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("config: invalid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("config: schema validation failed: %w", err)
	}
	return nil
}
