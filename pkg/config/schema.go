package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

const schemaURL = "template-ci.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var doc interface{}
	if err := yaml.Unmarshal(schemaYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	// Convert to JSON for schema compiler
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schema, err := jsonschema.CompileString(schemaURL, string(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
})

// validateDocument checks a parsed document against the embedded schema.
// The document goes through JSON first so TOML integers and dates arrive as
// the plain JSON values the validator expects.
func validateDocument(doc map[string]interface{}) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("failed to convert document: %w", err)
	}

	return schema.Validate(v)
}
