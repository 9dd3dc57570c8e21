package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RecordValidator validates decoded backend payloads against a named schema.
type RecordValidator interface {
	Validate(name string, schema []byte, payload any) error
}

// JSONSchemaValidator compiles schemas once per name and validates payloads.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// Validate checks payload against schema. The payload is normalized through
// encoding/json so typed structs and raw decoded values behave the same.
func (v *JSONSchemaValidator) Validate(name string, schema []byte, payload any) error {
	if len(schema) == 0 {
		return nil
	}
	compiled, err := v.schemaFor(name, schema)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("listing: marshal payload for %s: %w", name, err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("listing: normalize payload for %s: %w", name, err)
	}
	if err := compiled.Validate(normalized); err != nil {
		return fmt.Errorf("listing: payload for %s failed validation: %w", name, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(name string, schema []byte) (*jsonschema.Schema, error) {
	v.mu.RLock()
	compiled, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("listing: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("listing: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopRecordValidator struct{}

func (noopRecordValidator) Validate(string, []byte, any) error { return nil }

// NormalizeValidator returns a no-op validator when v is nil.
func NormalizeValidator(v RecordValidator) RecordValidator {
	if v == nil {
		return noopRecordValidator{}
	}
	return v
}
