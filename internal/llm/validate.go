package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled schemas keyed by Schema.Name
var schemaCache sync.Map

// validateResponse checks raw against schema and wraps any failure in
// ErrInvalidResponse. A nil schema accepts anything.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	invalid := func(err error) error {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid(fmt.Errorf("invalid JSON: %w", err))
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return invalid(fmt.Errorf("compile schema %q: %w", schema.Name, err))
	}
	if err := compiled.Validate(doc); err != nil {
		return invalid(fmt.Errorf("schema validation failed: %w", err))
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants decoded JSON values, not Go maps with typed slices.
	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	url := "schema://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
