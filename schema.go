// Copyright (c) Weftworks. All rights reserved.

package loom

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/invopop/jsonschema"
)

// GenerateSchema builds a JSON Schema for a parameter struct type. The
// schema is inlined (no $ref) with additionalProperties disabled, the shape
// the chat-completions tools API expects. Field metadata comes from `json`
// and `jsonschema` struct tags; fields without `omitempty` are required.
func GenerateSchema[T any]() json.RawMessage {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	b, _ := json.Marshal(r.Reflect(&v))
	return b
}

// validateArguments checks parsed arguments against a declared schema:
// required properties must be present and primitive property types must
// match. Deeper JSON Schema features (enums, ranges, nested constraints)
// are left to the handler and the service.
func validateArguments(schema, raw json.RawMessage) error {
	var decl struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if len(schema) == 0 || json.Unmarshal(schema, &decl) != nil {
		return nil
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	for _, name := range decl.Required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required property %q", name)
		}
	}
	for name, val := range args {
		prop, ok := decl.Properties[name]
		if !ok || prop.Type == "" || val == nil {
			continue
		}
		if !matchesSchemaType(val, prop.Type) {
			return fmt.Errorf("property %q must be of type %s", name, prop.Type)
		}
	}
	return nil
}

func matchesSchemaType(v any, typ string) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		_, ok := v.(float64)
		return ok
	case "integer":
		f, ok := v.(float64)
		return ok && f == math.Trunc(f)
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	}
	return true
}
