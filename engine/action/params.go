package action

import (
	"github.com/chipp-ai/dispatch/engine/schema"
)

// ParamType enumerates the supported parameter value types.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

func (t ParamType) IsValid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return true
	default:
		return false
	}
}

// Parameter describes one typed input of an action. Object parameters
// recurse through Properties; array parameters may declare an element type
// through Items.
type Parameter struct {
	Name        string      `json:"name"                  validate:"required"`
	Type        ParamType   `json:"type"                  validate:"required"`
	Required    bool        `json:"required,omitempty"`
	Default     any         `json:"default,omitempty"`
	Properties  []Parameter `json:"properties,omitempty"`
	Items       *Parameter  `json:"items,omitempty"`
	Description string      `json:"description,omitempty"`
}

// HasDefault reports whether a default value was declared. A declared null
// default still counts as absent, matching the stored representation where
// null and missing are indistinguishable.
func (p *Parameter) HasDefault() bool {
	return p.Default != nil
}

// BuildSchema converts a parameter list into a JSON Schema document for the
// compiled validator. Types are strict: a number parameter rejects string
// input instead of coercing it.
func BuildSchema(params []Parameter) schema.Schema {
	properties := make(map[string]any, len(params))
	for i := range params {
		properties[params[i].Name] = paramSchema(&params[i])
	}
	return schema.Schema{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
}

func paramSchema(p *Parameter) map[string]any {
	node := map[string]any{"type": string(p.Type)}
	switch p.Type {
	case TypeObject:
		if len(p.Properties) > 0 {
			nested := make(map[string]any, len(p.Properties))
			required := make([]string, 0)
			for i := range p.Properties {
				nested[p.Properties[i].Name] = paramSchema(&p.Properties[i])
				if p.Properties[i].Required {
					required = append(required, p.Properties[i].Name)
				}
			}
			node["properties"] = nested
			if len(required) > 0 {
				node["required"] = required
			}
		}
	case TypeArray:
		if p.Items != nil {
			node["items"] = paramSchema(p.Items)
		}
	}
	return node
}

// ApplyDefaults returns a copy of inputs with declared defaults filled in
// for parameters that are entirely absent. Present-but-empty values are
// kept as supplied; an empty string is a valid string value.
func ApplyDefaults(params []Parameter, inputs map[string]any) map[string]any {
	out := make(map[string]any, len(inputs)+len(params))
	for k, v := range inputs {
		out[k] = v
	}
	for i := range params {
		p := &params[i]
		if _, present := out[p.Name]; present {
			continue
		}
		if p.HasDefault() {
			out[p.Name] = p.Default
		}
	}
	return out
}
