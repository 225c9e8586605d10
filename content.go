package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Content is the type-specific payload of a node. Each node type has exactly
// one Content implementation; the set is sealed.
type Content interface {
	NodeType() NodeType
	// merge decodes patch over a copy of the receiver and returns the copy.
	merge(patch json.RawMessage) (Content, error)
}

type InputContent struct {
	InputName string `json:"inputName"`
	InputType string `json:"inputType"`
}

type OutputContent struct {
	OutputName string `json:"outputName"`
	OutputType string `json:"outputType"`
}

// TextContent is free text; every {{identifier}} in it becomes an input port.
type TextContent struct {
	Text string `json:"text"`
}

// LLMContent has no editable fields.
type LLMContent struct{}

type APIContent struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type TransformContent struct {
	Operation string `json:"operation"`
}

type ConditionalContent struct {
	Operator     string `json:"operator"`
	CompareValue string `json:"compareValue"`
}

type FilterContent struct {
	Condition string `json:"condition"`
	Value     string `json:"value"`
}

type DatabaseContent struct {
	Operation string `json:"operation"`
	Query     string `json:"query"`
}

func (InputContent) NodeType() NodeType       { return TypeInput }
func (OutputContent) NodeType() NodeType      { return TypeOutput }
func (TextContent) NodeType() NodeType        { return TypeText }
func (LLMContent) NodeType() NodeType         { return TypeLLM }
func (APIContent) NodeType() NodeType         { return TypeAPI }
func (TransformContent) NodeType() NodeType   { return TypeTransform }
func (ConditionalContent) NodeType() NodeType { return TypeConditional }
func (FilterContent) NodeType() NodeType      { return TypeFilter }
func (DatabaseContent) NodeType() NodeType    { return TypeDatabase }

func (c InputContent) merge(p json.RawMessage) (Content, error) {
	if err := decodePatch(p, &c); err != nil {
		return nil, err
	}
	return c, oneOf("inputType", c.InputType, "Text", "File")
}

func (c OutputContent) merge(p json.RawMessage) (Content, error) {
	if err := decodePatch(p, &c); err != nil {
		return nil, err
	}
	return c, oneOf("outputType", c.OutputType, "Text", "Image")
}

func (c TextContent) merge(p json.RawMessage) (Content, error) {
	if err := decodePatch(p, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c LLMContent) merge(p json.RawMessage) (Content, error) {
	if err := decodePatch(p, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c APIContent) merge(p json.RawMessage) (Content, error) {
	if err := decodePatch(p, &c); err != nil {
		return nil, err
	}
	return c, oneOf("method", c.Method, "GET", "POST", "PUT", "DELETE", "PATCH")
}

func (c TransformContent) merge(p json.RawMessage) (Content, error) {
	if err := decodePatch(p, &c); err != nil {
		return nil, err
	}
	return c, oneOf("operation", c.Operation, "uppercase", "lowercase", "trim", "reverse", "length")
}

func (c ConditionalContent) merge(p json.RawMessage) (Content, error) {
	if err := decodePatch(p, &c); err != nil {
		return nil, err
	}
	return c, oneOf("operator", c.Operator,
		"equals", "notEquals", "greater", "less", "greaterOrEqual", "lessOrEqual")
}

func (c FilterContent) merge(p json.RawMessage) (Content, error) {
	if err := decodePatch(p, &c); err != nil {
		return nil, err
	}
	return c, oneOf("condition", c.Condition, "contains", "equals", "startsWith", "endsWith", "regex")
}

func (c DatabaseContent) merge(p json.RawMessage) (Content, error) {
	if err := decodePatch(p, &c); err != nil {
		return nil, err
	}
	return c, oneOf("operation", c.Operation, "query", "insert", "update", "delete")
}

// DefaultContent returns the content a freshly placed node of type t with
// the given id starts with.
func DefaultContent(t NodeType, id string) (Content, error) {
	switch t {
	case TypeInput:
		return InputContent{InputName: strings.Replace(id, "input-", "input_", 1), InputType: "Text"}, nil
	case TypeOutput:
		return OutputContent{OutputName: strings.Replace(id, "output-", "output_", 1), OutputType: "Text"}, nil
	case TypeText:
		return TextContent{Text: "{{input}}"}, nil
	case TypeLLM:
		return LLMContent{}, nil
	case TypeAPI:
		return APIContent{Method: "GET"}, nil
	case TypeTransform:
		return TransformContent{Operation: "uppercase"}, nil
	case TypeConditional:
		return ConditionalContent{Operator: "equals"}, nil
	case TypeFilter:
		return FilterContent{Condition: "contains"}, nil
	case TypeDatabase:
		return DatabaseContent{Operation: "query"}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
}

// decodePatch overlays the JSON object patch onto dst. Keys absent from
// patch keep their current value; keys dst does not know are rejected.
func decodePatch(patch json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(patch)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(patch))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return nil
}

func oneOf(field, v string, allowed ...string) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return fmt.Errorf("%w: %s %q not one of %s", ErrInvalidContent, field, v, strings.Join(allowed, ", "))
}
