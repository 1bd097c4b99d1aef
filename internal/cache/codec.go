package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dhima/edge-cache/internal/docstore"
)

var errSchemaMismatch = errors.New("row does not match schema")

// Codec validates stored rows against a JSON schema before decoding them
// into T.
type Codec[T any] struct {
	schema *gojsonschema.Schema
}

// NewCodec compiles schemaJSON.
func NewCodec[T any](schemaJSON string) (*Codec[T], error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Codec[T]{schema: schema}, nil
}

// MustCodec is NewCodec that panics on an invalid schema.
func MustCodec[T any](schemaJSON string) *Codec[T] {
	c, err := NewCodec[T](schemaJSON)
	if err != nil {
		panic(err)
	}
	return c
}

// Decoded is the outcome of decoding one row: either Value or Err is set.
type Decoded[T any] struct {
	Value T
	Err   *DecodeError
}

// OK reports whether the row decoded.
func (d Decoded[T]) OK() bool { return d.Err == nil }

// Decode validates and decodes the row at index.
func (c *Codec[T]) Decode(index int, raw json.RawMessage) Decoded[T] {
	var out Decoded[T]

	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		out.Err = &DecodeError{Index: index, ID: rowID(raw), Err: err}
		return out
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		out.Err = &DecodeError{Index: index, ID: rowID(raw), Reasons: reasons, Err: errSchemaMismatch}
		return out
	}

	if err := json.Unmarshal(raw, &out.Value); err != nil {
		out.Err = &DecodeError{Index: index, ID: rowID(raw), Err: err}
	}
	return out
}

// DecodeAll decodes every row independently.
func (c *Codec[T]) DecodeAll(rows []json.RawMessage) []Decoded[T] {
	out := make([]Decoded[T], len(rows))
	for i, raw := range rows {
		out[i] = c.Decode(i, raw)
	}
	return out
}

// Encode converts a record into the parameter shape the store expects.
func (c *Codec[T]) Encode(v T) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := docstore.DecodeJSON(raw, &doc); err != nil {
		return nil, fmt.Errorf("record must encode to a JSON object: %w", err)
	}
	return doc, nil
}

// rowID extracts "_id" from a row for diagnostics.
func rowID(raw json.RawMessage) string {
	var head struct {
		ID any `json:"_id"`
	}
	if docstore.DecodeJSON(raw, &head) != nil || head.ID == nil {
		return ""
	}
	if s, ok := head.ID.(string); ok {
		return s
	}
	return fmt.Sprint(head.ID)
}
