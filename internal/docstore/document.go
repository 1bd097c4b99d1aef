package docstore

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Document is a normalised JSON object ready to be stored.
type Document struct {
	ID     string
	Body   json.RawMessage
	Fields map[string]any
}

// NormalizeDocument converts an INSERT parameter into a Document. The value
// must encode to a JSON object. A missing or null "_id" is replaced by a
// generated uuid.
func NormalizeDocument(v any) (*Document, error) {
	raw, err := toJSON(v)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := DecodeJSON(raw, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: document must be a JSON object", ErrInvalidParam)
	}

	switch id := fields[IDField].(type) {
	case nil:
		fields[IDField] = uuid.New().String()
	case string:
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: %s must not be empty", ErrInvalidParam, IDField)
		}
	default:
		return nil, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidParam, IDField, id)
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return &Document{ID: fields[IDField].(string), Body: body, Fields: fields}, nil
}

// DecodeJSON decodes exactly one JSON value from raw. Numbers are kept as
// json.Number so integers beyond 2^53 survive a decode and re-encode.
func DecodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// DecodeFields parses a stored document body.
func DecodeFields(body []byte) (map[string]any, error) {
	var fields map[string]any
	if err := DecodeJSON(body, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// NormalizeValue converts a parameter into the shape produced by decoding
// JSON, so it can be compared with stored field values.
func NormalizeValue(v any) (any, error) {
	raw, err := toJSON(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := DecodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return out, nil
}

func toJSON(v any) ([]byte, error) {
	switch b := v.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return raw, nil
}

// Matches reports whether a document field equals the normalised value.
// A missing field only matches null.
func Matches(fields map[string]any, field string, want any) bool {
	return CompareValues(fields[field], want) == 0
}

// CompareValues orders decoded JSON values. Missing and null values sort
// first, followed by booleans, numbers, strings, and composite values.
func CompareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case json.Number, float64:
		return compareNumbers(av, b)
	case string:
		return strings.Compare(av, b.(string))
	default:
		ja, _ := json.Marshal(a)
		jb, _ := json.Marshal(b)
		return bytes.Compare(ja, jb)
	}
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case json.Number, float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

// compareNumbers compares json.Number and float64 values exactly, with an
// int64 fast path.
func compareNumbers(a, b any) int {
	if ai, ok := a.(json.Number); ok {
		if bi, ok := b.(json.Number); ok {
			x, errX := ai.Int64()
			y, errY := bi.Int64()
			if errX == nil && errY == nil {
				return cmp.Compare(x, y)
			}
		}
	}
	return bigNumber(a).Cmp(bigNumber(b))
}

func bigNumber(v any) *big.Float {
	f := new(big.Float).SetPrec(256)
	switch n := v.(type) {
	case json.Number:
		if _, ok := f.SetString(string(n)); ok {
			return f
		}
		return f.SetInt64(0)
	case float64:
		if math.IsNaN(n) {
			return f.SetInt64(0)
		}
		return f.SetFloat64(n)
	}
	return f
}

type row struct {
	id     string
	body   json.RawMessage
	fields map[string]any
}

// sortRows orders rows by field, using the id as tie-breaker.
func sortRows(rows []row, field string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		c := 0
		if field != "" {
			c = CompareValues(rows[i].fields[field], rows[j].fields[field])
			if desc {
				c = -c
			}
		}
		if c == 0 {
			return rows[i].id < rows[j].id
		}
		return c < 0
	})
}

// SelectRows filters and orders raw documents for a SELECT statement.
// Bodies that are not valid JSON objects are returned as-is and sort as if
// every field were missing.
func SelectRows(stmt *Statement, params Params, bodies map[string]json.RawMessage) ([]json.RawMessage, error) {
	var want any
	if stmt.HasWhere() {
		p, err := stmt.Param(params, stmt.WhereParam)
		if err != nil {
			return nil, err
		}
		if want, err = NormalizeValue(p); err != nil {
			return nil, err
		}
	}

	rows := make([]row, 0, len(bodies))
	for id, body := range bodies {
		fields, _ := DecodeFields(body)
		if stmt.HasWhere() && !Matches(fields, stmt.WhereField, want) {
			continue
		}
		rows = append(rows, row{id: id, body: body, fields: fields})
	}
	sortRows(rows, stmt.OrderField, stmt.OrderDesc)

	items := make([]json.RawMessage, len(rows))
	for i, r := range rows {
		items[i] = append(json.RawMessage(nil), r.body...)
	}
	return items, nil
}
