// Package normalize turns flattened provider payloads into flat typed rows
// via a declarative field map, and derives the site-local observation time.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the target type a mapped field is coerced to.
type ColumnType string

const (
	TypeInt      ColumnType = "int"
	TypeFloat    ColumnType = "float"
	TypeString   ColumnType = "string"
	TypeDateTime ColumnType = "datetime"
)

// Target names the output column a source path maps to and its type.
type Target struct {
	Column string
	Type   ColumnType
}

// FieldMap maps flattened source paths to output columns. Paths absent from
// a record are skipped; values that fail coercion become nil (the row is
// kept).
type FieldMap map[string]Target

// Row is one output record. Values are int64, float64, string, time.Time
// or nil.
type Row map[string]any

// Dataset is an ordered batch of rows sharing a column set.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Apply selects and coerces the mapped fields of a flattened record.
func (fm FieldMap) Apply(flat map[string]any) Row {
	row := make(Row, len(fm))
	for path, target := range fm {
		raw, ok := flat[path]
		if !ok {
			continue
		}
		row[target.Column] = coerce(raw, target.Type)
	}
	return row
}

func coerce(raw any, t ColumnType) any {
	switch t {
	case TypeFloat:
		if f, ok := asFloat(raw); ok {
			return f
		}
	case TypeInt:
		if n, ok := asInt(raw); ok {
			return n
		}
	case TypeDateTime:
		if n, ok := asInt(raw); ok {
			return time.Unix(n, 0).UTC().Round(time.Minute)
		}
	case TypeString:
		if s, ok := raw.(string); ok {
			return s
		}
		if raw != nil {
			if f, ok := asFloat(raw); ok {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
	}
	return nil
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
