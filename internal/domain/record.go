package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is one cell of a result set: string, float64, bool or nil.
// JSON numbers always decode to float64.
type Value = any

// Field is a named cell, used to build records with an explicit column order.
type Field struct {
	Name  string
	Value Value
}

// Record is a single result-set row. Unlike a plain map it remembers the
// order in which its columns were declared, which is what the chart heuristic
// and the table renderer key off.
type Record struct {
	columns []string
	values  map[string]Value
}

// NewRecord builds a record from fields in declaration order. A repeated
// field name keeps its first position and takes the last value.
func NewRecord(fields ...Field) Record {
	r := Record{values: make(map[string]Value, len(fields))}
	for _, f := range fields {
		if _, ok := r.values[f.Name]; !ok {
			r.columns = append(r.columns, f.Name)
		}
		r.values[f.Name] = f.Value
	}
	return r
}

// Columns returns the column names in declaration order.
func (r Record) Columns() []string {
	return r.columns
}

// Get returns the value for a column.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.columns)
}

// UnmarshalJSON decodes an object while preserving key order. Values must be
// scalar; nested objects and arrays are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	r.columns = nil
	r.values = make(map[string]Value)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: unexpected key token %v", keyTok)
		}

		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("record: column %q: %w", key, err)
		}
		switch v.(type) {
		case string, float64, bool, nil:
		default:
			return fmt.Errorf("record: column %q holds a non-scalar value", key)
		}

		if _, dup := r.values[key]; !dup {
			r.columns = append(r.columns, key)
		}
		r.values[key] = v
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

// MarshalJSON encodes the record in declared column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResultSet is the ordered list of uniform records returned by one query.
type ResultSet []Record

// Columns returns the column names of the first record, which after
// Normalize is the column set of every record.
func (rs ResultSet) Columns() []string {
	if len(rs) == 0 {
		return nil
	}
	return rs[0].Columns()
}

// Normalize coerces every record to the first record's column set. Columns
// missing from a record are filled with nil; columns the first record does
// not declare are dropped. The result set itself is the schema of record.
func (rs ResultSet) Normalize() ResultSet {
	if len(rs) <= 1 {
		return rs
	}
	schema := rs[0].Columns()
	out := make(ResultSet, 0, len(rs))
	out = append(out, rs[0])
	for _, rec := range rs[1:] {
		fields := make([]Field, 0, len(schema))
		for _, col := range schema {
			v, _ := rec.Get(col)
			fields = append(fields, Field{Name: col, Value: v})
		}
		out = append(out, NewRecord(fields...))
	}
	return out
}
