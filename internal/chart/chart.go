// Package chart turns a result set into a terminal rendering: a table
// always, and a bar/line/pie chart when the data supports one.
package chart

import (
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

// Kind is the user-selected chart style. It is never derived from the data.
type Kind string

const (
	Bar  Kind = "bar"
	Line Kind = "line"
	Pie  Kind = "pie"
)

// Point is one chart datum, a (name, value) pair.
type Point struct {
	Name  string
	Value float64
}

// PickChartColumns scans the first record's columns in declared order and
// selects the first string-typed column as category and the first
// number-typed column as value, stopping once both are found. It returns
// ok=false when the result set is empty or either column is missing; callers
// must then fall back to table-only rendering.
func PickChartColumns(rs domain.ResultSet) (category, value string, ok bool) {
	if len(rs) == 0 {
		return "", "", false
	}

	first := rs[0]
	for _, col := range first.Columns() {
		v, _ := first.Get(col)
		if _, isStr := v.(string); isStr && category == "" {
			category = col
		} else if _, isNum := asNumber(v); isNum && value == "" {
			value = col
		}
		if category != "" && value != "" {
			break
		}
	}

	if category == "" || value == "" {
		return "", "", false
	}
	return category, value, true
}

// Points maps every record to {name: record[category], value: record[value]}.
// Records whose category is not a string or whose value is not numeric
// contribute a zero/empty point rather than being dropped, so the chart row
// count always matches the table row count.
func Points(rs domain.ResultSet, category, value string) []Point {
	pts := make([]Point, 0, len(rs))
	for _, rec := range rs {
		var p Point
		if v, _ := rec.Get(category); v != nil {
			if s, ok := v.(string); ok {
				p.Name = s
			}
		}
		if v, _ := rec.Get(value); v != nil {
			if n, ok := asNumber(v); ok {
				p.Value = n
			}
		}
		pts = append(pts, p)
	}
	return pts
}

// asNumber reports whether v is number-typed and returns it as float64.
// JSON decoding always yields float64, the other cases cover records built
// in-process.
func asNumber(v domain.Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
