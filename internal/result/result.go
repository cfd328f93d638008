// Package result holds the output of an extraction pass: the ordered record
// collection handed to exporters and the chart renderer.
package result

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/extract-cli/internal/schema"
)

// ErrUnknownField is returned when a column is requested for a name that is
// not declared in the schema.
var ErrUnknownField = eris.New("result: unknown field")

// Value is one typed cell. Exactly one of the payload fields is meaningful,
// selected by Kind. Valid is false only for gaps in a Column view, where an
// optional field had no value for that record.
type Value struct {
	Kind  schema.ValueType
	Valid bool

	Str   string
	Int   int64
	Float float64
	Time  time.Time
}

// StringValue builds a valid string Value.
func StringValue(s string) Value {
	return Value{Kind: schema.TypeString, Valid: true, Str: s}
}

// IntValue builds a valid integer Value.
func IntValue(n int64) Value {
	return Value{Kind: schema.TypeInteger, Valid: true, Int: n}
}

// FloatValue builds a valid float Value.
func FloatValue(f float64) Value {
	return Value{Kind: schema.TypeFloat, Valid: true, Float: f}
}

// TimeValue builds a valid date Value.
func TimeValue(t time.Time) Value {
	return Value{Kind: schema.TypeDate, Valid: true, Time: t}
}

// Num returns the value as a float64 for charting. ok is false for gaps and
// non-numeric kinds.
func (v Value) Num() (float64, bool) {
	if !v.Valid {
		return 0, false
	}
	switch v.Kind {
	case schema.TypeInteger:
		return float64(v.Int), true
	case schema.TypeFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Format renders the value for tabular output. Dates use the given layout;
// gaps render as the empty string.
func (v Value) Format(dateLayout string) string {
	if !v.Valid {
		return ""
	}
	switch v.Kind {
	case schema.TypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case schema.TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case schema.TypeDate:
		return v.Time.Format(dateLayout)
	default:
		return v.Str
	}
}

// Interface returns the underlying Go value (nil for gaps), for JSON output.
func (v Value) Interface(dateLayout string) any {
	if !v.Valid {
		return nil
	}
	switch v.Kind {
	case schema.TypeInteger:
		return v.Int
	case schema.TypeFloat:
		return v.Float
	case schema.TypeDate:
		return v.Time.Format(dateLayout)
	default:
		return v.Str
	}
}

// Record maps field names to typed values for one input unit whose required
// fields all extracted. Optional fields that failed are simply absent.
// Immutable once assembled.
type Record map[string]Value

// Summary carries the diagnostics counters of one pass.
type Summary struct {
	Processed     int            // units consumed
	Emitted       int            // records assembled
	Skipped       int            // units dropped for a failed required field
	FieldFailures map[string]int // per-field match/coercion failures
}

// Set is the finalized, ordered output of one extraction pass. A new pass
// produces a new Set; an existing Set is never mutated.
type Set struct {
	sch     *schema.Schema
	records []Record
	summary Summary
}

// Finalize seals the records of a completed pass into a Set.
func Finalize(sch *schema.Schema, records []Record, summary Summary) *Set {
	return &Set{sch: sch, records: records, summary: summary}
}

// Schema returns the schema this Set was extracted under.
func (s *Set) Schema() *schema.Schema { return s.sch }

// Len returns the number of records.
func (s *Set) Len() int { return len(s.records) }

// Records returns the records in input order.
func (s *Set) Records() []Record { return s.records }

// Summary returns the pass counters.
func (s *Set) Summary() Summary { return s.summary }

// Fields returns all field names in schema declaration order.
func (s *Set) Fields() []string { return s.sch.Names() }

// GraphableFields returns the graphable field names in schema declaration
// order; always a subset of Fields.
func (s *Set) GraphableFields() []string { return s.sch.Graphable() }

// Column returns the series of values for one field across all records, in
// record order. Records where the field is absent contribute an invalid
// Value (a gap, not a zero).
func (s *Set) Column(name string) ([]Value, error) {
	spec := s.sch.Field(name)
	if spec == nil {
		return nil, eris.Wrapf(ErrUnknownField, "%q", name)
	}
	col := make([]Value, len(s.records))
	for i, rec := range s.records {
		if v, ok := rec[name]; ok {
			col[i] = v
		} else {
			col[i] = Value{Kind: spec.Type}
		}
	}
	return col, nil
}
