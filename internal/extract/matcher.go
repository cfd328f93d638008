// Package extract applies a schema to raw input units: locating each field's
// raw text, coercing it to the declared type, and assembling records.
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/extract-cli/internal/reader"
	"github.com/sells-group/extract-cli/internal/result"
	"github.com/sells-group/extract-cli/internal/schema"
)

// Extracted is one field's raw and typed value for one unit. OK is false when
// the locator did not match or the raw text failed coercion.
type Extracted struct {
	Field *schema.FieldSpec
	Raw   string
	Value result.Value
	OK    bool
}

// Matcher applies the schema's locators to raw units. For CSV input,
// BindHeader must run once before Match.
type Matcher struct {
	sch  *schema.Schema
	cols []int // resolved column index per field; -1 = never matches
}

// NewMatcher builds a matcher for one pass over input of the schema's kind.
func NewMatcher(sch *schema.Schema) *Matcher {
	m := &Matcher{sch: sch, cols: make([]int, len(sch.Fields))}
	for i := range sch.Fields {
		m.cols[i] = sch.Fields[i].ColumnIndex
	}
	return m
}

// BindHeader resolves name locators against the file's header row. Names are
// matched case-insensitively after trimming. A declared name absent from the
// header leaves the field permanently unmatched for this pass; that is
// per-unit tolerance, not a fatal error.
func (m *Matcher) BindHeader(header []string) {
	byName := make(map[string]int, len(header))
	for i, col := range header {
		byName[normalizeCol(col)] = i
	}
	for i := range m.sch.Fields {
		f := &m.sch.Fields[i]
		if f.ColumnName == "" {
			continue
		}
		idx, ok := byName[normalizeCol(f.ColumnName)]
		if !ok {
			zap.L().Warn("extract: column not found in header",
				zap.String("field", f.Name),
				zap.String("column", f.ColumnName),
			)
			m.cols[i] = -1
			continue
		}
		m.cols[i] = idx
	}
}

// Match extracts every field's raw text from one unit. Fields are independent:
// one miss never prevents attempting the others. Raw text is trimmed; no
// typing happens here.
func (m *Matcher) Match(u reader.Unit) []Extracted {
	out := make([]Extracted, len(m.sch.Fields))
	var tokens []string
	if m.sch.Input == schema.InputText {
		tokens = strings.Fields(u.Text)
	}

	for i := range m.sch.Fields {
		f := &m.sch.Fields[i]
		out[i] = Extracted{Field: f}

		var raw string
		var ok bool
		switch f.Source {
		case schema.SourceText:
			raw, ok = matchText(f, u.Text, tokens)
		case schema.SourceCSV:
			raw, ok = matchCell(u.Cells, m.cols[i])
		}
		if !ok {
			continue
		}
		out[i].Raw = strings.TrimSpace(raw)
		out[i].OK = true
	}
	return out
}

func matchText(f *schema.FieldSpec, line string, tokens []string) (string, bool) {
	if f.TokenIndex >= 0 {
		if f.TokenIndex >= len(tokens) {
			return "", false
		}
		return tokens[f.TokenIndex], true
	}

	groups := f.Pattern.FindStringSubmatch(line)
	switch {
	case groups == nil:
		return "", false
	case len(groups) > 1:
		return groups[1], true
	default:
		return groups[0], true
	}
}

func matchCell(cells []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(cells) {
		return "", false
	}
	return cells[idx], true
}

// normalizeCol lowercases and trims a header cell for cross-format matching.
func normalizeCol(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
