// Package schema loads and validates the field-specification document that
// drives an extraction pass.
package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrSchema is the sentinel for malformed or inconsistent schema documents.
// All load failures wrap it; check with eris.Is.
var ErrSchema = eris.New("schema: invalid configuration")

// InputKind declares what kind of input files a schema applies to.
type InputKind string

// SourceKind declares which input kind a single field is extracted from.
type SourceKind string

const (
	InputText InputKind = "text"
	InputCSV  InputKind = "csv"

	SourceText SourceKind = "text"
	SourceCSV  SourceKind = "csv"
)

// ValueType is the closed set of types a field can be coerced to.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeInteger ValueType = "integer"
	TypeFloat   ValueType = "float"
	TypeDate    ValueType = "date"
)

// DefaultDateLayout is the documented date format. A field may override it
// with its optional "format" key (any Go reference layout).
const DefaultDateLayout = "2006-01-02"

// tokenPrefix introduces the positional text locator form, e.g. "token:4".
const tokenPrefix = "token:"

// FieldSpec is one declared extraction rule and its target type.
//
// Locator syntax depends on Source:
//   - text: a regular expression (capture group 1 if present, else the whole
//     match), or "token:N" for the N-th whitespace-separated token.
//   - csv: an all-digits string is a zero-based column index; anything else
//     is a header name resolved once against the file's header row.
type FieldSpec struct {
	Name      string     `json:"name" yaml:"name"`
	Source    SourceKind `json:"sourceKind" yaml:"sourceKind"`
	Locator   string     `json:"locator" yaml:"locator"`
	Type      ValueType  `json:"valueType" yaml:"valueType"`
	Graphable bool       `json:"graphable" yaml:"graphable"`
	Required  bool       `json:"required" yaml:"required"`
	Format    string     `json:"format,omitempty" yaml:"format,omitempty"`

	// Compiled locator, populated at load.
	Pattern     *regexp.Regexp `json:"-" yaml:"-"` // text regex locator
	TokenIndex  int            `json:"-" yaml:"-"` // text token locator, -1 if unused
	ColumnIndex int            `json:"-" yaml:"-"` // csv index locator, -1 if by name
	ColumnName  string         `json:"-" yaml:"-"` // csv name locator, "" if by index
}

// DateLayout returns the layout used to parse this field's date values.
func (f *FieldSpec) DateLayout() string {
	if f.Format != "" {
		return f.Format
	}
	return DefaultDateLayout
}

// Schema is the validated, immutable field-specification list for one run.
type Schema struct {
	Input  InputKind
	Fields []FieldSpec

	byName   map[string]*FieldSpec
	required []*FieldSpec
}

// Field returns the spec for the given name, or nil if not declared.
func (s *Schema) Field(name string) *FieldSpec {
	return s.byName[name]
}

// Names returns all field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i := range s.Fields {
		names[i] = s.Fields[i].Name
	}
	return names
}

// Graphable returns the names of graphable fields in declaration order.
func (s *Schema) Graphable() []string {
	var names []string
	for i := range s.Fields {
		if s.Fields[i].Graphable {
			names = append(names, s.Fields[i].Name)
		}
	}
	return names
}

// Required returns the required field specs in declaration order.
func (s *Schema) Required() []*FieldSpec {
	return s.required
}

// document mirrors the raw configuration document. Required is a pointer so
// an omitted key can default to true.
type document struct {
	InputKind string     `json:"inputKind" yaml:"inputKind"`
	Fields    []fieldDoc `json:"fields" yaml:"fields"`
}

type fieldDoc struct {
	Name      string `json:"name" yaml:"name"`
	Source    string `json:"sourceKind" yaml:"sourceKind"`
	Locator   string `json:"locator" yaml:"locator"`
	Type      string `json:"valueType" yaml:"valueType"`
	Graphable bool   `json:"graphable" yaml:"graphable"`
	Required  *bool  `json:"required" yaml:"required"`
	Format    string `json:"format" yaml:"format"`
}

// Load reads a schema document from disk. The decoder is picked by file
// extension: .yaml/.yml is YAML, everything else is JSON.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Parse builds a Schema from a JSON document.
func Parse(data []byte) (*Schema, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(ErrSchema, "decode json: %v", err)
	}
	return build(doc)
}

// ParseYAML builds a Schema from a YAML document.
func ParseYAML(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(ErrSchema, "decode yaml: %v", err)
	}
	return build(doc)
}

func build(doc document) (*Schema, error) {
	input := InputKind(doc.InputKind)
	if input != InputText && input != InputCSV {
		return nil, eris.Wrapf(ErrSchema, "inputKind %q is not one of text, csv", doc.InputKind)
	}
	if len(doc.Fields) == 0 {
		return nil, eris.Wrap(ErrSchema, "fields list is empty")
	}

	s := &Schema{
		Input:  input,
		Fields: make([]FieldSpec, 0, len(doc.Fields)),
		byName: make(map[string]*FieldSpec, len(doc.Fields)),
	}

	seen := make(map[string]bool, len(doc.Fields))
	for _, fd := range doc.Fields {
		spec, err := buildField(fd, input)
		if err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, eris.Wrapf(ErrSchema, "field %q: duplicate name", spec.Name)
		}
		seen[spec.Name] = true
		s.Fields = append(s.Fields, spec)
	}

	// Index after append so pointers are stable.
	for i := range s.Fields {
		f := &s.Fields[i]
		s.byName[f.Name] = f
		if f.Required {
			s.required = append(s.required, f)
		}
	}

	return s, nil
}

func buildField(fd fieldDoc, input InputKind) (FieldSpec, error) {
	var zero FieldSpec

	if fd.Name == "" {
		return zero, eris.Wrap(ErrSchema, "field with missing name")
	}
	if fd.Source == "" {
		return zero, eris.Wrapf(ErrSchema, "field %q: missing sourceKind", fd.Name)
	}
	if fd.Locator == "" {
		return zero, eris.Wrapf(ErrSchema, "field %q: missing locator", fd.Name)
	}
	if fd.Type == "" {
		return zero, eris.Wrapf(ErrSchema, "field %q: missing valueType", fd.Name)
	}

	source := SourceKind(fd.Source)
	if source != SourceText && source != SourceCSV {
		return zero, eris.Wrapf(ErrSchema, "field %q: sourceKind %q is not one of text, csv", fd.Name, fd.Source)
	}
	if string(source) != string(input) {
		return zero, eris.Wrapf(ErrSchema, "field %q: sourceKind %q conflicts with inputKind %q", fd.Name, fd.Source, input)
	}

	vt := ValueType(fd.Type)
	switch vt {
	case TypeString, TypeInteger, TypeFloat, TypeDate:
	default:
		return zero, eris.Wrapf(ErrSchema, "field %q: valueType %q is not one of string, integer, float, date", fd.Name, fd.Type)
	}

	if fd.Graphable && vt != TypeInteger && vt != TypeFloat {
		return zero, eris.Wrapf(ErrSchema, "field %q: graphable requires a numeric valueType, got %q", fd.Name, fd.Type)
	}

	spec := FieldSpec{
		Name:        fd.Name,
		Source:      source,
		Locator:     fd.Locator,
		Type:        vt,
		Graphable:   fd.Graphable,
		Required:    fd.Required == nil || *fd.Required,
		Format:      fd.Format,
		TokenIndex:  -1,
		ColumnIndex: -1,
	}

	if err := compileLocator(&spec); err != nil {
		return zero, err
	}
	return spec, nil
}

// compileLocator resolves the locator string into its compiled form.
func compileLocator(f *FieldSpec) error {
	switch f.Source {
	case SourceText:
		if rest, ok := strings.CutPrefix(f.Locator, tokenPrefix); ok {
			idx, err := strconv.Atoi(rest)
			if err != nil || idx < 0 {
				return eris.Wrapf(ErrSchema, "field %q: token locator %q needs a non-negative index", f.Name, f.Locator)
			}
			f.TokenIndex = idx
			return nil
		}
		re, err := regexp.Compile(f.Locator)
		if err != nil {
			return eris.Wrapf(ErrSchema, "field %q: locator does not compile: %v", f.Name, err)
		}
		f.Pattern = re
	case SourceCSV:
		if isDigits(f.Locator) {
			idx, err := strconv.Atoi(f.Locator)
			if err != nil {
				return eris.Wrapf(ErrSchema, "field %q: column index %q", f.Name, f.Locator)
			}
			f.ColumnIndex = idx
			return nil
		}
		f.ColumnName = f.Locator
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
