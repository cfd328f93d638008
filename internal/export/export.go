// Package export writes a finalized result set to tabular formats: one row
// per record, fields in schema declaration order, gaps as empty cells.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/extract-cli/internal/result"
	"github.com/sells-group/extract-cli/internal/schema"
)

// WriteCSV emits the records as CSV with a header row.
func WriteCSV(w io.Writer, set *result.Set) error {
	fields := set.Fields()
	cw := csv.NewWriter(w)

	if err := cw.Write(fields); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	row := make([]string, len(fields))
	for _, rec := range set.Records() {
		for i, name := range fields {
			row[i] = formatCell(set.Schema(), rec, name)
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX emits the records as a single-sheet workbook at path.
func WriteXLSX(path string, set *result.Set) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("records")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	fields := set.Fields()
	header := sheet.AddRow()
	for _, name := range fields {
		header.AddCell().SetString(name)
	}

	for _, rec := range set.Records() {
		row := sheet.AddRow()
		for _, name := range fields {
			cell := row.AddCell()
			v, ok := rec[name]
			if !ok {
				cell.SetString("")
				continue
			}
			switch v.Kind {
			case schema.TypeInteger:
				cell.SetInt64(v.Int)
			case schema.TypeFloat:
				cell.SetFloat(v.Float)
			default:
				cell.SetString(v.Format(dateLayout(set.Schema(), name)))
			}
		}
	}

	return eris.Wrapf(f.Save(path), "export: save xlsx %s", path)
}

// WriteJSONL emits one JSON object per record, one per line. Gaps are
// omitted keys, not nulls.
func WriteJSONL(w io.Writer, set *result.Set) error {
	enc := json.NewEncoder(w)
	for _, rec := range set.Records() {
		obj := make(map[string]any, len(rec))
		for name, v := range rec {
			obj[name] = v.Interface(dateLayout(set.Schema(), name))
		}
		if err := enc.Encode(obj); err != nil {
			return eris.Wrap(err, "export: encode record")
		}
	}
	return nil
}

func formatCell(sch *schema.Schema, rec result.Record, name string) string {
	v, ok := rec[name]
	if !ok {
		return ""
	}
	return v.Format(dateLayout(sch, name))
}

func dateLayout(sch *schema.Schema, name string) string {
	if f := sch.Field(name); f != nil {
		return f.DateLayout()
	}
	return schema.DefaultDateLayout
}
