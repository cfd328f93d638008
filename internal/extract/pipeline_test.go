package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/extract-cli/internal/reader"
	"github.com/sells-group/extract-cli/internal/result"
	"github.com/sells-group/extract-cli/internal/schema"
)

// textSource builds an in-memory unit source for text lines.
func textSource(lines ...string) *reader.Source {
	units := make(chan reader.Unit, len(lines))
	errs := make(chan error)
	for _, line := range lines {
		units <- reader.Unit{Text: line}
	}
	close(units)
	close(errs)
	return &reader.Source{Units: units, Errs: errs}
}

// csvSource builds an in-memory unit source for CSV rows with a header.
func csvSource(header []string, rows ...[]string) *reader.Source {
	units := make(chan reader.Unit, len(rows))
	errs := make(chan error)
	headerCh := make(chan []string, 1)
	headerCh <- header
	close(headerCh)
	for _, row := range rows {
		units <- reader.Unit{Cells: row}
	}
	close(units)
	close(errs)
	return &reader.Source{Units: units, Header: headerCh, Errs: errs}
}

func TestRun_QtyScenario(t *testing.T) {
	// Required integer column with one malformed cell: the bad row is
	// skipped and counted, the good rows become records.
	sch, err := schema.Parse([]byte(`{
		"inputKind": "csv",
		"fields": [{"name": "qty", "sourceKind": "csv", "locator": "qty", "valueType": "integer", "graphable": true, "required": true}]
	}`))
	require.NoError(t, err)

	src := csvSource([]string{"qty"}, []string{"5"}, []string{"x"}, []string{"7"})
	set, err := Run(context.Background(), sch, src, Options{})
	require.NoError(t, err)

	require.Equal(t, 2, set.Len())
	recs := set.Records()
	assert.EqualValues(t, 5, recs[0]["qty"].Int)
	assert.EqualValues(t, 7, recs[1]["qty"].Int)

	summary := set.Summary()
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 2, summary.Emitted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.FieldFailures["qty"])
}

func TestRun_RequiredFieldNeverMatches(t *testing.T) {
	sch, err := schema.Parse([]byte(`{
		"inputKind": "text",
		"fields": [{"name": "code", "sourceKind": "text", "locator": "code=(\\d+)", "valueType": "integer", "required": true}]
	}`))
	require.NoError(t, err)

	src := textSource("line one", "line two", "line three")
	set, err := Run(context.Background(), sch, src, Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, set.Len())
	assert.Equal(t, 3, set.Summary().Skipped)
}

func TestRun_EmptyInput(t *testing.T) {
	sch, err := schema.Parse([]byte(`{
		"inputKind": "text",
		"fields": [{"name": "any", "sourceKind": "text", "locator": ".*", "valueType": "string"}]
	}`))
	require.NoError(t, err)

	set, err := Run(context.Background(), sch, textSource(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, set.Len())
	assert.Equal(t, 0, set.Summary().Skipped)
	assert.Equal(t, 0, set.Summary().Processed)
}

func TestRun_OptionalFieldLeavesGap(t *testing.T) {
	sch, err := schema.Parse([]byte(`{
		"inputKind": "text",
		"fields": [
			{"name": "ts", "sourceKind": "text", "locator": "\\((\\d+)\\)", "valueType": "integer", "required": true},
			{"name": "drop", "sourceKind": "text", "locator": "drop=(\\d+)", "valueType": "integer", "required": false, "graphable": true}
		]
	}`))
	require.NoError(t, err)

	src := textSource("(100) drop=30", "(110) idle", "(120) drop=45")
	set, err := Run(context.Background(), sch, src, Options{})
	require.NoError(t, err)

	require.Equal(t, 3, set.Len(), "optional misses never skip the unit")
	assert.Equal(t, 0, set.Summary().Skipped)

	_, present := set.Records()[1]["drop"]
	assert.False(t, present, "missing optional value is a gap, not a zero")

	col, err := set.Column("drop")
	require.NoError(t, err)
	assert.True(t, col[0].Valid)
	assert.False(t, col[1].Valid)
	assert.True(t, col[2].Valid)
}

func TestRun_Idempotent(t *testing.T) {
	doc := `{
		"inputKind": "csv",
		"fields": [
			{"name": "qty", "sourceKind": "csv", "locator": "qty", "valueType": "integer"},
			{"name": "price", "sourceKind": "csv", "locator": "price", "valueType": "float"}
		]
	}`
	rows := [][]string{{"5", "1.25"}, {"6", "2.50"}, {"oops", "3.00"}}

	runOnce := func() *result.Set {
		sch, err := schema.Parse([]byte(doc))
		require.NoError(t, err)
		src := csvSource([]string{"qty", "price"}, rows...)
		set, err := Run(context.Background(), sch, src, Options{})
		require.NoError(t, err)
		return set
	}

	first := runOnce()
	second := runOnce()

	assert.Equal(t, first.Records(), second.Records())
	assert.Equal(t, first.Summary(), second.Summary())
}

func TestRun_Limit(t *testing.T) {
	sch, err := schema.Parse([]byte(`{
		"inputKind": "text",
		"fields": [{"name": "line", "sourceKind": "text", "locator": ".*", "valueType": "string"}]
	}`))
	require.NoError(t, err)

	src := textSource("a", "b", "c", "d")
	set, err := Run(context.Background(), sch, src, Options{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 2, set.Summary().Processed)
}

func TestAssembler_Counters(t *testing.T) {
	sch, err := schema.Parse([]byte(`{
		"inputKind": "text",
		"fields": [
			{"name": "req", "sourceKind": "text", "locator": "r=(\\d+)", "valueType": "integer", "required": true},
			{"name": "opt", "sourceKind": "text", "locator": "o=(\\d+)", "valueType": "integer", "required": false}
		]
	}`))
	require.NoError(t, err)

	a := NewAssembler(sch)
	req := sch.Field("req")
	opt := sch.Field("opt")

	// Required ok, optional failed: emitted, optional failure counted.
	rec, ok := a.Assemble([]Extracted{
		{Field: req, OK: true, Value: result.IntValue(1)},
		{Field: opt, OK: false},
	})
	require.True(t, ok)
	assert.Len(t, rec, 1)

	// Required failed: skipped.
	_, ok = a.Assemble([]Extracted{
		{Field: req, OK: false},
		{Field: opt, OK: true, Value: result.IntValue(2)},
	})
	assert.False(t, ok)

	assert.Equal(t, 1, a.Skipped())
	assert.Equal(t, map[string]int{"req": 1, "opt": 1}, a.Failures())
}
