package reader

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectUnits(t *testing.T, unitCh <-chan Unit, errCh <-chan error) ([]Unit, error) {
	t.Helper()
	var units []Unit
	for u := range unitCh {
		units = append(units, u)
	}
	for err := range errCh {
		if err != nil {
			return units, err
		}
	}
	return units, nil
}

func TestStreamLines_Basic(t *testing.T) {
	input := "first line\nsecond line\nthird\n"
	unitCh, errCh := StreamLines(context.Background(), strings.NewReader(input), LineOptions{})
	units, err := collectUnits(t, unitCh, errCh)
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "first line", units[0].Text)
	assert.Equal(t, "third", units[2].Text)
}

func TestStreamLines_CarriageReturns(t *testing.T) {
	input := "a\r\nb\r\n"
	unitCh, errCh := StreamLines(context.Background(), strings.NewReader(input), LineOptions{})
	units, err := collectUnits(t, unitCh, errCh)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "a", units[0].Text)
	assert.Equal(t, "b", units[1].Text)
}

func TestStreamLines_InvalidUTF8Dropped(t *testing.T) {
	// A raw 0xFF byte inside an otherwise fine line must not fail the pass.
	input := "ok \xffline\n"
	unitCh, errCh := StreamLines(context.Background(), strings.NewReader(input), LineOptions{})
	units, err := collectUnits(t, unitCh, errCh)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "ok line", units[0].Text)
}

func TestStreamLines_Latin1(t *testing.T) {
	// "café" in ISO 8859-1: é = 0xE9.
	input := "caf\xe9\n"
	unitCh, errCh := StreamLines(context.Background(), strings.NewReader(input), LineOptions{Encoding: "latin-1"})
	units, err := collectUnits(t, unitCh, errCh)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "café", units[0].Text)
}

func TestStreamLines_UnsupportedEncoding(t *testing.T) {
	unitCh, errCh := StreamLines(context.Background(), strings.NewReader("x\n"), LineOptions{Encoding: "ebcdic"})
	_, err := collectUnits(t, unitCh, errCh)
	require.Error(t, err)
}

func TestStreamCSV_HeaderAndRows(t *testing.T) {
	input := "qty,label\n5,widget\n7,gadget\n"
	headerCh := make(chan []string, 1)

	unitCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	units, err := collectUnits(t, unitCh, errCh)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, []string{"5", "widget"}, units[0].Cells)
	assert.Equal(t, []string{"7", "gadget"}, units[1].Cells)

	assert.Equal(t, []string{"qty", "label"}, <-headerCh)
}

func TestStreamCSV_VariableFieldCounts(t *testing.T) {
	input := "a,b,c\n1,2\n"
	unitCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	units, err := collectUnits(t, unitCh, errCh)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Len(t, units[0].Cells, 3)
	assert.Len(t, units[1].Cells, 2)
}

func TestStreamCSV_ContextCancellation(t *testing.T) {
	var sb strings.Builder
	for range 10000 {
		sb.WriteString("a,b,c\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	unitCh, errCh := StreamCSV(ctx, strings.NewReader(sb.String()), CSVOptions{})

	count := 0
	for range unitCh {
		count++
		if count >= 5 {
			cancel()
			break
		}
	}
	// Drain; the producer must terminate.
	for range unitCh {
	}
	for range errCh {
	}
}
