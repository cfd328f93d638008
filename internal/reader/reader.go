// Package reader turns input files into an ordered stream of raw units
// (text lines or CSV rows) for the extraction pipeline to consume.
package reader

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// maxLineSize bounds a single text line; log lines can run long.
const maxLineSize = 1 << 20

// Unit is one unprocessed line or row. Text is set for text input, Cells for
// CSV input.
type Unit struct {
	Source string
	Text   string
	Cells  []string
}

// LineOptions configures the text line streamer.
type LineOptions struct {
	// Encoding names the input charset: "" or "utf-8" (invalid bytes are
	// dropped), "latin-1"/"iso-8859-1", or "windows-1252".
	Encoding string
}

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune            // default ','
	Comment    rune            // comment character (0 = none)
	LazyQuotes bool
	HasHeader  bool            // if true, first row is skipped but sent to HeaderCh
	HeaderCh   chan<- []string // optional: receives the header row
}

// Options bundles per-kind reader settings.
type Options struct {
	Line LineOptions
	CSV  CSVOptions
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin-1", "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, eris.Errorf("reader: unsupported encoding %q", encoding)
	}
}

// StreamLines reads newline-delimited text and sends one Unit per line.
// Invalid UTF-8 sequences are dropped rather than failing the pass. Both
// channels are closed when processing completes.
func StreamLines(ctx context.Context, r io.Reader, opts LineOptions) (<-chan Unit, <-chan error) {
	unitCh := make(chan Unit, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(unitCh)
		defer close(errCh)

		dr, err := decodeReader(r, opts.Encoding)
		if err != nil {
			errCh <- err
			return
		}

		scanner := bufio.NewScanner(dr)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)

		for scanner.Scan() {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "reader: context cancelled")
				return
			}
			line := strings.ToValidUTF8(scanner.Text(), "")
			select {
			case unitCh <- Unit{Text: line}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "reader: context cancelled")
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- eris.Wrap(err, "reader: scan line")
		}
	}()

	return unitCh, errCh
}

// StreamCSV reads CSV and sends one Unit per data row. Rows may have varying
// field counts. Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan Unit, <-chan error) {
	unitCh := make(chan Unit, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(unitCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "reader: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "reader: read csv row")
				return
			}

			if first && opts.HasHeader {
				first = false
				if opts.HeaderCh != nil {
					select {
					case opts.HeaderCh <- record:
					case <-ctx.Done():
						errCh <- eris.Wrap(ctx.Err(), "reader: context cancelled sending header")
						return
					}
				}
				continue
			}
			first = false

			select {
			case unitCh <- Unit{Cells: record}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "reader: context cancelled")
				return
			}
		}
	}()

	return unitCh, errCh
}
