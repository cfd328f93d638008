package reader

import (
	"context"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/extract-cli/internal/schema"
)

// Source is a forward-only unit sequence spanning one or more input files.
// Header is non-nil only for CSV input with a header row; it delivers the
// header exactly once, before any unit.
type Source struct {
	Units  <-chan Unit
	Header <-chan []string
	Errs   <-chan error
}

// Open streams the given files, in order, as a single unit sequence of the
// given input kind. For CSV input every file is expected to carry the same
// header row; the first file's header is delivered on Source.Header and the
// remaining files' header rows are discarded.
func Open(ctx context.Context, kind schema.InputKind, paths []string, opts Options) *Source {
	unitCh := make(chan Unit, 64)
	errCh := make(chan error, 1)

	var headerCh chan []string
	if kind == schema.InputCSV {
		headerCh = make(chan []string, 1)
	}

	go func() {
		defer close(unitCh)
		defer close(errCh)
		if headerCh != nil {
			defer close(headerCh)
		}

		for i, path := range paths {
			if err := streamFile(ctx, kind, path, i == 0, opts, unitCh, headerCh); err != nil {
				errCh <- err
				return
			}
		}
	}()

	return &Source{Units: unitCh, Header: headerCh, Errs: errCh}
}

func streamFile(ctx context.Context, kind schema.InputKind, path string, first bool, opts Options, out chan<- Unit, headerCh chan<- []string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "reader: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var units <-chan Unit
	var errs <-chan error

	switch kind {
	case schema.InputCSV:
		csvOpts := opts.CSV
		csvOpts.HasHeader = true
		if first {
			csvOpts.HeaderCh = headerCh
		} else {
			csvOpts.HeaderCh = nil
		}
		units, errs = StreamCSV(ctx, f, csvOpts)
	default:
		units, errs = StreamLines(ctx, f, opts.Line)
	}

	for u := range units {
		u.Source = path
		select {
		case out <- u:
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "reader: context cancelled")
		}
	}
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
