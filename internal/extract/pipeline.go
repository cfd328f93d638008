package extract

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/extract-cli/internal/reader"
	"github.com/sells-group/extract-cli/internal/result"
	"github.com/sells-group/extract-cli/internal/schema"
)

// Options tunes one extraction pass.
type Options struct {
	Limit int // stop after this many units (0 = all)
}

// Run performs a single synchronous pass: match, coerce, and assemble every
// unit from src in order, then finalize the result set. Reader I/O errors
// abort the pass; per-unit extraction failures never do.
func Run(ctx context.Context, sch *schema.Schema, src *reader.Source, opts Options) (*result.Set, error) {
	matcher := NewMatcher(sch)
	assembler := NewAssembler(sch)

	// CSV name locators bind against the header exactly once, before any row.
	if sch.Input == schema.InputCSV && src.Header != nil {
		select {
		case header, ok := <-src.Header:
			if ok {
				matcher.BindHeader(header)
			}
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "extract: context cancelled")
		}
	}

	var records []result.Record
	processed := 0

	for unit := range src.Units {
		// Past the limit, keep draining so the reader can finish and close
		// its channels, but stop processing.
		if opts.Limit > 0 && processed >= opts.Limit {
			continue
		}
		processed++

		values := matcher.Match(unit)
		for i := range values {
			Coerce(&values[i])
		}
		if rec, ok := assembler.Assemble(values); ok {
			records = append(records, rec)
		}
	}

	for err := range src.Errs {
		if err != nil {
			return nil, eris.Wrap(err, "extract: read input")
		}
	}

	summary := result.Summary{
		Processed:     processed,
		Emitted:       len(records),
		Skipped:       assembler.Skipped(),
		FieldFailures: assembler.Failures(),
	}

	zap.L().Info("extract: pass complete",
		zap.Int("processed", summary.Processed),
		zap.Int("emitted", summary.Emitted),
		zap.Int("skipped", summary.Skipped),
	)

	return result.Finalize(sch, records, summary), nil
}
