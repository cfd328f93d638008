package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/extract-cli/internal/export"
	"github.com/sells-group/extract-cli/internal/extract"
	"github.com/sells-group/extract-cli/internal/reader"
	"github.com/sells-group/extract-cli/internal/result"
	"github.com/sells-group/extract-cli/internal/schema"
	"github.com/sells-group/extract-cli/internal/store"
)

var (
	extractSchemaPath string
	extractOutput     string
	extractFormat     string
	extractEncoding   string
	extractLimit      int
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Run an extraction pass over input files",
	Long: `Applies a schema document to one or more input files and writes the
assembled records in tabular form.

Examples:
  # CSV input to stdout
  extract-cli extract --schema qty.json readings.csv

  # Text logs to an XLSX workbook
  extract-cli extract --schema errors.yaml --format xlsx --output out.xlsx log1.txt log2.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		set, elapsed, err := runPass(ctx, extractSchemaPath, args, extractLimit)
		if err != nil {
			return err
		}

		if err := recordRun(ctx, set, extractSchemaPath, args, elapsed); err != nil {
			return err
		}

		format := extractFormat
		if format == "" {
			format = cfg.Export.Format
		}
		output := extractOutput
		if output == "" {
			output = cfg.Export.Output
		}

		return writeSet(set, format, output)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractSchemaPath, "schema", "", "path to the schema document (required)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "output file (default: stdout; required for xlsx)")
	extractCmd.Flags().StringVar(&extractFormat, "format", "", "output format: csv, xlsx, or jsonl")
	extractCmd.Flags().StringVar(&extractEncoding, "encoding", "", "input charset: utf-8, latin-1, windows-1252")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "max input units to process (0 = all)")
	_ = extractCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(extractCmd)
}

// runPass loads the schema and runs one extraction pass over the inputs.
func runPass(ctx context.Context, schemaPath string, inputs []string, limit int) (*result.Set, time.Duration, error) {
	sch, err := schema.Load(schemaPath)
	if err != nil {
		return nil, 0, eris.Wrap(err, "extract: load schema")
	}

	encoding := extractEncoding
	if encoding == "" {
		encoding = cfg.Input.Encoding
	}

	src := reader.Open(ctx, sch.Input, inputs, reader.Options{
		Line: reader.LineOptions{Encoding: encoding},
		CSV:  reader.CSVOptions{LazyQuotes: true},
	})

	start := time.Now()
	set, err := extract.Run(ctx, sch, src, extract.Options{Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	return set, time.Since(start), nil
}

// recordRun persists a run summary when the history store is enabled.
func recordRun(ctx context.Context, set *result.Set, schemaPath string, inputs []string, elapsed time.Duration) error {
	if !cfg.Store.Enabled {
		return nil
	}

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	summary := set.Summary()
	run := &store.Run{
		SchemaPath: schemaPath,
		Inputs:     inputs,
		InputKind:  string(set.Schema().Input),
		Processed:  summary.Processed,
		Emitted:    summary.Emitted,
		Skipped:    summary.Skipped,
		DurationMS: elapsed.Milliseconds(),
	}
	if err := st.SaveRun(ctx, run); err != nil {
		return err
	}

	zap.L().Debug("extract: run recorded", zap.String("run_id", run.ID))
	return nil
}

func writeSet(set *result.Set, format, output string) error {
	if format == "xlsx" {
		if output == "" {
			return eris.New("extract: xlsx output requires --output")
		}
		return export.WriteXLSX(output, set)
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "extract: create %s", output)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	switch format {
	case "", "csv":
		return export.WriteCSV(w, set)
	case "jsonl":
		return export.WriteJSONL(w, set)
	default:
		return eris.Errorf("extract: unknown format %q", format)
	}
}
