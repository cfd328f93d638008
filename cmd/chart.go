package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/extract-cli/internal/chart"
)

var (
	chartSchemaPath string
	chartOutput     string
	chartXField     string
	chartLimit      int
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>...",
	Short: "Run an extraction pass and chart its graphable fields",
	Long: `Runs the same pass as extract, then renders one line chart per
graphable field into a standalone HTML page. Records missing an optional
graphable value appear as gaps in the series.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		set, _, err := runPass(ctx, chartSchemaPath, args, chartLimit)
		if err != nil {
			return err
		}

		output := chartOutput
		if output == "" {
			output = cfg.Chart.Output
		}
		xField := chartXField
		if xField == "" {
			xField = cfg.Chart.XField
		}

		f, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "chart: create %s", output)
		}
		defer f.Close() //nolint:errcheck

		if err := chart.Render(f, set, chart.Options{XField: xField, Title: chartSchemaPath}); err != nil {
			return err
		}

		zap.L().Info("chart: page written",
			zap.String("output", output),
			zap.Strings("fields", set.GraphableFields()),
			zap.Int("records", set.Len()),
		)
		return nil
	},
}

func init() {
	chartCmd.Flags().StringVar(&chartSchemaPath, "schema", "", "path to the schema document (required)")
	chartCmd.Flags().StringVar(&chartOutput, "output", "", "HTML output file")
	chartCmd.Flags().StringVar(&chartXField, "x-field", "", "field to use as x-axis (default: record index)")
	chartCmd.Flags().IntVar(&chartLimit, "limit", 0, "max input units to process (0 = all)")
	_ = chartCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(chartCmd)
}
