package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/extract-cli/internal/schema"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <schema-file>",
	Short: "Validate a schema document and list its fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sch, err := schema.Load(args[0])
		if err != nil {
			return eris.Wrap(err, "fields")
		}

		fmt.Fprintf(os.Stdout, "inputKind: %s\n\n", sch.Input)
		formatFields(os.Stdout, sch)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

func formatFields(w io.Writer, sch *schema.Schema) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tLOCATOR\tREQUIRED\tGRAPHABLE")
	for i := range sch.Fields {
		f := &sch.Fields[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", f.Name, f.Type, f.Locator, f.Required, f.Graphable)
	}
	tw.Flush()
}
