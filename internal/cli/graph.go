package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/render/dot"
)

// graphCommand creates the graph command that exports the flow structure
// of a document to Graphviz.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output string
		opts   dot.Options
	)

	cmd := &cobra.Command{
		Use:   "graph [document]",
		Short: "Export the flow graph of a document to Graphviz",
		Long: `Export the flow graph of a document to Graphviz.

The graph shows the flows, attachments and data associations the layout
works from, with one cluster per process. It is written as DOT, or drawn
as SVG by Graphviz when the output ends in .svg. Without -o the DOT is
printed to stdout.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := readDefinitions(args[0])
			if err != nil {
				return err
			}
			src, err := dot.ToDOT(defs, opts)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return writeOutput("-", []byte(src))
			}
			data := []byte(src)
			if strings.EqualFold(filepath.Ext(output), ".svg") {
				spinner := newSpinnerWithContext(cmd.Context(), "Running Graphviz...")
				spinner.Start()
				data, err = dot.RenderSVG(cmd.Context(), src)
				spinner.Stop()
				if err != nil {
					return fmt.Errorf("graphviz: %w", err)
				}
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}
			printSuccess("Exported flow graph")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, .dot or .svg (default: DOT to stdout)")
	cmd.Flags().StringVar(&opts.Process, "process", "", "export only this root process")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add element kinds to the labels")

	return cmd
}
