package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/document"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/pipeline"
)

// watchDebounce collapses the burst of events editors emit for one save.
const watchDebounce = 150 * time.Millisecond

// layoutFlags holds the flags shared by layout and batch.
type layoutFlags struct {
	output    string
	formats   string
	noCache   bool
	refresh   bool
	maxSteps  int
	printGrid bool
}

func (f *layoutFlags) register(cmd *cobra.Command, outputHelp string) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", outputHelp)
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output formats, comma-separated: json (default), yaml, svg, png, pdf")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached layout exists")
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", -1, "placement step budget per document, 0 for unlimited (default: from config)")
	cmd.Flags().BoolVar(&f.printGrid, "print-grid", false, "print the final grid of every process")
}

// options builds pipeline options from the configured geometry and flags.
func (c *CLI) options(f *layoutFlags) pipeline.Options {
	opts := pipeline.Options{
		Layout:  c.Config.Layout,
		Grids:   f.printGrid,
		Refresh: f.refresh,
	}
	if f.maxSteps >= 0 {
		opts.Layout.MaxSteps = f.maxSteps
	}
	return opts
}

// layoutCommand creates the layout command for a single document.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags layoutFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "layout [document]",
		Short: "Compute the diagram layout of a process document",
		Long: `Compute the diagram layout of a process document.

The document is read from a YAML or JSON file, or from stdin when the path
is "-". The layout is written as diagram interchange (json, yaml) or drawn
as svg, png or pdf. Without -o the output goes next to the input as
<name>.layout.<format>; "-o -" writes to stdout.

With --watch the layout is recomputed every time the document changes.

Results are cached; see 'autolayout cache'.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(flags.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			if watch {
				if args[0] == "-" {
					return fmt.Errorf("--watch needs a file, not stdin")
				}
				return c.watchLayout(cmd.Context(), args[0], &flags, formats)
			}
			return c.runLayout(cmd.Context(), args[0], &flags, formats)
		},
	}

	flags.register(cmd, "output file (default: <input>.layout.<format>)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run the layout whenever the document changes")

	return cmd
}

// runLayout lays out one document and writes every requested format.
func (c *CLI) runLayout(ctx context.Context, input string, flags *layoutFlags, formats []string) error {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	defs, err := readDefinitions(input)
	if err != nil {
		return err
	}

	sw := newStopwatch(c.Logger)
	res, err := runner.Layout(ctx, defs, c.options(flags))
	if err != nil {
		return err
	}
	sw.lap("layout", "document", input, "cached", res.CacheHit)

	toStdout := flags.output == "-" || (input == "-" && flags.output == "")
	if !toStdout {
		printSummary(input, summarize(res))
	}
	if flags.printGrid {
		for _, g := range res.Layout.Grids {
			fmt.Fprintln(os.Stderr, gridTable(g))
		}
	}

	for _, format := range formats {
		data, err := runner.Render(ctx, res.Layout, format)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := outputPath(input, flags.output, format, len(formats) > 1)
		if toStdout {
			path = "-"
		}
		if err := writeOutput(path, data); err != nil {
			return err
		}
		sw.lap("render", "format", format, "bytes", len(data))
		if path != "-" {
			printFile(path)
		}
	}
	return nil
}

// watchLayout runs the layout once and again after every write to input
// until ctx is cancelled. Layout errors are reported and the watch goes on.
func (c *CLI) watchLayout(ctx context.Context, input string, flags *layoutFlags, formats []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Editors often replace the file, so the directory is watched instead.
	abs, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}

	rerun := func() {
		if err := c.runLayout(ctx, input, flags, formats); err != nil {
			printError("%v", err)
		}
	}
	rerun()
	printInfo("Watching %s (ctrl+c to stop)", input)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			printNewline()
			rerun()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "error", err)
		}
	}
}

// readDefinitions reads a document from path, or from stdin for "-".
func readDefinitions(path string) (*model.Definitions, error) {
	if path == "-" {
		return document.Read(os.Stdin, "")
	}
	return document.ReadFile(path)
}

// writeOutput writes data to path, or to stdout for "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
