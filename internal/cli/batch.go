package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/document"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/pipeline"
)

// batchCommand creates the batch command that lays out many documents
// concurrently.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		flags   layoutFlags
		workers int
	)

	cmd := &cobra.Command{
		Use:   "batch [documents or directories...]",
		Short: "Lay out many documents concurrently",
		Long: `Lay out many documents concurrently.

Directories are searched recursively for .yaml, .yml and .json documents.
Each output is written next to its input, or into the -o directory keeping
the input's base name. A failing document does not stop the others; the
command fails when any document failed.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(flags.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			inputs, err := collectInputs(args)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no documents found")
			}
			return c.runBatch(cmd.Context(), inputs, &flags, formats, workers)
		},
	}

	flags.register(cmd, "output directory (default: next to each input)")
	cmd.Flags().IntVarP(&workers, "jobs", "j", runtime.NumCPU(), "number of documents laid out in parallel")

	return cmd
}

// batchFailure is one document that could not be laid out.
type batchFailure struct {
	input string
	err   error
}

func (c *CLI) runBatch(ctx context.Context, inputs []string, flags *layoutFlags, formats []string, workers int) error {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := c.options(flags)
	opts.Grids = false
	sw := newStopwatch(c.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("0/%d documents", len(inputs)))
	spinner.Start()

	var (
		done, cached atomic.Int64
		mu           sync.Mutex
		failures     []batchFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, input := range inputs {
		g.Go(func() error {
			hit, err := c.layoutOne(gctx, runner, input, flags.output, formats, opts)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				failures = append(failures, batchFailure{input, err})
				mu.Unlock()
			} else if hit {
				cached.Add(1)
			}
			spinner.SetMessage("%d/%d documents", done.Add(1), len(inputs))
			return nil
		})
	}
	err = g.Wait()
	spinner.Stop()
	if err != nil {
		return err
	}
	sw.lap("layout", "documents", len(inputs), "workers", workers)

	sort.Slice(failures, func(i, j int) bool { return failures[i].input < failures[j].input })
	for _, f := range failures {
		printError("%s: %v", f.input, f.err)
	}

	ok := len(inputs) - len(failures)
	sw.done(fmt.Sprintf("Laid out %d of %d documents, %d from cache", ok, len(inputs), cached.Load()))
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d documents failed", len(failures), len(inputs))
	}
	return nil
}

// layoutOne lays out input and writes every format. It reports whether the
// layout came from the cache.
func (c *CLI) layoutOne(ctx context.Context, runner *pipeline.Runner, input, outDir string, formats []string, opts pipeline.Options) (bool, error) {
	defs, err := document.ReadFile(input)
	if err != nil {
		return false, err
	}
	opts.Logger = c.Logger.With("document", input)
	res, err := runner.Layout(ctx, defs, opts)
	if err != nil {
		return false, err
	}

	for _, format := range formats {
		data, err := runner.Render(ctx, res.Layout, format)
		if err != nil {
			return false, fmt.Errorf("render %s: %w", format, err)
		}
		path := outputPath(input, "", format, true)
		if outDir != "" {
			path = filepath.Join(outDir, filepath.Base(path))
		}
		if err := writeOutput(path, data); err != nil {
			return false, err
		}
	}
	return res.CacheHit, nil
}

// collectInputs expands directories into the documents they contain.
// Explicit file arguments are kept whatever their extension.
func collectInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || document.FormatFromPath(path) == "" || isLayoutOutput(path) {
				return nil
			}
			out = append(out, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// isLayoutOutput reports whether path looks like a previous layout output,
// e.g. orders.layout.json.
func isLayoutOutput(path string) bool {
	base := filepath.Base(path)
	return filepath.Ext(base[:len(base)-len(filepath.Ext(base))]) == ".layout"
}
