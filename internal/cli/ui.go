package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/pipeline"
)

// =============================================================================
// Palette
// =============================================================================

// Colors follow the diagram: shapes, flows, lanes, and the run outcome.
var (
	colorShape   = lipgloss.Color("36")  // teal, process and shape names
	colorFlow    = lipgloss.Color("75")  // light blue, edges and addresses
	colorLane    = lipgloss.Color("245") // gray, lane bands and notes
	colorRule    = lipgloss.Color("240") // dim gray, separators
	colorPlaced  = lipgloss.Color("35")  // green, finished layouts
	colorPartial = lipgloss.Color("220") // amber, truncated layouts
	colorStalled = lipgloss.Color("167") // red, failed layouts
	colorValue   = lipgloss.Color("255")
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle renders process and document names.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorShape)

	// StyleLink renders listen addresses.
	StyleLink = lipgloss.NewStyle().Foreground(colorFlow).Underline(true)

	// StyleDim renders grid sizes, lane lists and other secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorRule)

	// StyleValue renders output paths and build info.
	StyleValue = lipgloss.NewStyle().Foreground(colorValue)
)

var (
	stylePlaced  = lipgloss.NewStyle().Foreground(colorPlaced)
	stylePartial = lipgloss.NewStyle().Foreground(colorPartial)
	styleStalled = lipgloss.NewStyle().Foreground(colorStalled)
	styleNote    = lipgloss.NewStyle().Foreground(colorLane)
	styleSpinner = lipgloss.NewStyle().Foreground(colorShape)
	styleKey     = lipgloss.NewStyle().Foreground(colorLane).Width(12)
)

const (
	markPlaced  = "✓"
	markPartial = "◐"
	markStalled = "✗"
	markNote    = "›"
	markOutput  = "→"
	separator   = " · "
)

// statusOut receives human-readable status lines. The layout command prints
// none when the diagram itself goes to stdout.
var statusOut io.Writer = os.Stdout

func status(mark lipgloss.Style, icon, format string, args ...any) {
	fmt.Fprintln(statusOut, mark.Render(icon)+" "+fmt.Sprintf(format, args...))
}

// printSuccess reports a finished step.
func printSuccess(format string, args ...any) { status(stylePlaced, markPlaced, format, args...) }

// printError reports a failed step without stopping the command.
func printError(format string, args ...any) { status(styleStalled, markStalled, format, args...) }

// printInfo reports progress that needs no action.
func printInfo(format string, args ...any) { status(styleNote, markNote, format, args...) }

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written output file.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(markOutput)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printNewline() { fmt.Fprintln(statusOut) }

// =============================================================================
// Layout Summary
// =============================================================================

// layoutSummary is the one-line account of a layout run.
type layoutSummary struct {
	Processes int
	Shapes    int
	Edges     int
	Steps     int
	Cached    bool
	Truncated bool
}

func summarize(res *pipeline.Result) layoutSummary {
	s := layoutSummary{
		Shapes: res.Stats.Shapes,
		Edges:  res.Stats.Edges,
		Cached: res.CacheHit,
	}
	if res.Layout != nil {
		s.Processes = res.Layout.Stats.Processes
		s.Steps = res.Layout.Stats.Steps
		s.Truncated = res.Layout.Stats.Truncated
	}
	return s
}

// String renders the summary, e.g. "2 processes · 9 shapes · 8 edges · fresh".
// Zero counts are left out.
func (s layoutSummary) String() string {
	var parts []string
	for _, c := range []struct {
		n    int
		unit string
	}{
		{s.Processes, "process"},
		{s.Shapes, "shape"},
		{s.Edges, "edge"},
	} {
		if c.n > 0 {
			parts = append(parts, plural(c.n, c.unit))
		}
	}
	switch {
	case s.Truncated:
		parts = append(parts, stylePartial.Render("partial"))
	case s.Cached:
		parts = append(parts, stylePlaced.Render("cached"))
	default:
		parts = append(parts, styleNote.Render("fresh"))
	}
	return strings.Join(parts, StyleDim.Render(separator))
}

// printSummary reports a laid out document. A truncated layout gets a
// second line naming the step at which the budget ran out.
func printSummary(input string, s layoutSummary) {
	if s.Truncated {
		status(stylePartial, markPartial, "Laid out %s", input)
	} else {
		status(stylePlaced, markPlaced, "Laid out %s", input)
	}
	fmt.Fprintln(statusOut, "  "+s.String())
	if s.Truncated {
		printDetail("step budget exhausted after %s; unplaced nodes are missing", plural(s.Steps, "step"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	if strings.HasSuffix(unit, "s") {
		return fmt.Sprintf("%d %ses", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
