package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/pipeline"
)

func captureStatus(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := statusOut
	statusOut = &buf
	t.Cleanup(func() { statusOut = prev })
	return &buf
}

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

// plain drops color sequences, which appear when the tests run on a terminal.
func plain(s string) string { return ansi.ReplaceAllString(s, "") }

func TestLayoutSummaryString(t *testing.T) {
	tests := []struct {
		name string
		s    layoutSummary
		want string
	}{
		{"fresh", layoutSummary{Processes: 2, Shapes: 9, Edges: 8}, "2 processes · 9 shapes · 8 edges · fresh"},
		{"cached", layoutSummary{Processes: 1, Shapes: 1, Cached: true}, "1 process · 1 shape · cached"},
		{"partial wins over cached", layoutSummary{Shapes: 3, Edges: 1, Cached: true, Truncated: true}, "3 shapes · 1 edge · partial"},
		{"empty", layoutSummary{}, "fresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := plain(tt.s.String()); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	res := &pipeline.Result{
		Layout:   &layouter.Result{Stats: layouter.Stats{Processes: 2, Steps: 17, Truncated: true}},
		Stats:    pipeline.Stats{Shapes: 9, Edges: 8},
		CacheHit: true,
	}
	want := layoutSummary{Processes: 2, Shapes: 9, Edges: 8, Steps: 17, Cached: true, Truncated: true}
	if got := summarize(res); got != want {
		t.Errorf("summarize() = %+v, want %+v", got, want)
	}

	if got := summarize(&pipeline.Result{Stats: pipeline.Stats{Shapes: 1}}); got != (layoutSummary{Shapes: 1}) {
		t.Errorf("summarize() without layout = %+v", got)
	}
}

func TestPrintSummary(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		buf := captureStatus(t)
		printSummary("orders.yaml", layoutSummary{Processes: 1, Shapes: 4, Edges: 3})
		out := plain(buf.String())
		if !strings.HasPrefix(out, markPlaced+" Laid out orders.yaml\n") {
			t.Errorf("output = %q, want a placed mark first", out)
		}
		if strings.Contains(out, "budget") {
			t.Errorf("output = %q mentions the step budget", out)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		buf := captureStatus(t)
		printSummary("big.yaml", layoutSummary{Shapes: 4, Steps: 1, Truncated: true})
		out := plain(buf.String())
		if !strings.HasPrefix(out, markPartial+" Laid out big.yaml\n") {
			t.Errorf("output = %q, want a partial mark first", out)
		}
		if !strings.Contains(out, "step budget exhausted after 1 step;") {
			t.Errorf("output = %q, want the budget line", out)
		}
	})
}

func TestStatusLines(t *testing.T) {
	buf := captureStatus(t)
	printError("%s: %v", "a.yaml", "unknown reference")
	printFile("orders.layout.svg")
	printKeyValue("version", "dev")

	lines := strings.Split(strings.TrimRight(plain(buf.String()), "\n"), "\n")
	want := []string{
		markStalled + " a.yaml: unknown reference",
		"  " + markOutput + " orders.layout.svg",
		"version      dev",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
