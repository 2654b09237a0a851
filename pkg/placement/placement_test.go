package placement

import (
	"context"
	"testing"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/overlay"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

type builder struct {
	g     *process.Graph
	nodes map[string]*process.Node
}

func newBuilder() *builder {
	return &builder{g: process.New(), nodes: make(map[string]*process.Node)}
}

func (b *builder) node(id string, kind process.Kind) *process.Node {
	n := &process.Node{ID: id, Kind: kind}
	b.nodes[id] = n
	b.g.AddNode(n)
	return n
}

func (b *builder) flow(id, src, dst string) *process.Edge {
	s, t := b.nodes[src], b.nodes[dst]
	process.Connect(s, t)
	e := &process.Edge{ID: id, Source: s, Target: t, Kind: process.EdgeSequenceFlow}
	b.g.AddEdge(e)
	return e
}

func (b *builder) boundary(id, host string) *process.Node {
	n := b.node(id, process.KindBoundaryEvent)
	h := b.nodes[host]
	process.Attach(n, h)
	b.g.AddEdge(&process.Edge{Source: n, Target: h, Kind: process.EdgeAttachment})
	b.g.AddEdge(&process.Edge{Source: h, Target: n, Kind: process.EdgeAttachment})
	return n
}

func run(t *testing.T, b *builder, opts Options) (*overlay.Grid, Report) {
	t.Helper()
	g, report, err := Run(context.Background(), b.g, opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return g, report
}

func find(t *testing.T, g *overlay.Grid, n *process.Node) grid.Position {
	t.Helper()
	p, ok := g.Find(n)
	if !ok {
		t.Fatalf("%s not placed", n)
	}
	return p
}

func TestRunGatewaySplit(t *testing.T) {
	b := newBuilder()
	b.node("start", process.KindStartEvent)
	b.node("gw", process.KindExclusiveGateway)
	b.node("t1", process.KindTask)
	b.node("t2", process.KindTask)
	edges := []*process.Edge{
		b.flow("f1", "start", "gw"),
		b.flow("f2", "gw", "t1"),
		b.flow("f3", "gw", "t2"),
	}

	g, report := run(t, b, Options{})

	tests := []struct {
		id   string
		want grid.Position
	}{
		{"start", grid.Position{Row: 0, Col: 0}},
		{"gw", grid.Position{Row: 0, Col: 1}},
		{"t1", grid.Position{Row: 0, Col: 2}},
		{"t2", grid.Position{Row: 1, Col: 2}},
	}
	for _, tt := range tests {
		if got := find(t, g, b.nodes[tt.id]); got != tt.want {
			t.Errorf("%s at %v, want %v", tt.id, got, tt.want)
		}
	}

	for _, e := range edges {
		if n := len(g.CrossedElementsFor(e, true)) + len(g.CrossedElementsFor(e, false)); n != 0 {
			t.Errorf("edge %s crosses %d elements", e, n)
		}
	}
	if report.Placed != 4 || report.Roots != 1 || report.Truncated {
		t.Errorf("report = %+v", report)
	}
}

func TestRunBackEdgeLoop(t *testing.T) {
	b := newBuilder()
	b.node("start", process.KindStartEvent)
	b.node("gw", process.KindExclusiveGateway)
	b.node("task", process.KindTask)
	b.node("end", process.KindEndEvent)
	b.flow("f1", "start", "gw")
	b.flow("f2", "gw", "task")
	back := b.flow("f3", "task", "gw")
	b.flow("f4", "task", "end")

	g, _ := run(t, b, Options{})

	gw, task := find(t, g, b.nodes["gw"]), find(t, g, b.nodes["task"])
	if gw.Col >= task.Col {
		t.Errorf("gateway column %d, task column %d, want gateway left of task", gw.Col, task.Col)
	}
	if crossed := g.CrossedElementsFor(back, true); len(crossed) != 0 {
		t.Errorf("back edge crosses %v vertically", crossed)
	}
}

func TestRunMovesBackEdgeTargetForward(t *testing.T) {
	b := newBuilder()
	b.node("start", process.KindStartEvent)
	b.node("gw", process.KindParallelGateway)
	b.node("a", process.KindTask)
	b.node("b", process.KindTask)
	b.flow("f1", "start", "gw")
	b.flow("f2", "gw", "a")
	b.flow("f3", "gw", "b")
	up := b.flow("f4", "b", "a")

	g, _ := run(t, b, Options{})

	a, bp := find(t, g, b.nodes["a"]), find(t, g, b.nodes["b"])
	if a.Col <= bp.Col {
		t.Errorf("a at %v, b at %v, want a right of b", a, bp)
	}
	if d, _ := g.Direction(up); d != overlay.SWNE {
		t.Errorf("Direction(b->a) = %v, want SW_NE", d)
	}
	if g.HasAnyCross() {
		t.Error("HasAnyCross() = true")
	}
}

func TestRunBoundaryEvent(t *testing.T) {
	b := newBuilder()
	b.node("start", process.KindStartEvent)
	b.node("host", process.KindUserTask)
	b.boundary("timer", "host")
	b.node("end", process.KindEndEvent)
	b.node("escalate", process.KindTask)
	b.flow("f1", "start", "host")
	b.flow("f2", "host", "end")
	b.flow("f3", "timer", "escalate")

	g, _ := run(t, b, Options{})

	host := find(t, g, b.nodes["host"])
	if timer := find(t, g, b.nodes["timer"]); timer != host {
		t.Errorf("timer at %v, want host cell %v", timer, host)
	}
	esc := find(t, g, b.nodes["escalate"])
	if esc.Row <= host.Row || esc.Col <= host.Col {
		t.Errorf("escalate at %v, want below and right of host %v", esc, host)
	}
}

func TestRunFlipsForSecondStart(t *testing.T) {
	b := newBuilder()
	b.node("a", process.KindStartEvent)
	b.node("b", process.KindStartEvent)
	b.node("c", process.KindTask)
	b.flow("f1", "a", "c")
	b.flow("f2", "b", "c")

	g, report := run(t, b, Options{})

	if g.IsFlipped() {
		t.Error("grid still flipped after Run")
	}
	if report.Flips != 1 || report.Roots != 2 {
		t.Errorf("report = %+v, want one flip and two roots", report)
	}
	tests := []struct {
		id   string
		want grid.Position
	}{
		{"a", grid.Position{Row: 0, Col: 0}},
		{"c", grid.Position{Row: 0, Col: 1}},
		{"b", grid.Position{Row: 1, Col: 0}},
	}
	for _, tt := range tests {
		if got := find(t, g, b.nodes[tt.id]); got != tt.want {
			t.Errorf("%s at %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestRunMaxSteps(t *testing.T) {
	b := newBuilder()
	b.node("start", process.KindStartEvent)
	b.node("gw", process.KindExclusiveGateway)
	b.node("t1", process.KindTask)
	b.flow("f1", "start", "gw")
	b.flow("f2", "gw", "t1")

	g, report := run(t, b, Options{MaxSteps: 1})
	if !report.Truncated {
		t.Error("Truncated = false, want true")
	}
	if report.Steps != 1 || g.Len() != 2 {
		t.Errorf("Steps = %d, placed = %d, want 1 and 2", report.Steps, g.Len())
	}
	if g.Has(b.nodes["t1"]) {
		t.Error("t1 placed beyond the step budget")
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("nil graph", func(t *testing.T) {
		_, _, err := Run(context.Background(), nil, Options{})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Run(nil) error = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		b := newBuilder()
		b.node("a", process.KindTask)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := Run(ctx, b.g, Options{})
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}

func TestRunEmptyGraph(t *testing.T) {
	g, report := run(t, newBuilder(), Options{})
	if g.Len() != 0 || report.Roots != 0 {
		t.Errorf("Len() = %d, Roots = %d, want empty", g.Len(), report.Roots)
	}
}

func TestRunIsolatedNodes(t *testing.T) {
	b := newBuilder()
	b.node("x", process.KindTask)
	b.node("y", process.KindTask)

	g, report := run(t, b, Options{})
	if report.Roots != 2 || g.Len() != 2 {
		t.Errorf("Roots = %d, Len() = %d, want 2 and 2", report.Roots, g.Len())
	}
	if x, y := find(t, g, b.nodes["x"]), find(t, g, b.nodes["y"]); x == y {
		t.Errorf("x and y share cell %v", x)
	}
}

func TestLiftAboveSourceMovesSharedCellOnce(t *testing.T) {
	b := newBuilder()
	src := b.node("src", process.KindTask)
	left := b.node("left", process.KindTask)
	right := b.node("right", process.KindTask)
	tgt := b.node("tgt", process.KindTask)
	e := b.flow("f", "src", "tgt")

	g := overlay.New(b.g)
	g.Add(src, &grid.Position{Row: 1, Col: 0})
	g.Add(left, &grid.Position{Row: 1, Col: 1})
	g.Add(right, &grid.Position{Row: 1, Col: 1})
	g.Add(tgt, &grid.Position{Row: 0, Col: 2})

	liftAboveSource(g, e)

	want := map[*process.Node]grid.Position{
		src:   {Row: 2, Col: 0},
		left:  {Row: 1, Col: 1},
		right: {Row: 1, Col: 1},
		tgt:   {Row: 0, Col: 2},
	}
	for n, p := range want {
		if got := find(t, g, n); got != p {
			t.Errorf("%s at %v, want %v", n, got, p)
		}
	}
	if g.RowCount() != 3 {
		t.Errorf("RowCount() = %d, want 3", g.RowCount())
	}
}
