package overlay

import (
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// Grid is a coordinate grid of process nodes bound to the live subgraph of
// its placed nodes.
//
// Every edge of the initial graph whose endpoints are both placed is mirrored
// into the live graph. Edge queries are flip-aware: while the grid is
// flipped, sources and targets swap roles.
//
// The zero value is not usable - use [New].
type Grid struct {
	*grid.Grid[*process.Node]

	initial *process.Graph
	live    *process.Graph
}

// New creates an empty grid over the initial graph.
func New(initial *process.Graph) *Grid {
	if initial == nil {
		initial = process.New()
	}
	return &Grid{
		Grid:    grid.New[*process.Node](),
		initial: initial,
		live:    process.New(),
	}
}

// Initial returns the full process graph the grid was created for.
func (g *Grid) Initial() *process.Graph { return g.initial }

// Live returns the graph of placed nodes and their mirrored edges.
func (g *Grid) Live() *process.Graph { return g.live }

// Lanes returns the placed lanes in insertion order.
func (g *Grid) Lanes() []*process.Node {
	var lanes []*process.Node
	for _, el := range g.Elements() {
		if el.IsLane() {
			lanes = append(lanes, el)
		}
	}
	return lanes
}

// HasLanes reports whether any lane is placed.
func (g *Grid) HasLanes() bool {
	for _, el := range g.Elements() {
		if el.IsLane() {
			return true
		}
	}
	return false
}

// Add places el and mirrors its edges.
//
// Lanes are placed as plain spanning elements without edges. In a grid with
// lanes, a node without a position goes into the first row of its lane band
// that holds nothing but the lane; when every row is taken, the band grows by
// one row. A node with a position below its band grows the band down to it.
func (g *Grid) Add(el *process.Node, pos *grid.Position) {
	if el.IsLane() {
		g.Grid.Add(el, pos)
		return
	}

	lanePos, ok := g.Find(el.Lane)
	if !ok || !g.HasLanes() {
		g.place(el, pos)
		return
	}
	span := g.SpanOf(el.Lane)
	last := lanePos.Row + span.Rows - 1

	if pos == nil || !pos.IsValid() {
		for r := lanePos.Row; r <= last; r++ {
			if g.rowFreeInLane(r, el.Lane) {
				g.place(el, &grid.Position{Row: r, Col: 0})
				return
			}
		}
		g.AddRowCol(false, last, 1)
		g.place(el, &grid.Position{Row: last + 1, Col: 0})
		g.SetSpan(el.Lane, grid.Span{Cols: span.Cols, Rows: span.Rows + 1})
		return
	}

	if dif := pos.Row - last; dif > 0 {
		g.AddRowCol(false, last, dif)
		g.SetSpan(el.Lane, grid.Span{Cols: span.Cols, Rows: span.Rows + dif})
	}
	g.place(el, pos)
}

func (g *Grid) rowFreeInLane(row int, lane *process.Node) bool {
	for _, other := range g.ElementsInRow(row) {
		if other != lane {
			return false
		}
	}
	return true
}

// place puts el at pos without lane handling and mirrors its edges.
func (g *Grid) place(el *process.Node, pos *grid.Position) {
	g.Grid.Add(el, pos)
	if el.IsLane() {
		return
	}
	g.live.AddNode(el)
	g.link(el)
}

func (g *Grid) link(el *process.Node) {
	for _, e := range g.initial.Outgoing(el) {
		if g.Has(e.Target) {
			g.live.AddEdge(e)
		}
	}
	for _, e := range g.initial.Incoming(el) {
		if g.Has(e.Source) {
			g.live.AddEdge(e)
		}
	}
}

// RemoveElement removes el from the grid and drops its live edges.
func (g *Grid) RemoveElement(el *process.Node) {
	g.live.RemoveNode(el)
	g.Grid.RemoveElement(el)
}

// RemoveElementAt removes every occupant of the cell at p.
func (g *Grid) RemoveElementAt(p grid.Position) {
	for _, el := range g.Get(p.Row, p.Col) {
		g.RemoveElement(el)
	}
}

// RemoveEdge drops e from the live graph. The initial graph is unchanged.
func (g *Grid) RemoveEdge(e *process.Edge) { g.live.RemoveEdge(e) }

// =============================================================================
// Flip-aware edge queries
// =============================================================================

// EdgeSource returns the effective source of e under the current flip.
func (g *Grid) EdgeSource(e *process.Edge) *process.Node {
	if g.IsFlipped() {
		return e.Target
	}
	return e.Source
}

// EdgeTarget returns the effective target of e under the current flip.
func (g *Grid) EdgeTarget(e *process.Edge) *process.Node {
	if g.IsFlipped() {
		return e.Source
	}
	return e.Target
}

// SourcePosition returns the cell of the effective source of e.
func (g *Grid) SourcePosition(e *process.Edge) (grid.Position, bool) {
	return g.Find(g.EdgeSource(e))
}

// TargetPosition returns the cell of the effective target of e.
func (g *Grid) TargetPosition(e *process.Edge) (grid.Position, bool) {
	return g.Find(g.EdgeTarget(e))
}

// OutgoingEdges returns the live edges leaving n under the current flip.
func (g *Grid) OutgoingEdges(n *process.Node) []*process.Edge {
	if g.IsFlipped() {
		return g.live.Incoming(n)
	}
	return g.live.Outgoing(n)
}

// IncomingEdges returns the live edges entering n under the current flip.
func (g *Grid) IncomingEdges(n *process.Node) []*process.Edge {
	if g.IsFlipped() {
		return g.live.Outgoing(n)
	}
	return g.live.Incoming(n)
}

// AllEdgesFor returns the live edges touching n, outgoing first, each once.
func (g *Grid) AllEdgesFor(n *process.Node) []*process.Edge {
	out := g.OutgoingEdges(n)
	for _, e := range g.IncomingEdges(n) {
		if !containsEdge(out, e) {
			out = append(out, e)
		}
	}
	return out
}

// InitialOutgoing returns the edges of the initial graph leaving n under the
// current flip.
func (g *Grid) InitialOutgoing(n *process.Node) []*process.Edge {
	if g.IsFlipped() {
		return g.initial.Incoming(n)
	}
	return g.initial.Outgoing(n)
}

// InitialIncoming returns the edges of the initial graph entering n under
// the current flip.
func (g *Grid) InitialIncoming(n *process.Node) []*process.Edge {
	if g.IsFlipped() {
		return g.initial.Outgoing(n)
	}
	return g.initial.Incoming(n)
}

func containsEdge(edges []*process.Edge, e *process.Edge) bool {
	for _, x := range edges {
		if x == e {
			return true
		}
	}
	return false
}

// Direction classifies e from its effective source to its effective target.
// It fails with INVALID_ENDPOINT when either endpoint is not placed.
func (g *Grid) Direction(e *process.Edge) (Direction, error) {
	src, okS := g.SourcePosition(e)
	tgt, okT := g.TargetPosition(e)
	if !okS || !okT {
		return NoDirection, errors.New(errors.ErrCodeInvalidEndpoint,
			"Invalid position of source or target in %s-%s flipped:%v", e.Source, e.Target, g.IsFlipped())
	}
	return Classify(src, tgt), nil
}

// dir is Direction for live edges, whose endpoints are placed by
// construction.
func (g *Grid) dir(e *process.Edge) Direction {
	d, _ := g.Direction(e)
	return d
}

// BackwardUpOutgoingEdges returns the outgoing live edges of n that point up
// or up-left.
func (g *Grid) BackwardUpOutgoingEdges(n *process.Node) []*process.Edge {
	var out []*process.Edge
	for _, e := range g.OutgoingEdges(n) {
		if d := g.dir(e); d == SN || d == SENW {
			out = append(out, e)
		}
	}
	return out
}
