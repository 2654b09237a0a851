package placement

import (
	"slices"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/overlay"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// fixNewCrosses repairs the crossings created by the edges of a freshly
// placed element. Edges towards nodes still waiting in nextElements or on
// the stack are skipped, and so are the up-going outgoing edges when
// skipTopLeft is set: the forward-shift pass takes care of those.
func (s *state) fixNewCrosses(el *process.Node, pending *process.Sequence, nextElements []*process.Node, skipTopLeft bool) {
	g := s.grid
	if p, ok := g.Find(el); ok && g.IsCrossed(p, true) {
		pushVerticalEdgeBy(g, []*process.Node{el})
	}

	outgoing := g.OutgoingEdges(el)
	slices.SortStableFunc(outgoing, byPosition(g.TargetPosition))
	incoming := g.IncomingEdges(el)
	slices.SortStableFunc(incoming, byPosition(g.SourcePosition))

	var edges []*process.Edge
	for _, e := range append(outgoing, incoming...) {
		if e.IsSelfLoop() || slices.Contains(nextElements, e.Target) {
			continue
		}
		if pending != nil && s.inStackWithoutOutgoing(e.Target, pending) {
			continue
		}
		if d, _ := g.Direction(e); skipTopLeft && e.Source == el && (d == overlay.SENW || d == overlay.SN) {
			continue
		}
		edges = append(edges, e)
	}

	for _, e := range edges {
		fixVerticalCrosses(g, e)
		if d, _ := g.Direction(e); d == overlay.EW && g.EdgeSource(e).IsBoundary() && e.Drawn() {
			continue
		}
		fixHorizontalCrosses(g, e)
	}
}

func byPosition(find func(*process.Edge) (grid.Position, bool)) func(a, b *process.Edge) int {
	return func(a, b *process.Edge) int {
		pa, _ := find(a)
		pb, _ := find(b)
		if pa.Row != pb.Row {
			return pa.Row - pb.Row
		}
		return pa.Col - pb.Col
	}
}

// fixVerticalCrosses clears the elements crossed by the vertical part of e.
func fixVerticalCrosses(g *overlay.Grid, e *process.Edge) {
	d, err := g.Direction(e)
	if err != nil || d.IsHorizontal() {
		return
	}
	crossed := g.CrossedElementsFor(e, true)
	if len(crossed) == 0 {
		return
	}
	switch d {
	case overlay.SN, overlay.NS:
		moveElementsRighterCrossLine(g, crossed)
	case overlay.SWNE, overlay.NWSE, overlay.NESW, overlay.SENW:
		pushVerticalEdgeBy(g, crossed)
	}
}

// fixHorizontalCrosses clears the elements crossed by the horizontal part of
// e.
func fixHorizontalCrosses(g *overlay.Grid, e *process.Edge) {
	d, err := g.Direction(e)
	if err != nil || d.IsVertical() {
		return
	}
	crossed := g.CrossedElementsFor(e, false)
	if len(crossed) == 0 {
		return
	}
	switch d {
	case overlay.SWNE:
		liftAboveSource(g, e)
	case overlay.WE, overlay.EW:
		moveElementsUnderCrossLine(g, crossed)
	case overlay.NWSE, overlay.NESW, overlay.SENW:
		moveElementsUpperCrossLine(g, crossed)
	}
}

// liftAboveSource opens rows above the source of an SW_NE edge and moves
// everything right of the source back up, so the horizontal leg runs below
// it.
func liftAboveSource(g *overlay.Grid, e *process.Edge) {
	down := maxDown(g, e)
	if down == 0 {
		return
	}
	src, _ := g.SourcePosition(e)
	g.AddRowCol(false, src.Row-1, down)

	src, _ = g.SourcePosition(e)
	from := grid.Position{Row: src.Row, Col: src.Col + 1}
	to := grid.Position{Row: g.RowCount() - 1, Col: g.ColCount() - 1}

	moves := make(map[*process.Node]grid.Position)
	var order []*process.Node
	for _, el := range g.ElementsInRange(from, to) {
		if el.IsLane() {
			continue
		}
		p, _ := g.Find(el)
		moves[el] = grid.Position{Row: p.Row - down, Col: p.Col}
		order = append(order, el)
	}
	for _, el := range order {
		_ = g.Move(el, moves[el])
	}
}

// maxDown counts the consecutive rows, starting at the source row, that hold
// elements between the source and the target column of e.
func maxDown(g *overlay.Grid, e *process.Edge) int {
	src, _ := g.SourcePosition(e)
	tgt, _ := g.TargetPosition(e)
	n := 0
	for r := src.Row; r < g.RowCount(); r++ {
		if g.OccupiedInRange(grid.Position{Row: r, Col: src.Col + 1}, grid.Position{Row: r, Col: tgt.Col}) == 0 {
			break
		}
		n++
	}
	return n
}

// moveElementsUpperCrossLine opens a row above the first element and moves
// every element into it.
func moveElementsUpperCrossLine(g *overlay.Grid, elements []*process.Node) {
	first, _ := g.Find(elements[0])
	row := first.Row
	g.AddRowCol(false, row-1, 1)
	for _, el := range elements {
		p, _ := g.Find(el)
		_ = g.Move(el, grid.Position{Row: row, Col: p.Col})
	}
}

// moveElementsUnderCrossLine opens a row below the first element and moves
// every element into it.
func moveElementsUnderCrossLine(g *overlay.Grid, elements []*process.Node) {
	first, _ := g.Find(elements[0])
	row := first.Row
	g.AddRowCol(false, row, 1)
	for _, el := range elements {
		p, _ := g.Find(el)
		_ = g.Move(el, grid.Position{Row: row + 1, Col: p.Col})
	}
}

// moveElementsRighterCrossLine opens a column right of the first element and
// moves every element into it.
func moveElementsRighterCrossLine(g *overlay.Grid, elements []*process.Node) {
	first, _ := g.Find(elements[0])
	col := first.Col
	g.AddRowCol(true, col, 1)
	for _, el := range elements {
		p, _ := g.Find(el)
		_ = g.Move(el, grid.Position{Row: p.Row, Col: col + 1})
	}
}

// pushVerticalEdgeBy opens a column left of the first element and moves the
// elements back into it, so everything else from that column on shifts
// right together with the crossing edge.
func pushVerticalEdgeBy(g *overlay.Grid, elements []*process.Node) {
	first, _ := g.Find(elements[0])
	col := first.Col
	g.AddRowCol(true, col-1, 1)
	for _, el := range elements {
		p, _ := g.Find(el)
		_ = g.Move(el, grid.Position{Row: p.Row, Col: col})
	}
}
