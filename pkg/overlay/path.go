package overlay

import (
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// PathSegment is a cell an edge passes through. VCross and HCross tell
// whether the edge crosses the cell vertically, horizontally or both (a
// corner).
type PathSegment struct {
	Position grid.Position
	VCross   bool
	HCross   bool
}

// PathFor returns the cells the edge occupies between its endpoints, in walk
// order. Endpoint cells are never part of the path.
//
// Vertical edges going up take a detour outside the grid lines, and so have
// an empty path, when the source is a drawn boundary event, when another
// element sits between the endpoints, or when the target leads straight
// back to the source.
func (g *Grid) PathFor(e *process.Edge) []PathSegment {
	src, okS := g.SourcePosition(e)
	tgt, okT := g.TargetPosition(e)
	if !okS || !okT {
		return nil
	}
	source := g.EdgeSource(e)
	drawnBoundary := source.IsBoundary() && e.Drawn()

	var path []PathSegment
	h := func(r, c int) { path = append(path, PathSegment{Position: grid.Position{Row: r, Col: c}, HCross: true}) }
	v := func(r, c int) { path = append(path, PathSegment{Position: grid.Position{Row: r, Col: c}, VCross: true}) }
	corner := func(r, c int) {
		path = append(path, PathSegment{Position: grid.Position{Row: r, Col: c}, VCross: true, HCross: true})
	}

	switch Classify(src, tgt) {
	case SN:
		if drawnBoundary || g.HasIntermediateElements(src, tgt, true) || g.leadsBack(e) {
			return nil
		}
		for r := src.Row - 1; r > tgt.Row; r-- {
			v(r, src.Col)
		}

	case SWNE:
		if !source.IsBoundary() {
			for c := src.Col + 1; c < tgt.Col; c++ {
				h(src.Row, c)
			}
		}
		corner(src.Row, tgt.Col)
		for r := src.Row - 1; r > tgt.Row; r-- {
			v(r, tgt.Col)
		}

	case WE:
		for c := src.Col + 1; c < tgt.Col; c++ {
			h(src.Row, c)
		}

	case NWSE:
		for r := src.Row + 1; r < tgt.Row; r++ {
			v(r, src.Col)
		}
		corner(tgt.Row, src.Col)
		for c := src.Col + 1; c < tgt.Col; c++ {
			h(tgt.Row, c)
		}

	case NS:
		for r := src.Row + 1; r < tgt.Row; r++ {
			v(r, src.Col)
		}

	case NESW:
		for r := src.Row + 1; r < tgt.Row; r++ {
			v(r, src.Col)
		}
		corner(tgt.Row, src.Col)
		for c := src.Col - 1; c > tgt.Col; c-- {
			h(tgt.Row, c)
		}

	case EW:
		for c := src.Col - 1; c > tgt.Col; c-- {
			h(src.Row, c)
		}

	case SENW:
		if drawnBoundary {
			v(src.Row, tgt.Col)
		} else {
			for c := src.Col - 1; c > tgt.Col; c-- {
				h(src.Row, c)
			}
			corner(src.Row, tgt.Col)
		}
		for r := src.Row - 1; r > tgt.Row; r-- {
			v(r, tgt.Col)
		}
	}
	return path
}

// leadsBack reports whether the effective target of e has a live edge back
// to the effective source.
func (g *Grid) leadsBack(e *process.Edge) bool {
	source := g.EdgeSource(e)
	for _, out := range g.OutgoingEdges(g.EdgeTarget(e)) {
		if g.EdgeTarget(out) == source {
			return true
		}
	}
	return false
}

// CrossedElementsFor returns the non-lane elements whose cells the edge
// crosses on the given axis, in path order.
func (g *Grid) CrossedElementsFor(e *process.Edge, byVertical bool) []*process.Node {
	var out []*process.Node
	for _, seg := range g.PathFor(e) {
		if (byVertical && !seg.VCross) || (!byVertical && !seg.HCross) {
			continue
		}
		for _, el := range g.Get(seg.Position.Row, seg.Position.Col) {
			if !el.IsLane() {
				out = append(out, el)
			}
		}
	}
	return out
}

// IsIntersect reports whether e passes through p on the given axis. It is a
// closed-form check on the endpoint positions and ignores the detours
// [Grid.PathFor] takes.
func (g *Grid) IsIntersect(e *process.Edge, p grid.Position, byVertical bool) bool {
	src, okS := g.SourcePosition(e)
	tgt, okT := g.TargetPosition(e)
	if !okS || !okT {
		return false
	}
	row, col := p.Row, p.Col

	switch Classify(src, tgt) {
	case SN:
		return byVertical && col == src.Col && row < src.Row && row > tgt.Row
	case SWNE:
		if byVertical {
			return col == tgt.Col && row <= src.Row && row > tgt.Row
		}
		return col > src.Col && col <= tgt.Col && row == src.Row
	case WE:
		return !byVertical && col > src.Col && col < tgt.Col && row == src.Row
	case NWSE:
		if byVertical {
			return col == src.Col && row > src.Row && row <= tgt.Row
		}
		return col >= src.Col && col < tgt.Col && row == tgt.Row
	case NS:
		return byVertical && col == src.Col && row > src.Row && row < tgt.Row
	case NESW:
		if byVertical {
			return col == src.Col && row > src.Row && row <= tgt.Row
		}
		return col > tgt.Col && col <= src.Col && row == tgt.Row
	case EW:
		return !byVertical && col > tgt.Col && col < src.Col && row == src.Row
	case SENW:
		if byVertical {
			return col == tgt.Col && row > tgt.Row && row <= src.Row
		}
		if col < tgt.Col || col >= src.Col || row != src.Row {
			return false
		}
		// no horizontal crossing while the source is entered from W or NW
		for _, in := range g.IncomingEdges(g.EdgeSource(e)) {
			if d := g.dir(in); d == NWSE || d == WE {
				return false
			}
		}
		return true
	}
	return false
}

// IsCrossed reports whether any live edge passes through p on the given
// axis.
func (g *Grid) IsCrossed(p grid.Position, byVertical bool) bool {
	for _, e := range g.live.Edges() {
		if g.IsIntersect(e, p, byVertical) {
			return true
		}
	}
	return false
}

// HasAnyCross reports whether any of the edges passes through an occupied
// cell. With no edges given, every live edge is checked.
func (g *Grid) HasAnyCross(edges ...*process.Edge) bool {
	if len(edges) == 0 {
		edges = g.live.Edges()
	}
	for _, e := range edges {
		if len(g.CrossedElementsFor(e, false)) > 0 || len(g.CrossedElementsFor(e, true)) > 0 {
			return true
		}
	}
	return false
}
