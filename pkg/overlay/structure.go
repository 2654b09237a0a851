package overlay

import (
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// Copy returns an independent grid with the same placements, spans, flip
// state and live edges. Nodes and edges are shared.
func (g *Grid) Copy() *Grid {
	return &Grid{
		Grid:    g.Grid.Clone(),
		initial: g.initial,
		live:    g.live.Copy(),
	}
}

// Separate splits the grid into one grid per connected component of the
// live graph. Every part keeps the original coordinates. Lanes are not
// carried over. An empty grid yields a single empty grid.
func (g *Grid) Separate() []*Grid {
	components := g.live.Components()
	if len(components) == 0 {
		return []*Grid{New(g.initial)}
	}

	parts := make([]*Grid, 0, len(components))
	for _, c := range components {
		part := New(g.initial)
		for _, n := range c.Nodes() {
			p, ok := g.Find(n)
			if !ok {
				continue
			}
			part.place(n, &p)
		}
		for _, n := range c.Nodes() {
			if s := g.SpanOf(n); s != (grid.Span{Cols: 1, Rows: 1}) {
				part.SetSpan(n, s)
			}
		}
		parts = append(parts, part)
	}
	return parts
}

// Merge stacks grids vertically in the given order. Each grid keeps its
// empty rows and its column count. Spans are applied once every element is
// placed.
func Merge(grids ...*Grid) *Grid {
	if len(grids) == 0 {
		return New(nil)
	}
	merged := New(grids[0].initial)

	cols := 0
	spans := make(map[*process.Node]grid.Span)
	for _, part := range grids {
		shift := merged.RowCount()
		cols = max(cols, part.ColCount())
		for r := range part.RowCount() {
			row := part.ElementsInRow(r)
			if len(row) == 0 {
				merged.AddRowCol(false, shift+r-1, 1)
				continue
			}
			for _, el := range row {
				p, _ := part.Find(el)
				merged.place(el, &grid.Position{Row: p.Row + shift, Col: p.Col})
				if s := part.SpanOf(el); s != (grid.Span{Cols: 1, Rows: 1}) {
					spans[el] = s
				}
			}
		}
	}

	if n := merged.ColCount(); n < cols {
		merged.AddRowCol(true, n-1, cols-n)
	}
	for el, s := range spans {
		merged.SetSpan(el, s)
	}
	return merged
}

// SegmentFrom returns the part of the live graph reachable from n along
// effective outgoing edges, self-loops excluded.
func (g *Grid) SegmentFrom(n *process.Node) *process.Graph {
	segment := process.New()

	start := func(visited *process.NodeSet, _ *process.Graph) *process.Node {
		if visited.Has(n) {
			return nil
		}
		return n
	}
	next := func(node *process.Node, _ *process.Graph, visited *process.NodeSet, _ *process.Sequence) []*process.Node {
		segment.AddNode(node)
		var out []*process.Node
		for _, e := range g.OutgoingEdges(node) {
			source, target := g.EdgeSource(e), g.EdgeTarget(e)
			if visited.Has(target) || source == target {
				continue
			}
			segment.AddNode(target)
			segment.AddEdge(e)
			out = append(out, target)
		}
		return out
	}
	g.live.Traverse(start, next)
	return segment
}

// SegmentLeftCoordinates maps every row holding a segment node to the
// leftmost column used in that row.
func (g *Grid) SegmentLeftCoordinates(segment *process.Graph) map[int]int {
	left := make(map[int]int)
	for _, n := range segment.Nodes() {
		p, ok := g.Find(n)
		if !ok {
			continue
		}
		if c, seen := left[p.Row]; !seen || p.Col < c {
			left[p.Row] = p.Col
		}
	}
	return left
}
