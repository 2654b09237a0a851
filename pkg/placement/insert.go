package placement

import (
	"slices"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// insertPosition picks the cell for next, reached from node, and makes room
// for it. The default is the cell right of node. Boundary events share the
// cell of their host. The search then walks down the column past cells that
// the edges leaving node already occupy or cross.
func (s *state) insertPosition(node, next *process.Node) grid.Position {
	g := s.grid

	if g.IsFlipped() && next.IsBoundary() && g.Has(next.AttachedTo) {
		p, _ := g.Find(next.AttachedTo)
		return p
	}
	if next.AttachedTo != nil && next.AttachedTo == node {
		p, _ := g.Find(node)
		return p
	}

	src, _ := g.Find(node)
	pos := grid.Position{Row: src.Row, Col: src.Col + 1}

	if node.IsBoundary() && !g.IsFlipped() && node.Lane == next.Lane {
		pos.Row++
	}
	if node.Lane != next.Lane {
		srcLane, okS := g.Find(node.Lane)
		dstLane, okD := g.Find(next.Lane)
		if okS && okD {
			if srcLane.Row > dstLane.Row {
				pos.Row = dstLane.Row + g.SpanOf(next.Lane).Rows - 1
			} else {
				pos.Row = dstLane.Row
			}
		}
	}

	var edges []*process.Edge
	for _, member := range g.Get(src.Row, src.Col) {
		if member.IsLane() {
			continue
		}
		for _, e := range g.OutgoingEdges(member) {
			if !e.IsSelfLoop() {
				edges = append(edges, e)
			}
		}
	}

	for i := pos.Row; i <= g.RowCount(); i++ {
		point := grid.Position{Row: i, Col: pos.Col}
		taken := slices.ContainsFunc(edges, func(e *process.Edge) bool {
			tp, ok := g.TargetPosition(e)
			return (ok && tp == point) || g.IsIntersect(e, point, false) || g.IsIntersect(e, point, true)
		})
		if taken && i == g.ColCount()-1 {
			pos.Row = i + 1
			continue
		}
		if taken {
			continue
		}
		pos.Row = i
		break
	}

	if g.HasElementAt(pos) || g.IsCrossed(pos, true) {
		g.AddRowCol(true, pos.Col-1, 1)
	}
	if g.IsCrossed(pos, false) {
		g.AddRowCol(false, pos.Row-1, 1)
	}
	return pos
}

// outgoingFromStack pulls back the successors of node that wait on the stack
// without placed successors of their own and sit at or left of node. They
// leave the stack, the visited set and the grid, and are inserted again as
// new successors. A successor sharing a predecessor with node stays put when
// node has fresh successors.
func (s *state) outgoingFromStack(node *process.Node, visited *process.NodeSet, pending *process.Sequence, hasFresh bool) []*process.Node {
	g := s.grid

	var parents []*process.Node
	for _, e := range g.IncomingEdges(node) {
		parents = append(parents, g.EdgeSource(e))
	}
	nodePos, _ := g.Find(node)

	var picked []*process.Node
	for _, e := range g.OutgoingEdges(node) {
		target := g.EdgeTarget(e)
		if slices.Contains(picked, target) || !s.inStackWithoutOutgoing(target, pending) {
			continue
		}
		common := slices.ContainsFunc(g.IncomingEdges(target), func(te *process.Edge) bool {
			return slices.Contains(parents, te.Source)
		})
		if common && hasFresh {
			continue
		}
		if tp, _ := g.Find(target); tp.Col <= nodePos.Col {
			picked = append(picked, target)
		}
	}

	slices.SortStableFunc(picked, func(a, b *process.Node) int {
		pa, _ := g.Find(a)
		pb, _ := g.Find(b)
		if pa.Row != pb.Row {
			return pa.Row - pb.Row
		}
		return pa.Col - pb.Col
	})

	for _, n := range picked {
		pending.Remove(n)
		visited.Delete(n)
		g.RemoveElement(n)
	}
	return picked
}

// moveTopLeftOutgoingForward shifts the segment reached by every up-going
// back edge of node right of the edge source, so the edge turns into a
// forward one. Segments that lead back to the source are left alone.
func (s *state) moveTopLeftOutgoingForward(node *process.Node) {
	g := s.grid

	for _, e := range g.BackwardUpOutgoingEdges(node) {
		src, _ := g.SourcePosition(e)
		tgt, _ := g.TargetPosition(e)
		nodePos, _ := g.Find(node)
		if tgt.Col > nodePos.Col {
			continue
		}

		c := g.Copy()
		c.RemoveEdge(e)
		for _, el := range c.Elements() {
			if p, _ := c.Find(el); p.Col < tgt.Col {
				c.RemoveElement(el)
			}
		}
		segment := c.SegmentFrom(g.EdgeTarget(e))
		if segment.HasNode(g.EdgeSource(e)) {
			continue
		}

		left := c.SegmentLeftCoordinates(segment)
		if len(left) == 0 {
			continue
		}
		minCol, minRow, maxRow := -1, -1, -1
		for row, col := range left {
			if minCol < 0 || col < minCol {
				minCol = col
			}
			if minRow < 0 || row < minRow {
				minRow = row
			}
			maxRow = max(maxRow, row)
		}
		shift := src.Col - minCol + 1

		prev := left[minRow]
		for r := range g.RowCount() {
			np, _ := g.Find(node)
			var after int
			switch col, ok := left[r]; {
			case r < minRow:
				after = left[minRow] - 1
			case ok:
				prev = col
				after = col - 1
			case r > minRow && r < maxRow && r < np.Row:
				after = prev
			case r == np.Row || r > minRow:
				prev = np.Col
				after = np.Col
			default:
				after = prev
			}
			_ = g.ExpandRow(r, after, shift)
		}
	}
}
