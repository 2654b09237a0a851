package overlay

import (
	"slices"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// Chain returns the elements linked to el by straight edges on one axis:
// vertical edges when byVertical is true, horizontal edges otherwise. Every
// non-lane occupant of a reached cell joins the chain.
func (g *Grid) Chain(el *process.Node, byVertical bool) *process.NodeSet {
	chain := process.NewNodeSet()
	g.collectChain(el, byVertical, chain)
	return chain
}

func (g *Grid) collectChain(el *process.Node, byVertical bool, chain *process.NodeSet) {
	p, ok := g.Find(el)
	if !ok {
		return
	}

	type link struct {
		from *process.Node
		edge *process.Edge
	}
	var links []link
	for _, member := range g.Get(p.Row, p.Col) {
		if member.IsLane() {
			continue
		}
		chain.Add(member)
		for _, e := range g.AllEdgesFor(member) {
			d := g.dir(e)
			if (byVertical && d.IsVertical()) || (!byVertical && d.IsHorizontal()) {
				links = append(links, link{member, e})
			}
		}
	}

	for _, l := range links {
		next := l.edge.Source
		if next == l.from {
			next = l.edge.Target
		}
		if !chain.Has(next) {
			g.collectChain(next, byVertical, chain)
		}
	}
}

// Shake compacts the grid on one axis: up when byVertical is true, left
// otherwise. Elements are taken one chain at a time, where a chain is a run
// of elements joined by edges across the compaction axis. A chain moves
// towards the grid edge one line at a time as long as its cells stay
// uncrossed, the target cells are free, no edge starts crossing an element
// and the chain does not grow. Empty lines are removed after every chain.
func (g *Grid) Shake(byVertical bool) {
	var queue []*process.Node
	for _, el := range g.Elements() {
		if !el.IsLane() {
			queue = append(queue, el)
		}
	}
	slices.SortStableFunc(queue, func(a, b *process.Node) int {
		pa, _ := g.Find(a)
		pb, _ := g.Find(b)
		if byVertical {
			if pa.Row != pb.Row {
				return pa.Row - pb.Row
			}
			return pb.Col - pa.Col
		}
		if pa.Col != pb.Col {
			return pa.Col - pb.Col
		}
		return pb.Row - pa.Row
	})

	for len(queue) > 0 {
		el := queue[0]
		queue = queue[1:]

		chain := g.Chain(el, !byVertical)
		queue = slices.DeleteFunc(queue, chain.Has)

		members := chain.Items()
		base, _ := g.Find(members[0])
		start := base.Col
		if byVertical {
			start = base.Row
		}
		if start <= 0 {
			continue
		}

		for index := start - 1; index >= 0; index-- {
			if !g.chainCanMove(members, index, byVertical) {
				break
			}
			if !g.tryChainMove(el, members, index, byVertical) {
				break
			}
		}

		g.Shrink(byVertical)
	}
}

// chainCanMove reports whether every member sits on an uncrossed cell and
// the cells at index are free.
func (g *Grid) chainCanMove(members []*process.Node, index int, byVertical bool) bool {
	for _, m := range members {
		p, ok := g.Find(m)
		if !ok || g.IsCrossed(p, true) || g.IsCrossed(p, false) {
			return false
		}
	}
	for _, m := range members {
		p, _ := g.Find(m)
		if g.HasElementAt(shifted(p, index, byVertical)) {
			return false
		}
	}
	return true
}

// tryChainMove moves the chain to index and keeps the move only when no edge
// crosses an element and the chain of el keeps its size. On failure the
// members go back to index+1.
func (g *Grid) tryChainMove(el *process.Node, members []*process.Node, index int, byVertical bool) bool {
	for _, m := range members {
		p, _ := g.Find(m)
		_ = g.Move(m, shifted(p, index, byVertical))
	}
	if !g.HasAnyCross() && g.Chain(el, !byVertical).Len() <= len(members) {
		return true
	}
	for _, m := range members {
		p, _ := g.Find(m)
		_ = g.Move(m, shifted(p, index+1, byVertical))
	}
	return false
}

func shifted(p grid.Position, index int, byVertical bool) grid.Position {
	if byVertical {
		return grid.Position{Row: index, Col: p.Col}
	}
	return grid.Position{Row: p.Row, Col: index}
}
