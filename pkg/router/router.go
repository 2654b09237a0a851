package router

import (
	"slices"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/overlay"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// Layout exposes the geometry computed for the grid being routed.
type Layout interface {
	// Bounds returns the drawn rectangle of n.
	Bounds(n *process.Node) (Bounds, bool)

	// ChildGrid returns the dimensions of the sub-grid owned by n, or zeros.
	ChildGrid(n *process.Node) (rows, cols int)

	// CellSize returns the size of one grid cell.
	CellSize() (width, height float64)
}

// Route computes the waypoints of e, which must join two nodes placed on g.
// Cell origins are offset by shift, the same offset used for the node
// bounds.
//
// Route fails with UNKNOWN_ELEMENT when an endpoint has no bounds and with
// INVALID_ENDPOINT when an endpoint is not placed.
func Route(e *process.Edge, g *overlay.Grid, layout Layout, shift Point) ([]Point, error) {
	d, err := g.Direction(e)
	if err != nil {
		return nil, err
	}
	src, tgt := g.EdgeSource(e), g.EdgeTarget(e)
	sb, ok := layout.Bounds(src)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownElement, "no bounds for source %s of %s", src, e)
	}
	tb, ok := layout.Bounds(tgt)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownElement, "no bounds for target %s of %s", tgt, e)
	}
	sp, _ := g.SourcePosition(e)
	tp, _ := g.TargetPosition(e)
	w, h := layout.CellSize()

	r := &route{
		g:      g,
		layout: layout,
		src:    src,
		tgt:    tgt,
		sb:     sb,
		tb:     tb,
		sm:     Mid(sb),
		tm:     Mid(tb),
		sp:     sp,
		tp:     tp,
		w:      w,
		h:      h,
		srcX:   float64(sp.Col)*w + shift.X,
		srcY:   float64(sp.Row)*h + shift.Y,
		tgtX:   float64(tp.Col)*w + shift.X,
	}
	return r.points(d), nil
}

// route holds the inputs of one routing decision.
type route struct {
	g      *overlay.Grid
	layout Layout

	src, tgt *process.Node
	sb, tb   Bounds
	sm, tm   Point
	sp, tp   grid.Position

	w, h float64

	// origin of the source cell and left edge of the target cell
	srcX, srcY, tgtX float64
}

func (r *route) points(d overlay.Direction) []Point {
	boundary := r.src.IsBoundary() && r.src.AttachedTo != nil

	switch d {
	case overlay.NoDirection:
		y := r.detourY(r.host())
		return []Point{
			r.dockSource(Bottom),
			{r.sm.X, y},
			{r.tgtX, y},
			{r.srcX, r.tm.Y},
			r.dockTarget(Left),
		}

	case overlay.SN:
		if boundary {
			y := r.detourY(r.host())
			return []Point{
				r.dockSource(Bottom),
				{r.sm.X, y},
				{r.srcX, y},
				{r.tgtX, r.tm.Y},
				r.dockTarget(Left),
			}
		}
		if slices.Contains(r.tgt.FlowSuccessors(), r.src) {
			return []Point{
				r.dockSource(Left),
				{r.srcX, r.sm.Y},
				{r.tgtX, r.tm.Y},
				r.dockTarget(Left),
			}
		}
		return []Point{r.dockSource(Top), r.dockTarget(Bottom)}

	case overlay.SWNE:
		if boundary {
			return r.below(r.detourY(r.host()))
		}
		return []Point{r.dockSource(Right), {r.tm.X, r.sm.Y}, r.dockTarget(Bottom)}

	case overlay.WE:
		if boundary {
			return r.below(r.detourY(r.host()))
		}
		return []Point{r.header(r.dockSource(Right), r.src, r.sb), r.header(r.dockTarget(Left), r.tgt, r.tb)}

	case overlay.NWSE:
		return []Point{r.dockSource(Bottom), {r.sm.X, r.tm.Y}, r.dockTarget(Left)}

	case overlay.NS:
		if boundary {
			if r.host().Expanded {
				y := r.detourY(r.host())
				return []Point{r.dockSource(Bottom), {r.sm.X, y}, {r.tm.X, y}, r.dockTarget(Top)}
			}
			return []Point{r.dockSource(Bottom), r.dockTarget(Top)}
		}
		if r.src.Expanded || r.tgt.Expanded {
			y := r.detourY(r.src)
			return []Point{r.dockSource(Bottom), {r.sm.X, y}, {r.tm.X, y}, r.dockTarget(Top)}
		}
		return []Point{r.dockSource(Bottom), r.dockTarget(Top)}

	case overlay.NESW:
		return []Point{r.dockSource(Bottom), {r.sm.X, r.tm.Y}, r.dockTarget(Right)}

	case overlay.EW:
		if boundary {
			host := r.host()
			y := r.srcY + r.h + float64(r.maxExpandedBetween())*r.h
			if host.Expanded {
				y = r.detourY(host)
			}
			return r.below(y)
		}
		if r.reversed() {
			y := r.srcY + r.h
			if r.src.Expanded {
				_, cols := r.layout.ChildGrid(r.src)
				y = r.srcY + r.h*(float64(cols)+1.5)
			}
			return r.below(y)
		}
		return []Point{r.header(r.dockSource(Left), r.src, r.sb), r.header(r.dockTarget(Right), r.tgt, r.tb)}

	case overlay.SENW:
		if boundary {
			return r.below(r.detourY(r.host()))
		}
		for c := r.sp.Col - 1; c >= r.tp.Col; c-- {
			if r.occupied(grid.Position{Row: r.sp.Row, Col: c}) {
				return r.below(r.detourY(r.src))
			}
		}
		return []Point{r.dockSource(Left), {r.tm.X, r.sm.Y}, r.dockTarget(Bottom)}
	}

	return r.fallback()
}

// fallback routes edges no direction recipe covers: a single bend when the
// legs are clear enough, the generic detour through the cell gaps otherwise.
func (r *route) fallback() []Point {
	dX := r.tp.Col - r.sp.Col
	dY := r.tp.Row - r.sp.Row

	if legs, ok := r.manhattan(dX, dY); ok {
		start := r.dockSource(r.resolve(legs[0], dX, dY, true))
		end := r.dockTarget(r.resolve(legs[1], dX, dY, false))
		mid := Point{start.X, end.Y}
		if legs[0] == 'h' {
			mid = Point{end.X, start.Y}
		}
		return []Point{start, mid, end}
	}

	yOffset := 0.0
	switch {
	case dY > 0:
		yOffset = -r.h / 2
	case dY < 0:
		yOffset = r.h / 2
	}
	return []Point{
		r.dockSource(Right),
		{r.sm.X + r.w/2, r.sm.Y},
		{r.sm.X + r.w/2, r.tm.Y + yOffset},
		{r.tm.X - r.w/2, r.tm.Y + yOffset},
		{r.tm.X - r.w/2, r.tm.Y},
		r.dockTarget(Left),
	}
}

// manhattan picks the leg order of a one-bend route for left-to-right edges
// whose legs pass at most two occupied cells.
func (r *route) manhattan(dX, dY int) ([2]byte, bool) {
	if !(dX > 0 && dY != 0) {
		return [2]byte{}, false
	}
	bend, legs := grid.Position{Row: r.sp.Row, Col: r.tp.Col}, [2]byte{'h', 'v'}
	if dY > 0 {
		bend, legs = grid.Position{Row: r.tp.Row, Col: r.sp.Col}, [2]byte{'v', 'h'}
	}
	total := r.occupiedIn(r.sp, bend) + r.occupiedIn(bend, r.tp)
	return legs, total <= 2
}

// resolve turns an axis into the docking side facing the other endpoint.
func (r *route) resolve(axis byte, dX, dY int, source bool) Side {
	if axis == 'h' {
		if (dX > 0) == source {
			return Right
		}
		return Left
	}
	if (dY > 0) == source {
		return Bottom
	}
	return Top
}

// below runs out of the source bottom, along y, and into the target bottom.
func (r *route) below(y float64) []Point {
	return []Point{r.dockSource(Bottom), {r.sm.X, y}, {r.tm.X, y}, r.dockTarget(Bottom)}
}

// reversed reports whether an east-to-west edge has to detour below: the
// target flows back into the source, or the target already leaves to the
// north-east.
func (r *route) reversed() bool {
	if slices.Contains(r.tgt.Successors(), r.src) {
		return true
	}
	for _, e := range r.g.OutgoingEdges(r.tgt) {
		if d, err := r.g.Direction(e); err == nil && d == overlay.SWNE {
			return true
		}
	}
	return false
}

// host is the node whose cell a boundary source detours around.
func (r *route) host() *process.Node {
	if r.src.IsBoundary() && r.src.AttachedTo != nil {
		return r.src.AttachedTo
	}
	return r.src
}

// detourY is the y of the horizontal leg that passes below n.
func (r *route) detourY(n *process.Node) float64 {
	if !n.Expanded {
		return r.srcY + r.h
	}
	rows, _ := r.layout.ChildGrid(n)
	return r.srcY + float64(rows+1)*r.h
}

// header moves a side dock of an expanded container up to its header line.
func (r *route) header(p Point, n *process.Node, b Bounds) Point {
	if n.Expanded {
		p.Y = b.Y + n.Height/2
	}
	return p
}

// maxExpandedBetween is the deepest child grid among the nodes in the source
// row strictly between the two columns.
func (r *route) maxExpandedBetween() int {
	first, last := min(r.sp.Col, r.tp.Col), max(r.sp.Col, r.tp.Col)
	deepest := 0
	for _, n := range r.g.ElementsInRow(r.sp.Row) {
		if n.IsLane() {
			continue
		}
		if p, _ := r.g.Find(n); p.Col > first && p.Col < last {
			rows, _ := r.layout.ChildGrid(n)
			deepest = max(deepest, rows)
		}
	}
	return deepest
}

func (r *route) occupied(p grid.Position) bool {
	return slices.ContainsFunc(r.g.Get(p.Row, p.Col), func(n *process.Node) bool { return !n.IsLane() })
}

// occupiedIn counts the cells between a and b, inclusive, that hold a node.
func (r *route) occupiedIn(a, b grid.Position) int {
	n := 0
	for row := min(a.Row, b.Row); row <= max(a.Row, b.Row); row++ {
		for col := min(a.Col, b.Col); col <= max(a.Col, b.Col); col++ {
			if r.occupied(grid.Position{Row: row, Col: col}) {
				n++
			}
		}
	}
	return n
}

func (r *route) dockSource(side Side) Point { return Dock(r.sm, r.sb, side) }
func (r *route) dockTarget(side Side) Point { return Dock(r.tm, r.tb, side) }
