package layouter

import (
	"cmp"
	"math"
	"slices"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/overlay"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/router"
)

func diagramFor(id string) *Diagram {
	return &Diagram{ID: "BPMNDiagram_" + id, Plane: "BPMNPlane_" + id, Element: id}
}

func shapeID(id string) string { return id + "_di" }

// draw turns the grids into shapes and edges. Pools come first, then the
// processes from the outside in, then the straight connections between
// processes.
func (r *run) draw() error {
	if len(r.defs.Processes) == 0 {
		return nil
	}

	mainID := r.defs.Processes[0].ID
	if c := r.defs.Collaboration; c != nil {
		mainID = c.ID
	}
	main := diagramFor(mainID)
	var extra []*Diagram

	r.drawParticipants(main)

	for _, p := range r.ordered(false) {
		switch part := r.defs.ParticipantFor(p); {
		case part != nil:
			pool := r.bounds[part.Node]
			origin := router.Point{X: pool.X + r.cfg.CellWidth/2, Y: pool.Y + r.cfg.CellHeight/2}
			if err := r.drawProcess(p, origin, main); err != nil {
				return err
			}

		case p.IsExpanded():
			host, ok := r.bounds[p.Node]
			if !ok {
				r.logger.Debug("skipping unplaced sub-process", "process", p.ID)
				continue
			}
			w, h := p.Node.Width, p.Node.Height
			origin := router.Point{
				X: host.X + r.cfg.CellWidth/2 - w/4,
				Y: host.Y + r.cfg.CellHeight - h - h/4,
			}
			if err := r.drawProcess(p, origin, r.diagrams[p.Node]); err != nil {
				return err
			}

		case p.IsRoot():
			if err := r.drawProcess(p, router.Point{}, main); err != nil {
				return err
			}

		default:
			if len(p.Nodes) == 0 {
				continue
			}
			d := diagramFor(p.ID)
			if err := r.drawProcess(p, router.Point{}, d); err != nil {
				return err
			}
			extra = append(extra, d)
		}
	}

	if c := r.defs.Collaboration; c != nil {
		for _, e := range c.MessageFlows {
			r.drawStraight(e, main)
		}
	}
	for _, e := range r.cross {
		r.drawStraight(e, r.diagrams[e.Source])
	}

	r.result.Diagrams = append(r.result.Diagrams, *main)
	for _, d := range extra {
		r.result.Diagrams = append(r.result.Diagrams, *d)
	}
	return nil
}

// =============================================================================
// Pools and lanes
// =============================================================================

// drawParticipants stacks the pools top to bottom, each followed by its
// lanes.
func (r *run) drawParticipants(d *Diagram) {
	if r.defs.Collaboration == nil {
		return
	}
	y := 0.0
	for _, part := range r.defs.Collaboration.Participants {
		b := r.drawParticipant(part, 0, y, d)
		y = b.Bottom() + r.cfg.PoolMargin
	}
}

func (r *run) drawParticipant(part *model.Participant, x, y float64, d *Diagram) router.Bounds {
	w, h := r.cfg.CellWidth, r.cfg.CellHeight
	rows, cols := 0, 0
	if g, ok := r.grids[part.Process]; ok {
		rows, cols = g.Dimensions()
	}

	b := router.Bounds{X: x, Y: y, Width: part.Node.Width, Height: part.Node.Height}
	if cols > 0 {
		b.Width = float64(cols+1) * w
	}
	set, laned := r.lanes[part.Process]
	switch {
	case laned && set.Len() > 1:
		b.Height = float64(rows) * h
		b.Width += float64(set.MaxLevel()+1) * r.cfg.LaneLabelWidth
	case rows > 0:
		b.Height = float64(rows+1) * h
	}

	r.addShape(d, part.Node, b, Shape{Horizontal: true})
	if laned {
		r.drawLanes(part.Process, b, d)
	}
	return b
}

// drawLanes draws every lane of p inside its pool. A lane covers the rows of
// its leaf lanes; a nested lane that holds nodes itself adds its own band.
func (r *run) drawLanes(p *model.Process, pool router.Bounds, d *Diagram) {
	set := r.lanes[p]
	g := r.grids[p]
	w, h, label := r.cfg.CellWidth, r.cfg.CellHeight, r.cfg.LaneLabelWidth
	_, cols := g.Dimensions()
	maxLevel := set.MaxLevel()

	for _, ln := range set.Items() {
		if ln == p.Node {
			continue
		}
		pos, _ := set.Position(ln)

		leaves := set.Leaves(&ln)
		if len(leaves) == 0 {
			leaves = []*process.Node{ln}
		}
		top, height := -1, 0.0
		for _, leaf := range leaves {
			lp, ok := g.Find(leaf)
			if !ok {
				continue
			}
			if top < 0 || lp.Row < top {
				top = lp.Row
			}
			rows := g.SpanOf(leaf).Rows
			if rows == 0 {
				rows = 2
			}
			height += float64(rows) * h
		}
		if g.Has(ln) && pos.Level > 0 && !set.IsLeaf(ln) {
			height += float64(g.SpanOf(ln).Rows) * h
		}

		span := cols + 1
		if cols == 0 {
			span = 2
		}
		b := router.Bounds{
			X:      pool.X + float64(pos.Level)*label,
			Y:      pool.Y + float64(max(top, 0))*h,
			Width:  float64(span)*w + float64(maxLevel-pos.Level+1)*label,
			Height: height,
		}
		r.addShape(d, ln, b, Shape{Horizontal: true})
	}
}

// =============================================================================
// Process content
// =============================================================================

// drawProcess draws the nodes and edges of p with its cell origin at shift.
// Output keeps the definition order of p.
func (r *run) drawProcess(p *model.Process, shift router.Point, d *Diagram) error {
	g, ok := r.grids[p]
	if !ok || d == nil {
		return nil
	}
	if set, laned := r.lanes[p]; laned && g.HasLanes() {
		if lvl := set.MaxLevel(); lvl > 0 {
			shift.X += float64(lvl+1) * r.cfg.LaneLabelWidth
		}
	}

	local := &Diagram{}
	for _, el := range g.Elements() {
		if el.IsLane() || el.Kind == process.KindProcess {
			continue
		}
		r.drawNode(g, el, shift, local)
	}

	for _, e := range g.Live().Edges() {
		if !e.Drawn() {
			continue
		}
		pts, err := router.Route(e, g, r, shift)
		if err != nil {
			return err
		}
		local.Edges = append(local.Edges, edgeOf(e, pts))
	}

	idx := p.DefinitionIndex()
	order := func(id string) int {
		if i, ok := idx[id]; ok {
			return i
		}
		return -1
	}
	slices.SortStableFunc(local.Shapes, func(a, b Shape) int { return cmp.Compare(order(a.Element), order(b.Element)) })
	slices.SortStableFunc(local.Edges, func(a, b Edge) int { return cmp.Compare(order(a.Element), order(b.Element)) })

	d.Shapes = append(d.Shapes, local.Shapes...)
	d.Edges = append(d.Edges, local.Edges...)
	for _, n := range p.Nodes {
		if _, drawn := r.bounds[n]; drawn {
			r.diagrams[n] = d
		}
	}
	return nil
}

// drawNode draws el in its cell. Boundary events are drawn with their host.
func (r *run) drawNode(g *overlay.Grid, el *process.Node, shift router.Point, d *Diagram) {
	if _, done := r.bounds[el]; done {
		return
	}
	if el.IsBoundary() && el.AttachedTo != nil && g.Has(el.AttachedTo) {
		r.drawNode(g, el.AttachedTo, shift, d)
		r.drawBoundaries(g, el.AttachedTo, d)
		return
	}

	pos, _ := g.Find(el)
	w, h := r.cfg.CellWidth, r.cfg.CellHeight
	b := router.Bounds{
		X:      float64(pos.Col)*w + (w-el.Width)/2 + shift.X,
		Y:      float64(pos.Row)*h + (h-el.Height)/2 + shift.Y,
		Width:  el.Width,
		Height: el.Height,
	}
	if el.Expanded {
		rows, cols := r.ChildGrid(el)
		b.Width = float64(max(cols, 1))*w + el.Width
		b.Height = float64(max(rows, 1))*h + el.Height
	}
	r.bounds[el] = b
	d.Shapes = append(d.Shapes, r.shapeOf(el, b))
}

// drawBoundaries spreads the placed boundary events of host evenly along
// its bottom edge. Events whose flows lead further down and right come
// first.
func (r *run) drawBoundaries(g *overlay.Grid, host *process.Node, d *Diagram) {
	hb := r.bounds[host]

	type ranked struct {
		n    *process.Node
		goes grid.Position
	}
	var events []ranked
	for _, b := range host.Attachers {
		if _, done := r.bounds[b]; done || !g.Has(b) {
			continue
		}
		var goes grid.Position
		for _, s := range b.Successors() {
			if p, ok := g.Find(s); ok && (goes.Row < p.Row || goes.Col < p.Col) {
				goes = p
			}
		}
		events = append(events, ranked{b, goes})
	}
	slices.SortStableFunc(events, func(a, b ranked) int {
		return cmp.Or(cmp.Compare(a.goes.Row, b.goes.Row), cmp.Compare(a.goes.Col, b.goes.Col))
	})
	slices.Reverse(events)

	n := float64(len(events))
	for i, ev := range events {
		w, h := ev.n.Width, ev.n.Height
		b := router.Bounds{
			X:      hb.X + float64(i+1)*hb.Width/(n+1) - w/2,
			Y:      math.Round(hb.Y + hb.Height - h/2),
			Width:  w,
			Height: h,
		}
		r.bounds[ev.n] = b
		d.Shapes = append(d.Shapes, r.shapeOf(ev.n, b))
	}
}

func (r *run) shapeOf(n *process.Node, b router.Bounds) Shape {
	return Shape{
		ID:            shapeID(n.ID),
		Element:       n.ID,
		Kind:          string(n.Kind),
		Name:          n.Name,
		Bounds:        b,
		Expanded:      n.Expanded && n.Kind == process.KindSubProcess,
		MarkerVisible: n.Kind == process.KindExclusiveGateway,
	}
}

// addShape records b for n and appends a pool or lane shape to d.
func (r *run) addShape(d *Diagram, n *process.Node, b router.Bounds, s Shape) {
	r.bounds[n] = b
	r.diagrams[n] = d
	s.ID = shapeID(n.ID)
	s.Element = n.ID
	s.Kind = string(n.Kind)
	s.Name = n.Name
	s.Bounds = b
	d.Shapes = append(d.Shapes, s)
}

// =============================================================================
// Edges
// =============================================================================

func edgeOf(e *process.Edge, pts []router.Point) Edge {
	return Edge{
		ID:        shapeID(e.ID),
		Element:   e.ID,
		Kind:      e.Kind.String(),
		Source:    e.Source.ID,
		Target:    e.Target.ID,
		Waypoints: pts,
	}
}

// drawStraight joins two shapes of d with a vertical-facing straight line.
// Edges whose ends are missing or drawn on another diagram are skipped.
func (r *run) drawStraight(e *process.Edge, d *Diagram) {
	sb, okS := r.bounds[e.Source]
	tb, okT := r.bounds[e.Target]
	if !okS || !okT || d == nil || r.diagrams[e.Source] != d || r.diagrams[e.Target] != d {
		r.logger.Debug("skipping edge without drawn ends", "edge", e.ID)
		return
	}
	d.Edges = append(d.Edges, edgeOf(e, straight(sb, tb)))
}

// straight leaves the source from the side facing the target and enters the
// target from the opposite side, both at their horizontal centers.
func straight(sb, tb router.Bounds) []router.Point {
	sx, tx := sb.X+sb.Width/2, tb.X+tb.Width/2
	if tb.Y-sb.Y > 0 {
		return []router.Point{{X: sx, Y: sb.Bottom()}, {X: tx, Y: tb.Y}}
	}
	return []router.Point{{X: sx, Y: sb.Y}, {X: tx, Y: tb.Bottom()}}
}
