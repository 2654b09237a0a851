package layouter

import (
	"cmp"
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/config"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/nestedset"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/observability"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/overlay"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/placement"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/router"
)

// Layouter computes diagram interchange for process documents. A Layouter
// holds no per-document state and may be shared between goroutines as long
// as each call gets its own definitions.
type Layouter struct {
	cfg      config.Layout
	logger   *log.Logger
	maxSteps int
	grids    bool
}

// Option configures a Layouter.
type Option func(*Layouter)

// WithLogger sets the logger for placement and drawing diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(lo *Layouter) {
		if l != nil {
			lo.logger = l
		}
	}
}

// WithMaxSteps overrides the step budget of the configuration. Zero means
// no limit.
func WithMaxSteps(n int) Option {
	return func(lo *Layouter) { lo.maxSteps = n }
}

// WithGrids records a snapshot of every final process grid in the result.
func WithGrids() Option {
	return func(lo *Layouter) { lo.grids = true }
}

// New creates a layouter for the given geometry.
func New(cfg config.Layout, opts ...Option) *Layouter {
	l := &Layouter{
		cfg:      cfg,
		logger:   log.Default(),
		maxSteps: cfg.MaxSteps,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Layout places every process of defs on its grid and draws the result.
//
// Nodes of a process with lanes that belong to no lane are bound to one in
// place, see [model.Process.BindLanes].
//
// Layout fails with INVALID_INPUT for invalid definitions and with
// INVALID_CONFIG for an invalid geometry. Placement and routing errors are
// returned unchanged. Cancelling ctx stops placement and returns ctx.Err().
func (l *Layouter) Layout(ctx context.Context, defs *model.Definitions) (*Result, error) {
	if defs == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout: nil definitions")
	}
	if err := l.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := defs.Validate(); err != nil {
		return nil, err
	}

	r := newRun(ctx, l, defs)
	if err := r.buildGrids(); err != nil {
		return nil, err
	}
	r.expandGrids()
	r.expandParticipants()
	if err := r.draw(); err != nil {
		return nil, err
	}
	if l.grids {
		r.snapshot()
	}
	return r.result, nil
}

// =============================================================================
// Run state
// =============================================================================

// run is the state of one Layout call.
type run struct {
	ctx    context.Context
	cfg    config.Layout
	logger *log.Logger
	defs   *model.Definitions

	budget int

	processes *nestedset.Set[*model.Process]
	grids     map[*model.Process]*overlay.Grid
	lanes     map[*model.Process]*nestedset.Set[*process.Node]
	subs      map[*process.Node]*model.Process

	// associations whose ends live in different processes
	cross []*process.Edge

	bounds   map[*process.Node]router.Bounds
	diagrams map[*process.Node]*Diagram
	result   *Result
}

func newRun(ctx context.Context, l *Layouter, defs *model.Definitions) *run {
	roots := slices.Clone(defs.Processes)
	slices.Reverse(roots)

	r := &run{
		ctx:       ctx,
		cfg:       l.cfg,
		logger:    l.logger,
		defs:      defs,
		budget:    l.maxSteps,
		processes: nestedset.Build(roots, func(p *model.Process) []*model.Process { return p.SubProcesses }),
		grids:     make(map[*model.Process]*overlay.Grid),
		lanes:     make(map[*model.Process]*nestedset.Set[*process.Node]),
		subs:      make(map[*process.Node]*model.Process),
		bounds:    make(map[*process.Node]router.Bounds),
		diagrams:  make(map[*process.Node]*Diagram),
		result:    &Result{ID: defs.ID},
	}
	for _, p := range defs.AllProcesses() {
		if !p.IsRoot() {
			r.subs[p.Node] = p
		}
	}
	return r
}

// ordered returns the processes sorted by nesting level, then by position
// in the container hierarchy. Reversed order visits children first.
func (r *run) ordered(reversed bool) []*model.Process {
	items := r.processes.Items()
	slices.SortStableFunc(items, func(a, b *model.Process) int {
		pa, _ := r.processes.Position(a)
		pb, _ := r.processes.Position(b)
		return cmp.Or(cmp.Compare(pa.Level, pb.Level), cmp.Compare(pa.Left, pb.Left))
	})
	if reversed {
		slices.Reverse(items)
	}
	return items
}

// Bounds implements [router.Layout].
func (r *run) Bounds(n *process.Node) (router.Bounds, bool) {
	b, ok := r.bounds[n]
	return b, ok
}

// ChildGrid implements [router.Layout].
func (r *run) ChildGrid(n *process.Node) (rows, cols int) {
	sp, ok := r.subs[n]
	if !ok {
		return 0, 0
	}
	g, ok := r.grids[sp]
	if !ok {
		return 0, 0
	}
	return g.Dimensions()
}

// CellSize implements [router.Layout].
func (r *run) CellSize() (width, height float64) {
	return r.cfg.CellWidth, r.cfg.CellHeight
}

// =============================================================================
// Grid construction
// =============================================================================

func (r *run) buildGrids() error {
	for _, p := range r.defs.Processes {
		if r.defs.ParticipantFor(p) != nil && p.HasLanes() {
			p.BindLanes()
			r.lanes[p] = laneSet(p)
		}
	}

	for _, p := range r.ordered(false) {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		if err := r.buildGrid(p); err != nil {
			return err
		}
	}
	return nil
}

// laneSet encodes the lane tree of p under its process node.
func laneSet(p *model.Process) *nestedset.Set[*process.Node] {
	children := make(map[*process.Node][]*process.Node)
	var walk func(parent *process.Node, lanes []*model.Lane)
	walk = func(parent *process.Node, lanes []*model.Lane) {
		for _, l := range lanes {
			children[parent] = append(children[parent], l.Node)
			walk(l.Node, l.Lanes)
		}
	}
	walk(p.Node, p.Lanes)
	return nestedset.Build([]*process.Node{p.Node}, func(n *process.Node) []*process.Node {
		return children[n]
	})
}

// graphOf collects the nodes of p and the edges placement follows: the
// attachment pair of every boundary event, then the sequence flows and data
// associations of each node in definition order.
func (r *run) graphOf(p *model.Process) *process.Graph {
	g := process.New()
	for _, n := range p.Nodes {
		g.AddNode(n)
	}

	local := func(e *process.Edge) {
		if p.Owns(e.Source) && p.Owns(e.Target) {
			g.AddEdge(e)
			return
		}
		r.cross = append(r.cross, e)
	}
	for _, n := range p.Nodes {
		if n.IsBoundary() && n.AttachedTo != nil {
			g.AddEdge(&process.Edge{Source: n, Target: n.AttachedTo, Kind: process.EdgeAttachment})
			g.AddEdge(&process.Edge{Source: n.AttachedTo, Target: n, Kind: process.EdgeAttachment})
		}
		for _, e := range p.Flows {
			if e.Source == n {
				g.AddEdge(e)
			}
		}
		for _, e := range p.Associations {
			if e.Target == n && e.Source.Kind.IsData() {
				local(e)
			}
		}
		for _, e := range p.Associations {
			if e.Source == n && e.Target.Kind.IsData() {
				local(e)
			}
		}
	}
	return g
}

func (r *run) buildGrid(p *model.Process) error {
	g := overlay.New(r.graphOf(p))

	if set, ok := r.lanes[p]; ok {
		lanes := set.Items()
		slices.SortStableFunc(lanes, func(a, b *process.Node) int {
			pa, _ := set.Position(a)
			pb, _ := set.Position(b)
			return cmp.Compare(pa.Right, pb.Right)
		})
		for _, ln := range lanes {
			if ln == p.Node {
				continue
			}
			if set.IsLeaf(ln) || ownsNodes(p, ln) {
				g.Add(ln, nil)
			}
		}
	}

	placed, report, err := r.place(p, g)
	if err != nil {
		return err
	}
	r.result.Stats.Processes++
	r.result.Stats.Steps += report.Steps
	r.result.Stats.Roots += report.Roots
	r.result.Stats.Truncated = r.result.Stats.Truncated || report.Truncated
	observability.Layout().OnPlacementStep(r.ctx, p.ID, report.Steps, report.Roots)

	rows, cols := placed.Dimensions()
	r.logger.Debug("placed process", "process", p.ID, "nodes", report.Placed, "rows", rows, "cols", cols,
		"steps", report.Steps, "roots", report.Roots)

	r.grids[p] = compact(placed)
	return nil
}

// place runs placement within what is left of the step budget. An
// exhausted budget leaves the grid as it is.
func (r *run) place(p *model.Process, g *overlay.Grid) (*overlay.Grid, placement.Report, error) {
	opts := placement.Options{Logger: r.logger}
	if r.budget > 0 {
		left := r.budget - r.result.Stats.Steps
		if left <= 0 {
			return g, placement.Report{Placed: g.Len(), Truncated: true}, nil
		}
		opts.MaxSteps = left
	}
	return placement.Place(r.ctx, g, opts)
}

func ownsNodes(p *model.Process, lane *process.Node) bool {
	return slices.ContainsFunc(p.Nodes, func(n *process.Node) bool { return n.Lane == lane })
}

// parts splits g into connected parts unless it has lanes, whose bands
// must stay intact.
func parts(g *overlay.Grid) []*overlay.Grid {
	if g.HasLanes() {
		return []*overlay.Grid{g}
	}
	return g.Separate()
}

func join(g *overlay.Grid, ps []*overlay.Grid) *overlay.Grid {
	if g.HasLanes() {
		return g
	}
	return overlay.Merge(ps...)
}

// compact removes empty lines from every part of g and pulls straight
// chains together.
func compact(g *overlay.Grid) *overlay.Grid {
	ps := parts(g)
	for _, part := range ps {
		part.Shrink(true)
		part.Shrink(false)
		part.Shake(true)
		part.Shake(false)
	}
	return join(g, ps)
}

// =============================================================================
// Expansion
// =============================================================================

// expandGrids makes room for the content of expanded sub-processes, deepest
// processes first so every child grid has its final size when its container
// is expanded.
func (r *run) expandGrids() {
	for _, p := range r.ordered(true) {
		g, ok := r.grids[p]
		if !ok {
			continue
		}
		ps := parts(g)
		for _, part := range ps {
			part.Shrink(true)
			part.Shrink(false)
			r.expand(part, false)
			r.expand(part, true)
		}
		r.grids[p] = join(g, ps)
	}
}

// expand widens (or, byVertical, heightens) every expanded sub-process to
// the size of its child grid plus one line, and inserts the lines it needs
// after its own.
func (r *run) expand(g *overlay.Grid, byVertical bool) {
	need := make(map[int]int)
	spans := make(map[*process.Node]int)
	for _, el := range g.Elements() {
		if !el.Expanded || el.IsLane() {
			continue
		}
		rows, cols := r.ChildGrid(el)
		count := cols
		if byVertical {
			count = rows
		}
		if count == 0 {
			count = 1
		}
		spans[el] = count + 1

		p, _ := g.Find(el)
		key := p.Col
		if byVertical {
			key = p.Row
		}
		need[key] = max(need[key], count)
	}

	keys := make([]int, 0, len(need))
	for k := range need {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	slices.Reverse(keys)

	for _, key := range keys {
		count := need[key]
		// lanes ending on the expanded row grow with it
		var grow []*process.Node
		if byVertical {
			for _, ln := range g.Lanes() {
				lp, _ := g.Find(ln)
				if lp.Row+g.SpanOf(ln).Rows-1 == key {
					grow = append(grow, ln)
				}
			}
		}
		g.AddRowCol(!byVertical, key, count)
		for _, ln := range grow {
			s := g.SpanOf(ln)
			s.Rows += count
			g.SetSpan(ln, s)
		}
	}

	for el, n := range spans {
		s := g.SpanOf(el)
		if byVertical {
			s.Rows = n
		} else {
			s.Cols = n
		}
		g.SetSpan(el, s)
	}
}

// expandParticipants adds a spare row at the bottom of every lane band.
func (r *run) expandParticipants() {
	for _, p := range r.defs.Processes {
		g, ok := r.grids[p]
		if !ok {
			continue
		}
		for _, ln := range g.Lanes() {
			lp, _ := g.Find(ln)
			s := g.SpanOf(ln)
			g.AddRowCol(false, lp.Row+s.Rows-1, 1)
			s.Rows++
			g.SetSpan(ln, s)
		}
	}
}

// snapshot records the final grids in process order.
func (r *run) snapshot() {
	for _, p := range r.ordered(false) {
		g, ok := r.grids[p]
		if !ok {
			continue
		}
		rows, cols := g.Dimensions()
		pg := ProcessGrid{Process: p.ID, Rows: rows, Cols: cols, Cells: make([][][]string, rows)}
		for row := range rows {
			pg.Cells[row] = make([][]string, cols)
			for col := range cols {
				for _, n := range g.Get(row, col) {
					if !n.IsLane() {
						pg.Cells[row][col] = append(pg.Cells[row][col], n.ID)
					}
				}
			}
		}
		for _, ln := range g.Lanes() {
			pg.Lanes = append(pg.Lanes, ln.ID)
		}
		r.result.Grids = append(r.result.Grids, pg)
	}
}
