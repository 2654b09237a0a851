package placement

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/overlay"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// Options configures a placement run.
type Options struct {
	// MaxSteps caps root selections and node expansions. Zero means no limit.
	MaxSteps int

	// Logger receives debug output about root selection. Nil uses the
	// default logger.
	Logger *log.Logger
}

// Report summarizes a placement run.
type Report struct {
	Steps     int  // expansion steps taken
	Roots     int  // walks started
	Flips     int  // grid flips during the walk
	Placed    int  // nodes in the returned grid
	Truncated bool // stopped by MaxSteps
}

// Run places every node of g on a fresh grid.
//
// Run fails with INVALID_INPUT for a nil graph and with LAYOUT_STALLED when
// a root selection makes no progress. Cancelling ctx stops the walk at the
// next step and returns ctx.Err().
func Run(ctx context.Context, g *process.Graph, opts Options) (*overlay.Grid, Report, error) {
	if g == nil {
		return nil, Report{}, errors.New(errors.ErrCodeInvalidInput, "placement: nil graph")
	}
	return Place(ctx, overlay.New(g), opts)
}

// Place walks the initial graph of grid and places its nodes on grid, which
// may already hold lanes. It fails like [Run].
func Place(ctx context.Context, grid *overlay.Grid, opts Options) (*overlay.Grid, Report, error) {
	if grid == nil {
		return nil, Report{}, errors.New(errors.ErrCodeInvalidInput, "placement: nil grid")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &state{
		ctx:         ctx,
		grid:        grid,
		maxSteps:    opts.MaxSteps,
		logger:      logger,
		lastVisited: -1,
	}
	grid.Initial().Traverse(s.start, s.next)

	if s.grid.IsFlipped() {
		s.grid.Flip(false)
	}

	report := Report{
		Steps:     s.step,
		Roots:     s.roots,
		Flips:     s.flips,
		Placed:    s.grid.Len(),
		Truncated: s.exhausted(),
	}
	if s.err != nil {
		return nil, report, s.err
	}
	return s.grid, report, nil
}

// state is the mutable context of one run.
type state struct {
	ctx    context.Context
	grid   *overlay.Grid
	logger *log.Logger

	maxSteps int
	step     int
	roots    int
	flips    int

	// lastVisited is the visited count at the previous root selection.
	lastVisited int

	err error
}

func (s *state) exhausted() bool {
	return s.maxSteps > 0 && s.step >= s.maxSteps
}

// halted reports whether the walk must stop, recording cancellation.
func (s *state) halted() bool {
	if s.err != nil || s.exhausted() {
		return true
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return true
	}
	return false
}

func (s *state) flip() {
	s.grid.Flip(false)
	s.flips++
}

// =============================================================================
// Root selection
// =============================================================================

func (s *state) start(visited *process.NodeSet, g *process.Graph) *process.Node {
	if s.halted() {
		return nil
	}
	root, rule := s.selectRoot(visited, g)
	if root == nil {
		return nil
	}
	if visited.Len() == s.lastVisited {
		s.err = errors.New(errors.ErrCodeLayoutStalled,
			"placement made no progress at %s: %d of %d nodes visited", root, visited.Len(), g.NodeCount())
		return nil
	}
	s.lastVisited = visited.Len()
	s.roots++
	s.logger.Debug("placement root", "node", root.ID, "rule", rule, "flipped", s.grid.IsFlipped())
	return root
}

func (s *state) selectRoot(visited *process.NodeSet, g *process.Graph) (*process.Node, int) {
	grid := s.grid

	for _, n := range visited.Items() {
		for _, e := range grid.InitialIncoming(n) {
			if !visited.Has(grid.EdgeSource(e)) {
				s.flip()
				return n, 1
			}
		}
	}

	var primary []*process.Node
	for _, n := range g.Nodes() {
		if !visited.Has(n) && len(grid.InitialIncoming(n)) == 0 && !n.IsStartIntermediate() {
			primary = append(primary, n)
		}
	}
	if len(primary) > 0 {
		if i := slices.IndexFunc(primary, func(n *process.Node) bool { return n.Kind == process.KindStartEvent }); i >= 0 {
			return primary[i], 2
		}
		return primary[0], 2
	}

	for _, n := range visited.Items() {
		for _, e := range grid.InitialOutgoing(n) {
			if !visited.Has(grid.EdgeTarget(e)) {
				return n, 3
			}
		}
	}

	for _, n := range g.Nodes() {
		if visited.Has(n) {
			continue
		}
		external := 0
		for _, e := range grid.InitialIncoming(n) {
			if grid.EdgeSource(e) != n {
				external++
			}
		}
		if external == 0 {
			return n, 4
		}
	}

	for _, n := range g.Nodes() {
		if visited.Has(n) {
			continue
		}
		sinks := true
		for _, e := range grid.InitialOutgoing(n) {
			if !e.IsSelfLoop() {
				sinks = false
				break
			}
		}
		if sinks {
			s.flip()
			return n, 5
		}
	}

	for _, n := range g.Nodes() {
		if !visited.Has(n) {
			s.step++
			return n, 6
		}
	}
	return nil, 0
}

// =============================================================================
// Expansion
// =============================================================================

func (s *state) next(node *process.Node, _ *process.Graph, visited *process.NodeSet, pending *process.Sequence) []*process.Node {
	if s.halted() {
		return nil
	}
	out := s.expand(node, visited, pending)
	s.step++
	return out
}

// expand places node if needed, inserts its unplaced successors and the
// parked successors it pulls back from the stack, and returns them in visit
// order.
func (s *state) expand(node *process.Node, visited *process.NodeSet, pending *process.Sequence) []*process.Node {
	grid := s.grid
	if !grid.Has(node) {
		grid.Add(node, nil)
		if p, _ := grid.Find(node); grid.IsCrossed(p, true) {
			pushVerticalEdgeBy(grid, []*process.Node{node})
		}
	}

	var fresh []*process.Node
	for _, e := range grid.InitialOutgoing(node) {
		if t := grid.EdgeTarget(e); !grid.Has(t) && !slices.Contains(fresh, t) {
			fresh = append(fresh, t)
		}
	}
	parked := s.outgoingFromStack(node, visited, pending, len(fresh) > 0)

	var nextElements []*process.Node
	for _, next := range append(fresh, parked...) {
		pos := s.insertPosition(node, next)

		if grid.IsFlipped() && next.IsBoundary() && next.AttachedTo != node {
			if host := next.AttachedTo; host != nil && !visited.Has(host) {
				grid.Add(host, &pos)
				visited.Add(host)
				s.fixNewCrosses(host, pending, nextElements, true)
				nextElements = slices.Insert(nextElements, 0, next)
			}
		}

		grid.Add(next, &pos)
		visited.Add(next)
		s.fixNewCrosses(next, pending, nextElements, true)
		s.moveTopLeftOutgoingForward(next)
		nextElements = slices.Insert(nextElements, 0, next)
	}

	var boundaries, others []*process.Node
	for _, n := range nextElements {
		if n.IsBoundary() {
			boundaries = append(boundaries, n)
		} else {
			others = append(others, n)
		}
	}
	slices.SortStableFunc(boundaries, func(a, b *process.Node) int {
		return len(a.Outgoing) - len(b.Outgoing)
	})
	return append(boundaries, others...)
}

// inStackWithoutOutgoing reports whether n waits on the stack and has no
// placed successor yet.
func (s *state) inStackWithoutOutgoing(n *process.Node, pending *process.Sequence) bool {
	return pending.Contains(n) && len(s.grid.OutgoingEdges(n)) == 0
}
