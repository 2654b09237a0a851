package model

import (
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// =============================================================================
// Definitions
// =============================================================================

// Definitions is a loaded process document: root processes, their nested
// sub-processes and an optional collaboration.
type Definitions struct {
	ID            string
	Collaboration *Collaboration
	Processes     []*Process // root processes in definition order
}

// Collaboration groups the participants of a document and the message flows
// between them.
type Collaboration struct {
	ID           string
	Participants []*Participant
	MessageFlows []*process.Edge
}

// Participant is a pool that shows one root process. Its Node stands for the
// pool when a message flow starts or ends at the pool itself.
type Participant struct {
	ID      string
	Name    string
	Process *Process
	Node    *process.Node
}

// NewParticipant creates a participant of the default pool size.
func NewParticipant(id, name string, p *Process) *Participant {
	w, h := DefaultSize(process.KindParticipant)
	return &Participant{
		ID:      id,
		Name:    name,
		Process: p,
		Node:    &process.Node{ID: id, Name: name, Kind: process.KindParticipant, Width: w, Height: h},
	}
}

// AllProcesses returns every process, root processes first, each followed
// depth first by its sub-processes.
func (d *Definitions) AllProcesses() []*Process {
	var out []*Process
	var walk func(p *Process)
	walk = func(p *Process) {
		out = append(out, p)
		for _, sp := range p.SubProcesses {
			walk(sp)
		}
	}
	for _, p := range d.Processes {
		walk(p)
	}
	return out
}

// ParticipantFor returns the participant showing p, or nil.
func (d *Definitions) ParticipantFor(p *Process) *Participant {
	if d.Collaboration == nil {
		return nil
	}
	for _, part := range d.Collaboration.Participants {
		if part.Process == p {
			return part
		}
	}
	return nil
}

// ProcessOf returns the process that directly owns n, or nil.
func (d *Definitions) ProcessOf(n *process.Node) *Process {
	for _, p := range d.AllProcesses() {
		if p.Owns(n) {
			return p
		}
	}
	return nil
}

// Lookup finds a flow node by ID anywhere in the document.
func (d *Definitions) Lookup(id string) (*process.Node, bool) {
	for _, p := range d.AllProcesses() {
		for _, n := range p.Nodes {
			if n.ID == id {
				return n, true
			}
		}
	}
	return nil, false
}

// =============================================================================
// Process
// =============================================================================

// Process is a root process or the content of a sub-process.
//
// Node is the container element: a synthetic process node for root
// processes, the sub-process node otherwise. Nodes, Flows and Associations
// keep definition order.
type Process struct {
	ID   string
	Name string
	Node *process.Node

	Parent       *Process
	SubProcesses []*Process

	Lanes        []*Lane
	Nodes        []*process.Node
	Flows        []*process.Edge
	Associations []*process.Edge
}

// NewProcess creates an empty root process.
func NewProcess(id, name string) *Process {
	return &Process{
		ID:   id,
		Name: name,
		Node: &process.Node{ID: id, Name: name, Kind: process.KindProcess},
	}
}

// IsExpanded reports whether p is drawn inside its container shape.
func (p *Process) IsExpanded() bool { return p.Node != nil && p.Node.Expanded }

// IsRoot reports whether p is a top-level process.
func (p *Process) IsRoot() bool { return p.Parent == nil }

// Owns reports whether n is a direct flow node of p.
func (p *Process) Owns(n *process.Node) bool {
	for _, m := range p.Nodes {
		if m == n {
			return true
		}
	}
	return false
}

// AddNode appends n and fills its default size when unset.
func (p *Process) AddNode(n *process.Node) *process.Node {
	if n.Width == 0 && n.Height == 0 {
		n.Width, n.Height = DefaultSize(n.Kind)
	}
	p.Nodes = append(p.Nodes, n)
	return n
}

// AddSubProcess appends n as a sub-process node and returns the process that
// holds its content.
func (p *Process) AddSubProcess(n *process.Node) *Process {
	n.Kind = process.KindSubProcess
	p.AddNode(n)
	sp := &Process{ID: n.ID, Name: n.Name, Node: n, Parent: p}
	p.SubProcesses = append(p.SubProcesses, sp)
	return sp
}

// Connect declares a sequence flow between two nodes of p.
func (p *Process) Connect(id string, src, dst *process.Node) *process.Edge {
	process.Connect(src, dst)
	e := &process.Edge{ID: id, Source: src, Target: dst, Kind: process.EdgeSequenceFlow}
	p.Flows = append(p.Flows, e)
	return e
}

// Associate declares a data association. Associations read from a data
// reference point from the reference to the activity; writes point the other
// way. Either end may live in another process.
func (p *Process) Associate(id string, src, dst *process.Node) *process.Edge {
	e := &process.Edge{ID: id, Source: src, Target: dst, Kind: process.EdgeDataAssociation}
	p.Associations = append(p.Associations, e)
	return e
}

// ActivityEnd returns the end of a data association that is not the data
// reference.
func ActivityEnd(e *process.Edge) *process.Node {
	if e.Source.Kind.IsData() {
		return e.Target
	}
	return e.Source
}

// AddLane appends a top-level lane.
func (p *Process) AddLane(l *Lane) *Lane {
	p.Lanes = append(p.Lanes, l)
	return l
}

// HasLanes reports whether p declares any lane.
func (p *Process) HasLanes() bool { return len(p.Lanes) > 0 }

// AllLanes returns every lane depth first in declaration order.
func (p *Process) AllLanes() []*Lane {
	var out []*Lane
	var walk func(ls []*Lane)
	walk = func(ls []*Lane) {
		for _, l := range ls {
			out = append(out, l)
			walk(l.Lanes)
		}
	}
	walk(p.Lanes)
	return out
}

// BindLanes gives every flow node of a process with lanes an owning lane.
// A data reference takes the lane of the first node writing to it, else of
// the first node reading it. Anything left goes to the first leaf lane.
// Nodes that already have a lane keep it.
func (p *Process) BindLanes() {
	if !p.HasLanes() {
		return
	}
	first := p.Lanes[0]
	for len(first.Lanes) > 0 {
		first = first.Lanes[0]
	}

	for _, n := range p.Nodes {
		if n.Lane != nil || !n.Kind.IsData() {
			continue
		}
		for _, e := range p.Associations {
			if e.Target == n && e.Source.Lane != nil {
				n.Lane = e.Source.Lane
				break
			}
		}
		if n.Lane != nil {
			continue
		}
		for _, e := range p.Associations {
			if e.Source == n && e.Target.Lane != nil {
				n.Lane = e.Target.Lane
				break
			}
		}
	}
	for _, n := range p.Nodes {
		if n.Lane == nil {
			n.Lane = first.Node
		}
	}
}

// DefinitionIndex maps element IDs of p to their definition order: nodes
// first, then flows, then associations.
func (p *Process) DefinitionIndex() map[string]int {
	idx := make(map[string]int, len(p.Nodes)+len(p.Flows)+len(p.Associations))
	i := 0
	add := func(id string) {
		if _, ok := idx[id]; !ok && id != "" {
			idx[id] = i
			i++
		}
	}
	for _, n := range p.Nodes {
		add(n.ID)
	}
	for _, e := range p.Flows {
		add(e.ID)
	}
	for _, e := range p.Associations {
		add(e.ID)
	}
	return idx
}

// =============================================================================
// Lanes
// =============================================================================

// Lane is one node of a lane tree. Its Node is the grid element that stands
// for the lane band.
type Lane struct {
	Node  *process.Node
	Lanes []*Lane
}

// NewLane creates a lane holding nodes. Every node gets the lane as owner.
func NewLane(id, name string, nodes ...*process.Node) *Lane {
	l := &Lane{Node: &process.Node{ID: id, Name: name, Kind: process.KindLane}}
	for _, n := range nodes {
		n.Lane = l.Node
	}
	return l
}

// ID returns the lane ID.
func (l *Lane) ID() string { return l.Node.ID }

// Add appends a child lane.
func (l *Lane) Add(child *Lane) *Lane {
	l.Lanes = append(l.Lanes, child)
	return child
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks the structural rules a layout relies on: unique IDs,
// known kinds, boundary hosts in the same process and participants that
// point at root processes. It fails with INVALID_INPUT.
func (d *Definitions) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "definitions are nil")
	}
	seen := make(map[string]bool)
	claim := func(id string) error {
		if id == "" {
			return nil
		}
		if seen[id] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate id %q", id)
		}
		seen[id] = true
		return nil
	}

	roots := make(map[*Process]bool, len(d.Processes))
	for _, p := range d.Processes {
		roots[p] = true
	}
	for _, p := range d.AllProcesses() {
		if p.IsRoot() {
			if err := claim(p.ID); err != nil {
				return err
			}
		}
		for _, l := range p.AllLanes() {
			if err := claim(l.ID()); err != nil {
				return err
			}
		}
		for _, n := range p.Nodes {
			if err := claim(n.ID); err != nil {
				return err
			}
			if !n.Kind.IsFlowKind() {
				return errors.New(errors.ErrCodeInvalidInput, "node %q has unknown kind %q", n.ID, n.Kind)
			}
			if n.IsBoundary() {
				if n.AttachedTo == nil {
					return errors.New(errors.ErrCodeInvalidInput, "boundary event %q is not attached", n.ID)
				}
				if !p.Owns(n.AttachedTo) {
					return errors.New(errors.ErrCodeInvalidInput,
						"boundary event %q is attached to %q outside its process", n.ID, n.AttachedTo.ID)
				}
			}
		}
		for _, e := range append(append([]*process.Edge{}, p.Flows...), p.Associations...) {
			if err := claim(e.ID); err != nil {
				return err
			}
			if e.Source == nil || e.Target == nil {
				return errors.New(errors.ErrCodeInvalidInput, "edge %q has a missing endpoint", e.ID)
			}
		}
		for _, e := range p.Flows {
			if !p.Owns(e.Source) || !p.Owns(e.Target) {
				return errors.New(errors.ErrCodeInvalidInput, "sequence flow %q leaves process %q", e.ID, p.ID)
			}
		}
		for _, e := range p.Associations {
			if e.Source.Kind.IsData() == e.Target.Kind.IsData() {
				return errors.New(errors.ErrCodeInvalidInput, "association %q must join one data reference", e.ID)
			}
			if !p.Owns(ActivityEnd(e)) {
				return errors.New(errors.ErrCodeInvalidInput, "association %q is declared outside the process of %q", e.ID, ActivityEnd(e).ID)
			}
		}
	}

	if c := d.Collaboration; c != nil {
		if err := claim(c.ID); err != nil {
			return err
		}
		for _, part := range c.Participants {
			if err := claim(part.ID); err != nil {
				return err
			}
			if part.Process == nil || !roots[part.Process] {
				return errors.New(errors.ErrCodeInvalidInput, "participant %q has no root process", part.ID)
			}
		}
		for _, e := range c.MessageFlows {
			if err := claim(e.ID); err != nil {
				return err
			}
			if e.Source == nil || e.Target == nil {
				return errors.New(errors.ErrCodeInvalidInput, "message flow %q has a missing endpoint", e.ID)
			}
		}
	}
	return nil
}
