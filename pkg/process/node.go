package process

import "slices"

// Kind is the type tag of a process element.
type Kind string

const (
	KindProcess     Kind = "process"
	KindParticipant Kind = "participant"
	KindLane        Kind = "lane"

	KindStartEvent             Kind = "startEvent"
	KindEndEvent               Kind = "endEvent"
	KindIntermediateThrowEvent Kind = "intermediateThrowEvent"
	KindIntermediateCatchEvent Kind = "intermediateCatchEvent"
	KindBoundaryEvent          Kind = "boundaryEvent"

	KindTask             Kind = "task"
	KindUserTask         Kind = "userTask"
	KindServiceTask      Kind = "serviceTask"
	KindScriptTask       Kind = "scriptTask"
	KindManualTask       Kind = "manualTask"
	KindSendTask         Kind = "sendTask"
	KindReceiveTask      Kind = "receiveTask"
	KindBusinessRuleTask Kind = "businessRuleTask"
	KindCallActivity     Kind = "callActivity"
	KindSubProcess       Kind = "subProcess"

	KindExclusiveGateway  Kind = "exclusiveGateway"
	KindParallelGateway   Kind = "parallelGateway"
	KindInclusiveGateway  Kind = "inclusiveGateway"
	KindEventBasedGateway Kind = "eventBasedGateway"
	KindComplexGateway    Kind = "complexGateway"

	KindDataObjectReference Kind = "dataObjectReference"
	KindDataStoreReference  Kind = "dataStoreReference"
)

var flowKinds = []Kind{
	KindStartEvent, KindEndEvent, KindIntermediateThrowEvent, KindIntermediateCatchEvent, KindBoundaryEvent,
	KindTask, KindUserTask, KindServiceTask, KindScriptTask, KindManualTask, KindSendTask, KindReceiveTask,
	KindBusinessRuleTask, KindCallActivity, KindSubProcess,
	KindExclusiveGateway, KindParallelGateway, KindInclusiveGateway, KindEventBasedGateway, KindComplexGateway,
	KindDataObjectReference, KindDataStoreReference,
}

// FlowKinds returns every kind that may appear as a node inside a process.
func FlowKinds() []Kind { return slices.Clone(flowKinds) }

// IsFlowKind reports whether k may appear as a node inside a process.
func (k Kind) IsFlowKind() bool { return slices.Contains(flowKinds, k) }

// IsEvent reports whether k is any kind of event.
func (k Kind) IsEvent() bool {
	switch k {
	case KindStartEvent, KindEndEvent, KindIntermediateThrowEvent, KindIntermediateCatchEvent, KindBoundaryEvent:
		return true
	}
	return false
}

// IsGateway reports whether k is any kind of gateway.
func (k Kind) IsGateway() bool {
	switch k {
	case KindExclusiveGateway, KindParallelGateway, KindInclusiveGateway, KindEventBasedGateway, KindComplexGateway:
		return true
	}
	return false
}

// IsActivity reports whether k is a task, a call activity or a sub-process.
func (k Kind) IsActivity() bool {
	switch k {
	case KindTask, KindUserTask, KindServiceTask, KindScriptTask, KindManualTask, KindSendTask,
		KindReceiveTask, KindBusinessRuleTask, KindCallActivity, KindSubProcess:
		return true
	}
	return false
}

// IsData reports whether k is a data object or data store reference.
func (k Kind) IsData() bool {
	return k == KindDataObjectReference || k == KindDataStoreReference
}

// Node is a process element.
//
// Layout results (grid position, bounds) are not stored on the node; they
// belong to the run that computed them.
type Node struct {
	ID   string
	Name string
	Kind Kind

	// AttachedTo is the host of a boundary event.
	AttachedTo *Node
	// Attachers are the boundary events attached to this node, in
	// declaration order.
	Attachers []*Node

	// Lane is the owning lane. It is nil when the process has no lanes.
	Lane *Node

	// Expanded marks a container that owns an embedded sub-grid.
	Expanded bool

	// Width and Height are the unexpanded default size.
	Width  float64
	Height float64

	// Outgoing and Incoming list the declared sequence-flow neighbours, one
	// entry per flow, in declaration order.
	Outgoing []*Node
	Incoming []*Node
}

// String returns the node ID.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.ID
}

// IsBoundary reports whether n is a boundary event.
func (n *Node) IsBoundary() bool { return n != nil && n.Kind == KindBoundaryEvent }

// IsLane reports whether n is a lane.
func (n *Node) IsLane() bool { return n != nil && n.Kind == KindLane }

// IsStartIntermediate reports whether n is an intermediate event without
// incoming sequence flows. Such events start a flow fragment but are not
// preferred as traversal roots.
func (n *Node) IsStartIntermediate() bool {
	return (n.Kind == KindIntermediateThrowEvent || n.Kind == KindIntermediateCatchEvent) && len(n.Incoming) == 0
}

// Successors returns the distinct sequence-flow targets of n.
func (n *Node) Successors() []*Node { return unique(n.Outgoing) }

// Predecessors returns the distinct sequence-flow sources of n.
func (n *Node) Predecessors() []*Node { return unique(n.Incoming) }

// AttachedSuccessors returns the distinct sequence-flow targets of the
// boundary events attached to n. Attachers with more outgoing flows come
// first, and each attacher contributes its targets in reverse declaration
// order.
func (n *Node) AttachedSuccessors() []*Node {
	attachers := slices.Clone(n.Attachers)
	slices.SortStableFunc(attachers, func(a, b *Node) int {
		return len(b.Outgoing) - len(a.Outgoing)
	})

	var out []*Node
	for _, a := range attachers {
		targets := slices.Clone(a.Outgoing)
		slices.Reverse(targets)
		out = append(out, targets...)
	}
	return unique(out)
}

// FlowSuccessors returns the successors of n followed by the successors of its
// attached boundary events, without duplicates.
func (n *Node) FlowSuccessors() []*Node {
	return unique(append(n.Successors(), n.AttachedSuccessors()...))
}

// Attach records b as a boundary event of host.
func Attach(b, host *Node) {
	b.AttachedTo = host
	if !slices.Contains(host.Attachers, b) {
		host.Attachers = append(host.Attachers, b)
	}
}

// Connect records a declared sequence flow from src to dst.
func Connect(src, dst *Node) {
	src.Outgoing = append(src.Outgoing, dst)
	dst.Incoming = append(dst.Incoming, src)
}

func unique(nodes []*Node) []*Node {
	seen := make(map[*Node]bool, len(nodes))
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// EdgeKind classifies edges.
type EdgeKind int

const (
	// EdgeAttachment is a structural edge between a boundary event and its host.
	EdgeAttachment EdgeKind = iota
	// EdgeSequenceFlow is a declared sequence flow.
	EdgeSequenceFlow
	// EdgeDataAssociation joins a data reference and an activity.
	EdgeDataAssociation
	// EdgeMessageFlow joins elements of different participants.
	EdgeMessageFlow
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeAttachment:
		return "attachment"
	case EdgeSequenceFlow:
		return "sequenceFlow"
	case EdgeDataAssociation:
		return "dataAssociation"
	case EdgeMessageFlow:
		return "messageFlow"
	}
	return "unknown"
}

// Edge is a directed connection. Edges are identified by pointer.
type Edge struct {
	// ID is empty for structural edges that are never drawn.
	ID     string
	Source *Node
	Target *Node
	Kind   EdgeKind
}

// Drawn reports whether the edge produces a visible connection.
func (e *Edge) Drawn() bool { return e.ID != "" }

// IsSelfLoop reports whether source and target are the same node.
func (e *Edge) IsSelfLoop() bool { return e.Source == e.Target }

func (e *Edge) String() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Source.String() + "->" + e.Target.String()
}
