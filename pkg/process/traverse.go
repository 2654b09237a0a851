package process

import "slices"

// NodeSet is an insertion-ordered set of nodes.
//
// The zero value is an empty set ready to use.
type NodeSet struct {
	items []*Node
	index map[*Node]struct{}
}

// NewNodeSet returns a set holding nodes in order.
func NewNodeSet(nodes ...*Node) *NodeSet {
	s := &NodeSet{}
	for _, n := range nodes {
		s.Add(n)
	}
	return s
}

// Add inserts n at the end. Adding a present node keeps its position.
func (s *NodeSet) Add(n *Node) {
	if s.index == nil {
		s.index = make(map[*Node]struct{})
	}
	if _, ok := s.index[n]; ok {
		return
	}
	s.index[n] = struct{}{}
	s.items = append(s.items, n)
}

// Has reports whether n is in the set.
func (s *NodeSet) Has(n *Node) bool {
	_, ok := s.index[n]
	return ok
}

// Delete removes n.
func (s *NodeSet) Delete(n *Node) {
	if !s.Has(n) {
		return
	}
	delete(s.index, n)
	if i := slices.Index(s.items, n); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
}

// Len returns the number of nodes.
func (s *NodeSet) Len() int { return len(s.items) }

// Items returns the nodes in insertion order.
func (s *NodeSet) Items() []*Node { return slices.Clone(s.items) }

// Sequence is the pending stack of a traversal. Nodes are popped from the
// end.
type Sequence struct {
	items []*Node
}

// Push appends n.
func (q *Sequence) Push(n *Node) { q.items = append(q.items, n) }

// Pop removes and returns the last node, or nil when empty.
func (q *Sequence) Pop() *Node {
	if len(q.items) == 0 {
		return nil
	}
	n := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return n
}

// Len returns the number of pending nodes.
func (q *Sequence) Len() int { return len(q.items) }

// Contains reports whether n is pending.
func (q *Sequence) Contains(n *Node) bool { return slices.Contains(q.items, n) }

// Remove drops n from the pending nodes.
func (q *Sequence) Remove(n *Node) {
	if i := slices.Index(q.items, n); i >= 0 {
		q.items = slices.Delete(q.items, i, i+1)
	}
}

// StartFunc picks the root of the next walk. Returning nil ends the
// traversal.
type StartFunc func(visited *NodeSet, g *Graph) *Node

// NextFunc expands node and returns the nodes to visit next, in visiting
// order. It may edit visited and pending.
type NextFunc func(node *Node, g *Graph, visited *NodeSet, pending *Sequence) []*Node

// Traverse walks the graph depth first. For every root returned by start it
// drains a stack: the popped node is marked visited and expanded through
// next, and the returned nodes are pushed so that the first of them is
// expanded first. Traverse returns the visited set.
func (g *Graph) Traverse(start StartFunc, next NextFunc) *NodeSet {
	visited := NewNodeSet()
	for {
		root := start(visited, g)
		if root == nil {
			return visited
		}
		pending := &Sequence{}
		pending.Push(root)
		for pending.Len() > 0 {
			n := pending.Pop()
			visited.Add(n)
			nodes := next(n, g, visited, pending)
			for i := len(nodes) - 1; i >= 0; i-- {
				pending.Push(nodes[i])
			}
		}
	}
}
