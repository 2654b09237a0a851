package process

import "slices"

// Graph is a directed multigraph over process nodes. Nodes and edges keep
// their insertion order.
//
// The zero value is not usable - use [New].
type Graph struct {
	nodes    []*Node
	nodeSet  map[*Node]struct{}
	edges    []*Edge
	edgeSet  map[*Edge]struct{}
	outgoing map[*Node][]*Edge
	incoming map[*Node][]*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeSet:  make(map[*Node]struct{}),
		edgeSet:  make(map[*Edge]struct{}),
		outgoing: make(map[*Node][]*Edge),
		incoming: make(map[*Node][]*Edge),
	}
}

// AddNode adds n. Adding a node twice is a no-op.
func (g *Graph) AddNode(n *Node) {
	if n == nil {
		return
	}
	if _, ok := g.nodeSet[n]; ok {
		return
	}
	g.nodeSet[n] = struct{}{}
	g.nodes = append(g.nodes, n)
}

// AddEdge adds e and any missing endpoint. Adding the same edge twice is a
// no-op; a different edge between the same pair is a parallel edge.
func (g *Graph) AddEdge(e *Edge) {
	if e == nil {
		return
	}
	if _, ok := g.edgeSet[e]; ok {
		return
	}
	g.AddNode(e.Source)
	g.AddNode(e.Target)
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
	g.incoming[e.Target] = append(g.incoming[e.Target], e)
}

// RemoveNode deletes n together with every edge touching it.
func (g *Graph) RemoveNode(n *Node) {
	if _, ok := g.nodeSet[n]; !ok {
		return
	}
	for _, e := range slices.Concat(g.outgoing[n], g.incoming[n]) {
		g.RemoveEdge(e)
	}
	delete(g.nodeSet, n)
	delete(g.outgoing, n)
	delete(g.incoming, n)
	if i := slices.Index(g.nodes, n); i >= 0 {
		g.nodes = slices.Delete(g.nodes, i, i+1)
	}
}

// RemoveEdge deletes e. Its endpoints stay in the graph.
func (g *Graph) RemoveEdge(e *Edge) {
	if _, ok := g.edgeSet[e]; !ok {
		return
	}
	delete(g.edgeSet, e)
	g.edges = deleteEdge(g.edges, e)
	g.outgoing[e.Source] = deleteEdge(g.outgoing[e.Source], e)
	g.incoming[e.Target] = deleteEdge(g.incoming[e.Target], e)
}

func deleteEdge(edges []*Edge, e *Edge) []*Edge {
	if i := slices.Index(edges, e); i >= 0 {
		return slices.Delete(edges, i, i+1)
	}
	return edges
}

// HasNode reports whether n is in the graph.
func (g *Graph) HasNode(n *Node) bool {
	_, ok := g.nodeSet[n]
	return ok
}

// HasEdge reports whether e is in the graph.
func (g *Graph) HasEdge(e *Edge) bool {
	_, ok := g.edgeSet[e]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Outgoing returns the edges leaving n in insertion order.
func (g *Graph) Outgoing(n *Node) []*Edge { return slices.Clone(g.outgoing[n]) }

// Incoming returns the edges entering n in insertion order.
func (g *Graph) Incoming(n *Node) []*Edge { return slices.Clone(g.incoming[n]) }

// Copy returns a graph with the same nodes and edges. Nodes and edges are
// shared, only the containers are new.
func (g *Graph) Copy() *Graph { return Merge(g) }

// Merge returns a new graph holding the nodes and edges of every input in
// order. Shared nodes and edges appear once.
func Merge(graphs ...*Graph) *Graph {
	out := New()
	for _, g := range graphs {
		for _, n := range g.nodes {
			out.AddNode(n)
		}
		for _, e := range g.edges {
			out.AddEdge(e)
		}
	}
	return out
}

// Components splits the graph into weakly connected components. Components
// are ordered by their first node; nodes and edges inside a component keep
// the graph's insertion order.
func (g *Graph) Components() []*Graph {
	comp := make(map[*Node]int, len(g.nodes))
	var roots []*Node
	for _, start := range g.nodes {
		if _, ok := comp[start]; ok {
			continue
		}
		id := len(roots)
		roots = append(roots, start)
		comp[start] = id
		queue := []*Node{start}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			for _, e := range g.outgoing[n] {
				if _, ok := comp[e.Target]; !ok {
					comp[e.Target] = id
					queue = append(queue, e.Target)
				}
			}
			for _, e := range g.incoming[n] {
				if _, ok := comp[e.Source]; !ok {
					comp[e.Source] = id
					queue = append(queue, e.Source)
				}
			}
		}
	}

	out := make([]*Graph, len(roots))
	for i := range out {
		out[i] = New()
	}
	for _, n := range g.nodes {
		out[comp[n]].AddNode(n)
	}
	for _, e := range g.edges {
		out[comp[e.Source]].AddEdge(e)
	}
	return out
}
