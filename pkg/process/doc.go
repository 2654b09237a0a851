// Package process provides the directed multigraph of process elements that
// the layout engine places on a grid.
//
// # Overview
//
// A [Node] is one element of a process: an event, an activity, a gateway, a
// data reference, a lane or a nested container. Nodes are identified by
// pointer; two nodes with the same ID are different elements. An [Edge]
// joins two nodes and may carry an ID. Edges without an ID are structural:
// they take part in placement but are never drawn. The layouter uses them to
// tie boundary events to their host.
//
// A [Graph] stores nodes and edges in insertion order. Several edges may join
// the same ordered pair, which is common for boundary attachments and for
// loosely modelled processes.
//
// # Traversal
//
// [Graph.Traverse] is the generic walk shared by placement and segment
// extraction. It repeatedly asks a [StartFunc] for a root and then expands
// nodes depth first through a [NextFunc]. Both callbacks see the ordered
// visited set, and the expansion callback also sees the pending [Sequence],
// so it can pull parked nodes back out and re-treat them as new.
//
//	visited := g.Traverse(
//		func(visited *process.NodeSet, g *process.Graph) *process.Node {
//			for _, n := range g.Nodes() {
//				if !visited.Has(n) {
//					return n
//				}
//			}
//			return nil
//		},
//		func(n *process.Node, g *process.Graph, visited *process.NodeSet, pending *process.Sequence) []*process.Node {
//			var next []*process.Node
//			for _, e := range g.Outgoing(n) {
//				if !visited.Has(e.Target) {
//					next = append(next, e.Target)
//				}
//			}
//			return next
//		},
//	)
//
// # Components
//
// [Graph.Components] splits a graph into weakly connected components, and
// [Merge] joins graphs back together. Both keep insertion order so results
// are deterministic.
//
// # Concurrency
//
// Graphs are not safe for concurrent use.
package process
