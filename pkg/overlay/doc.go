// Package overlay binds a process graph to a grid and answers the geometric
// questions placement asks about edges.
//
// # Overview
//
// A [Grid] embeds a grid of [process.Node] and keeps two graphs: the initial
// graph of the whole process and the live graph of placed nodes. Adding a
// node mirrors every initial edge whose other endpoint is already placed, so
// the live graph always describes exactly the edges that can be drawn.
//
// # Directions and Paths
//
// Every live edge has a [Direction] derived from its endpoint cells. The
// path of an edge ([Grid.PathFor]) lists the cells it passes through, and
// [Grid.IsIntersect] is the closed-form check for a single cell. Placement
// uses them to detect edges that run through elements and to make room
// before that happens.
//
// While the grid is flipped, every edge query swaps source and target. A
// flipped walk places predecessors to the right of a node, which lets the
// traversal grow a flow backwards from a join.
//
// # Compaction
//
// [Grid.Shake] pulls chains of straight-connected elements towards the grid
// origin as long as nothing new gets crossed. [Grid.Separate] and [Merge]
// split a grid into connected parts and stack them back together, which
// removes the empty space between unrelated flows.
//
// # Concurrency
//
// A Grid is not safe for concurrent use.
package overlay
