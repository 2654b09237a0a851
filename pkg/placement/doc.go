// Package placement assigns grid cells to the nodes of one process graph.
//
// # Overview
//
// [Run] walks the graph depth first and inserts every node right of the node
// it was reached from. Each insertion is followed by crossing repair: edges
// that would run through an element either push it aside or open a fresh
// row or column. Back edges pointing up and left get a forward-shift pass
// that moves the reached segment right of its source, so most flows read
// left to right.
//
// # Root Selection
//
// The walk restarts from a new root whenever its stack drains. Roots are
// tried in a fixed order:
//
//  1. a placed node with an unplaced predecessor (flips the grid)
//  2. an unplaced node without predecessors, start events first
//  3. a placed node with an unplaced successor
//  4. an unplaced node whose only predecessor is itself
//  5. an unplaced node without successors (flips the grid)
//  6. any unplaced node
//
// While the grid is flipped the walk runs against edge direction, which
// places predecessors of a join before the join is left behind. The grid is
// flipped back before [Run] returns.
//
// # Budget
//
// [Options.MaxSteps] caps the number of expansion steps. A capped run stops
// early and returns the partial grid with [Report.Truncated] set, which is
// how the step-by-step viewer replays a layout.
package placement
