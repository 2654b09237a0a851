// Package layouter computes diagram interchange for process documents.
//
// # Overview
//
// A [Layouter] turns [model.Definitions] into a [Result]: one or more
// diagrams of shapes with bounds and edges with waypoints. The work happens
// in three passes over the container hierarchy of processes and
// sub-processes:
//
//  1. Every process gets its own grid. Lanes are laid down first as spanning
//     bands, then [placement.Place] walks the process graph. The grid is
//     split into connected parts, compacted and merged back.
//  2. From the deepest process up, expanded sub-processes are widened and
//     heightened to fit their child grid, and lines are inserted after them
//     so nothing overlaps.
//  3. From the top down, pools and lanes are stacked, cells are turned into
//     coordinates and edges are routed with [router.Route]. Message flows and
//     associations that cross processes are drawn as straight lines last.
//
// # Geometry
//
// Cell size, pool margin and label width come from [config.Layout]. A node
// is centered in its cell; an expanded sub-process grows from its cell to
// the right and down by the size of its content. Boundary events are spread
// evenly along the bottom edge of their host.
//
// # Step Budget
//
// [WithMaxSteps] caps the placement steps of the whole document. Processes
// reached after the budget is spent keep only their lanes. The result then
// reports Stats.Truncated, which lets tools replay a layout step by step.
package layouter
