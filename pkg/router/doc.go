// Package router turns grid edges into orthogonal polylines.
//
// [Route] classifies an edge by the compass direction from its source cell
// to its target cell and applies the recipe for that direction. Most recipes
// dock on the sides facing each other and bend once. A few detour:
//
//   - edges leaving a boundary event exit from its bottom and run below the
//     host cell before turning to the target;
//   - self-loops leave from the bottom and come back in from the left;
//   - east-to-west edges whose target flows back, or already leaves to the
//     north-east, run below the source row;
//   - south-east to north-west edges with nodes in the way run below too;
//   - expanded containers are docked at their header line, not their center.
//
// Edges that no recipe covers get a single bend when the legs are clear, and
// a generic route through the gaps between cells otherwise.
//
// The router is pure: it reads the grid and the [Layout] and never changes
// either.
package router
