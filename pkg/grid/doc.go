// Package grid provides a sparse, integer-indexed 2D container used by the
// layout engine to assign process elements to rows and columns.
//
// # Overview
//
// A [Grid] maps every element to exactly one [Position]. Cells are
// multi-occupancy: several elements may legitimately share a cell, for
// example a lane and its first node, or a host task and the boundary events
// attached to it. The grid keeps a reverse index so both directions of the
// lookup ([Grid.Find] and [Grid.Get]) are O(1).
//
// Storage is sparse but the grid is logically rectangular: [Grid.RowCount]
// and [Grid.ColCount] describe a rectangle, and every missing cell behaves as
// an empty one.
//
// # Making Room
//
// Every mutation that needs space goes through [Grid.AddRowCol], which
// inserts fresh lines after an index and shifts everything beyond it.
// [Grid.ExpandRow] is the single-row variant used when only part of the grid
// has to move right. [Grid.Shrink] removes empty lines again without
// reordering the remaining elements.
//
// # Spans
//
// An element may reserve several lines through a [Span]. Lanes use row spans
// to describe their band, and expanded containers use both axes to reserve
// room for their embedded sub-grid. Lines covered by a span count as occupied
// when shrinking, and inserting a line strictly inside a span grows it.
//
// # Flipping
//
// [Grid.Flip] mirrors one axis and toggles the corresponding flag. The grid
// itself attaches no meaning to the flag; direction-aware consumers such as
// the edge overlay read [Grid.IsFlipped] to swap edge endpoints.
//
// # Concurrency
//
// A Grid is not safe for concurrent use. Each layout run owns its grids.
package grid
