package grid

import (
	"fmt"
	"maps"
	"slices"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
)

// Position is a cell coordinate. Both fields must be non-negative to be valid.
type Position struct {
	Row int
	Col int
}

// IsValid reports whether both coordinates are non-negative.
func (p Position) IsValid() bool { return p.Row >= 0 && p.Col >= 0 }

// String returns the position as "row,col".
func (p Position) String() string { return fmt.Sprintf("%d,%d", p.Row, p.Col) }

// Less orders positions top-left to bottom-right (row first, then column).
func (p Position) Less(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

// Span is the number of columns and rows an element reserves, starting at its
// anchor position. The zero value is treated as {1, 1}.
type Span struct {
	Cols int
	Rows int
}

func (s Span) normalized() Span {
	if s.Cols < 1 {
		s.Cols = 1
	}
	if s.Rows < 1 {
		s.Rows = 1
	}
	return s
}

// Grid is a sparse multi-occupancy grid of comparable elements.
//
// The zero value is not usable - use [New].
type Grid[E comparable] struct {
	cells map[Position][]E // cell -> occupants in insertion order
	index map[E]Position   // element -> anchor cell
	spans map[E]Span       // only elements with a non-default span
	order []E              // all elements in insertion order

	rows int
	cols int

	// pending holds per-row extra width added by ExpandRow. It is folded
	// into cols by the next whole-grid mutation.
	pending map[int]int

	flipped  bool
	flippedV bool
}

// New creates an empty grid.
func New[E comparable]() *Grid[E] {
	return &Grid[E]{
		cells: make(map[Position][]E),
		index: make(map[E]Position),
		spans: make(map[E]Span),
	}
}

// Clone returns an independent copy of the grid, including spans, pending
// row expansions and flip flags. Elements themselves are shared.
func (g *Grid[E]) Clone() *Grid[E] {
	c := &Grid[E]{
		cells:    make(map[Position][]E, len(g.cells)),
		index:    maps.Clone(g.index),
		spans:    maps.Clone(g.spans),
		order:    slices.Clone(g.order),
		rows:     g.rows,
		cols:     g.cols,
		pending:  maps.Clone(g.pending),
		flipped:  g.flipped,
		flippedV: g.flippedV,
	}
	for p, cell := range g.cells {
		c.cells[p] = slices.Clone(cell)
	}
	return c
}

// =============================================================================
// Queries
// =============================================================================

// RowCount returns the number of rows.
func (g *Grid[E]) RowCount() int { return g.rows }

// ColCount returns the number of columns.
func (g *Grid[E]) ColCount() int {
	extra := 0
	for _, n := range g.pending {
		extra = max(extra, n)
	}
	return g.cols + extra
}

// Dimensions returns the row and column counts.
func (g *Grid[E]) Dimensions() (rows, cols int) { return g.RowCount(), g.ColCount() }

// Len returns the number of placed elements.
func (g *Grid[E]) Len() int { return len(g.order) }

// IsFlipped reports whether columns are currently mirrored.
func (g *Grid[E]) IsFlipped() bool { return g.flipped }

// IsFlippedVertically reports whether rows are currently mirrored.
func (g *Grid[E]) IsFlippedVertically() bool { return g.flippedV }

// Has reports whether el is placed in the grid.
func (g *Grid[E]) Has(el E) bool {
	_, ok := g.index[el]
	return ok
}

// Find returns the anchor position of el.
func (g *Grid[E]) Find(el E) (Position, bool) {
	p, ok := g.index[el]
	return p, ok
}

// Get returns a copy of the occupants of a cell, or nil if the cell is empty.
func (g *Grid[E]) Get(row, col int) []E {
	c := g.cells[Position{row, col}]
	if len(c) == 0 {
		return nil
	}
	return slices.Clone(c)
}

// Elements returns all placed elements in insertion order.
func (g *Grid[E]) Elements() []E { return slices.Clone(g.order) }

// ElementsInRow returns the elements anchored in row, in insertion order.
func (g *Grid[E]) ElementsInRow(row int) []E {
	var out []E
	for _, el := range g.order {
		if g.index[el].Row == row {
			out = append(out, el)
		}
	}
	return out
}

// SpanOf returns the span of el. Unknown elements and elements without an
// explicit span report {1, 1}.
func (g *Grid[E]) SpanOf(el E) Span {
	return g.spans[el].normalized()
}

// SetSpan sets the span of a placed element. It is a no-op for elements that
// are not in the grid.
func (g *Grid[E]) SetSpan(el E, s Span) {
	if !g.Has(el) {
		return
	}
	s = s.normalized()
	if s == (Span{1, 1}) {
		delete(g.spans, el)
		return
	}
	g.spans[el] = s
}

// IsValidPosition reports whether p has non-negative coordinates.
func (g *Grid[E]) IsValidPosition(p Position) bool { return p.IsValid() }

// HasElementAt reports whether the cell at p has at least one occupant.
func (g *Grid[E]) HasElementAt(p Position) bool {
	return p.IsValid() && len(g.cells[p]) > 0
}

// ElementsInRange returns the occupants of every cell in the rectangle
// spanned by a and b (inclusive). The order of the corners is irrelevant.
// Cells are visited row by row, left to right.
func (g *Grid[E]) ElementsInRange(a, b Position) []E {
	var out []E
	g.eachCell(a, b, func(c []E) { out = append(out, c...) })
	return out
}

// OccupiedInRange returns the number of non-empty cells in the rectangle
// spanned by a and b (inclusive).
func (g *Grid[E]) OccupiedInRange(a, b Position) int {
	n := 0
	g.eachCell(a, b, func([]E) { n++ })
	return n
}

func (g *Grid[E]) eachCell(a, b Position, fn func([]E)) {
	r0, r1 := min(a.Row, b.Row), max(a.Row, b.Row)
	c0, c1 := min(a.Col, b.Col), max(a.Col, b.Col)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if cell := g.cells[Position{r, c}]; len(cell) > 0 {
				fn(cell)
			}
		}
	}
}

// HasIntermediateElements reports whether any cell strictly between first and
// last is occupied. When onVertical is true the walk runs down the column of
// first, otherwise along its row.
func (g *Grid[E]) HasIntermediateElements(first, last Position, onVertical bool) bool {
	if !first.IsValid() || !last.IsValid() {
		return false
	}
	if onVertical {
		start, end := min(first.Row, last.Row), max(first.Row, last.Row)
		for r := start + 1; r < end; r++ {
			if g.HasElementAt(Position{r, first.Col}) {
				return true
			}
		}
		return false
	}
	start, end := min(first.Col, last.Col), max(first.Col, last.Col)
	for c := start + 1; c < end; c++ {
		if g.HasElementAt(Position{first.Row, c}) {
			return true
		}
	}
	return false
}

// =============================================================================
// Mutations
// =============================================================================

// Add places el at pos. A nil or invalid position appends a fresh row and
// places el in its first column. The grid grows as needed to stay
// rectangular. Adding an element that is already placed moves it.
func (g *Grid[E]) Add(el E, pos *Position) {
	g.normalize()

	var p Position
	if pos == nil || !pos.IsValid() {
		p = Position{Row: g.rows, Col: 0}
	} else {
		p = *pos
	}

	if old, ok := g.index[el]; ok {
		g.detach(el, old)
	} else {
		g.order = append(g.order, el)
	}
	g.attach(el, p)
}

// Move relocates a placed element, keeping its span.
func (g *Grid[E]) Move(el E, to Position) error {
	if !to.IsValid() {
		return errors.New(errors.ErrCodeInvalidPosition,
			"Cannot move element %v to invalid position %d,%d", any(el), to.Row, to.Col)
	}
	from, ok := g.index[el]
	if !ok {
		return errors.New(errors.ErrCodeUnknownElement, "Cannot move not exist element %v", any(el))
	}
	g.normalize()
	g.detach(el, from)
	g.attach(el, to)
	return nil
}

// RemoveElement detaches el from its cell. The cell becomes empty when its
// last occupant leaves. Unknown elements are ignored.
func (g *Grid[E]) RemoveElement(el E) {
	p, ok := g.index[el]
	if !ok {
		return
	}
	g.detach(el, p)
	delete(g.index, el)
	delete(g.spans, el)
	if i := slices.Index(g.order, el); i >= 0 {
		g.order = slices.Delete(g.order, i, i+1)
	}
}

// RemoveElementAt removes every occupant of the cell at p.
func (g *Grid[E]) RemoveElementAt(p Position) {
	for _, el := range g.Get(p.Row, p.Col) {
		g.RemoveElement(el)
	}
}

// AddRowCol inserts count fresh lines immediately after the line with index
// after. A negative after inserts at index 0, and a count below 1 inserts a
// single line. Every element whose coordinate on that axis exceeds after is
// shifted by count. Elements whose span strictly contains the insertion point
// grow by count.
func (g *Grid[E]) AddRowCol(isColumn bool, after, count int) {
	g.normalize()
	if count < 1 {
		count = 1
	}
	if after < -1 {
		after = -1
	}

	moved := make(map[E]Position, len(g.order))
	for _, el := range g.order {
		p := g.index[el]
		s := g.SpanOf(el)
		coord, size := p.Row, s.Rows
		if isColumn {
			coord, size = p.Col, s.Cols
		}

		switch {
		case coord > after:
			if isColumn {
				p.Col += count
			} else {
				p.Row += count
			}
			moved[el] = p
		case coord+size-1 > after:
			if isColumn {
				s.Cols += count
			} else {
				s.Rows += count
			}
			g.spans[el] = s
		}
	}
	g.relocate(moved)

	if isColumn {
		g.cols += count
	} else {
		g.rows += count
	}
}

// ExpandRow inserts count empty cells into a single row after the column
// after (a negative after inserts at the row start). Elements anchored in
// that row beyond the insertion point shift right. The column count grows so
// the expanded row fits.
func (g *Grid[E]) ExpandRow(row, after, count int) error {
	if row < 0 || row > g.rows-1 {
		return errors.New(errors.ErrCodeInvalidPosition,
			"Can't expand row with index: %d. Grid row count is %d", row, g.rows)
	}
	if count < 1 {
		count = 1
	}

	moved := make(map[E]Position)
	for _, el := range g.order {
		p := g.index[el]
		if p.Row == row && (after < 0 || p.Col > after) {
			p.Col += count
			moved[el] = p
		}
	}
	g.relocate(moved)

	if g.pending == nil {
		g.pending = make(map[int]int)
	}
	g.pending[row] += count
	return nil
}

// Shrink removes every empty line on one axis: rows when byVertical is true,
// columns otherwise. Lines covered by an element's span count as occupied.
// Relative order of the remaining elements is preserved.
func (g *Grid[E]) Shrink(byVertical bool) {
	g.normalize()

	size := g.cols
	if byVertical {
		size = g.rows
	}
	occupied := make([]bool, size)
	for _, el := range g.order {
		p, s := g.index[el], g.SpanOf(el)
		start, n := p.Col, s.Cols
		if byVertical {
			start, n = p.Row, s.Rows
		}
		for i := start; i < start+n && i < size; i++ {
			occupied[i] = true
		}
	}

	// shift[i] is how many empty lines precede line i
	shift := make([]int, size)
	removed := 0
	for i := range size {
		shift[i] = removed
		if !occupied[i] {
			removed++
		}
	}
	if removed == 0 {
		return
	}

	moved := make(map[E]Position)
	for _, el := range g.order {
		p := g.index[el]
		if byVertical && p.Row < size && shift[p.Row] > 0 {
			p.Row -= shift[p.Row]
			moved[el] = p
		}
		if !byVertical && p.Col < size && shift[p.Col] > 0 {
			p.Col -= shift[p.Col]
			moved[el] = p
		}
	}
	g.relocate(moved)

	if byVertical {
		g.rows -= removed
	} else {
		g.cols -= removed
	}
}

// Flip mirrors the grid on one axis: columns when byVertical is false
// (newCol = colCount-col-span.Cols), rows otherwise. A spanning element
// keeps covering the mirror image of its old lines. Flip toggles the
// matching flag.
func (g *Grid[E]) Flip(byVertical bool) {
	g.normalize()

	moved := make(map[E]Position, len(g.order))
	for _, el := range g.order {
		p, s := g.index[el], g.SpanOf(el)
		if byVertical {
			p.Row = max(g.rows-p.Row-s.Rows, 0)
		} else {
			p.Col = max(g.cols-p.Col-s.Cols, 0)
		}
		moved[el] = p
	}
	g.relocate(moved)

	if byVertical {
		g.flippedV = !g.flippedV
	} else {
		g.flipped = !g.flipped
	}
}

// =============================================================================
// Internals
// =============================================================================

// attach stores el at p and grows the grid to contain p.
func (g *Grid[E]) attach(el E, p Position) {
	g.cells[p] = append(g.cells[p], el)
	g.index[el] = p
	g.rows = max(g.rows, p.Row+1)
	g.cols = max(g.cols, p.Col+1)
}

// detach removes el from the cell at p but keeps its index entry.
func (g *Grid[E]) detach(el E, p Position) {
	cell := g.cells[p]
	if i := slices.Index(cell, el); i >= 0 {
		cell = slices.Delete(cell, i, i+1)
	}
	if len(cell) == 0 {
		delete(g.cells, p)
		return
	}
	g.cells[p] = cell
}

// relocate applies a batch of moves. All moved elements leave their cells
// before any of them is re-attached, so swaps and chains of moves are safe.
// Cell order follows insertion order.
func (g *Grid[E]) relocate(moved map[E]Position) {
	if len(moved) == 0 {
		return
	}
	for _, el := range g.order {
		if _, ok := moved[el]; ok {
			g.detach(el, g.index[el])
		}
	}
	for _, el := range g.order {
		if p, ok := moved[el]; ok {
			g.cells[p] = append(g.cells[p], el)
			g.index[el] = p
		}
	}
}

// normalize folds pending row expansions into the column count.
func (g *Grid[E]) normalize() {
	if len(g.pending) == 0 {
		return
	}
	g.cols = g.ColCount()
	g.pending = nil
}
