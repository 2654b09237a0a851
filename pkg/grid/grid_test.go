package grid

import (
	"slices"
	"testing"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
)

func pos(r, c int) *Position { return &Position{Row: r, Col: c} }

func mustFind(t *testing.T, g *Grid[string], el string) Position {
	t.Helper()
	p, ok := g.Find(el)
	if !ok {
		t.Fatalf("Find(%q) not found", el)
	}
	return p
}

// checkInvariants verifies that every element has one non-negative cell
// inside the grid rectangle and that both indexes agree.
func checkInvariants(t *testing.T, g *Grid[string]) {
	t.Helper()
	rows, cols := g.Dimensions()
	seen := 0
	for p, cell := range g.cells {
		if len(cell) == 0 {
			t.Errorf("cell %v stored empty", p)
		}
		for _, el := range cell {
			seen++
			if got := g.index[el]; got != p {
				t.Errorf("index[%q] = %v, cell says %v", el, got, p)
			}
		}
	}
	if seen != g.Len() {
		t.Errorf("cells hold %d elements, Len() = %d", seen, g.Len())
	}
	for _, el := range g.Elements() {
		p := mustFind(t, g, el)
		if !p.IsValid() || p.Row >= rows || p.Col >= cols {
			t.Errorf("%q at %v outside %dx%d", el, p, rows, cols)
		}
	}
}

func TestNewGrid(t *testing.T) {
	g := New[string]()
	if g.RowCount() != 0 || g.ColCount() != 0 || g.Len() != 0 {
		t.Errorf("Dimensions = %dx%d len %d, want empty", g.RowCount(), g.ColCount(), g.Len())
	}
	if g.IsFlipped() {
		t.Error("IsFlipped() = true, want false")
	}
}

func TestAdd(t *testing.T) {
	t.Run("valid position", func(t *testing.T) {
		g := New[string]()
		g.Add("element1", pos(0, 0))
		if !g.Has("element1") || !slices.Contains(g.Get(0, 0), "element1") || g.Len() != 1 {
			t.Errorf("element1 not stored at 0,0")
		}
	})

	t.Run("invalid position appends row", func(t *testing.T) {
		g := New[string]()
		g.Add("a", pos(-1, -1))
		if got := mustFind(t, g, "a"); got != (Position{0, 0}) {
			t.Errorf("Find(a) = %v, want 0,0", got)
		}
		if g.RowCount() != 1 || g.ColCount() != 1 {
			t.Errorf("Dimensions = %dx%d, want 1x1", g.RowCount(), g.ColCount())
		}

		g.Add("b", nil)
		if got := mustFind(t, g, "b"); got != (Position{1, 0}) {
			t.Errorf("Find(b) = %v, want 1,0", got)
		}
	})

	t.Run("multi occupancy", func(t *testing.T) {
		g := New[string]()
		g.Add("element1", pos(0, 0))
		g.Add("element2", pos(0, 0))
		if got := g.Get(0, 0); !slices.Equal(got, []string{"element1", "element2"}) {
			t.Errorf("Get(0,0) = %v, want [element1 element2]", got)
		}
		if g.Len() != 2 {
			t.Errorf("Len() = %d, want 2", g.Len())
		}
	})

	t.Run("grows rows and columns", func(t *testing.T) {
		g := New[string]()
		g.Add("element1", pos(2, 2))
		g.Add("element2", pos(4, 4))
		if got := mustFind(t, g, "element1"); got != (Position{2, 2}) {
			t.Errorf("Find(element1) = %v", got)
		}
		if g.RowCount() != 5 || g.ColCount() != 5 {
			t.Errorf("Dimensions = %dx%d, want 5x5", g.RowCount(), g.ColCount())
		}
	})

	t.Run("rectangular", func(t *testing.T) {
		g := New[string]()
		g.Add("element1", pos(0, 0))
		g.Add("element2", pos(1, 2))
		if rows, cols := g.Dimensions(); rows != 2 || cols != 3 {
			t.Errorf("Dimensions() = %d,%d, want 2,3", rows, cols)
		}
	})

	t.Run("re-add moves", func(t *testing.T) {
		g := New[string]()
		g.Add("a", pos(0, 0))
		g.Add("a", pos(1, 1))
		if g.Get(0, 0) != nil || g.Len() != 1 {
			t.Errorf("re-adding left a copy behind: %v len %d", g.Get(0, 0), g.Len())
		}
	})
}

func TestRemoveElement(t *testing.T) {
	setup := func() *Grid[string] {
		g := New[string]()
		g.Add("element1", pos(0, 0))
		g.Add("element2", pos(0, 0))
		g.Add("element3", pos(1, 1))
		return g
	}

	t.Run("keeps cell mates", func(t *testing.T) {
		g := setup()
		g.RemoveElement("element1")
		if g.Has("element1") {
			t.Error("element1 still present")
		}
		if got := g.Get(0, 0); !slices.Equal(got, []string{"element2"}) {
			t.Errorf("Get(0,0) = %v, want [element2]", got)
		}
		if g.Len() != 2 {
			t.Errorf("Len() = %d, want 2", g.Len())
		}
	})

	t.Run("last occupant empties cell", func(t *testing.T) {
		g := setup()
		g.RemoveElement("element1")
		g.RemoveElement("element2")
		if got := g.Get(0, 0); got != nil {
			t.Errorf("Get(0,0) = %v, want nil", got)
		}
		if g.HasElementAt(Position{0, 0}) {
			t.Error("HasElementAt(0,0) = true")
		}
	})

	t.Run("unknown element", func(t *testing.T) {
		g := setup()
		g.RemoveElement("non-existent")
		if g.Len() != 3 {
			t.Errorf("Len() = %d, want 3", g.Len())
		}
	})

	t.Run("remove at", func(t *testing.T) {
		g := setup()
		g.RemoveElementAt(Position{0, 0})
		if g.Len() != 1 || g.Has("element2") {
			t.Errorf("RemoveElementAt left %v", g.Elements())
		}
	})
}

func TestMove(t *testing.T) {
	g := New[string]()
	g.Add("element1", pos(0, 0))

	if err := g.Move("element1", Position{1, 1}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if g.Get(0, 0) != nil || !slices.Contains(g.Get(1, 1), "element1") {
		t.Errorf("element1 not moved to 1,1")
	}

	err := g.Move("element1", Position{-1, -1})
	if !errors.Is(err, errors.ErrCodeInvalidPosition) {
		t.Fatalf("Move(invalid) error = %v, want INVALID_POSITION", err)
	}
	if got, want := errors.UserMessage(err), `Cannot move element element1 to invalid position -1,-1`; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if got := mustFind(t, g, "element1"); got != (Position{1, 1}) {
		t.Errorf("failed move changed position to %v", got)
	}

	err = g.Move("non-existent", Position{1, 1})
	if !errors.Is(err, errors.ErrCodeUnknownElement) {
		t.Fatalf("Move(unknown) error = %v, want UNKNOWN_ELEMENT", err)
	}
	if got, want := errors.UserMessage(err), `Cannot move not exist element non-existent`; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestMoveKeepsSpan(t *testing.T) {
	g := New[string]()
	g.Add("lane", pos(0, 0))
	g.SetSpan("lane", Span{Cols: 1, Rows: 3})
	if err := g.Move("lane", Position{1, 0}); err != nil {
		t.Fatal(err)
	}
	if got := g.SpanOf("lane"); got != (Span{Cols: 1, Rows: 3}) {
		t.Errorf("SpanOf(lane) = %v, want {1 3}", got)
	}
}

func TestFind(t *testing.T) {
	g := New[string]()
	g.Add("element1", pos(2, 3))
	g.Add("element2", pos(0, 0))
	g.Add("element3", pos(2, 3))

	if got := mustFind(t, g, "element1"); got != (Position{2, 3}) {
		t.Errorf("Find(element1) = %v, want 2,3", got)
	}
	if got := mustFind(t, g, "element3"); got != (Position{2, 3}) {
		t.Errorf("Find(element3) = %v, want 2,3", got)
	}
	if _, ok := g.Find("non-existent"); ok {
		t.Error("Find(non-existent) ok = true")
	}
}

func TestAddRowCol(t *testing.T) {
	setup := func() *Grid[string] {
		g := New[string]()
		g.Add("element1", pos(0, 0))
		g.Add("element2", pos(2, 2))
		return g
	}

	tests := []struct {
		name     string
		isColumn bool
		after    int
		count    int
		rows     int
		cols     int
		el2      Position
	}{
		{"row after 0", false, 0, 1, 4, 3, Position{3, 2}},
		{"column after 1", true, 1, 1, 3, 4, Position{2, 3}},
		{"two columns after 0", true, 0, 2, 3, 5, Position{2, 4}},
		{"row at start", false, -1, 1, 4, 3, Position{3, 2}},
		{"zero count means one", true, 5, 0, 3, 4, Position{2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := setup()
			g.AddRowCol(tt.isColumn, tt.after, tt.count)
			if g.RowCount() != tt.rows || g.ColCount() != tt.cols {
				t.Errorf("Dimensions = %dx%d, want %dx%d", g.RowCount(), g.ColCount(), tt.rows, tt.cols)
			}
			if got := mustFind(t, g, "element2"); got != tt.el2 {
				t.Errorf("Find(element2) = %v, want %v", got, tt.el2)
			}
			checkInvariants(t, g)
		})
	}
}

func TestAddRowColGrowsContainingSpan(t *testing.T) {
	g := New[string]()
	g.Add("lane", pos(0, 0))
	g.Add("task", pos(2, 1))
	g.SetSpan("lane", Span{Cols: 1, Rows: 3})

	g.AddRowCol(false, 1, 2) // inside the band
	if got := g.SpanOf("lane").Rows; got != 5 {
		t.Errorf("lane rows after inner insert = %d, want 5", got)
	}

	g.AddRowCol(false, 4, 1) // after the last band row
	if got := g.SpanOf("lane").Rows; got != 5 {
		t.Errorf("lane rows after trailing insert = %d, want 5", got)
	}
	if got := mustFind(t, g, "task"); got != (Position{4, 1}) {
		t.Errorf("Find(task) = %v, want 4,1", got)
	}
}

func TestExpandRow(t *testing.T) {
	setup := func() *Grid[string] {
		g := New[string]()
		g.Add("element1", pos(0, 0))
		g.Add("element2", pos(2, 2))
		return g
	}

	t.Run("at row start", func(t *testing.T) {
		g := setup()
		if err := g.ExpandRow(0, -1, 1); err != nil {
			t.Fatal(err)
		}
		if !slices.Contains(g.Get(0, 1), "element1") || !slices.Contains(g.Get(2, 2), "element2") {
			t.Errorf("unexpected positions: element1 %v element2 %v", g.index["element1"], g.index["element2"])
		}
		if g.ColCount() != 4 || g.RowCount() != 3 {
			t.Errorf("Dimensions = %dx%d, want 3x4", g.RowCount(), g.ColCount())
		}
	})

	t.Run("after index with count", func(t *testing.T) {
		g := setup()
		if err := g.ExpandRow(2, 1, 2); err != nil {
			t.Fatal(err)
		}
		if !slices.Contains(g.Get(0, 0), "element1") || !slices.Contains(g.Get(2, 4), "element2") {
			t.Errorf("unexpected positions: element1 %v element2 %v", g.index["element1"], g.index["element2"])
		}
		if g.ColCount() != 5 || g.RowCount() != 3 {
			t.Errorf("Dimensions = %dx%d, want 3x5", g.RowCount(), g.ColCount())
		}
	})

	t.Run("every row by the same amount", func(t *testing.T) {
		g := setup()
		for r := range g.RowCount() {
			if err := g.ExpandRow(r, 0, 2); err != nil {
				t.Fatal(err)
			}
		}
		if g.ColCount() != 5 {
			t.Errorf("ColCount() = %d, want 5", g.ColCount())
		}
		checkInvariants(t, g)
	})

	t.Run("invalid row", func(t *testing.T) {
		g := setup()
		for _, tt := range []struct {
			row  int
			want string
		}{
			{-1, "Can't expand row with index: -1. Grid row count is 3"},
			{10, "Can't expand row with index: 10. Grid row count is 3"},
		} {
			err := g.ExpandRow(tt.row, 0, 1)
			if !errors.Is(err, errors.ErrCodeInvalidPosition) {
				t.Fatalf("ExpandRow(%d) error = %v", tt.row, err)
			}
			if got := errors.UserMessage(err); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		}
	})
}

func TestElementsInRange(t *testing.T) {
	g := New[string]()
	g.Add("a", pos(0, 0))
	g.Add("b", pos(1, 1))
	g.Add("c", pos(2, 2))

	tests := []struct {
		name string
		a, b Position
		want int
	}{
		{"full", Position{0, 0}, Position{2, 2}, 3},
		{"reversed corners", Position{2, 2}, Position{0, 0}, 3},
		{"outside", Position{5, 5}, Position{10, 10}, 0},
		{"partial", Position{0, 0}, Position{1, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(g.ElementsInRange(tt.a, tt.b)); got != tt.want {
				t.Errorf("len(ElementsInRange) = %d, want %d", got, tt.want)
			}
		})
	}

	g.Add("d", pos(0, 0))
	if got := g.OccupiedInRange(Position{0, 0}, Position{2, 2}); got != 3 {
		t.Errorf("OccupiedInRange() = %d, want 3 cells", got)
	}
}

func TestShrink(t *testing.T) {
	setup := func() *Grid[string] {
		g := New[string]()
		g.Add("element1", pos(0, 0))
		g.Add("element2", pos(2, 2))
		return g
	}

	tests := []struct {
		name       string
		byVertical bool
		rows, cols int
	}{
		{"columns", false, 3, 2},
		{"rows", true, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := setup()
			g.Shrink(tt.byVertical)
			if g.RowCount() != tt.rows || g.ColCount() != tt.cols {
				t.Errorf("Dimensions = %dx%d, want %dx%d", g.RowCount(), g.ColCount(), tt.rows, tt.cols)
			}

			// idempotent
			before := map[string]Position{"element1": mustFind(t, g, "element1"), "element2": mustFind(t, g, "element2")}
			g.Shrink(tt.byVertical)
			if g.RowCount() != tt.rows || g.ColCount() != tt.cols {
				t.Errorf("second Shrink changed dimensions to %dx%d", g.RowCount(), g.ColCount())
			}
			for el, p := range before {
				if got := mustFind(t, g, el); got != p {
					t.Errorf("second Shrink moved %s from %v to %v", el, p, got)
				}
			}
			checkInvariants(t, g)
		})
	}
}

func TestShrinkKeepsSpannedLines(t *testing.T) {
	g := New[string]()
	g.Add("lane", pos(0, 0))
	g.Add("task", pos(3, 1))
	g.SetSpan("lane", Span{Cols: 1, Rows: 2})

	g.Shrink(true)
	if g.RowCount() != 3 {
		t.Errorf("RowCount() = %d, want 3 (row 1 is inside the lane band)", g.RowCount())
	}
	if got := mustFind(t, g, "task"); got != (Position{2, 1}) {
		t.Errorf("Find(task) = %v, want 2,1", got)
	}
}

func TestFlip(t *testing.T) {
	g := New[string]()
	g.Add("left", pos(0, 0))
	g.Add("right", pos(0, 2))
	g.Add("middle", pos(0, 1))
	g.Add("below", pos(1, 0))

	g.Flip(false)
	want := map[string]Position{"left": {0, 2}, "right": {0, 0}, "middle": {0, 1}, "below": {1, 2}}
	for el, p := range want {
		if got := mustFind(t, g, el); got != p {
			t.Errorf("after flip Find(%s) = %v, want %v", el, got, p)
		}
	}
	if !g.IsFlipped() {
		t.Error("IsFlipped() = false after one flip")
	}

	g.Flip(false)
	if g.IsFlipped() {
		t.Error("IsFlipped() = true after two flips")
	}
	if got := mustFind(t, g, "left"); got != (Position{0, 0}) {
		t.Errorf("round trip Find(left) = %v, want 0,0", got)
	}

	g.Flip(true)
	if got := mustFind(t, g, "below"); got != (Position{0, 0}) {
		t.Errorf("vertical flip Find(below) = %v, want 0,0", got)
	}
	if g.IsFlipped() || !g.IsFlippedVertically() {
		t.Error("vertical flip toggled the wrong flag")
	}
}

func TestFlipSpan(t *testing.T) {
	g := New[string]()
	g.Add("wide", pos(0, 0))
	g.Add("tail", pos(0, 2))
	g.Add("tall", pos(1, 1))
	g.Add("foot", pos(3, 0))
	g.SetSpan("wide", Span{Cols: 2, Rows: 1})
	g.SetSpan("tall", Span{Cols: 1, Rows: 2})

	g.Flip(false)
	want := map[string]Position{"wide": {0, 1}, "tail": {0, 0}, "tall": {1, 1}, "foot": {3, 2}}
	for el, p := range want {
		if got := mustFind(t, g, el); got != p {
			t.Errorf("after flip Find(%s) = %v, want %v", el, got, p)
		}
	}
	if got := g.SpanOf("wide"); got != (Span{Cols: 2, Rows: 1}) {
		t.Errorf("SpanOf(wide) = %v after flip, want 2x1", got)
	}

	g.Flip(false)
	if got := mustFind(t, g, "wide"); got != (Position{0, 0}) {
		t.Errorf("round trip Find(wide) = %v, want 0,0", got)
	}

	g.Flip(true)
	if got := mustFind(t, g, "tall"); got != (Position{1, 1}) {
		t.Errorf("vertical flip Find(tall) = %v, want 1,1", got)
	}
	if got := mustFind(t, g, "foot"); got != (Position{0, 0}) {
		t.Errorf("vertical flip Find(foot) = %v, want 0,0", got)
	}
}

func TestHasIntermediateElements(t *testing.T) {
	setup := func() *Grid[string] {
		g := New[string]()
		g.Add("a", pos(0, 0))
		g.Add("b", pos(0, 2))
		g.Add("c", pos(0, 1))
		g.Add("d", pos(2, 0))
		g.Add("e", pos(1, 0))
		return g
	}

	tests := []struct {
		name       string
		remove     string
		first      Position
		last       Position
		onVertical bool
		want       bool
	}{
		{"horizontal", "", Position{0, 0}, Position{0, 2}, false, true},
		{"horizontal free", "c", Position{0, 0}, Position{0, 2}, false, false},
		{"vertical", "", Position{0, 0}, Position{2, 0}, true, true},
		{"vertical free", "e", Position{0, 0}, Position{2, 0}, true, false},
		{"invalid", "", Position{-1, 0}, Position{0, 0}, false, false},
		{"adjacent", "", Position{0, 0}, Position{0, 1}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := setup()
			if tt.remove != "" {
				g.RemoveElement(tt.remove)
			}
			if got := g.HasIntermediateElements(tt.first, tt.last, tt.onVertical); got != tt.want {
				t.Errorf("HasIntermediateElements() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidPosition(t *testing.T) {
	g := New[string]()
	tests := []struct {
		p    Position
		want bool
	}{
		{Position{0, 0}, true},
		{Position{5, 10}, true},
		{Position{-1, 0}, false},
		{Position{0, -1}, false},
	}
	for _, tt := range tests {
		if got := g.IsValidPosition(tt.p); got != tt.want {
			t.Errorf("IsValidPosition(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestInvariantsAfterMixedOperations(t *testing.T) {
	g := New[string]()
	g.Add("a", pos(0, 0))
	g.Add("b", pos(1, 3))
	g.Add("c", nil)
	g.Add("d", pos(4, 4))
	_ = g.Move("a", Position{3, 1})
	g.AddRowCol(true, 0, 2)
	g.AddRowCol(false, 1, 1)
	g.RemoveElement("b")
	_ = g.ExpandRow(0, -1, 1)
	g.Flip(false)
	g.Shrink(false)
	g.Shrink(true)
	checkInvariants(t, g)

	rows, cols := g.Dimensions()
	if rows != 3 || cols != 3 {
		t.Errorf("Dimensions() = %d,%d, want 3,3", rows, cols)
	}
}

func TestClone(t *testing.T) {
	g := New[string]()
	g.Add("a", pos(0, 0))
	g.Add("lane", pos(1, 0))
	g.SetSpan("lane", Span{Cols: 1, Rows: 2})
	g.Flip(false)

	c := g.Clone()
	if err := c.Move("a", Position{3, 3}); err != nil {
		t.Fatal(err)
	}
	c.SetSpan("lane", Span{Cols: 1, Rows: 4})

	if got := mustFind(t, g, "a"); got != (Position{0, 0}) {
		t.Errorf("moving in clone changed original to %v", got)
	}
	if got := g.SpanOf("lane").Rows; got != 2 {
		t.Errorf("original span rows = %d, want 2", got)
	}
	if !c.IsFlipped() {
		t.Error("clone lost the flip flag")
	}
	checkInvariants(t, c)
}
