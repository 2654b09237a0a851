// Package nestedset encodes trees as nested intervals.
//
// Every item gets a [Position] with a level and a left/right pair such that
// an item's interval strictly contains the intervals of all its descendants.
// Ancestor, descendant and leaf queries then reduce to integer comparisons,
// without walking parent pointers. The layout engine builds one set for the
// container hierarchy of processes and sub-processes, and one per process for
// its lane tree.
package nestedset

import (
	"cmp"
	"slices"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
)

// Position is the interval of one item. Left < Right always holds, and
// Right-Left == 1 marks a leaf.
type Position struct {
	Level int
	Left  int
	Right int
}

// Contains reports whether o lies strictly inside p.
func (p Position) Contains(o Position) bool { return o.Left > p.Left && o.Right < p.Right }

// IsLeaf reports whether the interval has no room for descendants.
func (p Position) IsLeaf() bool { return p.Right-p.Left == 1 }

type entry struct {
	pos      Position
	hasLeft  bool
	hasRight bool
}

// Set is an immutable nested-set encoding of a forest.
type Set[T comparable] struct {
	entries map[T]*entry
	order   []T // insertion order
}

// Build encodes the forest spanned by roots and the children function.
//
// The walk is an explicit stack seeded with roots; the last root is popped
// first. An item receives its left bound on first visit and its right bound
// once none of its children remain unassigned. Items reachable twice are
// encoded once, under the first parent that reaches them.
func Build[T comparable](roots []T, children func(T) []T) *Set[T] {
	s := &Set[T]{entries: make(map[T]*entry)}
	stack := slices.Clone(roots)
	for _, r := range roots {
		s.put(r, &entry{pos: Position{Level: 0}})
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e := s.entries[cur]

		if !e.hasLeft {
			if maxRight, ok := s.maxRight(); ok {
				e.pos.Left = maxRight + 1
			} else {
				e.pos.Left = 0
			}
			e.hasLeft = true
		}
		if e.hasRight {
			continue
		}

		stack = append(stack, cur)

		var subs []T
		for _, c := range children(cur) {
			if _, seen := s.entries[c]; !seen && !slices.Contains(subs, c) {
				subs = append(subs, c)
			}
		}

		if len(subs) == 0 {
			maxRight, ok := s.maxRight()
			if !ok {
				maxRight = s.maxLeft()
			}
			maxRight = max(maxRight, e.pos.Left)
			e.pos.Right = maxRight + 1
			e.hasRight = true
		}

		for i := len(subs) - 1; i >= 0; i-- {
			stack = append(stack, subs[i])
			child := &entry{pos: Position{Level: e.pos.Level + 1}}
			if i == 0 {
				child.pos.Left = e.pos.Left + 1
				child.hasLeft = true
			}
			s.put(subs[i], child)
		}
	}
	return s
}

func (s *Set[T]) put(item T, e *entry) {
	if _, ok := s.entries[item]; !ok {
		s.order = append(s.order, item)
	}
	s.entries[item] = e
}

func (s *Set[T]) maxRight() (int, bool) {
	found, best := false, 0
	for _, e := range s.entries {
		if e.hasRight && (!found || e.pos.Right > best) {
			found, best = true, e.pos.Right
		}
	}
	return best, found
}

func (s *Set[T]) maxLeft() int {
	best := 0
	for _, e := range s.entries {
		if e.hasLeft {
			best = max(best, e.pos.Left)
		}
	}
	return best
}

// Len returns the number of items.
func (s *Set[T]) Len() int { return len(s.order) }

// Has reports whether item is encoded in the set.
func (s *Set[T]) Has(item T) bool {
	_, ok := s.entries[item]
	return ok
}

// Position returns the interval of item.
func (s *Set[T]) Position(item T) (Position, bool) {
	e, ok := s.entries[item]
	if !ok {
		return Position{}, false
	}
	return e.pos, true
}

// Items returns all items ordered by their left bound.
func (s *Set[T]) Items() []T {
	return s.sorted(func(Position) bool { return true })
}

// Leaves returns the leaves strictly inside item, ordered by left bound.
// A nil item selects every leaf in the set.
func (s *Set[T]) Leaves(item *T) []T {
	if item == nil {
		return s.sorted(Position.IsLeaf)
	}
	outer, ok := s.Position(*item)
	if !ok {
		return nil
	}
	return s.sorted(func(p Position) bool { return p.IsLeaf() && outer.Contains(p) })
}

// Nested returns every descendant of item, ordered by left bound.
func (s *Set[T]) Nested(item T) []T {
	outer, ok := s.Position(item)
	if !ok {
		return nil
	}
	return s.sorted(outer.Contains)
}

// IsLeaf reports whether item is a leaf. Unknown items are not leaves.
func (s *Set[T]) IsLeaf(item T) bool {
	p, ok := s.Position(item)
	return ok && p.IsLeaf()
}

// MaxLevel returns the deepest level in the set, or 0 for an empty set.
func (s *Set[T]) MaxLevel() int {
	level := 0
	for _, e := range s.entries {
		level = max(level, e.pos.Level)
	}
	return level
}

// Root returns the single top-level item. It fails with MALFORMED_HIERARCHY
// when the set has no root or more than one.
func (s *Set[T]) Root() (T, error) {
	var roots []T
	for _, item := range s.order {
		if s.entries[item].pos.Level == 0 {
			roots = append(roots, item)
		}
	}
	if len(roots) != 1 {
		var zero T
		return zero, errors.New(errors.ErrCodeMalformedHierarchy,
			"expected exactly one root, found %d", len(roots))
	}
	return roots[0], nil
}

func (s *Set[T]) sorted(keep func(Position) bool) []T {
	var out []T
	for _, item := range s.order {
		if keep(s.entries[item].pos) {
			out = append(out, item)
		}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(s.entries[a].pos.Left, s.entries[b].pos.Left)
	})
	return out
}
