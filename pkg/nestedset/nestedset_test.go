package nestedset

import (
	"slices"
	"testing"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
)

func tree(edges map[string][]string) func(string) []string {
	return func(s string) []string { return edges[s] }
}

func TestBuildTwoLeaves(t *testing.T) {
	s := Build([]string{"pool"}, tree(map[string][]string{"pool": {"l1", "l2"}}))

	want := map[string]Position{
		"pool": {Level: 0, Left: 0, Right: 5},
		"l1":   {Level: 1, Left: 1, Right: 2},
		"l2":   {Level: 1, Left: 3, Right: 4},
	}
	for item, p := range want {
		got, ok := s.Position(item)
		if !ok || got != p {
			t.Errorf("Position(%s) = %+v, want %+v", item, got, p)
		}
	}

	if !s.IsLeaf("l1") || !s.IsLeaf("l2") || s.IsLeaf("pool") {
		t.Error("IsLeaf misclassifies the two-leaf tree")
	}
	if s.MaxLevel() != 1 {
		t.Errorf("MaxLevel() = %d, want 1", s.MaxLevel())
	}
}

func TestBuildDeepTree(t *testing.T) {
	s := Build([]string{"root"}, tree(map[string][]string{
		"root": {"a", "b"},
		"a":    {"a1", "a2"},
	}))

	tests := []struct {
		item string
		want Position
	}{
		{"root", Position{0, 0, 9}},
		{"a", Position{1, 1, 6}},
		{"a1", Position{2, 2, 3}},
		{"a2", Position{2, 4, 5}},
		{"b", Position{1, 7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			if got, _ := s.Position(tt.item); got != tt.want {
				t.Errorf("Position(%s) = %+v, want %+v", tt.item, got, tt.want)
			}
		})
	}

	if got := s.Items(); !slices.Equal(got, []string{"root", "a", "a1", "a2", "b"}) {
		t.Errorf("Items() = %v", got)
	}
	a := "a"
	if got := s.Leaves(&a); !slices.Equal(got, []string{"a1", "a2"}) {
		t.Errorf("Leaves(a) = %v, want [a1 a2]", got)
	}
	if got := s.Leaves(nil); !slices.Equal(got, []string{"a1", "a2", "b"}) {
		t.Errorf("Leaves(nil) = %v, want [a1 a2 b]", got)
	}
	if got := s.Nested("root"); len(got) != 4 {
		t.Errorf("len(Nested(root)) = %d, want 4", len(got))
	}
	if s.MaxLevel() != 2 {
		t.Errorf("MaxLevel() = %d, want 2", s.MaxLevel())
	}
}

func TestBuildForest(t *testing.T) {
	// the last root is popped first
	s := Build([]string{"p2", "p1"}, tree(map[string][]string{"p1": {"sub"}}))

	tests := []struct {
		item string
		want Position
	}{
		{"p1", Position{0, 0, 3}},
		{"sub", Position{1, 1, 2}},
		{"p2", Position{0, 4, 5}},
	}
	for _, tt := range tests {
		if got, _ := s.Position(tt.item); got != tt.want {
			t.Errorf("Position(%s) = %+v, want %+v", tt.item, got, tt.want)
		}
	}

	_, err := s.Root()
	if !errors.Is(err, errors.ErrCodeMalformedHierarchy) {
		t.Errorf("Root() error = %v, want MALFORMED_HIERARCHY", err)
	}
}

func TestRoot(t *testing.T) {
	s := Build([]string{"only"}, tree(nil))
	root, err := s.Root()
	if err != nil || root != "only" {
		t.Errorf("Root() = %q, %v", root, err)
	}
	if !s.IsLeaf("only") {
		t.Error("single item should be a leaf")
	}

	empty := Build(nil, tree(nil))
	if _, err := empty.Root(); err == nil {
		t.Error("Root() on empty set should fail")
	}
	if empty.MaxLevel() != 0 || empty.Len() != 0 {
		t.Error("empty set reports items")
	}
}

func TestSharedChildEncodedOnce(t *testing.T) {
	s := Build([]string{"r"}, tree(map[string][]string{
		"r": {"a", "b"},
		"a": {"shared"},
		"b": {"shared"},
	}))
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
	p, _ := s.Position("shared")
	a, _ := s.Position("a")
	if !a.Contains(p) {
		t.Errorf("shared %+v not inside first parent %+v", p, a)
	}
}
