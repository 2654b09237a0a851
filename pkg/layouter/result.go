package layouter

import (
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/router"
)

// Result is the diagram interchange produced for one document.
//
// The first diagram shows the collaboration, or the first root process when
// there is none. Collapsed sub-processes with content get a diagram of their
// own.
type Result struct {
	ID       string        `json:"id" yaml:"id"`
	Diagrams []Diagram     `json:"diagrams" yaml:"diagrams"`
	Stats    Stats         `json:"stats" yaml:"stats"`
	Grids    []ProcessGrid `json:"grids,omitempty" yaml:"grids,omitempty"`
}

// Diagram is one drawing plane.
type Diagram struct {
	ID      string  `json:"id" yaml:"id"`
	Plane   string  `json:"plane" yaml:"plane"`
	Element string  `json:"element" yaml:"element"`
	Shapes  []Shape `json:"shapes" yaml:"shapes"`
	Edges   []Edge  `json:"edges" yaml:"edges"`
}

// Shape is the drawn rectangle of a node, lane or pool.
type Shape struct {
	ID            string        `json:"id" yaml:"id"`
	Element       string        `json:"element" yaml:"element"`
	Kind          string        `json:"kind" yaml:"kind"`
	Name          string        `json:"name,omitempty" yaml:"name,omitempty"`
	Bounds        router.Bounds `json:"bounds" yaml:"bounds"`
	Expanded      bool          `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	MarkerVisible bool          `json:"markerVisible,omitempty" yaml:"markerVisible,omitempty"`
	Horizontal    bool          `json:"horizontal,omitempty" yaml:"horizontal,omitempty"`
}

// Edge is the drawn polyline of a flow or association.
type Edge struct {
	ID        string         `json:"id" yaml:"id"`
	Element   string         `json:"element" yaml:"element"`
	Kind      string         `json:"kind" yaml:"kind"`
	Source    string         `json:"source" yaml:"source"`
	Target    string         `json:"target" yaml:"target"`
	Waypoints []router.Point `json:"waypoints" yaml:"waypoints"`
}

// Stats summarizes the placement work behind a result.
type Stats struct {
	Processes int  `json:"processes" yaml:"processes"`
	Steps     int  `json:"steps" yaml:"steps"`
	Roots     int  `json:"roots" yaml:"roots"`
	Truncated bool `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// ProcessGrid is a snapshot of the final grid of one process. Cells hold
// the IDs of the nodes anchored there; lanes are listed separately.
type ProcessGrid struct {
	Process string       `json:"process" yaml:"process"`
	Rows    int          `json:"rows" yaml:"rows"`
	Cols    int          `json:"cols" yaml:"cols"`
	Cells   [][][]string `json:"cells" yaml:"cells"`
	Lanes   []string     `json:"lanes,omitempty" yaml:"lanes,omitempty"`
}

// Shapes returns the shapes of every diagram.
func (r *Result) Shapes() []Shape {
	var out []Shape
	for _, d := range r.Diagrams {
		out = append(out, d.Shapes...)
	}
	return out
}

// Edges returns the edges of every diagram.
func (r *Result) Edges() []Edge {
	var out []Edge
	for _, d := range r.Diagrams {
		out = append(out, d.Edges...)
	}
	return out
}

// Shape finds the shape drawn for the element with the given ID.
func (r *Result) Shape(element string) (Shape, bool) {
	for _, d := range r.Diagrams {
		for _, s := range d.Shapes {
			if s.Element == element {
				return s, true
			}
		}
	}
	return Shape{}, false
}

// Edge finds the edge drawn for the element with the given ID.
func (r *Result) Edge(element string) (Edge, bool) {
	for _, d := range r.Diagrams {
		for _, e := range d.Edges {
			if e.Element == element {
				return e, true
			}
		}
	}
	return Edge{}, false
}

// Bounds returns the rectangle enclosing every shape, or zero bounds for an
// empty result.
func (d *Diagram) Bounds() router.Bounds {
	if len(d.Shapes) == 0 {
		return router.Bounds{}
	}
	first := d.Shapes[0].Bounds
	minX, minY, maxX, maxY := first.X, first.Y, first.Right(), first.Bottom()
	for _, s := range d.Shapes[1:] {
		minX = min(minX, s.Bounds.X)
		minY = min(minY, s.Bounds.Y)
		maxX = max(maxX, s.Bounds.Right())
		maxY = max(maxY, s.Bounds.Bottom())
	}
	for _, e := range d.Edges {
		for _, p := range e.Waypoints {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	return router.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
