package router

import "fmt"

// Point is a drawing coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// String returns "x,y".
func (p Point) String() string { return fmt.Sprintf("%g,%g", p.X, p.Y) }

// Bounds is an axis-aligned rectangle with its origin at the top-left corner.
type Bounds struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Right returns the x coordinate of the right edge.
func (b Bounds) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b Bounds) Bottom() float64 { return b.Y + b.Height }

// Side names a rectangle edge.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

func (s Side) String() string {
	switch s {
	case Top:
		return "t"
	case Right:
		return "r"
	case Bottom:
		return "b"
	case Left:
		return "l"
	}
	return "?"
}

// Mid returns the center of b.
func Mid(b Bounds) Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Dock projects p onto the given side of b, keeping the coordinate that runs
// along that side.
func Dock(p Point, b Bounds, side Side) Point {
	switch side {
	case Top:
		return Point{X: p.X, Y: b.Y}
	case Right:
		return Point{X: b.X + b.Width, Y: p.Y}
	case Bottom:
		return Point{X: p.X, Y: b.Y + b.Height}
	default:
		return Point{X: b.X, Y: p.Y}
	}
}
