package svg

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"slices"
	"strings"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/router"
)

const (
	defaultPadding = 20.0
	fontSize       = 12.0
	labelBand      = 30.0
)

const css = `
    .shape { fill: #fff; stroke: #222; stroke-width: 2; }
    .container { fill: none; stroke: #222; stroke-width: 1.5; }
    .end { stroke-width: 4; }
    .flow { fill: none; stroke: #222; stroke-width: 1.5; }
    .message { stroke-dasharray: 8 5; }
    .data { stroke-dasharray: 2 4; }
    text { font-family: sans-serif; font-size: 12px; fill: #222; }`

// Option configures [Render].
type Option func(*renderer)

// WithDiagram selects the diagram to draw. The default is the first one.
func WithDiagram(index int) Option { return func(r *renderer) { r.diagram = index } }

// WithPadding sets the margin around the drawing.
func WithPadding(p float64) Option { return func(r *renderer) { r.padding = p } }

// WithoutLabels omits element names.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

type renderer struct {
	diagram int
	padding float64
	labels  bool
}

// Render draws one diagram of res as a standalone SVG document.
func Render(res *layouter.Result, opts ...Option) ([]byte, error) {
	r := renderer{padding: defaultPadding, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	if res == nil || r.diagram < 0 || r.diagram >= len(res.Diagrams) {
		return nil, fmt.Errorf("diagram %d out of range", r.diagram)
	}
	d := &res.Diagrams[r.diagram]

	b := d.Bounds()
	x, y := b.X-r.padding, b.Y-r.padding
	w, h := b.Width+2*r.padding, b.Height+2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		x, y, w, h, w, h)
	renderDefs(&buf)

	for _, s := range drawOrder(d.Shapes) {
		r.renderShape(&buf, s)
	}
	for _, e := range d.Edges {
		renderEdge(&buf, e)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <style>` + css + "\n    </style>\n")
	buf.WriteString(`    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto"><path d="M0,0 L10,5 L0,10 z" fill="#222"/></marker>` + "\n")
	buf.WriteString(`    <marker id="open-arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto"><path d="M0,0 L10,5 L0,10" fill="none" stroke="#222"/></marker>` + "\n")
	buf.WriteString(`    <marker id="message-start" viewBox="0 0 10 10" refX="5" refY="5" markerWidth="8" markerHeight="8"><circle cx="5" cy="5" r="4" fill="#fff" stroke="#222"/></marker>` + "\n")
	buf.WriteString("  </defs>\n")
}

// drawOrder puts pools first, then lanes, then expanded containers, so
// nested shapes paint over their containers.
func drawOrder(shapes []layouter.Shape) []layouter.Shape {
	rank := func(s layouter.Shape) int {
		switch {
		case s.Kind == string(process.KindParticipant):
			return 0
		case s.Kind == string(process.KindLane):
			return 1
		case s.Expanded:
			return 2
		}
		return 3
	}
	out := slices.Clone(shapes)
	slices.SortStableFunc(out, func(a, b layouter.Shape) int {
		return cmp.Compare(rank(a), rank(b))
	})
	return out
}

// =============================================================================
// Shapes
// =============================================================================

func (r *renderer) renderShape(buf *bytes.Buffer, s layouter.Shape) {
	b := s.Bounds
	kind := process.Kind(s.Kind)
	fmt.Fprintf(buf, `  <g id="%s" data-kind="%s">`+"\n", escapeXML(s.Element), s.Kind)

	switch {
	case kind == process.KindParticipant || kind == process.KindLane:
		fmt.Fprintf(buf, `    <rect class="container" x="%g" y="%g" width="%g" height="%g"/>`+"\n", b.X, b.Y, b.Width, b.Height)
		fmt.Fprintf(buf, `    <line class="container" x1="%g" y1="%g" x2="%g" y2="%g"/>`+"\n", b.X+labelBand, b.Y, b.X+labelBand, b.Bottom())
		if r.labels && s.Name != "" {
			cx, cy := b.X+labelBand/2, b.Y+b.Height/2
			fmt.Fprintf(buf, `    <text x="%g" y="%g" text-anchor="middle" dominant-baseline="middle" transform="rotate(-90 %g %g)">%s</text>`+"\n",
				cx, cy, cx, cy, escapeXML(s.Name))
		}
		buf.WriteString("  </g>\n")
		return

	case kind.IsEvent():
		renderEvent(buf, kind, b)
		r.renderLabelBelow(buf, s)

	case kind.IsGateway():
		renderGateway(buf, kind, b)
		r.renderLabelBelow(buf, s)

	case kind == process.KindDataObjectReference:
		fold := min(b.Width, b.Height) / 3
		fmt.Fprintf(buf, `    <path class="shape" d="M%g,%g L%g,%g L%g,%g L%g,%g L%g,%g z"/>`+"\n",
			b.X, b.Y, b.Right()-fold, b.Y, b.Right(), b.Y+fold, b.Right(), b.Bottom(), b.X, b.Bottom())
		r.renderLabelBelow(buf, s)

	case kind == process.KindDataStoreReference:
		ry := b.Height / 8
		fmt.Fprintf(buf, `    <path class="shape" d="M%g,%g A%g,%g 0 0 0 %g,%g V%g A%g,%g 0 0 1 %g,%g z"/>`+"\n",
			b.X, b.Y+ry, b.Width/2, ry, b.Right(), b.Y+ry, b.Bottom()-ry, b.Width/2, ry, b.X, b.Bottom()-ry)
		fmt.Fprintf(buf, `    <path class="shape" d="M%g,%g A%g,%g 0 0 0 %g,%g"/>`+"\n",
			b.X, b.Y+ry, b.Width/2, ry, b.Right(), b.Y+ry)
		r.renderLabelBelow(buf, s)

	default:
		class := "shape"
		if s.Expanded {
			class = "container"
		}
		fmt.Fprintf(buf, `    <rect class="%s" x="%g" y="%g" width="%g" height="%g" rx="10"/>`+"\n", class, b.X, b.Y, b.Width, b.Height)
		if kind == process.KindSubProcess && !s.Expanded {
			cx, by := b.X+b.Width/2, b.Bottom()
			fmt.Fprintf(buf, `    <rect class="shape" x="%g" y="%g" width="14" height="14" stroke-width="1"/>`+"\n", cx-7, by-16)
			fmt.Fprintf(buf, `    <path class="flow" d="M%g,%g H%g M%g,%g V%g"/>`+"\n", cx-4, by-9, cx+4, cx, by-13, by-5)
		}
		if r.labels && s.Name != "" {
			y := b.Y + b.Height/2
			if s.Expanded {
				y = b.Y + fontSize + 4
			}
			fmt.Fprintf(buf, `    <text x="%g" y="%g" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
				b.X+b.Width/2, y, escapeXML(s.Name))
		}
	}
	buf.WriteString("  </g>\n")
}

func renderEvent(buf *bytes.Buffer, kind process.Kind, b router.Bounds) {
	cx, cy, rad := b.X+b.Width/2, b.Y+b.Height/2, min(b.Width, b.Height)/2
	class := "shape"
	if kind == process.KindEndEvent {
		class = "shape end"
	}
	fmt.Fprintf(buf, `    <circle class="%s" cx="%g" cy="%g" r="%g"/>`+"\n", class, cx, cy, rad)
	switch kind {
	case process.KindIntermediateThrowEvent, process.KindIntermediateCatchEvent, process.KindBoundaryEvent:
		fmt.Fprintf(buf, `    <circle class="shape" cx="%g" cy="%g" r="%g" stroke-width="1"/>`+"\n", cx, cy, rad-3)
	}
}

func renderGateway(buf *bytes.Buffer, kind process.Kind, b router.Bounds) {
	cx, cy := b.X+b.Width/2, b.Y+b.Height/2
	fmt.Fprintf(buf, `    <polygon class="shape" points="%g,%g %g,%g %g,%g %g,%g"/>`+"\n",
		cx, b.Y, b.Right(), cy, cx, b.Bottom(), b.X, cy)

	q := min(b.Width, b.Height) / 5
	switch kind {
	case process.KindExclusiveGateway:
		fmt.Fprintf(buf, `    <path class="flow" stroke-width="3" d="M%g,%g L%g,%g M%g,%g L%g,%g"/>`+"\n",
			cx-q, cy-q, cx+q, cy+q, cx+q, cy-q, cx-q, cy+q)
	case process.KindParallelGateway:
		fmt.Fprintf(buf, `    <path class="flow" stroke-width="3" d="M%g,%g V%g M%g,%g H%g"/>`+"\n",
			cx, cy-q, cy+q, cx-q, cy, cx+q)
	case process.KindInclusiveGateway:
		fmt.Fprintf(buf, `    <circle class="flow" stroke-width="2.5" cx="%g" cy="%g" r="%g"/>`+"\n", cx, cy, q)
	case process.KindEventBasedGateway, process.KindComplexGateway:
		fmt.Fprintf(buf, `    <circle class="flow" cx="%g" cy="%g" r="%g"/>`+"\n", cx, cy, q)
	}
}

func (r *renderer) renderLabelBelow(buf *bytes.Buffer, s layouter.Shape) {
	if !r.labels || s.Name == "" {
		return
	}
	b := s.Bounds
	fmt.Fprintf(buf, `    <text x="%g" y="%g" text-anchor="middle">%s</text>`+"\n",
		b.X+b.Width/2, b.Bottom()+fontSize+2, escapeXML(s.Name))
}

// =============================================================================
// Edges
// =============================================================================

func renderEdge(buf *bytes.Buffer, e layouter.Edge) {
	if len(e.Waypoints) < 2 {
		return
	}
	pts := make([]string, len(e.Waypoints))
	for i, p := range e.Waypoints {
		pts[i] = p.String()
	}

	class, markers := "flow", `marker-end="url(#arrow)"`
	switch e.Kind {
	case process.EdgeMessageFlow.String():
		class, markers = "flow message", `marker-start="url(#message-start)" marker-end="url(#open-arrow)"`
	case process.EdgeDataAssociation.String():
		class, markers = "flow data", `marker-end="url(#open-arrow)"`
	}
	fmt.Fprintf(buf, `  <polyline id="%s" class="%s" points="%s" %s/>`+"\n",
		escapeXML(e.Element), class, strings.Join(pts, " "), markers)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
