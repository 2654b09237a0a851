// Package dot renders the input process graph with Graphviz.
//
// This view ignores the grid layout entirely: it shows the graph as
// declared, which helps when checking a document before laying it out.
// Each process is a cluster, expanded sub-processes nest as inner
// clusters, boundary events hang off their host with a dotted line, and
// data associations are dotted arrows.
//
//	dot, err := dot.ToDOT(defs, dot.Options{Process: "orders"})
//	svg, err := dot.RenderSVG(ctx, dot)
//
// Rendering uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process without a system installation.
package dot
