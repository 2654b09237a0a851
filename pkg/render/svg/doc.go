// Package svg draws layout results as SVG.
//
// Shapes are drawn by kind: circles for events, diamonds with markers for
// gateways, rounded rectangles for activities, page and cylinder outlines
// for data references, and labelled bands for pools and lanes. Sequence
// flows end in filled arrowheads; message flows and data associations are
// dashed or dotted with open arrowheads.
//
//	out, err := svg.Render(result, svg.WithDiagram(0))
package svg
