// Package render turns layouts and process graphs into pictures.
//
// # Subpackages
//
//   - [svg] draws a layout result: pools, lanes, shapes and routed edges
//   - [dot] draws the declared process graph with Graphviz
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// from librsvg. They fail with [ErrConverterMissing] when it is not
// installed.
//
//	out, err := svg.Render(result)
//	png, err := render.ToPNG(ctx, out, 2.0)
//
// [svg]: github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/render/svg
// [dot]: github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/render/dot
package render
