// Package pkg provides the libraries of the autolayout process diagram
// layout engine.
//
// # Overview
//
// autolayout computes diagram coordinates for process documents: every
// element gets a cell on an orthogonal grid and every flow a routed
// polyline. The pkg directory is organized into three areas:
//
//  1. Layout core (grid, placement, compaction, routing)
//  2. Documents and results (model, document, layouter)
//  3. Infrastructure (cache, config, pipeline, rendering)
//
// # Architecture
//
// The typical data flow:
//
//	YAML/JSON document
//	         ↓
//	    [document] package (decode + validate into [model] definitions)
//	         ↓
//	    [layouter] package (grids, placement, expansion, drawing)
//	         ↓
//	    [render/svg], [render/dot] or JSON/YAML interchange
//
// # Quick Start
//
//	defs, err := document.ReadFile("orders.yaml")
//	if err != nil {
//	    return err
//	}
//	res, err := layouter.New(config.DefaultLayout()).Layout(ctx, defs)
//	if err != nil {
//	    return err
//	}
//	svg, err := svg.Render(res)
//
// # Main Packages
//
// ## Layout Core
//
// [process] - Nodes, edges and the directed process graph with its
// depth-first traversal.
//
// [grid] - Sparse coordinate grid with multi-occupancy cells, row and column
// insertion and flipping.
//
// [overlay] - The grid plus the flows between placed nodes: crossing checks,
// chains and compaction.
//
// [nestedset] - Interval encoding of lane and sub-process hierarchies.
//
// [placement] - The depth-first placement walk with crossing repair.
//
// [router] - Direction-based orthogonal waypoint routing.
//
// ## Documents and Results
//
// [model] - Definitions, processes, collaborations and lanes.
//
// [document] - YAML and JSON reading, validation and writing.
//
// [layouter] - Lays out whole documents and produces the diagram
// interchange result.
//
// ## Infrastructure
//
// [config] - TOML configuration of geometry, cache and server.
//
// [cache] - Layout cache with file, Redis, MongoDB and null backends.
//
// [pipeline] - Parse, layout and render with caching, shared by the CLI and
// the HTTP API.
//
// [render] - SVG drawing, Graphviz export and PDF/PNG conversion.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for layout, cache and request events.
//
// [process]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process
// [grid]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid
// [overlay]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/overlay
// [nestedset]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/nestedset
// [placement]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/placement
// [router]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/router
// [model]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model
// [document]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/document
// [layouter]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter
// [config]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/config
// [cache]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/render/svg
// [render/dot]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/render/dot
// [errors]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/observability
package pkg
