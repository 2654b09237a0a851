// Package server exposes the layout pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz            liveness check
//	GET  /version            build information
//	POST /v1/layout          document in, layout JSON out
//	POST /v1/layout/{format} document in, rendered layout out (svg, png, pdf, json, yaml)
//
// Documents are YAML or JSON, chosen by Content-Type or sniffed. The query
// parameters max_steps, cell_width, cell_height, grids and refresh override
// the configured layout.
//
// # Errors
//
// Failures return {"error": {"code", "message", "request_id"}}. Input
// errors map to 400, a stalled layout to 422 and everything else to 500;
// see [StatusFor].
//
// Every response carries an X-Request-ID header. A valid UUID sent by the
// client is kept.
package server
