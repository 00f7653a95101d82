// Package server exposes Struct-IoU scoring over HTTP.
//
// # Endpoints
//
//	GET  /healthz     liveness probe
//	POST /v1/score    score one example, returns a metric report
//	POST /v1/corpus   score a list of examples, returns a corpus summary
//	POST /v1/render   draw the alignment of one example as DOT or SVG
//
// Request bodies are JSON in the same shape as corpus manifests, with an
// optional "options" object that overrides [corpus.DefaultOptions]. Errors
// are returned as {"error": ..., "code": ..., "request_id": ...} with the
// status chosen by [errors.HTTPStatus].
//
// Every response carries an X-Request-ID header. A client-supplied value is
// echoed, otherwise a UUID is generated.
package server
