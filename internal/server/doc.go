// Package server serves a built registry over HTTP.
//
// Routes:
//
//	GET /all.json         every item
//	GET /components.json  registry:ui items
//	GET /blocks.json      registry:block items
//	GET /r/{name}.json    a single item, 404 JSON when unknown
//	GET /healthz          liveness and item count
//	GET /metrics          Prometheus metrics
//	GET /ws               registry-updated notifications
//
// When the registry file is missing the empty registry is served. With
// Watch enabled the file is re-read on change and websocket clients are
// notified.
package server
