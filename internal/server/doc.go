// Package server exposes a permalink control over HTTP.
//
// The server owns one headless map, one in-memory location and the control
// binding them, configured from internal/config. Clients read and change the
// shared view through a small JSON API and follow fragment changes over a
// websocket:
//
//	GET    /v1/permalink                 current snapshot
//	PATCH  /v1/permalink/params          merge a partial parameter map (null deletes)
//	PUT    /v1/permalink/hash            navigate to a new fragment
//	PUT    /v1/permalink/view            pan and zoom the map
//	POST   /v1/permalink/history/back    browser-style back
//	POST   /v1/permalink/history/forward browser-style forward
//	GET    /v1/permalink/ws              snapshot stream
//	GET    /metrics                      Prometheus metrics
//	GET    /healthz                      liveness
//
// The control is not safe for concurrent use, so every request, websocket
// message and storage broadcast is serialized through the server's lock.
package server
