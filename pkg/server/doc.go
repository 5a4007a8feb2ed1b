// Package server exposes diff sessions over HTTP and WebSocket.
//
// A session owns one differ. Clients post successive JSON array snapshots
// and receive change reports:
//
//	POST   /v1/sessions              create a session, body {"trackBy": {...}}
//	GET    /v1/sessions/{id}         current items
//	POST   /v1/sessions/{id}/check   diff a snapshot
//	DELETE /v1/sessions/{id}         close a session
//	GET    /v1/sessions/{id}/ws      stream snapshots over a WebSocket
//	GET    /metrics                  Prometheus metrics
//	GET    /healthz                  liveness
//
// Reports are JSON, or msgpack when the request sends
// "Accept: application/msgpack". On the WebSocket every text message is a
// snapshot; replies are JSON reports, or binary operation frames when the
// connection was opened with ?format=binary.
//
// Sessions are identified by ULIDs and expire after SessionTTL without use.
package server
