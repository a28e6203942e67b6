// Package devserver serves a live preview of a canopy app.
//
// Every page load starts a session: a fresh app mounted onto its own
// in-memory document. The page carries the rendered markup and a small client
// that connects back over a WebSocket. Mutations recorded on the in-memory
// document after each drain are streamed to the client, and DOM events the
// client captures (click, input, change) are dispatched on the matching
// in-memory nodes, so component handlers run on the server.
//
// Routes:
//
//	GET /                     new session, initial HTML
//	GET /ws?session=ID        mutation stream and event back-channel
//	GET /sessions/{id}/tree   wrapper tree of a session as JSON
//	GET /metrics              Prometheus metrics
//	GET /healthz              liveness
//
// A session's document is owned by one goroutine. HTTP handlers reach it by
// queueing a task on the session, never by touching the document directly.
package devserver
