/*
Package http exposes workflow sessions over HTTP and probes them remotely.

The server side hosts any definition as a reference target: every session is a
live invoke.Bridge whose invocations wait until a client settles them through
the API. The client side (Client, Probe, NewSession) is a model.Model target
that drives such a server, so generated plans can be executed across the wire.

	POST   /sessions                                 create a session
	GET    /sessions/{id}                            current snapshot
	DELETE /sessions/{id}                            stop a session
	POST   /sessions/{id}/events                     send an external event
	POST   /sessions/{id}/invocations/{src}/resolve  complete the pending invocation
	POST   /sessions/{id}/invocations/{src}/reject   fail the pending invocation
	GET    /sessions/{id}/stream                     server-sent snapshot diffs
	GET    /definition                               workflow summary
	GET    /health                                   liveness
*/
package http
