package tracing

import "go.opentelemetry.io/otel/attribute"

// Span names for session and host operations.
const (
	SpanSessionStart = "session.start"
	SpanSessionSend  = "session.send"
	SpanSessionKill  = "session.kill"
	SpanHostStart    = "host.start"
)

// Attribute keys attached to session spans.
const (
	AttrAgentID = attribute.Key("roster.agent_id")
	AttrModel   = attribute.Key("roster.model")
	AttrRunID   = attribute.Key("roster.run_id")
	AttrSuccess = attribute.Key("roster.success")
)
