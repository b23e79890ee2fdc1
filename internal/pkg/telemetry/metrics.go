package telemetry

// Span and attribute names used for instrumentation.
const (
	// Spans
	SpanDispatch = "dispatch.operation"
	SpanReplay   = "dispatch.replay"
	SpanSwap     = "session.swap"

	// Attributes
	AttrSession   = "mapbridge.session"
	AttrProvider  = "mapbridge.provider"
	AttrOperation = "mapbridge.operation"
	AttrDeferred  = "mapbridge.deferred"
	AttrQueued    = "mapbridge.queued"
)
