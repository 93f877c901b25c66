package tap

// Attribute keys set on the finalize span and carried in Record attribute
// maps. They extend the llm.* namespace used across the request metrics.
const (
	AttrProvider        = "llm.provider"
	AttrModel           = "llm.model"
	AttrResponseID      = "llm.response.id"
	AttrFinishReason    = "llm.finish_reason"
	AttrOutcome         = "llm.outcome"
	AttrTokensInput     = "llm.tokens.input"
	AttrTokensOutput    = "llm.tokens.output"
	AttrTokensTotal     = "llm.tokens.total"
	AttrTokensEstimated = "llm.tokens.estimated"
	AttrCost            = "llm.cost"
	AttrDurationMS      = "llm.duration_ms"
	AttrTTFTMS          = "llm.ttft_ms"
	AttrTBTMS           = "llm.tbt_ms"
	AttrChunks          = "llm.chunks"
	AttrToolCalls       = "llm.tool_calls"
	AttrDecodeErrors    = "llm.decode_errors"
	AttrResponseText    = "llm.response.text"
	AttrStreamID        = "llm.stream.id"
	AttrErrorType       = "llm.error.type"
	AttrErrorMessage    = "llm.error.message"
)

// Metric names emitted through a MetricsRecorder.
const (
	MetricRequests = "llm.request.total"
	MetricTokens   = "llm.token.total"
	MetricDuration = "llm.request.duration"
	MetricCost     = "llm.cost.per_request"
	MetricTTFT     = "llm.streaming.ttft_ms"
	MetricTBT      = "llm.streaming.tbt_ms"
	MetricChunks   = "llm.streaming.chunks.total"
)

// TokenTypeInput and TokenTypeOutput label the "type" attribute on the
// token counter.
const (
	TokenTypeInput  = "input"
	TokenTypeOutput = "output"
	TokenTypeTotal  = "total"
)
