package tap

import (
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Outcome labels how a stream ended.
type Outcome string

const (
	// OutcomeCompleted means the stream was consumed to its natural end.
	OutcomeCompleted Outcome = "completed"
	// OutcomeErrored means the transport failed mid-stream.
	OutcomeErrored Outcome = "errored"
	// OutcomeAbandoned means the consumer released the stream early.
	OutcomeAbandoned Outcome = "abandoned"
)

// Span is the minimal tracing surface the finalizer needs. The otel package
// adapts a trace.Span to it; tests use an in-memory fake.
type Span interface {
	SetAttribute(key string, value any)
	SetStatus(ok bool, message string)
}

// MetricsRecorder is the minimal metrics surface the finalizer needs. Add
// feeds counters, Record feeds histograms.
type MetricsRecorder interface {
	Add(name string, value int64, attrs map[string]any)
	Record(name string, value float64, attrs map[string]any)
}

// PricingFunc returns the cost in USD for a completed call. Implementations
// return 0 for unknown models.
type PricingFunc func(model string, inputTokens, outputTokens int) float64

// EstimateFunc approximates the output token count from accumulated text
// when the provider reported no usage.
type EstimateFunc func(model, text string) int

// Record is the summary produced by one finalization: what was set on the
// span and recorded on the metrics, in plain Go values.
type Record struct {
	StreamID     string
	Provider     string
	Model        string
	ResponseID   string
	Outcome      Outcome
	FinishReason string
	Text         string
	ToolCalls    []ToolCall
	Usage        Usage
	Estimated    bool
	Cost         float64
	Duration     time.Duration
	Timing       Timing
	Chunks       int
	DecodeErrors int
	Err          error
	Attrs        map[string]any
}

// Finalizer emits telemetry for a finished stream exactly once. Every sink
// call happens after the finalized flag is set and inside a recover, so a
// failing span, recorder, or pricing table can never reach the consumer.
type Finalizer struct {
	span     Span
	metrics  MetricsRecorder
	pricing  PricingFunc
	estimate EstimateFunc
	capture  int
	logger   *zap.Logger
	now      func() time.Time
}

// NewFinalizer builds a finalizer from options. With no options it assembles
// Records without emitting anywhere.
func NewFinalizer(opts ...Option) *Finalizer {
	return newFinalizer(newOptions(opts))
}

func newFinalizer(o *options) *Finalizer {
	return &Finalizer{
		span:     o.span,
		metrics:  o.metrics,
		pricing:  o.pricing,
		estimate: o.estimate,
		capture:  o.capture,
		logger:   o.logger,
		now:      o.now,
	}
}

// Run finalizes the state with the given outcome. The first call wins: it
// flips the finalized flag before any fallible work and returns the emitted
// Record. Later calls return nil without touching the sinks. streamErr is
// the transport error for errored outcomes and may be nil otherwise.
func (f *Finalizer) Run(s *State, outcome Outcome, streamErr error) *Record {
	if !s.BeginFinalize(phaseFor(outcome)) {
		return nil
	}

	rec := &Record{
		StreamID:     s.ID(),
		Provider:     s.Provider(),
		Model:        s.ResponseModel(),
		ResponseID:   s.ResponseID(),
		Outcome:      outcome,
		FinishReason: s.FinishReason(),
		Text:         s.Text(),
		ToolCalls:    s.Calls(),
		Timing:       s.Timing(),
		Duration:     f.now().Sub(s.StartTime()),
		Chunks:       s.Chunks(),
		DecodeErrors: s.DecodeErrors(),
		Err:          streamErr,
	}
	if u := s.Usage(); u != nil {
		rec.Usage = *u
	} else if f.estimate != nil && rec.Text != "" {
		f.safely("estimate", func() {
			rec.Usage.OutputTokens = f.estimate(rec.Model, rec.Text)
			rec.Estimated = true
		})
	}
	if f.pricing != nil && rec.Usage.Total() > 0 {
		f.safely("pricing", func() {
			rec.Cost = f.pricing(rec.Model, rec.Usage.InputTokens, rec.Usage.OutputTokens)
		})
	}
	rec.Attrs = f.attrs(rec)

	if f.span != nil {
		f.safely("span", func() {
			for k, v := range rec.Attrs {
				f.span.SetAttribute(k, v)
			}
			if rec.Err != nil {
				f.span.SetStatus(false, rec.Err.Error())
			} else {
				f.span.SetStatus(true, "")
			}
		})
	}
	if f.metrics != nil {
		f.safely("metrics", func() { f.emit(rec) })
	}

	f.logger.Debug("stream finalized",
		zap.String("stream_id", rec.StreamID),
		zap.String("provider", rec.Provider),
		zap.String("model", rec.Model),
		zap.String("outcome", string(rec.Outcome)),
		zap.Int("chunks", rec.Chunks),
		zap.Duration("duration", rec.Duration),
		zap.Float64("cost", rec.Cost))
	return rec
}

// attrs builds the span attribute map. Optional facts are included only when
// present so dashboards can tell "zero" from "unreported".
func (f *Finalizer) attrs(rec *Record) map[string]any {
	a := map[string]any{
		AttrStreamID:   rec.StreamID,
		AttrProvider:   rec.Provider,
		AttrOutcome:    string(rec.Outcome),
		AttrChunks:     rec.Chunks,
		AttrDurationMS: durationMS(rec.Duration),
	}
	if rec.Model != "" {
		a[AttrModel] = rec.Model
	}
	if rec.ResponseID != "" {
		a[AttrResponseID] = rec.ResponseID
	}
	if rec.FinishReason != "" {
		a[AttrFinishReason] = rec.FinishReason
	}
	if rec.Usage.Total() > 0 || rec.Estimated {
		a[AttrTokensInput] = rec.Usage.InputTokens
		a[AttrTokensOutput] = rec.Usage.OutputTokens
		a[AttrTokensTotal] = rec.Usage.Total()
	}
	if rec.Estimated {
		a[AttrTokensEstimated] = true
	}
	if rec.Cost > 0 {
		a[AttrCost] = rec.Cost
	}
	if rec.Timing.TTFT != nil {
		a[AttrTTFTMS] = durationMS(*rec.Timing.TTFT)
	}
	if rec.Chunks >= 2 {
		a[AttrTBTMS] = durationMS(rec.Timing.TBT)
	}
	if n := len(rec.ToolCalls); n > 0 {
		a[AttrToolCalls] = n
	}
	if rec.DecodeErrors > 0 {
		a[AttrDecodeErrors] = rec.DecodeErrors
	}
	if rec.Err != nil {
		a[AttrErrorType] = fmt.Sprintf("%T", rec.Err)
		a[AttrErrorMessage] = rec.Err.Error()
	}
	if f.capture > 0 && rec.Text != "" {
		a[AttrResponseText] = truncateUTF8(rec.Text, f.capture)
	}
	return a
}

// emit feeds the metrics recorder.
func (f *Finalizer) emit(rec *Record) {
	base := map[string]any{
		AttrProvider: rec.Provider,
		AttrModel:    rec.Model,
		AttrOutcome:  string(rec.Outcome),
	}
	f.metrics.Add(MetricRequests, 1, base)
	f.metrics.Add(MetricChunks, int64(rec.Chunks), base)
	if rec.Usage.Total() > 0 || rec.Estimated {
		f.metrics.Add(MetricTokens, int64(rec.Usage.InputTokens), withType(base, TokenTypeInput))
		f.metrics.Add(MetricTokens, int64(rec.Usage.OutputTokens), withType(base, TokenTypeOutput))
		f.metrics.Add(MetricTokens, int64(rec.Usage.Total()), withType(base, TokenTypeTotal))
	}
	f.metrics.Record(MetricDuration, rec.Duration.Seconds(), base)
	if rec.Cost > 0 {
		f.metrics.Record(MetricCost, rec.Cost, base)
	}
	if rec.Timing.TTFT != nil {
		f.metrics.Record(MetricTTFT, durationMS(*rec.Timing.TTFT), base)
	}
	if rec.Chunks >= 2 {
		f.metrics.Record(MetricTBT, durationMS(rec.Timing.TBT), base)
	}
}

// safely runs one sink stage, converting a panic into a warning log.
func (f *Finalizer) safely(stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Warn("telemetry sink panicked",
				zap.String("stage", stage),
				zap.Any("panic", r))
		}
	}()
	fn()
}

func phaseFor(o Outcome) Phase {
	switch o {
	case OutcomeErrored:
		return PhaseFinalizedError
	case OutcomeAbandoned:
		return PhaseAbandoned
	default:
		return PhaseFinalized
	}
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func withType(base map[string]any, typ string) map[string]any {
	a := make(map[string]any, len(base)+1)
	for k, v := range base {
		a[k] = v
	}
	a["type"] = typ
	return a
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
