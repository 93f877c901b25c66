package tap

import (
	"time"

	"go.uber.org/zap"
)

type options struct {
	logger     *zap.Logger
	span       Span
	metrics    MetricsRecorder
	pricing    PricingFunc
	estimate   EstimateFunc
	capture    int
	suppressed bool
	start      time.Time
	now        func() time.Time
	buffer     int
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(zap.String("component", "streamtap"))
	return o
}

// Option configures a wrapped stream, pipe, or finalizer.
type Option func(*options)

// WithLogger sets the logger used for decode failures and sink panics.
// The default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSpan attaches a span that receives the final attributes and status.
func WithSpan(s Span) Option {
	return func(o *options) { o.span = s }
}

// WithMetrics attaches a metrics recorder for counters and histograms.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) { o.metrics = m }
}

// WithPricing sets the cost lookup applied to the final token counts.
func WithPricing(p PricingFunc) Option {
	return func(o *options) { o.pricing = p }
}

// WithEstimator sets the token estimator used when the provider reports no
// usage.
func WithEstimator(e EstimateFunc) Option {
	return func(o *options) { o.estimate = e }
}

// WithCaptureText records up to maxBytes of the response text as a span
// attribute. Zero, the default, captures nothing.
func WithCaptureText(maxBytes int) Option {
	return func(o *options) { o.capture = maxBytes }
}

// WithSuppressed disables all observation and emission for this stream.
// Chunks still pass through untouched.
func WithSuppressed(v bool) Option {
	return func(o *options) { o.suppressed = v }
}

// WithStartTime overrides the stream start used for time-to-first-token.
// Set it to the moment the request was sent when wrapping happens later.
func WithStartTime(t time.Time) Option {
	return func(o *options) { o.start = t }
}

// WithClock overrides the time source. Tests use it to make timing exact.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithBuffer sets the output channel capacity of a pipe. The default is an
// unbuffered channel.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}
