// Package streamtap provides a top-level convenience entry point for
// tapping LLM provider streams with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/streamtap"
//
//	s, err := streamtap.Stream(src, "openai")
//	p, err := streamtap.Pipe(ctx, ch, "anthropic", streamtap.WithDefaultPricing("anthropic"))
//
// Stream and Pipe resolve the chunk decoder from the built-in provider
// set. Use the tap package directly when wiring a custom decoder.
package streamtap

import (
	"context"

	"github.com/BaSui01/streamtap/decode"
	"github.com/BaSui01/streamtap/observability"
	"github.com/BaSui01/streamtap/tap"
	"github.com/BaSui01/streamtap/tokenizer"
)

// Option configures a stream created by [Stream] or [Pipe].
type Option = tap.Option

// Record is the finalized stream record.
type Record = tap.Record

// Usage is the provider-reported token usage.
type Usage = tap.Usage

// Stream wraps a pull-based chunk source with the decoder registered for
// provider. The wrapped stream forwards every chunk untouched.
func Stream[T any](src tap.Source[T], provider string, opts ...Option) (*tap.Stream[T], error) {
	dec, err := decode.For(provider)
	if err != nil {
		return nil, err
	}
	return tap.NewStream(src, provider, dec, opts...), nil
}

// Pipe wraps a channel of chunks with the decoder registered for
// provider. Cancelling ctx abandons the stream.
func Pipe[T any](ctx context.Context, src <-chan T, provider string, opts ...Option) (*tap.Pipe[T], error) {
	dec, err := decode.For(provider)
	if err != nil {
		return nil, err
	}
	return tap.NewPipe(ctx, src, provider, dec, opts...), nil
}

// ForEach consumes src through a tapped stream, invoking fn per chunk,
// and releases the stream on return.
func ForEach[T any](src tap.Source[T], provider string, fn func(T) error, opts ...Option) error {
	dec, err := decode.For(provider)
	if err != nil {
		return err
	}
	return tap.ForEach(src, provider, dec, fn, opts...)
}

// Shared by every stream the facade creates. Both are safe for
// concurrent use.
var (
	defaultPricing   = observability.NewPricing()
	defaultEstimator = tokenizer.NewEstimator()
)

// WithDefaultPricing attaches the built-in price table for provider.
func WithDefaultPricing(provider string) Option {
	return tap.WithPricing(defaultPricing.Func(provider))
}

// WithEstimation estimates output tokens from accumulated text when the
// provider never reports usage.
func WithEstimation() Option {
	return tap.WithEstimator(defaultEstimator.Func())
}

// Re-export wrapper options so callers never need to import tap/.

// WithLogger sets a custom zap logger.
var WithLogger = tap.WithLogger

// WithSpan attaches a span sink for finalized attributes.
var WithSpan = tap.WithSpan

// WithMetrics attaches a metrics sink for finalized measurements.
var WithMetrics = tap.WithMetrics

// WithPricing sets the cost lookup applied at finalization.
var WithPricing = tap.WithPricing

// WithEstimator sets the token estimator for streams without usage.
var WithEstimator = tap.WithEstimator

// WithCaptureText attaches truncated response text to span attributes.
var WithCaptureText = tap.WithCaptureText

// WithSuppressed disables all observation and finalization.
var WithSuppressed = tap.WithSuppressed

// WithStartTime measures TTFT from an earlier request start.
var WithStartTime = tap.WithStartTime

// WithClock injects the time source.
var WithClock = tap.WithClock

// WithBuffer sets the forwarding buffer for channel streams.
var WithBuffer = tap.WithBuffer
