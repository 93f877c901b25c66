// Copyright (c) StreamTap Authors.
// Licensed under the MIT License.

/*
Package observability provides the telemetry sinks and the pricing table
that plug into a tapped stream.

  - SpanAdapter and StartSpan bridge OpenTelemetry tracing to tap.Span.
  - OTelRecorder implements tap.MetricsRecorder on an OpenTelemetry meter,
    with the stream instruments created once, carrying units and bucket
    boundaries.
  - PromRecorder implements the same interface on Prometheus collectors
    for deployments that scrape instead of push.
  - Pricing is a provider:model price table (USD per 1K tokens) with
    longest-prefix model matching, and Func adapts it to tap.PricingFunc.
  - Tracker aggregates finalized records into a running cost summary.

All sinks are optional; a stream wrapped without them only accumulates.
*/
package observability
