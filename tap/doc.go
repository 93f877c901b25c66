// Copyright (c) StreamTap Authors.
// Licensed under the MIT License.

/*
Package tap observes streaming LLM responses as they pass through to the
consumer, accumulates what the chunks carry, and emits telemetry exactly
once when the stream ends.

# Overview

Wrapping a provider stream must not change it: chunks are handed through
untouched, transport errors are returned identically, and every failure
inside the observer (decode errors, panicking sinks, unknown pricing) is
absorbed and logged. The response always wins over the telemetry.

# Core types

  - Source: the minimal pull surface of a provider stream
    (Next/Current/Err/Close), satisfied by the official SDK stream types.
  - Stream: a Source wrapper that observes chunks in transit.
  - Pipe: the channel-transport equivalent, fed by a <-chan T.
  - Decoder and Registry: per-provider chunk normalization into Delta.
  - State: accumulated text, tool calls, usage, identity fields, and
    per-chunk arrival times for a single stream.
  - Finalizer: exactly-once emission of span attributes and metrics,
    with cost and token estimation.
  - Record: the plain-value summary of one finalized stream.

# Lifecycle

A stream moves from init to streaming on its first chunk, then to exactly
one terminal phase: finalized on a natural end, finalized_error when the
transport failed, abandoned when the consumer released it early. The
finalized flag flips before any fallible emission, so a second release
can never double-report.

# Usage

	stream := tap.NewStream(src, "openai", decode.OpenAI(),
		tap.WithLogger(logger),
		tap.WithMetrics(recorder),
		tap.WithPricing(lookup),
	)
	defer stream.Close()
	for stream.Next() {
		handle(stream.Current())
	}
	if err := stream.Err(); err != nil {
		return err
	}

Token usage, cost, time-to-first-token, and mean time-between-tokens are
derived at the end and land on the configured span and metrics recorder.
*/
package tap
