// Copyright (c) StreamTap Authors.
// Licensed under the MIT License.

/*
Package testutil provides shared helpers for StreamTap tests.

# Overview

testutil keeps stream tests deterministic: scripted chunk sources
instead of live providers, capturing sinks instead of real exporters,
and stepped clocks instead of wall time. Integration tests and example
benchmarks build on these instead of re-implementing them per package.

# Core helpers

  - ReplaySource: scripted pull source with optional transport error
  - SSELines / SendChunks: fixture construction for both transports
  - CapturingSpan / CapturingRecorder: thread-safe telemetry sinks
  - StepClock / ScriptClock: deterministic time sources
  - TestContext / CancelledContext: leak-free context construction
*/
package testutil
