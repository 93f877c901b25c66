// Copyright (c) StreamTap Authors.
// Licensed under the MIT License.

/*
Package main provides the streamtap command line tool.

# Overview

cmd/streamtap replays recorded provider streams through the telemetry
engine, turning SSE or NDJSON fixture files into finalized records with
timing, token, and cost attributes. It is the quickest way to inspect
what instrumentation a captured stream would produce, and doubles as a
load source for exercising OTLP and Prometheus pipelines without a live
provider.

# Commands

  - replay: feed fixture files through the engine, one stream each
  - providers: list providers with a built-in chunk decoder
  - version: show version information
  - help: show usage

# Replay behavior

Each fixture file becomes one stream: lines are scanned according to
--format (sse keeps only data: payloads, ndjson keeps every non-empty
line), decoded with the --provider decoder, and finalized on exhaustion.
Files replay concurrently. --delay spaces chunk arrival so TTFT and TBT
come out non-zero; --metrics-addr serves Prometheus measurements while
the replay runs; OTLP export follows the telemetry section of --config.

Build injection: Version, BuildTime, GitCommit are set via ldflags.
*/
package main
