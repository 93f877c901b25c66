// Package telemetry wraps OpenTelemetry SDK initialization, providing
// the TracerProvider and MeterProvider that commands and examples wire
// into stream instrumentation. When telemetry is disabled the providers
// are noop and no external connection is made.
package telemetry
