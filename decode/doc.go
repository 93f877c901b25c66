// Copyright (c) StreamTap Authors.
// Licensed under the MIT License.

/*
Package decode normalizes provider-specific streaming chunks into tap.Delta
values.

Built-in decoders cover the OpenAI Chat Completions stream, the Anthropic
Messages event stream, and the Ollama chat stream. Each accepts the raw
chunk body as []byte, string, or json.RawMessage, tolerates SSE "data:"
framing, and treats the [DONE] sentinel as an empty delta.

Provider error frames are mapped to StreamError and surfaced through
Delta.Err, which turns the stream's terminal outcome into errored without
interrupting pass-through.

The anthropic and ollama decoders keep small per-stream context (split
usage reporting, synthetic tool call ids), so obtain decoders through For
rather than sharing one instance across concurrent streams.
*/
package decode
