// Package fixtures provides recorded provider stream sessions with
// known assembly results, shared by integration and benchmark tests.
package fixtures

import (
	"fmt"
	"strings"
)

// OpenAITextSession returns a complete OpenAI SSE session: one content
// chunk per part, then a finish chunk carrying usage, then the done
// sentinel. Token counts are fixed: 12 in, 4 out.
func OpenAITextSession(parts ...string) [][]byte {
	lines := make([][]byte, 0, len(parts)+2)
	for _, p := range parts {
		lines = append(lines, []byte(fmt.Sprintf(
			`data: {"id":"chatcmpl-fix-001","model":"gpt-4o-mini","choices":[{"delta":{"content":%q}}]}`, p)))
	}
	lines = append(lines, []byte(
		`data: {"id":"chatcmpl-fix-001","model":"gpt-4o-mini","choices":[{"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":4}}`))
	lines = append(lines, []byte(`data: [DONE]`))
	return lines
}

// OpenAIToolCallSession returns an OpenAI session declaring one
// get_weather call whose arguments arrive split across two fragments.
// The assembled arguments are {"city":"NYC"}.
func OpenAIToolCallSession() [][]byte {
	return [][]byte{
		[]byte(`data: {"id":"chatcmpl-fix-002","model":"gpt-4o-mini","choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_fix_001","type":"function","function":{"name":"get_weather","arguments":"{\"city\":"}}]}}]}`),
		[]byte(`data: {"id":"chatcmpl-fix-002","model":"gpt-4o-mini","choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"NYC\"}"}}]}}]}`),
		[]byte(`data: {"id":"chatcmpl-fix-002","model":"gpt-4o-mini","choices":[{"delta":{},"finish_reason":"tool_calls"}]}`),
		[]byte(`data: [DONE]`),
	}
}

// OpenAIErrorFrame returns an in-band OpenAI error frame.
func OpenAIErrorFrame() []byte {
	return []byte(`data: {"error":{"message":"rate limit exceeded","type":"rate_limit_error","code":"rate_limited"}}`)
}

// AnthropicTextSession returns a complete Anthropic event session for
// the given text parts. Usage is split the way the wire splits it:
// input tokens on message_start, output tokens on message_delta.
// Token counts are fixed: 21 in, 5 out.
func AnthropicTextSession(parts ...string) [][]byte {
	lines := make([][]byte, 0, len(parts)+2)
	lines = append(lines, []byte(
		`{"type":"message_start","message":{"id":"msg_fix_001","model":"claude-sonnet-4","usage":{"input_tokens":21}}}`))
	for _, p := range parts {
		lines = append(lines, []byte(fmt.Sprintf(
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":%q}}`, p)))
	}
	lines = append(lines, []byte(
		`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":5}}`))
	return lines
}

// OllamaTextSession returns a complete Ollama NDJSON session for the
// given text parts. Token counts are fixed: 7 in, 3 out.
func OllamaTextSession(parts ...string) [][]byte {
	lines := make([][]byte, 0, len(parts)+1)
	for _, p := range parts {
		lines = append(lines, []byte(fmt.Sprintf(
			`{"model":"llama3","message":{"content":%q},"done":false}`, p)))
	}
	lines = append(lines, []byte(
		`{"model":"llama3","message":{"content":""},"done":true,"done_reason":"stop","prompt_eval_count":7,"eval_count":3}`))
	return lines
}

// Joined returns the text the given parts assemble to.
func Joined(parts ...string) string { return strings.Join(parts, "") }
