package tap

// Delta is the normalized form of one decoded chunk. Decoders map
// provider-specific chunk payloads into this shape; empty fields mean the
// chunk carried nothing for that slot.
type Delta struct {
	Text          string          `json:"text,omitempty"`
	ToolCalls     []ToolCallDelta `json:"tool_calls,omitempty"`
	Usage         *Usage          `json:"usage,omitempty"`
	FinishReason  string          `json:"finish_reason,omitempty"`
	ResponseID    string          `json:"response_id,omitempty"`
	ResponseModel string          `json:"response_model,omitempty"`

	// Err carries a transport error delivered in-band, the way channel
	// streams report failures inside a chunk instead of raising one from
	// the pull. A non-nil Err makes the terminal outcome errored; the
	// chunk itself is still forwarded untouched.
	Err error `json:"-"`
}

// IsZero reports whether the delta carries no information at all.
func (d Delta) IsZero() bool {
	return d.Text == "" && len(d.ToolCalls) == 0 && d.Usage == nil &&
		d.FinishReason == "" && d.ResponseID == "" && d.ResponseModel == "" && d.Err == nil
}

// ToolCallDelta is one index-addressed fragment of a streamed tool call.
// A fragment with a non-empty ID declares the call at Index; later
// fragments for the same index carry only argument text.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCall is a fully assembled tool invocation, arguments concatenated in
// arrival order.
type ToolCall struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Usage holds token counts for one stream. Providers typically report it
// once, in the terminal chunk.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }
