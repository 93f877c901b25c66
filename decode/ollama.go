package decode

import (
	"encoding/json"
	"fmt"

	"github.com/BaSui01/streamtap/tap"
)

type ollamaChunk struct {
	Model   string `json:"model"`
	Message struct {
		Content   string `json:"content"`
		ToolCalls []struct {
			Function struct {
				Name      string          `json:"name"`
				Arguments json.RawMessage `json:"arguments"`
			} `json:"function"`
		} `json:"tool_calls"`
	} `json:"message"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error"`
}

// ollamaDecoder numbers tool calls across chunks because the chat API ships
// them whole, without indexes or ids. One instance per stream.
type ollamaDecoder struct {
	calls int
}

// Ollama returns a decoder for /api/chat streaming responses. Token counts
// come from the final done chunk's prompt_eval_count and eval_count; tool
// calls arrive complete and get synthetic ids.
func Ollama() tap.Decoder { return &ollamaDecoder{} }

func (d *ollamaDecoder) Decode(chunk any) (tap.Delta, error) {
	raw, err := payload(chunk)
	if err != nil || raw == nil {
		return tap.Delta{}, err
	}
	var c ollamaChunk
	if err := json.Unmarshal(raw, &c); err != nil {
		return tap.Delta{}, fmt.Errorf("ollama chunk: %w", err)
	}
	if c.Error != "" {
		return tap.Delta{Err: &StreamError{
			Provider: ProviderOllama,
			Code:     "error",
			Message:  c.Error,
		}}, nil
	}

	out := tap.Delta{
		Text:          c.Message.Content,
		ResponseModel: c.Model,
	}
	for _, tc := range c.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, tap.ToolCallDelta{
			Index:     d.calls,
			ID:        fmt.Sprintf("ollama-call-%d", d.calls),
			Type:      "function",
			Name:      tc.Function.Name,
			Arguments: string(tc.Function.Arguments),
		})
		d.calls++
	}
	if c.Done {
		out.FinishReason = c.DoneReason
		if out.FinishReason == "" {
			out.FinishReason = "stop"
		}
		out.Usage = &tap.Usage{
			InputTokens:  c.PromptEvalCount,
			OutputTokens: c.EvalCount,
		}
	}
	return out, nil
}
