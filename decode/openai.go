package decode

import (
	"encoding/json"
	"fmt"

	"github.com/BaSui01/streamtap/tap"
)

type openaiChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Type     string `json:"type"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

type openaiDecoder struct{}

// OpenAI returns a decoder for Chat Completions streaming chunks. Text and
// tool call fragments come from the first choice; usage arrives on the
// final chunk when the request asked for it.
func OpenAI() tap.Decoder { return openaiDecoder{} }

func (openaiDecoder) Decode(chunk any) (tap.Delta, error) {
	raw, err := payload(chunk)
	if err != nil || raw == nil {
		return tap.Delta{}, err
	}
	var c openaiChunk
	if err := json.Unmarshal(raw, &c); err != nil {
		return tap.Delta{}, fmt.Errorf("openai chunk: %w", err)
	}
	if c.Error != nil {
		code := c.Error.Code
		if code == "" {
			code = c.Error.Type
		}
		return tap.Delta{Err: &StreamError{
			Provider: ProviderOpenAI,
			Code:     code,
			Message:  c.Error.Message,
		}}, nil
	}

	out := tap.Delta{ResponseID: c.ID, ResponseModel: c.Model}
	if len(c.Choices) > 0 {
		choice := c.Choices[0]
		out.Text = choice.Delta.Content
		out.FinishReason = choice.FinishReason
		for _, tc := range choice.Delta.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, tap.ToolCallDelta{
				Index:     tc.Index,
				ID:        tc.ID,
				Type:      tc.Type,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}
	if c.Usage != nil {
		out.Usage = &tap.Usage{
			InputTokens:  c.Usage.PromptTokens,
			OutputTokens: c.Usage.CompletionTokens,
		}
	}
	return out, nil
}
