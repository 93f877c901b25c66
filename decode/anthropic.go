package decode

import (
	"encoding/json"
	"fmt"

	"github.com/BaSui01/streamtap/tap"
)

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicEvent struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Message *struct {
		ID    string          `json:"id"`
		Model string          `json:"model"`
		Usage *anthropicUsage `json:"usage"`
	} `json:"message"`
	ContentBlock *struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`
	Delta *struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
		StopReason  string `json:"stop_reason"`
	} `json:"delta"`
	Usage *anthropicUsage `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// anthropicDecoder carries the input token count from message_start so the
// usage reported at message_delta is complete. One instance per stream.
type anthropicDecoder struct {
	inputTokens int
	haveInput   bool
}

// Anthropic returns a decoder for Messages API streaming events. The API
// reports input tokens at message_start and output tokens at message_delta,
// so the decoder merges the two; take a fresh instance for every stream.
func Anthropic() tap.Decoder { return &anthropicDecoder{} }

func (d *anthropicDecoder) Decode(chunk any) (tap.Delta, error) {
	raw, err := payload(chunk)
	if err != nil || raw == nil {
		return tap.Delta{}, err
	}
	var ev anthropicEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return tap.Delta{}, fmt.Errorf("anthropic event: %w", err)
	}

	var out tap.Delta
	switch ev.Type {
	case "message_start":
		if ev.Message == nil {
			break
		}
		out.ResponseID = ev.Message.ID
		out.ResponseModel = ev.Message.Model
		if u := ev.Message.Usage; u != nil {
			d.inputTokens = u.InputTokens
			d.haveInput = true
			out.Usage = &tap.Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
		}
	case "content_block_start":
		if cb := ev.ContentBlock; cb != nil && cb.Type == "tool_use" {
			out.ToolCalls = []tap.ToolCallDelta{{
				Index: ev.Index,
				ID:    cb.ID,
				Type:  "function",
				Name:  cb.Name,
			}}
		}
	case "content_block_delta":
		if ev.Delta == nil {
			break
		}
		switch ev.Delta.Type {
		case "text_delta":
			out.Text = ev.Delta.Text
		case "input_json_delta":
			out.ToolCalls = []tap.ToolCallDelta{{
				Index:     ev.Index,
				Arguments: ev.Delta.PartialJSON,
			}}
		}
	case "message_delta":
		if ev.Delta != nil {
			out.FinishReason = ev.Delta.StopReason
		}
		if u := ev.Usage; u != nil {
			merged := tap.Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
			if merged.InputTokens == 0 && d.haveInput {
				merged.InputTokens = d.inputTokens
			}
			out.Usage = &merged
		}
	case "error":
		if ev.Error != nil {
			out.Err = &StreamError{
				Provider: ProviderAnthropic,
				Code:     ev.Error.Type,
				Message:  ev.Error.Message,
			}
		}
	}
	return out, nil
}
