package decode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BaSui01/streamtap/tap"
)

// Built-in provider names, used as registry keys and telemetry labels.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

var doneSentinel = []byte("[DONE]")

// StreamError is an error a provider delivered in-band, inside the stream
// body rather than as a transport failure.
type StreamError struct {
	Provider string
	Code     string
	Message  string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s stream error: %s: %s", e.Provider, e.Code, e.Message)
}

// For returns a fresh decoder for a built-in provider name. Decoders that
// keep cross-chunk context (anthropic, ollama) must not be shared between
// concurrent streams, which is why this hands out a new instance per call.
func For(provider string) (tap.Decoder, error) {
	switch provider {
	case ProviderOpenAI:
		return OpenAI(), nil
	case ProviderAnthropic:
		return Anthropic(), nil
	case ProviderOllama:
		return Ollama(), nil
	default:
		return nil, fmt.Errorf("%w for provider %q", tap.ErrNoDecoder, provider)
	}
}

// NewRegistry builds a registry holding one instance of each built-in
// decoder, with openai as the default. Suitable when streams are consumed
// one at a time; concurrent streams should take fresh instances from For.
func NewRegistry() *tap.Registry {
	r := tap.NewRegistry()
	r.Register(ProviderOpenAI, OpenAI())
	r.Register(ProviderAnthropic, Anthropic())
	r.Register(ProviderOllama, Ollama())
	_ = r.SetDefault(ProviderOpenAI)
	return r
}

// payload normalizes a chunk to its JSON body. Byte slices, strings, and
// raw JSON are accepted; SSE framing ("data:" prefixes) is tolerated. The
// [DONE] sentinel and blank frames map to nil, meaning nothing to decode.
func payload(chunk any) ([]byte, error) {
	var raw []byte
	switch v := chunk.(type) {
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil, fmt.Errorf("unsupported chunk type %T", chunk)
	}
	raw = bytes.TrimSpace(raw)
	if after, ok := bytes.CutPrefix(raw, []byte("data:")); ok {
		raw = bytes.TrimSpace(after)
	}
	if len(raw) == 0 || bytes.Equal(raw, doneSentinel) {
		return nil, nil
	}
	return raw, nil
}
