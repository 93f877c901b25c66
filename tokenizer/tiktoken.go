package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// modelEncodings maps model names to their tiktoken encoding.
var modelEncodings = map[string]string{
	"gpt-4o":        "o200k_base",
	"gpt-4o-mini":   "o200k_base",
	"gpt-4.1":       "o200k_base",
	"o3":            "o200k_base",
	"gpt-4-turbo":   "cl100k_base",
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
}

const defaultEncoding = "cl100k_base"

// Tiktoken counts tokens with the BPE encoding that matches an OpenAI
// family model. The encoding data loads lazily on first count because it
// may be fetched and cached on disk.
type Tiktoken struct {
	model    string
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

// NewTiktoken resolves the encoding for the model, trying an exact match,
// then the longest model-name prefix, then the cl100k_base default. Longest
// prefix wins so a dated gpt-4o snapshot resolves to gpt-4o, not gpt-4.
func NewTiktoken(model string) *Tiktoken {
	encoding, ok := modelEncodings[model]
	if !ok {
		best := -1
		for prefix, e := range modelEncodings {
			if strings.HasPrefix(model, prefix) && len(prefix) > best {
				encoding = e
				best = len(prefix)
			}
		}
		ok = best >= 0
	}
	if !ok {
		encoding = defaultEncoding
	}
	return &Tiktoken{model: model, encoding: encoding}
}

// Encoding returns the resolved tiktoken encoding name.
func (t *Tiktoken) Encoding() string { return t.encoding }

func (t *Tiktoken) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// Count returns the token count of text under the model's encoding.
func (t *Tiktoken) Count(text string) (int, error) {
	if err := t.init(); err != nil {
		return 0, err
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}
