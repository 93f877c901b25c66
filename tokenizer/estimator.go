// Package tokenizer estimates token counts for streamed text when the
// provider does not report usage.
package tokenizer

import (
	"sync"

	"github.com/BaSui01/streamtap/tap"
)

// Heuristic approximates token counts from character classes without any
// encoding data. CJK text runs close to 1.5 characters per token while
// ASCII text averages 4, which keeps the estimate within roughly 20% of
// the real count for mixed prose.
type Heuristic struct{}

// NewHeuristic returns the character-class estimator.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Count estimates the token count of text. Non-empty input always counts
// as at least one token.
func (h *Heuristic) Count(text string) int {
	if text == "" {
		return 0
	}
	var cjk, other int
	for _, r := range text {
		if isCJK(r) {
			cjk++
		} else {
			other++
		}
	}
	n := int(float64(cjk)/1.5 + float64(other)/4.0)
	if n < 1 {
		n = 1
	}
	return n
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x3000 && r <= 0x303F) ||
		(r >= 0xFF00 && r <= 0xFFEF)
}

// Estimator resolves a counter per model and caches it. Models with a
// known BPE encoding count through tiktoken; when the encoding cannot be
// loaded the character heuristic answers instead, so estimation never
// fails.
type Estimator struct {
	mu       sync.RWMutex
	counters map[string]*Tiktoken
	fallback *Heuristic
}

// NewEstimator returns an Estimator with an empty counter cache.
func NewEstimator() *Estimator {
	return &Estimator{
		counters: make(map[string]*Tiktoken),
		fallback: NewHeuristic(),
	}
}

// Count estimates the token count of text for the given model.
func (e *Estimator) Count(model, text string) int {
	if text == "" {
		return 0
	}
	if n, err := e.counterFor(model).Count(text); err == nil {
		return n
	}
	return e.fallback.Count(text)
}

// Func adapts the estimator for the finalize hook.
func (e *Estimator) Func() tap.EstimateFunc { return e.Count }

func (e *Estimator) counterFor(model string) *Tiktoken {
	e.mu.RLock()
	tk, ok := e.counters[model]
	e.mu.RUnlock()
	if ok {
		return tk
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if tk, ok = e.counters[model]; ok {
		return tk
	}
	tk = NewTiktoken(model)
	e.counters[model] = tk
	return tk
}
