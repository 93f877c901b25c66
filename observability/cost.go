package observability

import (
	"strings"
	"sync"

	"github.com/BaSui01/streamtap/tap"
)

// ModelPrice is a per-model price entry, in USD per 1K tokens.
type ModelPrice struct {
	Provider    string
	Model       string
	PriceInput  float64
	PriceOutput float64
}

// Pricing is a thread-safe price table keyed by provider and model. Lookups
// fall back to the longest model prefix within the provider, so dated
// releases like gpt-4o-2024-08-06 match their gpt-4o entry.
type Pricing struct {
	mu     sync.RWMutex
	prices map[string]ModelPrice // key: provider:model
}

// NewPricing creates a price table preloaded with the built-in defaults.
// Entries can be overridden or extended with Set and Update.
func NewPricing() *Pricing {
	p := &Pricing{prices: make(map[string]ModelPrice)}
	p.loadDefaults()
	return p
}

func (p *Pricing) loadDefaults() {
	defaults := []ModelPrice{
		// OpenAI
		{Provider: "openai", Model: "gpt-4o", PriceInput: 0.005, PriceOutput: 0.015},
		{Provider: "openai", Model: "gpt-4o-mini", PriceInput: 0.00015, PriceOutput: 0.0006},
		{Provider: "openai", Model: "gpt-4.1", PriceInput: 0.002, PriceOutput: 0.008},
		{Provider: "openai", Model: "gpt-4.1-mini", PriceInput: 0.0004, PriceOutput: 0.0016},
		{Provider: "openai", Model: "gpt-4-turbo", PriceInput: 0.01, PriceOutput: 0.03},
		{Provider: "openai", Model: "gpt-3.5-turbo", PriceInput: 0.0005, PriceOutput: 0.0015},
		{Provider: "openai", Model: "o3-mini", PriceInput: 0.0011, PriceOutput: 0.0044},
		// Anthropic
		{Provider: "anthropic", Model: "claude-3-5-sonnet", PriceInput: 0.003, PriceOutput: 0.015},
		{Provider: "anthropic", Model: "claude-3-5-haiku", PriceInput: 0.0008, PriceOutput: 0.004},
		{Provider: "anthropic", Model: "claude-3-opus", PriceInput: 0.015, PriceOutput: 0.075},
		{Provider: "anthropic", Model: "claude-sonnet-4", PriceInput: 0.003, PriceOutput: 0.015},
		{Provider: "anthropic", Model: "claude-opus-4", PriceInput: 0.015, PriceOutput: 0.075},
		{Provider: "anthropic", Model: "claude-haiku-4", PriceInput: 0.001, PriceOutput: 0.005},
	}
	for _, mp := range defaults {
		p.prices[mp.Provider+":"+mp.Model] = mp
	}
}

// Set adds or replaces one price entry.
func (p *Pricing) Set(provider, model string, priceInput, priceOutput float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[provider+":"+model] = ModelPrice{
		Provider:    provider,
		Model:       model,
		PriceInput:  priceInput,
		PriceOutput: priceOutput,
	}
}

// Update replaces price entries in bulk, typically from configuration.
func (p *Pricing) Update(prices []ModelPrice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, mp := range prices {
		p.prices[mp.Provider+":"+mp.Model] = mp
	}
}

// Get returns the price entry that a lookup for the model would use.
func (p *Pricing) Get(provider, model string) (ModelPrice, bool) {
	return p.lookup(provider, model)
}

// Cost computes the USD cost for one call, or 0 when the model is unknown.
func (p *Pricing) Cost(provider, model string, tokensInput, tokensOutput int) float64 {
	mp, ok := p.lookup(provider, model)
	if !ok {
		return 0
	}
	inputCost := float64(tokensInput) / 1000 * mp.PriceInput
	outputCost := float64(tokensOutput) / 1000 * mp.PriceOutput
	return inputCost + outputCost
}

// Func binds a provider and returns the lookup in the shape the finalizer
// injects. Unknown models cost 0.
func (p *Pricing) Func(provider string) tap.PricingFunc {
	return func(model string, inputTokens, outputTokens int) float64 {
		return p.Cost(provider, model, inputTokens, outputTokens)
	}
}

func (p *Pricing) lookup(provider, model string) (ModelPrice, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if mp, ok := p.prices[provider+":"+model]; ok {
		return mp, true
	}
	var found ModelPrice
	best := 0
	for _, mp := range p.prices {
		if mp.Provider != provider {
			continue
		}
		if strings.HasPrefix(model, mp.Model) && len(mp.Model) > best {
			best = len(mp.Model)
			found = mp
		}
	}
	return found, best > 0
}

// CostSummary aggregates spend and volume across finalized streams.
type CostSummary struct {
	TotalCost     float64
	TotalTokens   int
	InputTokens   int
	OutputTokens  int
	Streams       int
	Completed     int
	Errored       int
	Abandoned     int
	AvgCostPerReq float64
}

// Tracker accumulates a CostSummary from finalized stream records. Safe for
// concurrent use.
type Tracker struct {
	mu      sync.Mutex
	summary CostSummary
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Observe folds one finalized record into the summary. Nil records, the
// result of a lost finalize race, are ignored.
func (t *Tracker) Observe(rec *tap.Record) {
	if rec == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary.TotalCost += rec.Cost
	t.summary.InputTokens += rec.Usage.InputTokens
	t.summary.OutputTokens += rec.Usage.OutputTokens
	t.summary.TotalTokens += rec.Usage.Total()
	t.summary.Streams++
	switch rec.Outcome {
	case tap.OutcomeCompleted:
		t.summary.Completed++
	case tap.OutcomeErrored:
		t.summary.Errored++
	case tap.OutcomeAbandoned:
		t.summary.Abandoned++
	}
	t.summary.AvgCostPerReq = t.summary.TotalCost / float64(t.summary.Streams)
}

// Summary returns a copy of the current totals.
func (t *Tracker) Summary() CostSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}

// Reset zeroes the totals.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary = CostSummary{}
}
