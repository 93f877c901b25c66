// Benchmarks for the hot paths: per-chunk decode and observation, full
// stream lifecycles, finalization, and the supporting lookups.
//
// Run with:
//
//	go test -bench=. -benchmem ./tests/benchmark/...
//	go test -bench=BenchmarkStream -benchmem ./tests/benchmark/...
package benchmark

import (
	"testing"

	"go.uber.org/zap"

	"github.com/BaSui01/streamtap/decode"
	"github.com/BaSui01/streamtap/observability"
	"github.com/BaSui01/streamtap/tap"
	"github.com/BaSui01/streamtap/testutil"
	"github.com/BaSui01/streamtap/tokenizer"
)

var textChunk = []byte(`data: {"id":"chatcmpl-bench","model":"gpt-4o-mini","choices":[{"delta":{"content":"The quick brown fox jumps over the lazy dog. "}}]}`)

var toolCallChunk = []byte(`data: {"id":"chatcmpl-bench","model":"gpt-4o-mini","choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_bench","type":"function","function":{"name":"get_weather","arguments":"{\"city\":\"NYC\"}"}}]}}]}`)

// textSession builds an n-chunk content session plus the finish chunk and
// done sentinel.
func textSession(n int) [][]byte {
	chunks := make([][]byte, 0, n+2)
	for i := 0; i < n; i++ {
		chunks = append(chunks, textChunk)
	}
	chunks = append(chunks,
		[]byte(`data: {"id":"chatcmpl-bench","model":"gpt-4o-mini","choices":[{"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":120,"completion_tokens":480}}`),
		[]byte(`data: [DONE]`))
	return chunks
}

func BenchmarkOpenAIDecode_Text(b *testing.B) {
	dec := decode.OpenAI()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := dec.Decode(textChunk); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkOpenAIDecode_ToolCall(b *testing.B) {
	dec := decode.OpenAI()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := dec.Decode(toolCallChunk); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnthropicDecode_TextDelta(b *testing.B) {
	dec := decode.Anthropic()
	chunk := []byte(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"The quick brown fox. "}}`)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := dec.Decode(chunk); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStateApply_Text(b *testing.B) {
	st := tap.NewState("openai")
	delta := tap.Delta{Text: "The quick brown fox jumps over the lazy dog. "}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		st.Sample()
		st.Apply(delta)
	}
}

func BenchmarkStateApply_ToolCallFragment(b *testing.B) {
	st := tap.NewState("openai")
	st.Apply(tap.Delta{ToolCalls: []tap.ToolCallDelta{
		{Index: 0, ID: "call_bench", Name: "get_weather"},
	}})
	frag := tap.Delta{ToolCalls: []tap.ToolCallDelta{
		{Index: 0, Arguments: `{"city":`},
	}}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		st.Apply(frag)
	}
}

// BenchmarkStream_TextSession measures a full lifecycle: wrap, drain 64
// content chunks, finalize.
func BenchmarkStream_TextSession(b *testing.B) {
	chunks := textSession(64)
	logger := zap.NewNop()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		s := tap.NewStream[[]byte](testutil.NewReplaySource(chunks...), "openai", decode.OpenAI(),
			tap.WithLogger(logger))
		for s.Next() {
		}
		if s.Record() == nil {
			b.Fatal("stream did not finalize")
		}
	}
}

// BenchmarkStream_Suppressed measures the same lifecycle with observation
// switched off, the pass-through floor.
func BenchmarkStream_Suppressed(b *testing.B) {
	chunks := textSession(64)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		s := tap.NewStream[[]byte](testutil.NewReplaySource(chunks...), "openai", decode.OpenAI(),
			tap.WithSuppressed(true))
		for s.Next() {
		}
	}
}

// BenchmarkStream_WithSinks adds a span, a recorder, and pricing, the full
// telemetry path.
func BenchmarkStream_WithSinks(b *testing.B) {
	chunks := textSession(64)
	pricing := observability.NewPricing()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		s := tap.NewStream[[]byte](testutil.NewReplaySource(chunks...), "openai", decode.OpenAI(),
			tap.WithSpan(testutil.NewCapturingSpan()),
			tap.WithMetrics(testutil.NewCapturingRecorder()),
			tap.WithPricing(pricing.Func("openai")),
		)
		for s.Next() {
		}
		if s.Record().Cost == 0 {
			b.Fatal("pricing did not apply")
		}
	}
}

// BenchmarkFinalize measures session accounting alone: fold four deltas
// into a state and finalize it.
func BenchmarkFinalize(b *testing.B) {
	fin := tap.NewFinalizer()
	usage := &tap.Usage{InputTokens: 120, OutputTokens: 480}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		st := tap.NewState("openai")
		for j := 0; j < 3; j++ {
			st.Sample()
			st.Apply(tap.Delta{Text: "some streamed text "})
		}
		st.Sample()
		st.Apply(tap.Delta{Usage: usage, FinishReason: "stop", ResponseModel: "gpt-4o-mini"})
		if fin.Run(st, tap.OutcomeCompleted, nil) == nil {
			b.Fatal("finalize did not run")
		}
	}
}

func BenchmarkPricingCost(b *testing.B) {
	pricing := observability.NewPricing()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if pricing.Cost("openai", "gpt-4o-mini", 120, 480) == 0 {
			b.Fatal("unexpected zero cost")
		}
	}
}

func BenchmarkHeuristicCount(b *testing.B) {
	h := tokenizer.NewHeuristic()
	text := "The quick brown fox jumps over the lazy dog. 高性能分布式系统设计。"

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if h.Count(text) == 0 {
			b.Fatal("unexpected zero count")
		}
	}
}

// BenchmarkConcurrentStreams runs independent streams in parallel against
// one shared recorder.
func BenchmarkConcurrentStreams(b *testing.B) {
	chunks := textSession(16)
	recorder := testutil.NewCapturingRecorder()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s := tap.NewStream[[]byte](testutil.NewReplaySource(chunks...), "openai", decode.OpenAI(),
				tap.WithMetrics(recorder))
			for s.Next() {
			}
		}
	})
}

// BenchmarkPipeForward measures channel forwarding with observation, 16
// chunks per op.
func BenchmarkPipeForward(b *testing.B) {
	chunks := textSession(16)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		ch := make(chan []byte, len(chunks))
		for _, c := range chunks {
			ch <- c
		}
		close(ch)

		p := tap.NewPipe[[]byte](nil, ch, "openai", decode.OpenAI())
		for range p.Chunks() {
		}
		p.Close()
		if p.Record() == nil {
			b.Fatal("pipe did not finalize")
		}
	}
}
