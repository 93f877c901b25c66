package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/streamtap/tap"
)

func TestOllamaContentChunk(t *testing.T) {
	d := Ollama()
	got, err := d.Decode(`{"model":"llama3.2","created_at":"2026-03-01T10:00:00Z","message":{"role":"assistant","content":"Hi"},"done":false}`)
	require.NoError(t, err)

	assert.Equal(t, "Hi", got.Text)
	assert.Equal(t, "llama3.2", got.ResponseModel)
	assert.Nil(t, got.Usage)
	assert.Empty(t, got.FinishReason)
}

func TestOllamaDoneChunk(t *testing.T) {
	d := Ollama()
	got, err := d.Decode(`{"model":"llama3.2","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","total_duration":4935886791,"prompt_eval_count":26,"eval_count":298}`)
	require.NoError(t, err)

	assert.Equal(t, "stop", got.FinishReason)
	require.NotNil(t, got.Usage)
	assert.Equal(t, 26, got.Usage.InputTokens)
	assert.Equal(t, 298, got.Usage.OutputTokens)
}

func TestOllamaDoneWithoutReasonDefaultsToStop(t *testing.T) {
	d := Ollama()
	got, err := d.Decode(`{"model":"llama3.2","message":{"role":"assistant","content":""},"done":true,"prompt_eval_count":5,"eval_count":9}`)
	require.NoError(t, err)
	assert.Equal(t, "stop", got.FinishReason)
}

func TestOllamaToolCallsGetSyntheticIDs(t *testing.T) {
	d := Ollama()

	got, err := d.Decode(`{"model":"llama3.2","message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"get_weather","arguments":{"city":"NYC"}}}]},"done":false}`)
	require.NoError(t, err)
	require.Len(t, got.ToolCalls, 1)
	assert.Equal(t, 0, got.ToolCalls[0].Index)
	assert.Equal(t, "ollama-call-0", got.ToolCalls[0].ID)
	assert.Equal(t, "get_weather", got.ToolCalls[0].Name)
	assert.Equal(t, `{"city":"NYC"}`, got.ToolCalls[0].Arguments)

	// A later chunk's call continues the numbering instead of colliding.
	got, err = d.Decode(`{"model":"llama3.2","message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"get_time","arguments":{"tz":"EST"}}}]},"done":false}`)
	require.NoError(t, err)
	require.Len(t, got.ToolCalls, 1)
	assert.Equal(t, 1, got.ToolCalls[0].Index)
	assert.Equal(t, "ollama-call-1", got.ToolCalls[0].ID)
}

func TestOllamaErrorChunk(t *testing.T) {
	d := Ollama()
	got, err := d.Decode(`{"error":"model \"missing\" not found"}`)
	require.NoError(t, err)

	var se *StreamError
	require.ErrorAs(t, got.Err, &se)
	assert.Equal(t, ProviderOllama, se.Provider)
	assert.Equal(t, `model "missing" not found`, se.Message)
}

func TestOllamaStreamEndToEnd(t *testing.T) {
	lines := []string{
		`{"model":"llama3.2","message":{"role":"assistant","content":"Hel"},"done":false}`,
		`{"model":"llama3.2","message":{"role":"assistant","content":"lo"},"done":false}`,
		`{"model":"llama3.2","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","prompt_eval_count":12,"eval_count":2}`,
	}
	src := &replay[string]{chunks: lines}
	s := tap.NewStream[string](src, ProviderOllama, Ollama())

	for s.Next() {
	}
	require.NoError(t, s.Err())

	rec := s.Record()
	require.NotNil(t, rec)
	assert.Equal(t, "Hello", rec.Text)
	assert.Equal(t, "llama3.2", rec.Model)
	assert.Equal(t, tap.Usage{InputTokens: 12, OutputTokens: 2}, rec.Usage)
	assert.Equal(t, tap.OutcomeCompleted, rec.Outcome)
}
