package tap

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTextAppends(t *testing.T) {
	st := NewState("openai")
	st.Apply(Delta{Text: "Hel"})
	st.Apply(Delta{})
	st.Apply(Delta{Text: "lo"})

	assert.Equal(t, "Hello", st.Text())
}

func TestStateScalarsLastWriteWins(t *testing.T) {
	st := NewState("openai")
	st.Apply(Delta{ResponseID: "resp-1", ResponseModel: "gpt-4o", FinishReason: ""})
	st.Apply(Delta{ResponseModel: "gpt-4o-2024"})
	st.Apply(Delta{FinishReason: "stop"})
	st.Apply(Delta{})

	assert.Equal(t, "resp-1", st.ResponseID())
	assert.Equal(t, "gpt-4o-2024", st.ResponseModel())
	assert.Equal(t, "stop", st.FinishReason())
}

func TestStateUsageLastWriteWins(t *testing.T) {
	st := NewState("anthropic")
	st.Apply(Delta{Usage: &Usage{InputTokens: 12}})
	st.Apply(Delta{Usage: &Usage{InputTokens: 12, OutputTokens: 40}})

	u := st.Usage()
	require.NotNil(t, u)
	assert.Equal(t, 12, u.InputTokens)
	assert.Equal(t, 40, u.OutputTokens)
	assert.Equal(t, 52, u.Total())

	// The accessor returns a copy; callers cannot reach the accumulator.
	u.OutputTokens = 999
	assert.Equal(t, 40, st.Usage().OutputTokens)
}

func TestStateUsageAbsent(t *testing.T) {
	st := NewState("openai")
	st.Apply(Delta{Text: "hi"})
	assert.Nil(t, st.Usage())
}

func TestStateSampleAdvancesPhase(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &stubClock{times: []time.Time{
		base.Add(10 * time.Millisecond),
		base.Add(30 * time.Millisecond),
	}}
	st := NewState("openai")
	st.startTime = base
	st.now = clock.Now

	assert.Equal(t, PhaseInit, st.Phase())
	st.Sample()
	assert.Equal(t, PhaseStreaming, st.Phase())
	st.Sample()

	stamps := st.Timestamps()
	require.Len(t, stamps, 2)
	assert.Equal(t, base.Add(10*time.Millisecond), stamps[0])
	assert.Equal(t, base.Add(30*time.Millisecond), stamps[1])
	assert.Equal(t, 2, st.Chunks())
}

func TestStateBeginFinalizeExactlyOnce(t *testing.T) {
	st := NewState("openai")
	st.Sample()

	require.True(t, st.BeginFinalize(PhaseFinalized))
	assert.True(t, st.Finalized())
	assert.Equal(t, PhaseFinalized, st.Phase())

	// A second finalize loses and must not move the phase.
	require.False(t, st.BeginFinalize(PhaseAbandoned))
	assert.Equal(t, PhaseFinalized, st.Phase())
}

func TestStateTransportErr(t *testing.T) {
	boom := errors.New("connection reset")
	st := NewState("openai")
	st.Apply(Delta{Text: "partial"})
	st.Apply(Delta{Err: boom})

	assert.Equal(t, boom, st.TransportErr())
	assert.Equal(t, "partial", st.Text())
}

func TestStateDecodeErrors(t *testing.T) {
	st := NewState("openai")
	st.CountDecodeError()
	st.CountDecodeError()
	assert.Equal(t, 2, st.DecodeErrors())
}

func TestStateIdentity(t *testing.T) {
	a := NewState("openai")
	b := NewState("openai")
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "openai", a.Provider())
	assert.False(t, a.StartTime().IsZero())
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		PhaseInit:           "init",
		PhaseStreaming:      "streaming",
		PhaseFinalized:      "finalized",
		PhaseFinalizedError: "finalized_error",
		PhaseAbandoned:      "abandoned",
		Phase(42):           "unknown",
	}
	for phase, want := range cases {
		assert.Equal(t, want, phase.String())
	}

	assert.False(t, PhaseInit.Terminal())
	assert.False(t, PhaseStreaming.Terminal())
	assert.True(t, PhaseFinalized.Terminal())
	assert.True(t, PhaseFinalizedError.Terminal())
	assert.True(t, PhaseAbandoned.Terminal())
}

func TestDeltaIsZero(t *testing.T) {
	assert.True(t, Delta{}.IsZero())
	assert.False(t, Delta{Text: "x"}.IsZero())
	assert.False(t, Delta{Usage: &Usage{}}.IsZero())
	assert.False(t, Delta{Err: errors.New("x")}.IsZero())
	assert.False(t, Delta{ToolCalls: []ToolCallDelta{{Index: 0}}}.IsZero())
}
