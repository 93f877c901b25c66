package tap

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Phase identifies where a stream is in its lifecycle.
type Phase int

const (
	// PhaseInit means the stream is wrapped but no chunk has arrived yet.
	PhaseInit Phase = iota
	// PhaseStreaming means at least one chunk has been observed.
	PhaseStreaming
	// PhaseFinalized means the stream ended normally and telemetry was emitted.
	PhaseFinalized
	// PhaseFinalizedError means the stream ended with a transport error.
	PhaseFinalizedError
	// PhaseAbandoned means the consumer released the stream before it ended.
	PhaseAbandoned
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseStreaming:
		return "streaming"
	case PhaseFinalized:
		return "finalized"
	case PhaseFinalizedError:
		return "finalized_error"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase is one of the three end states.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseFinalized, PhaseFinalizedError, PhaseAbandoned:
		return true
	}
	return false
}

// State accumulates everything observed from one stream: text, tool calls,
// usage, identity fields, and per-chunk arrival times. It belongs to a
// single consumer goroutine and is deliberately unsynchronized.
type State struct {
	id       string
	provider string

	text      strings.Builder
	toolCalls []*toolCallBuffer

	usage         *Usage
	finishReason  string
	responseID    string
	responseModel string

	startTime  time.Time
	timestamps []time.Time

	decodeErrs   int
	transportErr error

	phase     Phase
	finalized bool

	now func() time.Time
}

// NewState creates a fresh accumulation state for one stream.
func NewState(provider string) *State {
	return &State{
		id:        uuid.NewString(),
		provider:  provider,
		startTime: time.Now(),
		phase:     PhaseInit,
		now:       time.Now,
	}
}

// Sample records the arrival of one chunk. Call it once per chunk, before
// decoding, so timing covers undecodable chunks too.
func (s *State) Sample() {
	if s.phase == PhaseInit {
		s.phase = PhaseStreaming
	}
	s.timestamps = append(s.timestamps, s.now())
}

// Apply folds one decoded delta into the state. Text appends, tool call
// fragments feed their index buffers, usage and the scalar identity fields
// are last-write-wins for non-empty values.
func (s *State) Apply(d Delta) {
	if d.Text != "" {
		s.text.WriteString(d.Text)
	}
	for _, tc := range d.ToolCalls {
		s.applyToolCall(tc)
	}
	if d.Usage != nil {
		u := *d.Usage
		s.usage = &u
	}
	if d.FinishReason != "" {
		s.finishReason = d.FinishReason
	}
	if d.ResponseID != "" {
		s.responseID = d.ResponseID
	}
	if d.ResponseModel != "" {
		s.responseModel = d.ResponseModel
	}
	if d.Err != nil {
		s.transportErr = d.Err
	}
}

// CountDecodeError notes one chunk that could not be decoded. The chunk was
// still delivered and still has a timestamp; only its content is lost.
func (s *State) CountDecodeError() {
	s.decodeErrs++
}

// BeginFinalize flips the exactly-once flag and moves the state to its
// terminal phase. It returns false when the stream was already finalized,
// in which case the phase is left untouched.
func (s *State) BeginFinalize(p Phase) bool {
	if s.finalized {
		return false
	}
	s.finalized = true
	s.phase = p
	return true
}

// ID returns the generated stream identifier.
func (s *State) ID() string { return s.id }

// Provider returns the provider name the stream was labeled with.
func (s *State) Provider() string { return s.provider }

// Text returns the accumulated response text.
func (s *State) Text() string { return s.text.String() }

// Usage returns a copy of the last reported usage, or nil if no chunk
// carried one.
func (s *State) Usage() *Usage {
	if s.usage == nil {
		return nil
	}
	u := *s.usage
	return &u
}

// FinishReason returns the last non-empty finish reason.
func (s *State) FinishReason() string { return s.finishReason }

// ResponseID returns the last non-empty provider response id.
func (s *State) ResponseID() string { return s.responseID }

// ResponseModel returns the last non-empty model name the provider echoed.
func (s *State) ResponseModel() string { return s.responseModel }

// Chunks returns the number of chunks observed so far.
func (s *State) Chunks() int { return len(s.timestamps) }

// DecodeErrors returns the number of chunks that failed to decode.
func (s *State) DecodeErrors() int { return s.decodeErrs }

// TransportErr returns the in-band transport error, if any chunk carried one.
func (s *State) TransportErr() error { return s.transportErr }

// StartTime returns the moment the stream was wrapped.
func (s *State) StartTime() time.Time { return s.startTime }

// Timestamps returns a copy of the per-chunk arrival times.
func (s *State) Timestamps() []time.Time {
	out := make([]time.Time, len(s.timestamps))
	copy(out, s.timestamps)
	return out
}

// Phase returns the current lifecycle phase.
func (s *State) Phase() Phase { return s.phase }

// Finalized reports whether telemetry emission has started for this stream.
func (s *State) Finalized() bool { return s.finalized }

// Timing derives latency figures from the samples recorded so far.
func (s *State) Timing() Timing {
	return computeTiming(s.startTime, s.timestamps)
}
