package testutil

import "time"

// ReplaySource replays scripted chunks through the pull source shape.
// After the last chunk, Next reports false and Err returns the injected
// transport error, if any.
type ReplaySource[T any] struct {
	chunks []T
	err    error
	pos    int
	closed bool
}

// NewReplaySource scripts a source over the given chunks.
func NewReplaySource[T any](chunks ...T) *ReplaySource[T] {
	return &ReplaySource[T]{chunks: chunks}
}

// WithErr injects a transport error surfaced after the last chunk.
func (s *ReplaySource[T]) WithErr(err error) *ReplaySource[T] {
	s.err = err
	return s
}

// Next advances to the next scripted chunk.
func (s *ReplaySource[T]) Next() bool {
	if s.closed || s.pos >= len(s.chunks) {
		return false
	}
	s.pos++
	return true
}

// Current returns the chunk Next advanced to.
func (s *ReplaySource[T]) Current() T { return s.chunks[s.pos-1] }

// Err returns the injected transport error once the script is exhausted.
func (s *ReplaySource[T]) Err() error {
	if s.pos >= len(s.chunks) {
		return s.err
	}
	return nil
}

// Close marks the source closed; subsequent Next calls report false.
func (s *ReplaySource[T]) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *ReplaySource[T]) Closed() bool { return s.closed }

// SSELines converts SSE data lines to byte chunks for replay.
func SSELines(lines ...string) [][]byte {
	chunks := make([][]byte, len(lines))
	for i, l := range lines {
		chunks[i] = []byte(l)
	}
	return chunks
}

// SendChunks feeds chunks into ch with an optional gap between sends,
// then closes it. Run it in its own goroutine.
func SendChunks[T any](ch chan<- T, chunks []T, gap time.Duration) {
	defer close(ch)
	for _, c := range chunks {
		if gap > 0 {
			time.Sleep(gap)
		}
		ch <- c
	}
}
