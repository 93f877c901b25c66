package tap

// Source is the minimal pull surface a provider stream exposes: Next
// advances, Current returns the chunk, Err reports the transport error
// after Next returns false, Close releases the stream. The official SDK
// stream types satisfy it as-is.
type Source[T any] interface {
	Next() bool
	Current() T
	Err() error
	Close() error
}

// Stream wraps a Source and observes every chunk on its way to the caller.
// It is itself a Source, so consumer loops do not change. Chunks are handed
// through untouched and errors are returned identically, never wrapped.
//
// A Stream is for a single consumer goroutine, like the sources it wraps.
type Stream[T any] struct {
	src  Source[T]
	eng  *engine
	rec  *Record
	done bool
}

// NewStream wraps src so every chunk is observed on its way through. The
// provider name labels telemetry and dec normalizes the provider's chunk
// type; decode failures never interrupt the stream.
func NewStream[T any](src Source[T], provider string, dec Decoder, opts ...Option) *Stream[T] {
	return &Stream[T]{
		src: src,
		eng: newEngine(provider, dec, newOptions(opts)),
	}
}

// Next advances the underlying source. When the source reports the end,
// the stream finalizes once: as errored when Err is non-nil, completed
// otherwise.
func (s *Stream[T]) Next() bool {
	if s.src.Next() {
		s.eng.observe(s.src.Current())
		return true
	}
	if !s.done {
		s.done = true
		s.rec = s.eng.finish(s.src.Err())
	}
	return false
}

// Current returns the source's current chunk unchanged.
func (s *Stream[T]) Current() T { return s.src.Current() }

// Err returns the source's error exactly as the source reports it.
func (s *Stream[T]) Err() error { return s.src.Err() }

// Close releases the underlying source. If the stream has not reached its
// natural end, it finalizes as abandoned. Closing after the end only
// releases the source.
func (s *Stream[T]) Close() error {
	err := s.src.Close()
	if !s.done {
		s.done = true
		s.rec = s.eng.abandon()
	}
	return err
}

// State exposes the accumulated state. Read it from the consumer goroutine.
func (s *Stream[T]) State() *State { return s.eng.state }

// Record returns the telemetry record once the stream has finalized, nil
// before that or when observation is suppressed.
func (s *Stream[T]) Record() *Record { return s.rec }

// ForEach consumes src to completion, invoking fn per chunk, and always
// releases it. A non-nil error from fn stops the loop early and finalizes
// the stream as abandoned; otherwise the source's own error is returned.
func ForEach[T any](src Source[T], provider string, dec Decoder, fn func(T) error, opts ...Option) error {
	s := NewStream(src, provider, dec, opts...)
	defer s.Close()
	for s.Next() {
		if err := fn(s.Current()); err != nil {
			return err
		}
	}
	return s.Err()
}
