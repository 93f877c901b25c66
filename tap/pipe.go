package tap

import (
	"context"
	"sync"
)

// Pipe adapts a channel-fed stream. Chunks read from the upstream channel
// are forwarded to Chunks untouched while a single internal goroutine
// observes them, so the accumulating state never needs a lock. The pipe
// finalizes when the upstream channel closes, the context ends, or Close
// is called, whichever comes first.
type Pipe[T any] struct {
	out    chan T
	eng    *engine
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	rec    *Record
}

// NewPipe starts forwarding src into the returned pipe. The provider name
// labels telemetry and dec normalizes the chunk type. Cancelling ctx
// releases the pipe and finalizes it as abandoned.
func NewPipe[T any](ctx context.Context, src <-chan T, provider string, dec Decoder, opts ...Option) *Pipe[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	o := newOptions(opts)
	p := &Pipe[T]{
		out:    make(chan T, o.buffer),
		eng:    newEngine(provider, dec, o),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go p.forward(ctx, src)
	return p
}

func (p *Pipe[T]) forward(ctx context.Context, src <-chan T) {
	defer close(p.done)
	defer close(p.out)
	for {
		select {
		case <-ctx.Done():
			p.rec = p.eng.abandon()
			return
		case chunk, ok := <-src:
			if !ok {
				p.rec = p.eng.finish(nil)
				return
			}
			p.eng.observe(chunk)
			select {
			case p.out <- chunk:
			case <-ctx.Done():
				p.rec = p.eng.abandon()
				return
			}
		}
	}
}

// Chunks returns the forwarded stream. It closes when the upstream channel
// closes or the pipe is released.
func (p *Pipe[T]) Chunks() <-chan T { return p.out }

// Close releases the pipe and waits for forwarding to stop. If the stream
// had not ended it finalizes as abandoned. Close is idempotent.
func (p *Pipe[T]) Close() {
	p.once.Do(p.cancel)
	<-p.done
}

// State exposes the accumulated state. It is safe to read once Chunks is
// closed or Close has returned.
func (p *Pipe[T]) State() *State { return p.eng.state }

// Record returns the telemetry record once the pipe has finalized, under
// the same visibility rule as State.
func (p *Pipe[T]) Record() *Record { return p.rec }
