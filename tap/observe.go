package tap

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// engine drives observation and finalization for one stream. Both the pull
// wrapper and the channel pipe delegate here so the two transports share
// one set of semantics. An engine belongs to a single goroutine.
type engine struct {
	state      *State
	dec        Decoder
	fin        *Finalizer
	logger     *zap.Logger
	decodeLog  *rate.Limiter
	suppressed bool
}

func newEngine(provider string, dec Decoder, o *options) *engine {
	st := NewState(provider)
	st.startTime = o.start
	if st.startTime.IsZero() {
		st.startTime = o.now()
	}
	st.now = o.now
	e := &engine{
		state:      st,
		dec:        dec,
		fin:        newFinalizer(o),
		logger:     o.logger,
		decodeLog:  rate.NewLimiter(rate.Every(time.Second), 5),
		suppressed: o.suppressed,
	}
	if !e.suppressed {
		e.logger.Debug("stream opened",
			zap.String("stream_id", st.ID()),
			zap.String("provider", provider))
	}
	return e
}

// observe samples and decodes one chunk. A decode failure, including a
// decoder panic, is counted and logged at a capped rate; the chunk has
// already been delivered so the stream keeps going.
func (e *engine) observe(chunk any) {
	if e.suppressed {
		return
	}
	e.state.Sample()
	d, err := e.decode(chunk)
	if err != nil {
		e.state.CountDecodeError()
		if e.decodeLog.Allow() {
			e.logger.Warn("chunk decode failed",
				zap.String("stream_id", e.state.ID()),
				zap.String("provider", e.state.Provider()),
				zap.Int("chunk", e.state.Chunks()),
				zap.Error(err))
		}
		return
	}
	e.state.Apply(d)
}

func (e *engine) decode(chunk any) (d Delta, err error) {
	if e.dec == nil {
		return Delta{}, ErrNoDecoder
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return e.dec.Decode(chunk)
}

// finish runs terminal finalization for a naturally ended stream. streamErr
// is the transport error reported by the source; when it is nil an in-band
// error recorded by a delta still makes the outcome errored.
func (e *engine) finish(streamErr error) *Record {
	if e.suppressed {
		return nil
	}
	err := streamErr
	if err == nil {
		err = e.state.TransportErr()
	}
	if err != nil {
		return e.fin.Run(e.state, OutcomeErrored, err)
	}
	return e.fin.Run(e.state, OutcomeCompleted, nil)
}

// abandon finalizes a stream the consumer released before its natural end.
func (e *engine) abandon() *Record {
	if e.suppressed {
		return nil
	}
	return e.fin.Run(e.state, OutcomeAbandoned, nil)
}
