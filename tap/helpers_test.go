package tap

import (
	"fmt"
	"time"
)

// sliceSource replays fixed chunks, then reports err the way SDK streams
// do: Next returns false and Err exposes the failure.
type sliceSource[T any] struct {
	chunks []T
	err    error
	pos    int
	closed bool
}

func (s *sliceSource[T]) Next() bool {
	if s.pos >= len(s.chunks) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource[T]) Current() T { return s.chunks[s.pos-1] }

func (s *sliceSource[T]) Err() error {
	if s.pos >= len(s.chunks) {
		return s.err
	}
	return nil
}

func (s *sliceSource[T]) Close() error {
	s.closed = true
	return nil
}

// deltaDecoder treats each chunk as an already normalized Delta, which lets
// tests state exactly what a chunk carries.
var deltaDecoder = DecoderFunc(func(chunk any) (Delta, error) {
	d, ok := chunk.(Delta)
	if !ok {
		return Delta{}, fmt.Errorf("unexpected chunk type %T", chunk)
	}
	return d, nil
})

// textDecoder maps plain string chunks to text deltas.
var textDecoder = DecoderFunc(func(chunk any) (Delta, error) {
	s, ok := chunk.(string)
	if !ok {
		return Delta{}, fmt.Errorf("unexpected chunk type %T", chunk)
	}
	return Delta{Text: s}, nil
})

type fakeSpan struct {
	attrs     map[string]any
	ok        bool
	message   string
	statusSet bool
}

func newFakeSpan() *fakeSpan { return &fakeSpan{attrs: map[string]any{}} }

func (s *fakeSpan) SetAttribute(key string, value any) { s.attrs[key] = value }

func (s *fakeSpan) SetStatus(ok bool, message string) {
	s.ok = ok
	s.message = message
	s.statusSet = true
}

type panicSpan struct{}

func (panicSpan) SetAttribute(string, any) { panic("span down") }
func (panicSpan) SetStatus(bool, string)   { panic("span down") }

type metricCall struct {
	name  string
	value float64
	attrs map[string]any
}

type fakeRecorder struct {
	adds    []metricCall
	records []metricCall
	panics  bool
}

func (r *fakeRecorder) Add(name string, value int64, attrs map[string]any) {
	if r.panics {
		panic("recorder down")
	}
	r.adds = append(r.adds, metricCall{name: name, value: float64(value), attrs: attrs})
}

func (r *fakeRecorder) Record(name string, value float64, attrs map[string]any) {
	if r.panics {
		panic("recorder down")
	}
	r.records = append(r.records, metricCall{name: name, value: value, attrs: attrs})
}

func (r *fakeRecorder) added(name string) []metricCall {
	var out []metricCall
	for _, c := range r.adds {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (r *fakeRecorder) recorded(name string) []metricCall {
	var out []metricCall
	for _, c := range r.records {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// stubClock hands out scripted times and repeats the last one when the
// script runs out.
type stubClock struct {
	times []time.Time
	pos   int
}

func (c *stubClock) Now() time.Time {
	if c.pos < len(c.times) {
		t := c.times[c.pos]
		c.pos++
		return t
	}
	return c.times[len(c.times)-1]
}
