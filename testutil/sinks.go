package testutil

import "sync"

// CapturingSpan records attribute and status calls. Safe for use across
// goroutines, so one span can serve concurrent stream tests.
type CapturingSpan struct {
	mu        sync.Mutex
	attrs     map[string]any
	ok        bool
	message   string
	statusSet bool
}

// NewCapturingSpan returns an empty capturing span.
func NewCapturingSpan() *CapturingSpan {
	return &CapturingSpan{attrs: make(map[string]any)}
}

// SetAttribute records one attribute.
func (s *CapturingSpan) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[key] = value
}

// SetStatus records the span status.
func (s *CapturingSpan) SetStatus(ok bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ok = ok
	s.message = message
	s.statusSet = true
}

// Attr returns the recorded value for key.
func (s *CapturingSpan) Attr(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.attrs[key]
	return v, found
}

// Status returns the recorded status and whether one was set.
func (s *CapturingSpan) Status() (ok bool, message string, set bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ok, s.message, s.statusSet
}

// Measurement is one recorded metric emission.
type Measurement struct {
	Name  string
	Value float64
	Attrs map[string]any
}

// CapturingRecorder records counter and histogram emissions. Safe for
// concurrent use.
type CapturingRecorder struct {
	mu      sync.Mutex
	adds    []Measurement
	records []Measurement
}

// NewCapturingRecorder returns an empty capturing recorder.
func NewCapturingRecorder() *CapturingRecorder {
	return &CapturingRecorder{}
}

// Add records a counter emission.
func (r *CapturingRecorder) Add(name string, value int64, attrs map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adds = append(r.adds, Measurement{Name: name, Value: float64(value), Attrs: attrs})
}

// Record records a histogram emission.
func (r *CapturingRecorder) Record(name string, value float64, attrs map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Measurement{Name: name, Value: value, Attrs: attrs})
}

// Adds returns counter emissions with the given name, all of them when
// name is empty.
func (r *CapturingRecorder) Adds(name string) []Measurement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filterMeasurements(r.adds, name)
}

// Records returns histogram emissions with the given name, all of them
// when name is empty.
func (r *CapturingRecorder) Records(name string) []Measurement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filterMeasurements(r.records, name)
}

func filterMeasurements(ms []Measurement, name string) []Measurement {
	out := make([]Measurement, 0, len(ms))
	for _, m := range ms {
		if name == "" || m.Name == name {
			out = append(out, m)
		}
	}
	return out
}
