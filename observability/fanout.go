package observability

import "github.com/BaSui01/streamtap/tap"

// Fanout duplicates every measurement across the given recorders, so one
// stream can feed Prometheus and OTLP at the same time. Nil recorders
// are skipped.
func Fanout(recorders ...tap.MetricsRecorder) tap.MetricsRecorder {
	kept := make(fanoutRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return kept
}

type fanoutRecorder []tap.MetricsRecorder

func (f fanoutRecorder) Add(name string, value int64, attrs map[string]any) {
	for _, r := range f {
		r.Add(name, value, attrs)
	}
}

func (f fanoutRecorder) Record(name string, value float64, attrs map[string]any) {
	for _, r := range f {
		r.Record(name, value, attrs)
	}
}
