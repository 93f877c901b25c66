package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BaSui01/streamtap/tap"
)

// PromRecorder implements tap.MetricsRecorder on Prometheus collectors
// registered in the default registry. Stream counters carry provider,
// model, and outcome labels; token counters carry provider, model, and
// token type.
type PromRecorder struct {
	requests *prometheus.CounterVec
	tokens   *prometheus.CounterVec
	chunks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cost     *prometheus.HistogramVec
	ttft     *prometheus.HistogramVec
	tbt      *prometheus.HistogramVec
}

// NewPromRecorder registers the stream collectors under the namespace.
// Registering the same namespace twice panics, as promauto always does.
func NewPromRecorder(namespace string) *PromRecorder {
	streamLabels := []string{"provider", "model", "outcome"}

	return &PromRecorder{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_streams_total",
			Help:      "Total number of finalized LLM streams",
		}, streamLabels),
		tokens: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Total tokens consumed by LLM streams",
		}, []string{"provider", "model", "type"}),
		chunks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_stream_chunks_total",
			Help:      "Total chunks observed across LLM streams",
		}, streamLabels),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_stream_duration_seconds",
			Help:      "Wall time of LLM streams in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, streamLabels),
		cost: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_stream_cost_usd",
			Help:      "Cost per finalized LLM stream in USD",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, streamLabels),
		ttft: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_stream_ttft_milliseconds",
			Help:      "Time to first token in milliseconds",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, streamLabels),
		tbt: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_stream_tbt_milliseconds",
			Help:      "Mean gap between chunks in milliseconds",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}, streamLabels),
	}
}

// Add routes counter increments to the matching collector. Names outside
// the stream set are dropped.
func (r *PromRecorder) Add(name string, value int64, attrs map[string]any) {
	provider, model, outcome := streamLabelValues(attrs)
	switch name {
	case tap.MetricRequests:
		r.requests.WithLabelValues(provider, model, outcome).Add(float64(value))
	case tap.MetricChunks:
		r.chunks.WithLabelValues(provider, model, outcome).Add(float64(value))
	case tap.MetricTokens:
		typ, _ := attrs["type"].(string)
		r.tokens.WithLabelValues(provider, model, typ).Add(float64(value))
	}
}

// Record routes histogram observations to the matching collector.
func (r *PromRecorder) Record(name string, value float64, attrs map[string]any) {
	provider, model, outcome := streamLabelValues(attrs)
	switch name {
	case tap.MetricDuration:
		r.duration.WithLabelValues(provider, model, outcome).Observe(value)
	case tap.MetricCost:
		r.cost.WithLabelValues(provider, model, outcome).Observe(value)
	case tap.MetricTTFT:
		r.ttft.WithLabelValues(provider, model, outcome).Observe(value)
	case tap.MetricTBT:
		r.tbt.WithLabelValues(provider, model, outcome).Observe(value)
	}
}

func streamLabelValues(attrs map[string]any) (provider, model, outcome string) {
	provider, _ = attrs[tap.AttrProvider].(string)
	model, _ = attrs[tap.AttrModel].(string)
	outcome, _ = attrs[tap.AttrOutcome].(string)
	return provider, model, outcome
}
