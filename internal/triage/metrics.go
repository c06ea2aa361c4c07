package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	SubmitsTotal        *prometheus.CounterVec
	RunsTotal           *prometheus.CounterVec
	RunDuration         *prometheus.HistogramVec
	ActionsApplied      prometheus.Histogram
	NormalizeTotal      *prometheus.CounterVec
	ResponseSourceTotal *prometheus.CounterVec
	KindSuppressedTotal prometheus.Counter
	LLMTokensIn         prometheus.Counter
	LLMTokensOut        prometheus.Counter
	LLMDuration         prometheus.Histogram
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_submits_total",
			Help: "Total webhook submissions by result.",
		}, []string{"result"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_runs_total",
			Help: "Total triage runs by final status.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinel_run_duration_seconds",
			Help:    "Duration of triage runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~256s
		}, []string{"status"}),
		ActionsApplied: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_actions_applied",
			Help:    "Gateway actions applied per triage run.",
			Buckets: prometheus.LinearBuckets(0, 1, 12), // 0 .. 11
		}),
		NormalizeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_normalize_total",
			Help: "Normalization outcomes by matched grammar.",
		}, []string{"grammar"}),
		ResponseSourceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_question_response_total",
			Help: "Question responses published by source and grounding.",
		}, []string{"source", "grounded"}),
		KindSuppressedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_kind_suppressed_total",
			Help: "Kind labelling suppressed by hostile tone.",
		}),
		LLMTokensIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_llm_tokens_input_total",
			Help: "Total LLM input tokens consumed.",
		}),
		LLMTokensOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_llm_tokens_output_total",
			Help: "Total LLM output tokens consumed.",
		}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_llm_call_duration_seconds",
			Help:    "Duration of model analysis calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s .. ~64s
		}),
	}

	reg.MustRegister(
		m.SubmitsTotal,
		m.RunsTotal,
		m.RunDuration,
		m.ActionsApplied,
		m.NormalizeTotal,
		m.ResponseSourceTotal,
		m.KindSuppressedTotal,
		m.LLMTokensIn,
		m.LLMTokensOut,
		m.LLMDuration,
	)

	return m
}
