package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/regality/formchat/pkg/domain"
)

// Metrics holds the dialogue counters.
type Metrics struct {
	Prompts     *prometheus.CounterVec
	Answers     *prometheus.CounterVec
	Submissions prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Prompts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formchat_prompts_total",
				Help: "Total number of questions asked, including re-asks",
			},
			[]string{"field"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formchat_answers_total",
				Help: "Total number of answers recorded",
			},
			[]string{"field"},
		),
		Submissions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "formchat_submissions_total",
				Help: "Total number of completed forms",
			},
		),
	}
	reg.MustRegister(m.Prompts, m.Answers, m.Submissions)
	return m
}

// Hooks returns lifecycle hooks that update the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPrompt: func(ctx context.Context, e *domain.FieldEvent) {
			m.Prompts.WithLabelValues(e.Field).Inc()
		},
		OnAnswer: func(ctx context.Context, e *domain.FieldEvent) {
			m.Answers.WithLabelValues(e.Field).Inc()
		},
		OnFinish: func(ctx context.Context, e *domain.FinishEvent) {
			m.Submissions.Inc()
		},
	}
}
