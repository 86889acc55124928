package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/lookahead/pkg/domain"
)

// Metrics holds the planner's Prometheus collectors.
type Metrics struct {
	Builds        prometheus.Counter
	BuildDuration prometheus.Histogram
	TreeNodes     prometheus.Histogram
	Plans         *prometheus.CounterVec
	PlanGain      *prometheus.GaugeVec
	Steps         *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Builds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lookahead_tree_builds_total",
			Help: "Total number of planning trees built",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lookahead_tree_build_duration_seconds",
			Help:    "Duration of tree construction",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		TreeNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lookahead_tree_nodes",
			Help:    "Number of nodes per planning tree",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		Plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookahead_plans_total",
			Help: "Plan selections by policy and outcome",
		}, []string{"policy", "outcome"}),
		PlanGain: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lookahead_plan_gain",
			Help: "Expected gain of the last selected plan",
		}, []string{"policy"}),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookahead_steps_total",
			Help: "Executed plan steps by agent",
		}, []string{"agent"}),
		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookahead_plan_invalidations_total",
			Help: "Plans abandoned because the world changed",
		}, []string{"agent"}),
	}

	for _, c := range []prometheus.Collector{
		m.Builds, m.BuildDuration, m.TreeNodes, m.Plans, m.PlanGain, m.Steps, m.Invalidations,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuildDone: func(ctx context.Context, e *domain.BuildEvent) {
			m.Builds.Inc()
			m.BuildDuration.Observe(e.Duration.Seconds())
			m.TreeNodes.Observe(float64(e.Nodes))
		},
		OnPlanSelected: func(ctx context.Context, e *domain.PlanEvent) {
			outcome := "found"
			if !e.Found {
				outcome = "none"
			}
			m.Plans.WithLabelValues(e.Policy, outcome).Inc()
			if e.Found {
				m.PlanGain.WithLabelValues(e.Policy).Set(e.Gain)
			}
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.AgentID).Inc()
		},
		OnInvalidate: func(ctx context.Context, e *domain.StepEvent) {
			m.Invalidations.WithLabelValues(e.AgentID).Inc()
		},
	}
}
