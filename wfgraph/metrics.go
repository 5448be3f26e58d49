package wfgraph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus-compatible counters for interpreter
// activity, namespaced "sarasvati_". It has no effect on control flow;
// attach it to an Observer and put the Observer on ctx with
// WithObserver before calling Start.
type Metrics struct {
	nodeTokensCreated   *prometheus.CounterVec
	nodeTokensCompleted *prometheus.CounterVec
	arcTokensCreated    *prometheus.CounterVec
	arcTokensCompleted  *prometheus.CounterVec
	guardVerdicts       *prometheus.CounterVec
	joinOutcomes        *prometheus.CounterVec
	// transactionBoundary is registered but nothing in this package
	// increments it: the interpreter never calls TransactionBoundary.
	transactionBoundary prometheus.Counter
}

// NewMetrics creates and registers the interpreter's metrics with
// registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		nodeTokensCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sarasvati_node_tokens_created_total",
			Help: "Node-tokens created, labeled by node type.",
		}, []string{"node_type"}),
		nodeTokensCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sarasvati_node_tokens_completed_total",
			Help: "Node-tokens completed, labeled by node type.",
		}, []string{"node_type"}),
		arcTokensCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sarasvati_arc_tokens_created_total",
			Help: "Arc-tokens created, labeled by arc label.",
		}, []string{"arc_label"}),
		arcTokensCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sarasvati_arc_tokens_completed_total",
			Help: "Arc-tokens completed, labeled by arc label.",
		}, []string{"arc_label"}),
		guardVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sarasvati_guard_verdicts_total",
			Help: "Guard verdicts, labeled by verdict (accept/discard/skip).",
		}, []string{"verdict"}),
		joinOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sarasvati_join_outcomes_total",
			Help: "Join evaluations, labeled by outcome (fired/parked).",
		}, []string{"outcome"}),
		transactionBoundary: factory.NewCounter(prometheus.CounterOpts{
			Name: "sarasvati_transaction_boundaries_total",
			Help: "TransactionBoundary calls observed across all processes.",
		}),
	}
}

func (m *Metrics) observeGuard(decision GuardDecision) {
	if m == nil {
		return
	}
	switch decision.Verdict {
	case GuardAccept:
		m.guardVerdicts.WithLabelValues("accept").Inc()
	case GuardDiscard:
		m.guardVerdicts.WithLabelValues("discard").Inc()
	case GuardSkip:
		m.guardVerdicts.WithLabelValues("skip").Inc()
	}
}

func (m *Metrics) observeJoin(fired bool) {
	if m == nil {
		return
	}
	if fired {
		m.joinOutcomes.WithLabelValues("fired").Inc()
		return
	}
	m.joinOutcomes.WithLabelValues("parked").Inc()
}
