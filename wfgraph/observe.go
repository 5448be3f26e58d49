package wfgraph

import (
	"context"

	"github.com/wfgraph/sarasvati-go/wfgraph/emit"
)

// observerKey is a private context-key type, following the teacher's
// convention of injecting execution metadata into ctx rather than
// widening every interpreter function's signature.
type observerKey struct{}

// Observer bundles the two forms of additive instrumentation the
// interpreter can emit to: structured events and Prometheus counters.
// Either field may be nil; a nil Observer does nothing at all.
type Observer struct {
	Emitter emit.Emitter
	Metrics *Metrics
}

// WithObserver returns a context carrying obs. Pass the result to
// Start (and it threads through every subsequent interpreter call
// automatically, since they all receive the same ctx).
func WithObserver(ctx context.Context, obs *Observer) context.Context {
	return context.WithValue(ctx, observerKey{}, obs)
}

func observerFrom(ctx context.Context) *Observer {
	obs, _ := ctx.Value(observerKey{}).(*Observer)
	return obs
}

func (o *Observer) emit(event emit.Event) {
	if o == nil || o.Emitter == nil {
		return
	}
	o.Emitter.Emit(event)
}

func observeGuard(ctx context.Context, processID string, nodeID int, decision GuardDecision) {
	obs := observerFrom(ctx)
	if obs == nil {
		return
	}
	obs.Metrics.observeGuard(decision)
	msg := map[GuardVerdict]string{GuardAccept: "guard_accept", GuardDiscard: "guard_discard", GuardSkip: "guard_skip"}[decision.Verdict]
	obs.emit(emit.Event{ProcessID: processID, NodeID: nodeID, Msg: msg})
}

func observeJoin(ctx context.Context, processID string, nodeID int, fired bool) {
	obs := observerFrom(ctx)
	if obs == nil {
		return
	}
	obs.Metrics.observeJoin(fired)
	msg := "join_parked"
	if fired {
		msg = "join_fired"
	}
	obs.emit(emit.Event{ProcessID: processID, NodeID: nodeID, Msg: msg})
}

func observeNodeToken(ctx context.Context, processID string, nodeID int, nodeType string, created bool) {
	obs := observerFrom(ctx)
	if obs == nil {
		return
	}
	if created {
		if obs.Metrics != nil {
			obs.Metrics.nodeTokensCreated.WithLabelValues(nodeType).Inc()
		}
		obs.emit(emit.Event{ProcessID: processID, NodeID: nodeID, Msg: "node_token_created"})
		return
	}
	if obs.Metrics != nil {
		obs.Metrics.nodeTokensCompleted.WithLabelValues(nodeType).Inc()
	}
	obs.emit(emit.Event{ProcessID: processID, NodeID: nodeID, Msg: "node_token_completed"})
}

func observeArcToken(ctx context.Context, processID string, nodeID int, arcLabel string, created bool) {
	obs := observerFrom(ctx)
	if obs == nil {
		return
	}
	if created {
		if obs.Metrics != nil {
			obs.Metrics.arcTokensCreated.WithLabelValues(arcLabel).Inc()
		}
		obs.emit(emit.Event{ProcessID: processID, NodeID: nodeID, Msg: "arc_token_created", Meta: map[string]any{"arc_label": arcLabel}})
		return
	}
	if obs.Metrics != nil {
		obs.Metrics.arcTokensCompleted.WithLabelValues(arcLabel).Inc()
	}
	obs.emit(emit.Event{ProcessID: processID, NodeID: nodeID, Msg: "arc_token_completed", Meta: map[string]any{"arc_label": arcLabel}})
}
