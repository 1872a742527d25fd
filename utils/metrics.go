package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Moderation counters. GateFailures in particular is the review trail for
// the fail-open policy: every write that skipped screening shows up here.
var (
	ModerationBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haven_moderation_blocked_total",
		Help: "Submissions rejected by the moderation gate.",
	})
	ModerationGateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haven_moderation_gate_failures_total",
		Help: "Classifier calls that failed and were allowed through (fail-open).",
	})
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haven_posts_created_total",
		Help: "Posts persisted after passing the moderation gate.",
	})
)
