package builder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pendingPlans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "server_builder_pending_plans",
		Help: "Number of staged plans waiting for confirmation.",
	})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "server_builder_mutations_total",
		Help: "Mutating platform calls issued, by operation and result.",
	}, []string{"op", "result"})

	applies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "server_builder_applies_total",
		Help: "Plan applications, by result.",
	}, []string{"result"})

	dialogReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "server_builder_dialog_replies_total",
		Help: "Interactive prompts, by outcome.",
	}, []string{"outcome"})
)
