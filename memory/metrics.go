package memory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prunedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentmem_memory_pruned_messages_total",
			Help: "Messages dropped to satisfy a memory token budget",
		},
		[]string{"memory"},
	)

	summaries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentmem_memory_summaries_total",
			Help: "Summaries reinserted in place of pruned messages",
		},
		[]string{"memory", "outcome"},
	)
)
