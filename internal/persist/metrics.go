package persist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Save outcomes recorded on savesTotal.
const (
	outcomeSent      = "sent"
	outcomePending   = "suppressed_pending"
	outcomeEmpty     = "skipped_empty"
	outcomeFailed    = "failed"
	outcomeCanceled  = "canceled"
	outcomeCoalesced = "coalesced"
)

var (
	// savesScheduled counts every Schedule call, coalesced or not.
	savesScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripboard_saves_scheduled_total",
		Help: "Total debounced save requests",
	})

	// savesTotal counts scheduled saves by how they ended.
	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripboard_saves_total",
		Help: "Debounced saves by outcome",
	}, []string{"outcome"})

	// saveAttempts counts individual write attempts, including retries.
	saveAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripboard_save_attempts_total",
		Help: "Partial-update write attempts including retries",
	})
)
