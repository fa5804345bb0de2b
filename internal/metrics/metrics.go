package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MutationsTotal counts ledger mutations by operation and outcome. Outcome
// is "ok" or the error kind.
var MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stock_mutations_total",
	Help: "Stock ledger mutations by operation and outcome.",
}, []string{"op", "outcome"})
