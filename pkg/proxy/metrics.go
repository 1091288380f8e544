package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DryRuns counts mutating calls short-circuited by dry-run mode.
var DryRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ovhcli_dry_run_total",
	Help: "Total mutating calls simulated in dry-run mode",
}, []string{"method"})
