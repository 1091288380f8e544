// Package metrics exposes the Prometheus registry shared by the CLI.
// Collectors are defined in their own packages (cache, proxy, client) via
// promauto; this package only documents and dumps them.
package metrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Prefix is shared by every metric the CLI defines.
const Prefix = "ovhcli_"

// Gatherer collects the CLI's metrics. promauto registers every collector
// with the default registry, so this is its gatherer side.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Dump writes the CLI's metric families in text exposition format.
// Runtime collectors registered by client_golang are skipped.
func Dump(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range Filter(families, Prefix) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Filter keeps families whose name starts with prefix and that carry at
// least one sample.
func Filter(families []*dto.MetricFamily, prefix string) []*dto.MetricFamily {
	var out []*dto.MetricFamily
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), prefix) || len(mf.GetMetric()) == 0 {
			continue
		}
		out = append(out, mf)
	}
	return out
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - ovhcli_cache_hits_total{store} (Counter): Cache hits by store (file, redis)
//   - ovhcli_cache_misses_total (Counter): Cache misses (absent, expired, empty)
//   - ovhcli_cache_size_bytes{store} (Gauge): Bytes written during this process
//   - ovhcli_cache_invalidations_total{reason} (Counter): Entries removed (mutation, uncacheable)
//   - ovhcli_cache_errors_total{operation} (Counter): Store failures (get, set, delete, clear)
//
// Proxy Metrics (pkg/proxy):
//   - ovhcli_dry_run_total{method} (Counter): Mutating calls simulated
//
// Request Metrics (pkg/client):
//   - ovhcli_requests_total{method, status} (Counter): API requests by method and status
//   - ovhcli_request_duration_seconds{method} (Histogram): Request duration
//   - ovhcli_errors_total{class} (Counter): Errors by class (client, server, network)
//
// The CLI is short-lived, so metrics are dumped once on exit with --metrics
// instead of being scraped.
