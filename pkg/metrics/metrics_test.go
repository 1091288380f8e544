package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestGatherer_SeesDefaultRegistry(t *testing.T) {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ovhcli_test_gatherer_total",
		Help: "Registered with the default registerer",
	})
	if err := prometheus.DefaultRegisterer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			t.Fatalf("Register() error = %v", err)
		}
		c = are.ExistingCollector.(prometheus.Counter)
	}
	c.Inc()

	var buf bytes.Buffer
	if err := Dump(&buf, Gatherer); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(buf.String(), "ovhcli_test_gatherer_total ") {
		t.Errorf("Dump(Gatherer) missing default registry counter:\n%s", buf.String())
	}
}

func TestDump(t *testing.T) {
	reg := prometheus.NewRegistry()

	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ovhcli_test_hits_total",
		Help: "Test counter",
	}, []string{"store"})
	unused := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ovhcli_test_unused_total",
		Help: "Never incremented",
	}, []string{"store"})
	foreign := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "other_total",
		Help: "Not ours",
	})
	reg.MustRegister(hits, unused, foreign)

	hits.WithLabelValues("file").Add(3)
	foreign.Inc()

	buf := &bytes.Buffer{}
	if err := Dump(buf, reg); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `ovhcli_test_hits_total{store="file"} 3`) {
		t.Errorf("Expected hits sample in output, got %q", output)
	}
	if strings.Contains(output, "ovhcli_test_unused_total") {
		t.Error("Families without samples should be skipped")
	}
	if strings.Contains(output, "other_total") {
		t.Error("Foreign metrics should be skipped")
	}
}
