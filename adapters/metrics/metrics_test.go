package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/artpar/actuate/adapters/metrics"
	"github.com/artpar/actuate/domain/payload"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.EnhancedTotal == nil {
		t.Error("EnhancedTotal is nil")
	}
	if m.ConfigReloads == nil {
		t.Error("ConfigReloads is nil")
	}
}

func TestEnhanceObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.EnhanceSucceeded("trace", payload.Nested)
	m.EnhanceSucceeded("trace", payload.Nested)
	m.EnhanceSucceeded("env", payload.Fallback)
	m.EnhanceFailed("")

	if got := testutil.ToFloat64(m.EnhancedTotal.WithLabelValues("trace", "nested")); got != 2 {
		t.Errorf("enhanced{trace,nested} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.EnhancedTotal.WithLabelValues("env", "fallback")); got != 1 {
		t.Errorf("enhanced{env,fallback} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.EnhanceErrorsTotal.WithLabelValues("unknown")); got != 1 {
		t.Errorf("enhance_errors{unknown} = %v, want 1", got)
	}
}

func TestRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RequestsTotal.WithLabelValues("GET", "health", "2xx").Inc()
	m.RequestsTotal.WithLabelValues("GET", "env", "4xx").Add(5)

	if n := testutil.CollectAndCount(m.RequestsTotal, "actuate_requests_total"); n != 2 {
		t.Errorf("series = %d, want 2", n)
	}
}

func TestConfigReloaded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	at := time.Unix(1700000000, 0)

	m.ConfigReloaded(nil, at)
	m.ConfigReloaded(errors.New("bad yaml"), at.Add(time.Minute))

	if got := testutil.ToFloat64(m.ConfigReloads); got != 1 {
		t.Errorf("reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ConfigReloadErrors); got != 1 {
		t.Errorf("reload errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ConfigLastReload); got != 1700000000 {
		t.Errorf("last reload = %v, want 1700000000", got)
	}
}

func TestNewRegistry_IncludesRuntimeCollectors(t *testing.T) {
	reg := metrics.NewRegistry()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "go_goroutines" {
			found = true
		}
	}
	if !found {
		t.Error("go_goroutines not gathered")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewWithRegistry(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	metrics.NewWithRegistry(reg)
}
