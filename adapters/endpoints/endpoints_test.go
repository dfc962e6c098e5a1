package endpoints_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/artpar/actuate/adapters/endpoints"
	"github.com/artpar/actuate/config"
	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/pkg/hal"
	"github.com/artpar/actuate/ports"
)

var ctx = context.Background()

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return string(data)
}

func TestHealth_Up(t *testing.T) {
	h := endpoints.NewHealth()

	v, err := h.Invoke(ctx, ports.Request{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if v.Kind() != payload.Mapping {
		t.Errorf("Kind = %v, want mapping", v.Kind())
	}
	if got := mustJSON(t, v.Raw()); got != `{"status":"UP"}` {
		t.Errorf("health = %s", got)
	}

	h.AddCheck("config", endpoints.CheckerFunc(func(context.Context) error { return nil }))
	v, _ = h.Invoke(ctx, ports.Request{})
	if got := mustJSON(t, v.Raw()); got != `{"status":"UP","checks":{"config":{"status":"UP"}}}` {
		t.Errorf("health = %s", got)
	}
}

func TestHealth_Down(t *testing.T) {
	h := endpoints.NewHealth()
	h.AddCheck("ok", endpoints.CheckerFunc(func(context.Context) error { return nil }))
	h.AddCheck("db", endpoints.CheckerFunc(func(context.Context) error { return errors.New("refused") }))

	_, err := h.Invoke(ctx, ports.Request{})
	var se *hal.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *hal.StatusError", err)
	}
	if se.Status != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", se.Status)
	}
	if !strings.Contains(se.Error(), "db") {
		t.Errorf("error %q should name the failed check", se.Error())
	}
}

func TestInfo(t *testing.T) {
	values := map[string]any{"version": "1.2.0", "app": "orders"}
	i := endpoints.NewInfo(values)
	values["app"] = "changed"

	v, _ := i.Invoke(ctx, ports.Request{})
	if got := mustJSON(t, v.Entries()); got != `{"app":"orders","version":"1.2.0"}` {
		t.Errorf("info = %s, want keys in order and a private copy", got)
	}

	i.Set(nil)
	v, _ = i.Invoke(ctx, ports.Request{})
	if got := mustJSON(t, v.Entries()); got != `{}` {
		t.Errorf("info after Set(nil) = %s", got)
	}
}

func TestEnv(t *testing.T) {
	env := endpoints.NewEnvFrom(func() []string {
		return []string{"user.home=/home/u", "PATH=/bin", "EMPTY=", "=ignored", "garbage"}
	})

	v, err := env.Invoke(ctx, ports.Request{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := mustJSON(t, v.Entries()); got != `{"EMPTY":"","PATH":"/bin","user.home":"/home/u"}` {
		t.Errorf("env = %s", got)
	}

	item, err := env.Item(ctx, ports.Request{}, "user.home")
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if item.Kind() != payload.Scalar || item.Raw() != "/home/u" {
		t.Errorf("Item = %v (%v), want scalar /home/u", item.Raw(), item.Kind())
	}

	_, err = env.Item(ctx, ports.Request{}, "missing")
	if e := hal.ErrFromError(err); e.Status != http.StatusNotFound {
		t.Errorf("missing item status = %d, want 404", e.Status)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "hits_total", Help: "h"}, []string{"code"})
	temp := prometheus.NewGauge(prometheus.GaugeOpts{Name: "temperature", Help: "t"})
	lat := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "latency_seconds", Help: "l"})
	reg.MustRegister(hits, temp, lat)

	hits.WithLabelValues("200").Add(3)
	temp.Set(21.5)
	lat.Observe(0.5)
	lat.Observe(1.5)

	m := endpoints.NewMetrics(reg)
	v, err := m.Invoke(ctx, ports.Request{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	want := `{"hits_total{code=\"200\"}":3,"latency_seconds_count":2,"latency_seconds_sum":2,"temperature":21.5}`
	if got := mustJSON(t, v.Entries()); got != want {
		t.Errorf("metrics = %s, want %s", got, want)
	}

	item, err := m.Item(ctx, ports.Request{}, "temperature")
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if got := mustJSON(t, item.Entries()); got != `{"temperature":21.5}` {
		t.Errorf("item = %s", got)
	}

	if _, err := m.Item(ctx, ports.Request{}, "nope"); hal.ErrFromError(err).Status != http.StatusNotFound {
		t.Errorf("unknown metric err = %v, want 404", err)
	}
}

func TestTrace_RingBuffer(t *testing.T) {
	tr := endpoints.NewTrace(3)
	for i, p := range []string{"/a", "/b", "/c", "/d"} {
		tr.Record(ports.Exchange{ID: p, Path: p, Status: 200 + i})
	}

	var paths []string
	for _, e := range tr.Recent() {
		paths = append(paths, e.Path)
	}
	if diff := cmp.Diff([]string{"/d", "/c", "/b"}, paths); diff != "" {
		t.Errorf("Recent() mismatch (-want +got):\n%s", diff)
	}

	v, _ := tr.Invoke(ctx, ports.Request{})
	if v.Kind() != payload.Sequence {
		t.Errorf("Kind = %v, want sequence", v.Kind())
	}
	if items := v.Raw().([]any); len(items) != 3 {
		t.Errorf("items = %d, want 3", len(items))
	}
}

func TestTrace_Resize(t *testing.T) {
	tr := endpoints.NewTrace(4)
	for _, p := range []string{"/a", "/b", "/c", "/d"} {
		tr.Record(ports.Exchange{Path: p})
	}

	tr.Resize(2)
	if tr.Capacity() != 2 {
		t.Fatalf("Capacity = %d, want 2", tr.Capacity())
	}
	tr.Record(ports.Exchange{Path: "/e"})

	var paths []string
	for _, e := range tr.Recent() {
		paths = append(paths, e.Path)
	}
	if diff := cmp.Diff([]string{"/e", "/d"}, paths); diff != "" {
		t.Errorf("after shrink (-want +got):\n%s", diff)
	}

	tr.Resize(5)
	tr.Record(ports.Exchange{Path: "/f"})
	paths = paths[:0]
	for _, e := range tr.Recent() {
		paths = append(paths, e.Path)
	}
	if diff := cmp.Diff([]string{"/f", "/e", "/d"}, paths); diff != "" {
		t.Errorf("after grow (-want +got):\n%s", diff)
	}
}

func TestTrace_DefaultCapacity(t *testing.T) {
	if c := endpoints.NewTrace(0).Capacity(); c != endpoints.DefaultTraceCapacity {
		t.Errorf("Capacity = %d, want %d", c, endpoints.DefaultTraceCapacity)
	}
}

func TestMappings(t *testing.T) {
	r := chi.NewRouter()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.Get("/b", noop)
	r.Get("/a", noop)
	r.Post("/a", noop)

	m := endpoints.NewMappings(func() chi.Routes { return r })
	v, err := m.Invoke(ctx, ports.Request{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := `[{"method":"GET","pattern":"/a"},{"method":"POST","pattern":"/a"},{"method":"GET","pattern":"/b"}]`
	if got := mustJSON(t, v.Raw()); got != want {
		t.Errorf("mappings = %s, want %s", got, want)
	}

	empty := endpoints.NewMappings(func() chi.Routes { return nil })
	v, _ = empty.Invoke(ctx, ports.Request{})
	if got := mustJSON(t, v.Raw()); got != `[]` {
		t.Errorf("no router = %s, want []", got)
	}
}

func TestConfigProps(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Port = 8081
	cp := endpoints.NewConfigProps(func() *config.Config { return cfg })

	v, _ := cp.Invoke(ctx, ports.Request{})
	if v.Kind() != payload.Opaque {
		t.Errorf("Kind = %v, want opaque", v.Kind())
	}
	if v.Raw() != cfg {
		t.Error("Raw should be the current config")
	}

	props, outcome := payload.Flatten("configprops", v)
	if outcome != payload.Converted {
		t.Fatalf("outcome = %v, want converted", outcome)
	}
	if keys := props.Keys(); len(keys) == 0 || keys[0] != "server" {
		t.Errorf("keys = %v, want server first", keys)
	}
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "scrapes_total", Help: "Scrapes."})
	reg.MustRegister(c)
	c.Inc()

	p := endpoints.NewPrometheus(reg)

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/prometheus", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "scrapes_total 1") {
		t.Errorf("body = %s", w.Body.String())
	}

	v, err := p.Invoke(ctx, ports.Request{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	text, _ := v.Raw().(string)
	if v.Kind() != payload.Scalar || !strings.Contains(text, "# TYPE scrapes_total counter") {
		t.Errorf("Invoke = %q", text)
	}
}
