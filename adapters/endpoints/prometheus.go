package endpoints

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/ports"
)

// Prometheus serves the text exposition format. Over HTTP it is a plain
// handler and is never wrapped in a resource.
type Prometheus struct {
	gatherer prometheus.Gatherer
	handler  http.Handler
}

// NewPrometheus creates the scrape endpoint over gatherer.
func NewPrometheus(gatherer prometheus.Gatherer) *Prometheus {
	return &Prometheus{
		gatherer: gatherer,
		handler:  promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

// ServeHTTP implements http.Handler.
func (p *Prometheus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// Invoke returns the exposition text as a scalar.
func (p *Prometheus) Invoke(context.Context, ports.Request) (payload.Value, error) {
	mfs, err := p.gatherer.Gather()
	if err != nil {
		return payload.Value{}, fmt.Errorf("gather metrics: %w", err)
	}
	var buf bytes.Buffer
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return payload.Value{}, fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return payload.OfScalar(buf.String()), nil
}

var (
	_ ports.Endpoint = (*Prometheus)(nil)
	_ http.Handler   = (*Prometheus)(nil)
)
