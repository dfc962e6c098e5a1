package endpoints

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/pkg/hal"
	"github.com/artpar/actuate/ports"
)

// Metrics serves the current value of every gathered series as a flat
// name -> value mapping. Histograms and summaries contribute _count and
// _sum series. metrics/{name} serves the series of one family.
type Metrics struct {
	gatherer prometheus.Gatherer
}

// NewMetrics creates a metrics endpoint over gatherer.
func NewMetrics(gatherer prometheus.Gatherer) *Metrics {
	return &Metrics{gatherer: gatherer}
}

func (m *Metrics) gather() ([]*dto.MetricFamily, error) {
	mfs, err := m.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	return mfs, nil
}

// Invoke returns all series in gatherer order.
func (m *Metrics) Invoke(context.Context, ports.Request) (payload.Value, error) {
	mfs, err := m.gather()
	if err != nil {
		return payload.Value{}, err
	}
	out := payload.NewMap()
	for _, mf := range mfs {
		addFamily(out, mf)
	}
	return payload.OfMapping(out), nil
}

// Item returns the series of the family called name.
func (m *Metrics) Item(_ context.Context, _ ports.Request, name string) (payload.Value, error) {
	mfs, err := m.gather()
	if err != nil {
		return payload.Value{}, err
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			out := payload.NewMap()
			addFamily(out, mf)
			return payload.OfMapping(out), nil
		}
	}
	return payload.Value{}, hal.NotFound(fmt.Errorf("metric %q not found", name))
}

func addFamily(out *payload.Map, mf *dto.MetricFamily) {
	name := mf.GetName()
	for _, metric := range mf.GetMetric() {
		labels := labelSuffix(metric.GetLabel())
		switch mf.GetType() {
		case dto.MetricType_COUNTER:
			out.Put(name+labels, metric.GetCounter().GetValue())
		case dto.MetricType_GAUGE:
			out.Put(name+labels, metric.GetGauge().GetValue())
		case dto.MetricType_UNTYPED:
			out.Put(name+labels, metric.GetUntyped().GetValue())
		case dto.MetricType_HISTOGRAM, dto.MetricType_GAUGE_HISTOGRAM:
			h := metric.GetHistogram()
			out.Put(name+"_count"+labels, float64(h.GetSampleCount()))
			out.Put(name+"_sum"+labels, h.GetSampleSum())
		case dto.MetricType_SUMMARY:
			s := metric.GetSummary()
			out.Put(name+"_count"+labels, float64(s.GetSampleCount()))
			out.Put(name+"_sum"+labels, s.GetSampleSum())
		}
	}
}

func labelSuffix(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", p.GetName(), p.GetValue())
	}
	b.WriteByte('}')
	return b.String()
}

var _ ports.ItemEndpoint = (*Metrics)(nil)
