package endpoints

import (
	"context"
	"maps"
	"sync/atomic"

	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/ports"
)

// Info serves the free-form info section of the configuration.
type Info struct {
	values atomic.Pointer[map[string]any]
}

// NewInfo creates the info endpoint.
func NewInfo(values map[string]any) *Info {
	i := &Info{}
	i.Set(values)
	return i
}

// Set replaces the info values, e.g. after a config reload.
func (i *Info) Set(values map[string]any) {
	m := maps.Clone(values)
	if m == nil {
		m = map[string]any{}
	}
	i.values.Store(&m)
}

// Invoke returns the values ordered by key.
func (i *Info) Invoke(context.Context, ports.Request) (payload.Value, error) {
	return payload.Of(*i.values.Load()), nil
}

var _ ports.Endpoint = (*Info)(nil)
