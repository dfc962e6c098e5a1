package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/ports"
)

// Mapping is one served route.
type Mapping struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
}

// Mappings lists the routes of the HTTP router. The router is resolved on
// every call because it is built after the endpoints are registered.
type Mappings struct {
	routes func() chi.Routes
}

// NewMappings creates the mappings endpoint.
func NewMappings(routes func() chi.Routes) *Mappings {
	return &Mappings{routes: routes}
}

// Invoke walks the router and returns its routes sorted by pattern, then
// method.
func (m *Mappings) Invoke(context.Context, ports.Request) (payload.Value, error) {
	var out []Mapping
	if r := m.routes(); r != nil {
		err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			out = append(out, Mapping{Method: method, Pattern: route})
			return nil
		})
		if err != nil {
			return payload.Value{}, fmt.Errorf("walk routes: %w", err)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})

	items := make([]any, len(out))
	for i, mp := range out {
		items[i] = mp
	}
	return payload.OfSequence(items), nil
}

var _ ports.Endpoint = (*Mappings)(nil)
