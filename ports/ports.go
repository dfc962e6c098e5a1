// Package ports defines interfaces (contracts) between layers.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/actuate/domain/payload"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Endpoint Ports
// -----------------------------------------------------------------------------

// Request is what an endpoint sees of an incoming call.
type Request struct {
	// Path is the request path below the management context path.
	Path string
	// Params holds named path parameters (e.g. "name" for env/{name}).
	Params map[string]string
	// Origin is scheme://host when absolute links are configured, else "".
	Origin string
}

// Param returns a named path parameter.
func (r Request) Param(name string) string {
	return r.Params[name]
}

// Endpoint produces a management payload. Endpoints know nothing about
// links; the payload is classified once, when it is returned.
type Endpoint interface {
	Invoke(ctx context.Context, req Request) (payload.Value, error)
}

// ItemEndpoint is an endpoint that also serves single named items below
// its own path, such as env/{name}.
type ItemEndpoint interface {
	Endpoint
	Item(ctx context.Context, req Request, name string) (payload.Value, error)
}

// EndpointFunc adapts a function to Endpoint.
type EndpointFunc func(ctx context.Context, req Request) (payload.Value, error)

// Invoke calls f.
func (f EndpointFunc) Invoke(ctx context.Context, req Request) (payload.Value, error) {
	return f(ctx, req)
}

// -----------------------------------------------------------------------------
// Trace Ports
// -----------------------------------------------------------------------------

// Exchange is one recorded HTTP request/response pair.
type Exchange struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Status    int               `json:"status"`
	Duration  time.Duration     `json:"duration_ns"`
	Headers   map[string]string `json:"headers,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// ExchangeRecorder stores recent exchanges.
type ExchangeRecorder interface {
	Record(e Exchange)
	Recent() []Exchange
}

// -----------------------------------------------------------------------------
// Observability Ports
// -----------------------------------------------------------------------------

// EnhanceObserver is told about every enhancement.
type EnhanceObserver interface {
	// EnhanceSucceeded records which flattening rule applied.
	EnhanceSucceeded(endpointType string, outcome payload.Outcome)
	// EnhanceFailed records an enhancement that could not build a resource.
	EnhanceFailed(endpointType string)
}
