package http

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/artpar/actuate/adapters/tracing"
	"github.com/artpar/actuate/app"
	"github.com/artpar/actuate/domain/endpoint"
	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/pkg/hal"
)

// Response is what a Handler produces before it is written.
type Response struct {
	Status      int
	ContentType string
	// Body is written as JSON.
	Body any
	// Value is the classified endpoint payload Body was derived from.
	Value payload.Value
}

// Handler serves one management endpoint.
type Handler func(r *http.Request) (Response, error)

// Middleware wraps a Handler.
type Middleware func(next Handler) Handler

// Chain wraps h so that the first middleware is the outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// plain returns a Response carrying v as produced.
func plain(v payload.Value) Response {
	return Response{
		Status:      http.StatusOK,
		ContentType: hal.JSONContentType,
		Body:        v.Raw(),
		Value:       v,
	}
}

// enhanceOptions configures the enhancement middleware of one endpoint.
type enhanceOptions struct {
	Enhancer    *app.Enhancer
	Descriptor  endpoint.Descriptor
	ContextPath string
	Tracer      trace.Tracer
	// Origin returns the origin prefixed to hrefs, "" for relative links.
	Origin func(r *http.Request) string
}

// enhanceMiddleware wraps the payload of a successful response in a linked
// resource. Requests that accept neither JSON nor HAL get the raw payload.
func enhanceMiddleware(opts enhanceOptions) Middleware {
	return func(next Handler) Handler {
		return func(r *http.Request) (Response, error) {
			resp, err := next(r)
			if err != nil {
				return resp, err
			}

			ct := negotiate(r.Header.Get("Accept"))
			if ct == "" {
				return resp, nil
			}

			_, span := opts.Tracer.Start(r.Context(), tracing.SpanEnhance,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					attribute.String(tracing.AttrEndpoint, opts.Descriptor.Type),
					attribute.String(tracing.AttrKind, resp.Value.Kind().String()),
				),
			)
			defer span.End()

			out, err := opts.Enhancer.Enhance(opts.Descriptor, r.URL.Path, opts.ContextPath, resp.Value)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return Response{}, err
			}

			resp.ContentType = ct
			if out.Passthrough {
				span.SetStatus(codes.Ok, "")
				return resp, nil
			}

			res := out.Resource
			if opts.Origin != nil {
				res = app.WithOrigin(res, opts.Origin(r))
			}
			resp.Body = res

			span.SetAttributes(attribute.String(tracing.AttrOutcome, out.Outcome.String()))
			span.SetStatus(codes.Ok, "")
			return resp, nil
		}
	}
}
