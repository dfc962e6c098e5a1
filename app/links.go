package app

import (
	"context"

	"github.com/artpar/actuate/domain/endpoint"
	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/ports"
)

// TypeLinks is the descriptor type of the root links endpoint.
const TypeLinks = "links"

// LinksEndpoint serves the root links resource. It is registered like any
// other endpoint; its path is excluded from enhancement so the resource
// passes through as built.
type LinksEndpoint struct {
	enhancer    *Enhancer
	contextPath string
	descriptors func() []endpoint.Descriptor
}

// NewLinksEndpoint creates the root links endpoint. descriptors is called
// on every request so registry changes show up without a restart.
func NewLinksEndpoint(e *Enhancer, contextPath string, descriptors func() []endpoint.Descriptor) *LinksEndpoint {
	return &LinksEndpoint{
		enhancer:    e,
		contextPath: contextPath,
		descriptors: descriptors,
	}
}

// Descriptor returns the links endpoint descriptor.
func (l *LinksEndpoint) Descriptor() endpoint.Descriptor {
	return endpoint.Descriptor{Path: l.enhancer.Paths().Links, Type: TypeLinks}
}

// Invoke builds the root resource.
func (l *LinksEndpoint) Invoke(_ context.Context, req ports.Request) (payload.Value, error) {
	res, err := l.enhancer.BuildRootResource(l.descriptors(), l.contextPath)
	if err != nil {
		return payload.Value{}, err
	}
	return payload.OfObject(WithOrigin(res, req.Origin)), nil
}

var _ ports.Endpoint = (*LinksEndpoint)(nil)
