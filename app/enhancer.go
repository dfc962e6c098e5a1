// Package app contains the enhancement services that turn endpoint payloads
// into linked resources.
package app

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/artpar/actuate/domain/endpoint"
	"github.com/artpar/actuate/domain/link"
	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/pkg/hal"
	"github.com/artpar/actuate/ports"
)

// ErrReservedRelation is returned when an endpoint would be listed under
// the relation the root uses for itself.
var ErrReservedRelation = errors.New("reserved link relation")

// Paths names the management paths that are never enhanced or listed:
// the root links endpoint and the HAL browser.
type Paths struct {
	Links string
	HAL   string
}

// Excluded reports whether path is one of the excluded management paths.
func (p Paths) Excluded(path string) bool {
	if path == p.Links {
		return true
	}
	return p.HAL != "" && path == p.HAL
}

// Enhanced is the result of enhancing one payload.
type Enhanced struct {
	// Resource is the linked resource. Unset when Passthrough is true.
	Resource hal.Resource
	// Passthrough means the payload is returned as produced.
	Passthrough bool
	// Raw is the payload as produced.
	Raw any
	// Outcome is the flattening rule that applied.
	Outcome payload.Outcome
}

// Enhancer wraps endpoint payloads in linked resources.
type Enhancer struct {
	paths    Paths
	observer ports.EnhanceObserver
	logger   zerolog.Logger
}

// NewEnhancer creates an enhancer. A nil observer is allowed.
func NewEnhancer(paths Paths, observer ports.EnhanceObserver, logger zerolog.Logger) *Enhancer {
	return &Enhancer{
		paths:    paths,
		observer: observer,
		logger:   logger,
	}
}

// Paths returns the excluded paths.
func (e *Enhancer) Paths() Paths {
	return e.paths
}

// Enhance builds the linked resource for payload v served by desc at
// rawPath. rawPath is the full request path including rootContextPath.
//
// Payloads from the links endpoint or the HAL browser pass through. A
// payload that cannot be flattened is kept under "value"; only a path that
// cannot form a self link is an error.
func (e *Enhancer) Enhance(desc endpoint.Descriptor, rawPath, rootContextPath string, v payload.Value) (Enhanced, error) {
	if e.paths.Excluded(desc.Path) {
		return Enhanced{Passthrough: true, Raw: v.Raw()}, nil
	}

	relative := link.StripContext(rawPath, rootContextPath)
	rel := link.Rel(relative, link.RelSelf)

	self, err := link.Build(rootContextPath, relative, link.RelSelf)
	if err != nil {
		if e.observer != nil {
			e.observer.EnhanceFailed(desc.Type)
		}
		e.logger.Error().Err(err).Str("path", rawPath).Str("endpoint", desc.Type).Msg("cannot build self link")
		return Enhanced{}, fmt.Errorf("enhance %s: %w", rawPath, err)
	}

	props, outcome := payload.Flatten(rel, v)
	if outcome == payload.Fallback {
		e.logger.Debug().
			Str("rel", rel).
			Str("kind", v.Kind().String()).
			Msg("payload kept under value")
	}
	if e.observer != nil {
		e.observer.EnhanceSucceeded(desc.Type, outcome)
	}

	return Enhanced{
		Resource: hal.NewResource(self.Href).Props(props).Build(),
		Raw:      v.Raw(),
		Outcome:  outcome,
	}, nil
}

// BuildRootResource builds the root links resource: a self link, then one
// link per descriptor in registry order. Excluded paths are skipped.
func (e *Enhancer) BuildRootResource(descs []endpoint.Descriptor, rootContextPath string) (hal.Resource, error) {
	return BuildRootResource(e.paths, descs, rootContextPath)
}

// BuildRootResource builds the root links resource for paths.
//
// Sensitive endpoints are listed like any other. When two descriptors map
// to the same relation the later href wins and the earlier position is
// kept.
func BuildRootResource(paths Paths, descs []endpoint.Descriptor, rootContextPath string) (hal.Resource, error) {
	self, err := link.Build(rootContextPath, paths.Links, link.RelSelf)
	if err != nil {
		return hal.Resource{}, fmt.Errorf("root self link: %w", err)
	}

	links := hal.NewLinks(self)
	for _, d := range descs {
		if paths.Excluded(d.Path) {
			continue
		}
		rel := link.Rel(d.Path, link.RelLinks)
		if rel == link.RelSelf {
			return hal.Resource{}, fmt.Errorf("%w: endpoint %q", ErrReservedRelation, d.Path)
		}
		l, err := link.Build(rootContextPath, d.Path, rel)
		if err != nil {
			return hal.Resource{}, fmt.Errorf("link for %q: %w", d.Path, err)
		}
		links.Add(l)
	}

	return hal.Resource{Links: links}, nil
}

// WithOrigin returns a copy of res whose hrefs are prefixed with origin.
func WithOrigin(res hal.Resource, origin string) hal.Resource {
	if origin == "" {
		return res
	}
	abs := hal.Links{}
	for _, l := range res.Links.All() {
		abs.Add(link.Absolute(origin, l))
	}
	return hal.Resource{Links: abs, Properties: res.Properties}
}
