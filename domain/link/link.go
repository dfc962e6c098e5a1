// Package link builds hypermedia links from management paths.
// Everything here is pure: the same inputs always yield the same link.
package link

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/artpar/actuate/pkg/hal"
)

// Fallback relations used when a path has no name of its own.
const (
	RelSelf  = hal.RelSelf
	RelLinks = "links"
)

// ErrMalformedPath reports a base or relative path that cannot form an href.
var ErrMalformedPath = errors.New("malformed path")

// Build joins basePath and relativePath into a link.
//
// The two parts are joined with exactly one "/", leading slashes of
// relativePath collapse into one, and an empty result is "/". Trailing
// slashes are kept as given. An empty relation is derived from
// relativePath with RelSelf as the fallback.
func Build(basePath, relativePath, relation string) (hal.Link, error) {
	href, err := Href(basePath, relativePath)
	if err != nil {
		return hal.Link{}, err
	}
	if relation == "" {
		relation = Rel(relativePath, RelSelf)
	}
	return hal.Link{Rel: relation, Href: href}, nil
}

// Href joins basePath and relativePath.
func Href(basePath, relativePath string) (string, error) {
	if err := check("base path", basePath); err != nil {
		return "", err
	}
	if err := check("path", relativePath); err != nil {
		return "", err
	}
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		return "", fmt.Errorf("%w: base path %q must start with /", ErrMalformedPath, basePath)
	}

	rel := strings.TrimLeft(relativePath, "/")
	if rel == "" {
		if basePath == "" {
			return "/", nil
		}
		// "/" alone still names the base itself; keep a declared trailing slash.
		if relativePath != "" && !strings.HasSuffix(basePath, "/") {
			return basePath + "/", nil
		}
		return basePath, nil
	}
	return strings.TrimRight(basePath, "/") + "/" + rel, nil
}

// Rel derives a relation name from a path by stripping one leading "/".
// An empty result yields fallback.
func Rel(path, fallback string) string {
	rel := strings.TrimPrefix(path, "/")
	if rel == "" {
		return fallback
	}
	return rel
}

// Absolute prefixes the link's href with origin (scheme://host).
// An empty origin leaves the link root-relative.
func Absolute(origin string, l hal.Link) hal.Link {
	if origin == "" {
		return l
	}
	l.Href = strings.TrimRight(origin, "/") + l.Href
	return l
}

// StripContext removes contextPath from the front of path on a segment
// boundary. "/admin" is stripped from "/admin/health" but not from
// "/administer". Paths outside the context are returned unchanged.
func StripContext(path, contextPath string) string {
	contextPath = strings.TrimRight(contextPath, "/")
	if contextPath == "" {
		return path
	}
	if path == contextPath {
		return ""
	}
	if strings.HasPrefix(path, contextPath+"/") {
		return path[len(contextPath):]
	}
	return path
}

func check(what, p string) error {
	if strings.ContainsAny(p, "?#") {
		return fmt.Errorf("%w: %s %q contains query or fragment", ErrMalformedPath, what, p)
	}
	for _, r := range p {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("%w: %s %q contains whitespace or control characters", ErrMalformedPath, what, p)
		}
	}
	return nil
}
