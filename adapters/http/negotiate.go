package http

import (
	"strings"

	"github.com/munnerz/goautoneg"

	"github.com/artpar/actuate/pkg/hal"
)

const htmlContentType = "text/html"

// Plain JSON comes first so that */* and application/* get the plain media
// type; only an explicit request selects application/hal+json.
var enhanceAlternatives = []string{hal.JSONContentType, hal.ContentType}

var browserAlternatives = []string{hal.JSONContentType, hal.ContentType, htmlContentType}

// negotiate returns the media type an enhanced response is written with, or
// "" when the client accepts neither JSON nor HAL.
func negotiate(accept string) string {
	if strings.TrimSpace(accept) == "" {
		accept = "*/*"
	}
	return goautoneg.Negotiate(accept, enhanceAlternatives)
}

// wantsHTML reports whether the client prefers an HTML page over JSON.
func wantsHTML(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return false
	}
	return goautoneg.Negotiate(accept, browserAlternatives) == htmlContentType
}
