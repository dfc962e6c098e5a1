package http

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/artpar/actuate/domain/endpoint"
	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/ports"
)

//go:embed browser/index.html
var browserAssets embed.FS

// TypeHAL is the descriptor type of the HAL browser.
const TypeHAL = "hal"

// Browser serves a small page that walks the links of the management
// resources. GET {hal} redirects to the page with the root resource in the
// fragment; GET {hal}/ serves the page.
type Browser struct {
	path     string
	pageHref string
	rootHref string
	page     []byte
}

// NewBrowser creates the HAL browser mounted at halPath below contextPath.
// rootHref is the resource the page opens with.
func NewBrowser(contextPath, halPath, rootHref string) (*Browser, error) {
	tmpl, err := template.ParseFS(browserAssets, "browser/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse browser page: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		Title string
		Root  string
	}{Title: "actuate", Root: rootHref}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render browser page: %w", err)
	}

	return &Browser{
		path:     halPath,
		pageHref: strings.TrimRight(contextPath, "/") + halPath + "/",
		rootHref: rootHref,
		page:     buf.Bytes(),
	}, nil
}

// Descriptor returns the browser descriptor.
func (b *Browser) Descriptor() endpoint.Descriptor {
	return endpoint.Descriptor{Path: b.path, Type: TypeHAL}
}

// Location is where GET {hal} redirects to.
func (b *Browser) Location() string {
	return b.pageHref + "#" + b.rootHref
}

// Invoke returns the browser location. The HTTP layer serves the browser
// through ServeHTTP instead.
func (b *Browser) Invoke(context.Context, ports.Request) (payload.Value, error) {
	return payload.OfScalar(b.Location()), nil
}

// ServeHTTP redirects to or serves the page.
func (b *Browser) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/") {
		http.Redirect(w, r, b.Location(), http.StatusFound)
		return
	}
	if r.URL.Path != b.pageHref {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.page)
}

var (
	_ ports.Endpoint = (*Browser)(nil)
	_ http.Handler   = (*Browser)(nil)
)
