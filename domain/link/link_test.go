package link

import (
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/artpar/actuate/pkg/hal"
)

func TestHref(t *testing.T) {
	tests := []struct {
		base, rel string
		want      string
	}{
		{"", "/health", "/health"},
		{"", "health", "/health"},
		{"", "//health", "/health"},
		{"", "", "/"},
		{"", "/", "/"},
		{"/admin", "/health", "/admin/health"},
		{"/admin/", "/health", "/admin/health"},
		{"/admin", "health", "/admin/health"},
		{"/admin", "", "/admin"},
		{"/admin", "/", "/admin/"},
		{"/admin/", "", "/admin/"},
		{"/admin", "/env/user.home", "/admin/env/user.home"},
		{"", "/trace/", "/trace/"},
	}

	for _, tt := range tests {
		t.Run(tt.base+"|"+tt.rel, func(t *testing.T) {
			got, err := Href(tt.base, tt.rel)
			if err != nil {
				t.Fatalf("Href(%q, %q) error: %v", tt.base, tt.rel, err)
			}
			if got != tt.want {
				t.Errorf("Href(%q, %q) = %q, want %q", tt.base, tt.rel, got, tt.want)
			}
		})
	}
}

func TestHref_Malformed(t *testing.T) {
	tests := []struct {
		name, base, rel string
	}{
		{"query in path", "", "/health?x=1"},
		{"fragment in base", "/admin#x", "/health"},
		{"space in path", "", "/my endpoint"},
		{"newline in path", "", "/a\nb"},
		{"relative base", "admin", "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Href(tt.base, tt.rel)
			if !errors.Is(err, ErrMalformedPath) {
				t.Errorf("err = %v, want ErrMalformedPath", err)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	t.Run("explicit relation", func(t *testing.T) {
		l, err := Build("", "/trace", RelSelf)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if l.Rel != "self" || l.Href != "/trace" {
			t.Errorf("Build = %+v", l)
		}
	})

	t.Run("derived relation", func(t *testing.T) {
		l, err := Build("/admin", "/metrics", "")
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if l.Rel != "metrics" || l.Href != "/admin/metrics" {
			t.Errorf("Build = %+v", l)
		}
	})

	t.Run("empty path falls back to self", func(t *testing.T) {
		l, err := Build("", "", "")
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if l.Rel != "self" || l.Href != "/" {
			t.Errorf("Build = %+v", l)
		}
	})

	t.Run("malformed path fails", func(t *testing.T) {
		if _, err := Build("", "/a b", ""); !errors.Is(err, ErrMalformedPath) {
			t.Errorf("err = %v, want ErrMalformedPath", err)
		}
	})
}

func TestRel(t *testing.T) {
	tests := []struct {
		path, fallback, want string
	}{
		{"/health", RelLinks, "health"},
		{"health", RelLinks, "health"},
		{"", RelLinks, "links"},
		{"/", RelLinks, "links"},
		{"/", RelSelf, "self"},
		{"//x", RelSelf, "/x"},
		{"/env/user.home", RelSelf, "env/user.home"},
	}
	for _, tt := range tests {
		if got := Rel(tt.path, tt.fallback); got != tt.want {
			t.Errorf("Rel(%q, %q) = %q, want %q", tt.path, tt.fallback, got, tt.want)
		}
	}
}

func TestAbsolute(t *testing.T) {
	l := Absolute("http://localhost/", hal.Link{Rel: "self", Href: "/trace"})
	if l.Href != "http://localhost/trace" {
		t.Errorf("Href = %s, want http://localhost/trace", l.Href)
	}
	if l.Rel != "self" {
		t.Errorf("Rel = %s, want self", l.Rel)
	}

	if got := Absolute("", hal.Link{Rel: "self", Href: "/trace"}); got.Href != "/trace" {
		t.Errorf("empty origin changed href: %s", got.Href)
	}
}

func TestStripContext(t *testing.T) {
	tests := []struct {
		path, ctx, want string
	}{
		{"/admin/health", "/admin", "/health"},
		{"/admin", "/admin", ""},
		{"/administer", "/admin", "/administer"},
		{"/health", "", "/health"},
		{"/admin/health", "/admin/", "/health"},
	}
	for _, tt := range tests {
		if got := StripContext(tt.path, tt.ctx); got != tt.want {
			t.Errorf("StripContext(%q, %q) = %q, want %q", tt.path, tt.ctx, got, tt.want)
		}
	}
}

var segment = rapid.StringMatching(`[a-z][a-z0-9._-]{0,8}`)

func endpointPath(t *rapid.T, label string) string {
	parts := rapid.SliceOfN(segment, 1, 3).Draw(t, label)
	p := ""
	for _, s := range parts {
		p += "/" + s
	}
	if rapid.Bool().Draw(t, label+"-trailing") {
		p += "/"
	}
	return p
}

// An href is the context path followed by the endpoint path, byte for byte.
func TestHref_ConcatenationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := ""
		if rapid.Bool().Draw(t, "hasContext") {
			ctx = strings.TrimSuffix(endpointPath(t, "ctx"), "/")
		}
		p := endpointPath(t, "path")

		got, err := Href(ctx, p)
		if err != nil {
			t.Fatalf("Href(%q, %q): %v", ctx, p, err)
		}
		if got != ctx+p {
			t.Fatalf("Href(%q, %q) = %q, want %q", ctx, p, got, ctx+p)
		}
	})
}

func TestBuild_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.SampledFrom([]string{"", "/", "/admin", "/mgmt/"}).Draw(t, "base")
		p := endpointPath(t, "path")
		rel := rapid.SampledFrom([]string{"", "self", "custom"}).Draw(t, "rel")

		first, err1 := Build(base, p, rel)
		second, err2 := Build(base, p, rel)
		if err1 != nil || err2 != nil {
			t.Fatalf("Build errors: %v, %v", err1, err2)
		}
		if first != second {
			t.Fatalf("Build not deterministic: %+v vs %+v", first, second)
		}
	})
}
