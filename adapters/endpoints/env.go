package endpoints

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/pkg/hal"
	"github.com/artpar/actuate/ports"
)

// Env serves the process environment. env/{name} serves one variable.
type Env struct {
	environ func() []string
}

// NewEnv creates an env endpoint reading the process environment.
func NewEnv() *Env {
	return NewEnvFrom(os.Environ)
}

// NewEnvFrom creates an env endpoint reading KEY=VALUE pairs from environ.
func NewEnvFrom(environ func() []string) *Env {
	return &Env{environ: environ}
}

func (e *Env) vars() map[string]any {
	pairs := e.environ()
	vars := make(map[string]any, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	return vars
}

// Invoke returns every variable, ordered by name.
func (e *Env) Invoke(context.Context, ports.Request) (payload.Value, error) {
	return payload.Of(e.vars()), nil
}

// Item returns a single variable as a scalar.
func (e *Env) Item(_ context.Context, _ ports.Request, name string) (payload.Value, error) {
	v, ok := e.vars()[name]
	if !ok {
		return payload.Value{}, hal.NotFound(fmt.Errorf("environment variable %q not found", name))
	}
	return payload.OfScalar(v), nil
}

var _ ports.ItemEndpoint = (*Env)(nil)
