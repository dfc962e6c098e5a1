package endpoints

import (
	"context"

	"github.com/artpar/actuate/config"
	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/ports"
)

// ConfigProps serves the effective configuration. The config struct is
// returned as an object; its JSON form becomes the resource properties.
type ConfigProps struct {
	current func() *config.Config
}

// NewConfigProps creates the endpoint. current is read on every call so a
// reloaded config is served.
func NewConfigProps(current func() *config.Config) *ConfigProps {
	return &ConfigProps{current: current}
}

// Invoke returns the current config.
func (c *ConfigProps) Invoke(context.Context, ports.Request) (payload.Value, error) {
	return payload.OfObject(c.current()), nil
}

var _ ports.Endpoint = (*ConfigProps)(nil)
