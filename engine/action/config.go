package action

import (
	"context"
	"fmt"
	"time"

	"dario.cat/mergo"
	"github.com/chipp-ai/dispatch/engine/core"
)

// Timeout bounds applied to every action. A stored timeout above the upper
// bound is clamped rather than rejected so legacy rows keep executing.
const (
	DefaultTimeout = 30 * time.Second
	MaxTimeout     = 120 * time.Second
)

// Config is a user-authored definition of one outbound HTTP call: method,
// URL template, typed parameters, auth strategy, output mapping and
// dependencies on other actions of the same application.
type Config struct {
	ID     core.ID     `json:"id"                  validate:"required"`
	AppID  core.ID     `json:"app_id"              validate:"required"`
	Name   string      `json:"name"                validate:"required"`
	Method core.Method `json:"method"              validate:"required"`
	// URL may contain {param} placeholders substituted from validated inputs.
	URL           string            `json:"url"                 validate:"required,url"`
	Parameters    []Parameter       `json:"parameters,omitempty"`
	Auth          *AuthConfig       `json:"auth,omitempty"`
	TimeoutMs     int               `json:"timeout_ms,omitempty"`
	OutputMapping map[string]string `json:"output_mapping,omitempty"`
	Dependencies  []Dependency      `json:"dependencies,omitempty"`
	Description   string            `json:"description,omitempty"`
}

// Timeout returns the effective per-call deadline, applying the default when
// unset and clamping to the configured bounds.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return DefaultTimeout
	}
	d := time.Duration(c.TimeoutMs) * time.Millisecond
	if d > MaxTimeout {
		return MaxTimeout
	}
	return d
}

// FindParameter returns the parameter spec with the given name, or nil.
func (c *Config) FindParameter(name string) *Parameter {
	for i := range c.Parameters {
		if c.Parameters[i].Name == name {
			return &c.Parameters[i]
		}
	}
	return nil
}

// Validate runs the write-time configuration checks. It is the hook the
// CRUD layer invokes on create and update.
func (c *Config) Validate(ctx context.Context) error {
	return NewConfigValidator(c).Validate(ctx)
}

// Masked returns a display copy with all auth secret material replaced by
// the fixed placeholder. Read APIs must never return anything else.
func (c *Config) Masked() (*Config, error) {
	copied, err := core.DeepCopy(c)
	if err != nil {
		return nil, fmt.Errorf("failed to copy action config: %w", err)
	}
	if copied.Auth != nil {
		copied.Auth = copied.Auth.Masked()
	}
	return copied, nil
}

// Merge merges another action configuration into this one.
func (c *Config) Merge(other any) error {
	otherConfig, ok := other.(*Config)
	if !ok {
		return fmt.Errorf("invalid type for action config merge: %T", other)
	}
	return mergo.Merge(c, otherConfig, mergo.WithOverride)
}

// FindConfig returns the action with the given id from a snapshot slice.
func FindConfig(configs []Config, id core.ID) (*Config, error) {
	for i := range configs {
		if configs[i].ID == id {
			return &configs[i], nil
		}
	}
	return nil, fmt.Errorf("action %s not found", id)
}
