package uc

import (
	"context"

	"github.com/chipp-ai/dispatch/engine/action"
)

// ValidateConfig is the hook the configuration CRUD layer invokes on create
// or update of an action definition. Name uniqueness and per-tier action
// quotas are that layer's policy decisions; the engine only checks that the
// definition can execute.
type ValidateConfig struct {
	cfg *action.Config
}

func NewValidateConfig(cfg *action.Config) *ValidateConfig {
	return &ValidateConfig{cfg: cfg}
}

func (uc *ValidateConfig) Execute(ctx context.Context) error {
	return uc.cfg.Validate(ctx)
}
