package uc

import (
	"context"
	"fmt"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/core"
)

// ValidateUpdate is the hook the configuration CRUD layer invokes on a
// partial update: it merges the patch over the stored definition and
// validates the merged result before anything is written. Identity fields
// are immutable; a patch cannot move an action to another id or
// application.
type ValidateUpdate struct {
	repo     action.Repository
	actionID core.ID
	patch    *action.Config
}

func NewValidateUpdate(repo action.Repository, actionID core.ID, patch *action.Config) *ValidateUpdate {
	return &ValidateUpdate{
		repo:     repo,
		actionID: actionID,
		patch:    patch,
	}
}

func (uc *ValidateUpdate) Execute(ctx context.Context) (*action.Config, error) {
	stored, err := uc.repo.Get(ctx, uc.actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load action %s: %w", uc.actionID, err)
	}
	merged, err := core.DeepCopy(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to copy action %s: %w", uc.actionID, err)
	}
	if err := merged.Merge(uc.patch); err != nil {
		return nil, core.NewError(err, core.ErrCodeValidation, "failed to apply action update", nil)
	}
	merged.ID = stored.ID
	merged.AppID = stored.AppID
	if err := merged.Validate(ctx); err != nil {
		return nil, err
	}
	return merged, nil
}
