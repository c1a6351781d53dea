package uc

import (
	"context"
	"fmt"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/chipp-ai/dispatch/engine/runner"
)

// ValidateDependency is the write-time hook for dependency edges: it
// rejects self-references, edges to missing actions, and any edge whose
// insertion would close a cycle over the application's current graph.
// Execution re-checks the graph against its own snapshot, since edges can
// be added concurrently between this check and a later run.
type ValidateDependency struct {
	repo     action.Repository
	actionID core.ID
	deps     []action.Dependency
}

func NewValidateDependency(repo action.Repository, actionID core.ID, deps []action.Dependency) *ValidateDependency {
	return &ValidateDependency{
		repo:     repo,
		actionID: actionID,
		deps:     deps,
	}
}

func (uc *ValidateDependency) Execute(ctx context.Context) error {
	target, err := uc.repo.Get(ctx, uc.actionID)
	if err != nil {
		return fmt.Errorf("failed to load action %s: %w", uc.actionID, err)
	}
	snapshot, err := uc.repo.ListByApp(ctx, target.AppID)
	if err != nil {
		return fmt.Errorf("failed to list actions for app %s: %w", target.AppID, err)
	}
	return runner.WouldCreateCycle(snapshot, uc.actionID, uc.deps)
}
