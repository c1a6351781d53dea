package uc

import (
	"context"

	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/chipp-ai/dispatch/engine/runner"
)

// TestAction is the developer "test" pathway. It runs the same pipeline as
// a live execution but additionally returns the fully-masked request that
// was sent, so developers can debug without ever seeing credentials.
type TestAction struct {
	service  *runner.Service
	actionID core.ID
	inputs   core.Input
}

func NewTestAction(service *runner.Service, actionID core.ID, inputs core.Input) *TestAction {
	return &TestAction{
		service:  service,
		actionID: actionID,
		inputs:   inputs,
	}
}

func (uc *TestAction) Execute(ctx context.Context) (*runner.Result, error) {
	return uc.service.Execute(ctx, runner.ExecutionRequest{
		ActionID: uc.actionID,
		Inputs:   uc.inputs,
		Mode:     core.ModeTest,
	})
}
