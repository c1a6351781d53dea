package uc

import (
	"context"

	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/chipp-ai/dispatch/engine/runner"
	"github.com/chipp-ai/dispatch/pkg/logger"
)

// Execute is the live execution use case invoked by the chat/agent
// orchestrator when the model issues a tool call.
type Execute struct {
	service  *runner.Service
	actionID core.ID
	inputs   core.Input
	ceiling  int
}

func NewExecute(service *runner.Service, actionID core.ID, inputs core.Input, ceilingMs int) *Execute {
	return &Execute{
		service:  service,
		actionID: actionID,
		inputs:   inputs,
		ceiling:  ceilingMs,
	}
}

func (uc *Execute) Execute(ctx context.Context) (*runner.Result, error) {
	log := logger.FromContext(ctx)
	result, err := uc.service.Execute(ctx, runner.ExecutionRequest{
		ActionID:         uc.actionID,
		Inputs:           uc.inputs,
		Mode:             core.ModeLive,
		TimeoutCeilingMs: uc.ceiling,
	})
	if err != nil {
		log.Error("action execution failed", "action_id", uc.actionID, "error", core.RedactError(err))
		return nil, err
	}
	return result, nil
}
