package runner

import (
	"context"
	"fmt"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/core"
)

// ValidateInputs type-checks caller-supplied (and dependency-mapped) inputs
// against an action's parameter specs and returns the effective input map
// with defaults applied. It is a pure function over its arguments.
//
// Rules:
//   - defaults fill only parameters that are entirely absent; an empty
//     string is a valid present value
//   - every required parameter without a default must be present after
//     defaults and mappings; absence names the parameter
//   - types are strict: numbers and booleans reject mismatched input
//     instead of coercing, objects and arrays recurse into their declared
//     shapes
func ValidateInputs(ctx context.Context, cfg *action.Config, inputs core.Input) (core.Input, error) {
	effective := core.Input(action.ApplyDefaults(cfg.Parameters, inputs))
	for i := range cfg.Parameters {
		p := &cfg.Parameters[i]
		if !p.Required {
			continue
		}
		if _, present := effective[p.Name]; !present {
			return nil, core.NewError(nil, core.ErrCodeValidation,
				fmt.Sprintf("missing required parameter %q for action %s", p.Name, cfg.ID),
				map[string]any{"parameter": p.Name, "action_id": cfg.ID.String()})
		}
	}
	if len(cfg.Parameters) == 0 {
		return effective, nil
	}
	s := action.BuildSchema(cfg.Parameters)
	if _, err := s.Validate(ctx, map[string]any(effective)); err != nil {
		return nil, core.NewError(err, core.ErrCodeValidation,
			fmt.Sprintf("invalid parameters for action %s: %s", cfg.ID, core.RedactError(err)),
			map[string]any{"action_id": cfg.ID.String()})
	}
	return effective, nil
}
