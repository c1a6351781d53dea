package action

import "github.com/chipp-ai/dispatch/engine/core"

// Dependency declares that Source must execute before the owning action,
// and maps values from the source's result into the owning action's inputs.
// Mapping keys are target parameter names; values are gjson path
// expressions evaluated against the source's extracted outputs (or its raw
// response body when the source declares no output mapping). A `$.` prefix
// is accepted for JSONPath-style configurations and stripped.
type Dependency struct {
	Source  core.ID           `json:"source"  validate:"required"`
	Mapping map[string]string `json:"mapping,omitempty"`
}
