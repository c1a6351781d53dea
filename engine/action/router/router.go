package router

import (
	"errors"
	"net/http"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/action/uc"
	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/chipp-ai/dispatch/engine/runner"
	"github.com/gin-gonic/gin"
)

// State carries the dependencies shared by all action handlers.
type State struct {
	Service *runner.Service
	Repo    action.Repository
}

// Register mounts the action execution and validation routes.
func Register(api *gin.RouterGroup, state *State) {
	actions := api.Group("/actions")
	actions.POST("/:action_id/execute", executeAction(state))
	actions.POST("/:action_id/test", testAction(state))
	actions.POST("/validate", validateAction())
	actions.POST("/:action_id/validate", validateActionUpdate(state))
	actions.POST("/:action_id/dependencies/validate", validateDependencies(state))
}

// executeBody is the inbound payload for execute and test requests.
type executeBody struct {
	Inputs           core.Input `json:"inputs"`
	TimeoutCeilingMs int        `json:"timeout_ceiling_ms"`
}

// executeAction runs an action live, resolving its dependency graph first.
// Per-call failures (timeout, upstream errors) come back as data on the
// result, not as HTTP faults; the caller owns the retry decision.
func executeAction(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		actionID := core.ID(c.Param("action_id"))
		var body executeBody
		// ContentLength is -1 for chunked bodies, which still need binding
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				respondError(c, http.StatusBadRequest, core.NewError(err, core.ErrCodeValidation, "invalid request body", nil))
				return
			}
		}
		runUC := uc.NewExecute(state.Service, actionID, body.Inputs, body.TimeoutCeilingMs)
		result, err := runUC.Execute(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, core.NewError(err, core.ErrCodeInternal, "execution failed", nil))
			return
		}
		respondOK(c, "action executed", result)
	}
}

// testAction runs the same pipeline but returns the masked request preview
// alongside the result.
func testAction(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		actionID := core.ID(c.Param("action_id"))
		var body executeBody
		// ContentLength is -1 for chunked bodies, which still need binding
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				respondError(c, http.StatusBadRequest, core.NewError(err, core.ErrCodeValidation, "invalid request body", nil))
				return
			}
		}
		testUC := uc.NewTestAction(state.Service, actionID, body.Inputs)
		result, err := testUC.Execute(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, core.NewError(err, core.ErrCodeInternal, "test execution failed", nil))
			return
		}
		respondOK(c, "action tested", result)
	}
}

// validateAction is the create/update hook for action definitions.
func validateAction() gin.HandlerFunc {
	return func(c *gin.Context) {
		var cfg action.Config
		if err := c.ShouldBindJSON(&cfg); err != nil {
			respondError(c, http.StatusBadRequest, core.NewError(err, core.ErrCodeValidation, "invalid action definition", nil))
			return
		}
		if err := uc.NewValidateConfig(&cfg).Execute(c.Request.Context()); err != nil {
			respondError(c, http.StatusUnprocessableEntity, asCoded(err))
			return
		}
		respondOK(c, "action definition is valid", gin.H{"valid": true})
	}
}

// validateActionUpdate is the update hook: the patch is merged over the
// stored definition and the merged result validated. The masked merged view
// comes back so the CRUD layer can show what would be written.
func validateActionUpdate(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		actionID := core.ID(c.Param("action_id"))
		var patch action.Config
		if err := c.ShouldBindJSON(&patch); err != nil {
			respondError(c, http.StatusBadRequest, core.NewError(err, core.ErrCodeValidation, "invalid action patch", nil))
			return
		}
		merged, err := uc.NewValidateUpdate(state.Repo, actionID, &patch).Execute(c.Request.Context())
		if err != nil {
			if errors.Is(err, action.ErrNotFound) {
				respondError(c, http.StatusNotFound, asCoded(err))
				return
			}
			respondError(c, http.StatusUnprocessableEntity, asCoded(err))
			return
		}
		masked, err := merged.Masked()
		if err != nil {
			respondError(c, http.StatusInternalServerError, core.NewError(err, core.ErrCodeInternal, "failed to mask action", nil))
			return
		}
		respondOK(c, "action update is valid", gin.H{"valid": true, "action": masked})
	}
}

// dependenciesBody is the inbound payload for the edge write-time hook.
type dependenciesBody struct {
	Dependencies []action.Dependency `json:"dependencies"`
}

// validateDependencies rejects edges that reference missing actions or
// would close a cycle over the application's current graph.
func validateDependencies(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		actionID := core.ID(c.Param("action_id"))
		var body dependenciesBody
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, core.NewError(err, core.ErrCodeValidation, "invalid request body", nil))
			return
		}
		depUC := uc.NewValidateDependency(state.Repo, actionID, body.Dependencies)
		if err := depUC.Execute(c.Request.Context()); err != nil {
			coded := asCoded(err)
			status := http.StatusUnprocessableEntity
			if errors.Is(err, action.ErrNotFound) {
				status = http.StatusNotFound
			}
			respondError(c, status, coded)
			return
		}
		respondOK(c, "dependencies are valid", gin.H{"valid": true})
	}
}

func asCoded(err error) *core.Error {
	var coded *core.Error
	if errors.As(err, &coded) {
		return coded
	}
	return core.NewError(err, core.ErrCodeValidation, core.RedactError(err), nil)
}
