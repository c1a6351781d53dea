package action

import (
	"context"
	"errors"

	"github.com/chipp-ai/dispatch/engine/core"
)

// ErrNotFound is returned by repositories when no action matches an id.
var ErrNotFound = errors.New("action not found")

// Repository is the persistence boundary for action configurations. Row
// storage and querying belong to the configuration CRUD layer; the engine
// only reads.
type Repository interface {
	// Get returns a single action by id.
	Get(ctx context.Context, id core.ID) (*Config, error)
	// ListByApp returns every action of the application, the full graph the
	// engine snapshots at the start of an execution.
	ListByApp(ctx context.Context, appID core.ID) ([]Config, error)
}
