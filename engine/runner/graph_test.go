package runner

import (
	"errors"
	"testing"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAction(id core.ID, deps ...action.Dependency) action.Config {
	return action.Config{
		ID:           id,
		AppID:        "app-1",
		Name:         "action-" + string(id),
		Method:       core.MethodGet,
		URL:          "https://api.example.com/" + string(id),
		Dependencies: deps,
	}
}

func indexOf(order []core.ID, id core.ID) int {
	for i := range order {
		if order[i] == id {
			return i
		}
	}
	return -1
}

func TestBuildGraph(t *testing.T) {
	t.Run("Should order dependencies before dependents", func(t *testing.T) {
		snapshot := []action.Config{
			makeAction("a"),
			makeAction("b", action.Dependency{Source: "a"}),
			makeAction("c", action.Dependency{Source: "a"}, action.Dependency{Source: "b"}),
		}
		graph, err := BuildGraph("c", snapshot)
		require.NoError(t, err)

		order := graph.Order()
		assert.Len(t, order, 3)
		assert.Less(t, indexOf(order, "a"), indexOf(order, "b"))
		assert.Less(t, indexOf(order, "b"), indexOf(order, "c"))
	})

	t.Run("Should only include actions reachable from the target", func(t *testing.T) {
		snapshot := []action.Config{
			makeAction("a"),
			makeAction("b", action.Dependency{Source: "a"}),
			makeAction("unrelated"),
		}
		graph, err := BuildGraph("b", snapshot)
		require.NoError(t, err)
		assert.Equal(t, 2, graph.Len())
		assert.Nil(t, graph.Node("unrelated"))
	})

	t.Run("Should reject an unknown target", func(t *testing.T) {
		_, err := BuildGraph("ghost", []action.Config{makeAction("a")})
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeValidation, coded.Code)
	})

	t.Run("Should reject a dependency on a missing action", func(t *testing.T) {
		snapshot := []action.Config{makeAction("a", action.Dependency{Source: "missing"})}
		_, err := BuildGraph("a", snapshot)
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeValidation, coded.Code)
		assert.Equal(t, "missing", coded.Details["source"])
	})

	t.Run("Should detect a two-node cycle and name its members", func(t *testing.T) {
		snapshot := []action.Config{
			makeAction("a", action.Dependency{Source: "b"}),
			makeAction("b", action.Dependency{Source: "a"}),
		}
		_, err := BuildGraph("a", snapshot)
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeCycle, coded.Code)
		assert.ElementsMatch(t, []string{"a", "b"}, coded.Details["actions"])
	})

	t.Run("Should detect a self cycle", func(t *testing.T) {
		snapshot := []action.Config{makeAction("a", action.Dependency{Source: "a"})}
		_, err := BuildGraph("a", snapshot)
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeCycle, coded.Code)
	})

	t.Run("Should accept a diamond without reporting a false cycle", func(t *testing.T) {
		snapshot := []action.Config{
			makeAction("base"),
			makeAction("left", action.Dependency{Source: "base"}),
			makeAction("right", action.Dependency{Source: "base"}),
			makeAction("top", action.Dependency{Source: "left"}, action.Dependency{Source: "right"}),
		}
		graph, err := BuildGraph("top", snapshot)
		require.NoError(t, err)
		assert.Equal(t, 4, graph.Len())
		order := graph.Order()
		assert.Equal(t, core.ID("base"), order[0])
		assert.Equal(t, core.ID("top"), order[3])
	})
}

func TestWouldCreateCycle(t *testing.T) {
	t.Run("Should reject an edge that closes a transitive cycle", func(t *testing.T) {
		// c -> b -> a exists; adding a -> c closes the loop
		snapshot := []action.Config{
			makeAction("a"),
			makeAction("b", action.Dependency{Source: "a"}),
			makeAction("c", action.Dependency{Source: "b"}),
		}
		err := WouldCreateCycle(snapshot, "a", []action.Dependency{{Source: "c"}})
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeCycle, coded.Code)
	})

	t.Run("Should reject a self edge", func(t *testing.T) {
		snapshot := []action.Config{makeAction("a")}
		err := WouldCreateCycle(snapshot, "a", []action.Dependency{{Source: "a"}})
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeCycle, coded.Code)
	})

	t.Run("Should accept an acyclic edge", func(t *testing.T) {
		snapshot := []action.Config{
			makeAction("a"),
			makeAction("b"),
		}
		require.NoError(t, WouldCreateCycle(snapshot, "b", []action.Dependency{{Source: "a"}}))
	})

	t.Run("Should reject an edge to a missing source", func(t *testing.T) {
		snapshot := []action.Config{makeAction("a")}
		err := WouldCreateCycle(snapshot, "a", []action.Dependency{{Source: "ghost"}})
		require.Error(t, err)
	})
}
