package uc

import (
	"context"
	"testing"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/action/store"
	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpdate(t *testing.T) {
	stored := func() *action.Config {
		return &action.Config{
			ID:     "act-1",
			AppID:  "app-1",
			Name:   "lookup-user",
			Method: core.MethodGet,
			URL:    "https://api.example.com/users/{userId}",
			Parameters: []action.Parameter{
				{Name: "userId", Type: action.TypeString, Required: true},
			},
			TimeoutMs: 5000,
		}
	}

	t.Run("Should merge patch fields over the stored definition", func(t *testing.T) {
		repo := store.NewMemory()
		repo.Put(stored())

		merged, err := NewValidateUpdate(repo, "act-1", &action.Config{
			Name:      "lookup-user-v2",
			TimeoutMs: 10000,
		}).Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "lookup-user-v2", merged.Name)
		assert.Equal(t, 10000, merged.TimeoutMs)
		// untouched fields survive the merge
		assert.Equal(t, core.MethodGet, merged.Method)
		assert.Equal(t, "https://api.example.com/users/{userId}", merged.URL)
	})

	t.Run("Should keep identity fields immutable", func(t *testing.T) {
		repo := store.NewMemory()
		repo.Put(stored())

		merged, err := NewValidateUpdate(repo, "act-1", &action.Config{
			ID:    "act-other",
			AppID: "app-other",
		}).Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, core.ID("act-1"), merged.ID)
		assert.Equal(t, core.ID("app-1"), merged.AppID)
	})

	t.Run("Should not mutate the stored definition", func(t *testing.T) {
		repo := store.NewMemory()
		repo.Put(stored())

		_, err := NewValidateUpdate(repo, "act-1", &action.Config{Name: "renamed"}).
			Execute(context.Background())
		require.NoError(t, err)

		kept, err := repo.Get(context.Background(), "act-1")
		require.NoError(t, err)
		assert.Equal(t, "lookup-user", kept.Name)
	})

	t.Run("Should reject a patch whose merged result is invalid", func(t *testing.T) {
		repo := store.NewMemory()
		repo.Put(stored())

		_, err := NewValidateUpdate(repo, "act-1", &action.Config{
			URL: "https://api.example.com/users/{userId}/orders/{orderId}",
		}).Execute(context.Background())
		require.Error(t, err)
	})

	t.Run("Should propagate a repository miss", func(t *testing.T) {
		_, err := NewValidateUpdate(store.NewMemory(), "ghost", &action.Config{Name: "x"}).
			Execute(context.Background())
		assert.ErrorIs(t, err, action.ErrNotFound)
	})
}
