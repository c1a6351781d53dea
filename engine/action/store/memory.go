package store

import (
	"context"
	"sync"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/core"
)

// Memory is an in-memory action.Repository. Row persistence belongs to the
// configuration CRUD collaborator; this reference implementation backs the
// standalone server binary and the engine tests.
type Memory struct {
	mu      sync.RWMutex
	byID    map[core.ID]action.Config
	byAppID map[core.ID][]core.ID
}

func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[core.ID]action.Config),
		byAppID: make(map[core.ID][]core.ID),
	}
}

// Put inserts or replaces an action configuration.
func (m *Memory) Put(cfg *action.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[cfg.ID]; !exists {
		m.byAppID[cfg.AppID] = append(m.byAppID[cfg.AppID], cfg.ID)
	}
	m.byID[cfg.ID] = *cfg
}

// Delete removes an action configuration.
func (m *Memory) Delete(id core.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, exists := m.byID[id]
	if !exists {
		return
	}
	delete(m.byID, id)
	ids := m.byAppID[cfg.AppID]
	for i := range ids {
		if ids[i] == id {
			m.byAppID[cfg.AppID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

func (m *Memory) Get(_ context.Context, id core.ID) (*action.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.byID[id]
	if !ok {
		return nil, action.ErrNotFound
	}
	return &cfg, nil
}

func (m *Memory) ListByApp(_ context.Context, appID core.ID) ([]action.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.byAppID[appID]
	configs := make([]action.Config, 0, len(ids))
	for _, id := range ids {
		configs = append(configs, m.byID[id])
	}
	return configs, nil
}
