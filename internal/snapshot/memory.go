// Package snapshot provides session-snapshot stores for the quiz engine:
// an in-process map for single-node deployments and a Redis store for
// deployments where sessions must survive restarts.
package snapshot

import (
	"sync"

	"github.com/prepgrid/prepgrid/internal/quiz"
)

type Memory struct {
	mu    sync.RWMutex
	snaps map[string]quiz.Snapshot
}

func NewMemory() *Memory {
	return &Memory{snaps: map[string]quiz.Snapshot{}}
}

func (m *Memory) Get(key string) (*quiz.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[key]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *Memory) Set(key string, snap quiz.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = snap
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}

// Scoped prefixes every key with a user-specific scope so one shared store
// can back many engines, each of which sees only its own well-known key.
func Scoped(inner quiz.SnapshotStore, scope string) quiz.SnapshotStore {
	return scoped{inner: inner, prefix: scope + ":"}
}

type scoped struct {
	inner  quiz.SnapshotStore
	prefix string
}

func (s scoped) Get(key string) (*quiz.Snapshot, error) { return s.inner.Get(s.prefix + key) }
func (s scoped) Set(key string, snap quiz.Snapshot) error {
	return s.inner.Set(s.prefix+key, snap)
}
func (s scoped) Remove(key string) error { return s.inner.Remove(s.prefix + key) }
