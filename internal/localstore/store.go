// Package localstore keeps the terminal client's state as raw JSON values
// under fixed keys.
package localstore

import (
	"context"
	"sync"
)

const (
	KeyMessages          = "coach_messages_v1"
	KeyPendingSessions   = "coach_pending_sessions_v1"
	KeyOnboardingDone    = "coach_onboarding_done"
	KeyProgramSessions   = "program_sessions"
	KeyProfile           = "user_profile"
	KeyMessagesUpdatedAt = "coach_messages_updated_at"
	KeyProgramUpdatedAt  = "program_sessions_updated_at"
)

// Store is a flat key/value store. Load reports whether the key exists.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}
