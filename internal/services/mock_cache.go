package services

import (
	"context"
	"sync"
	"time"
)

// MockCache is an in-memory Cache for tests. Expirations honor the
// injectable clock so TTL behavior can be tested without sleeping.
type MockCache struct {
	mu      sync.Mutex
	entries map[string]mockEntry

	Now func() time.Time

	// Err, when set, is returned by every operation.
	Err error
}

type mockEntry struct {
	value     string
	expiresAt time.Time // zero means no expiration
}

var _ Cache = (*MockCache)(nil)

func NewMockCache() *MockCache {
	return &MockCache{
		entries: make(map[string]mockEntry),
		Now:     time.Now,
	}
}

func (m *MockCache) Ping(ctx context.Context) error { return m.Err }

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	e := mockEntry{value: toString(value)}
	if expiration > 0 {
		e.expiresAt = m.Now().Add(expiration)
	}
	m.entries[key] = e
	return nil
}

func (m *MockCache) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && m.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *MockCache) Close() error { return nil }

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return ""
}
