package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockCache is a mock implementation of Cache for testing. It keeps a
// real backing map so Get returns what Set stored, and records calls
// for assertions. Override the Func fields to inject failures.
type MockCache struct {
	PingFunc   func(ctx context.Context) error
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetFunc    func(ctx context.Context, key string) (string, error)
	DelFunc    func(ctx context.Context, keys ...string) error
	ExistsFunc func(ctx context.Context, key string) (bool, error)
	CloseFunc  func() error

	mu   sync.Mutex
	data map[string]string

	// Track calls for testing
	PingCalls   int
	SetCalls    []SetCall
	GetCalls    []string
	DelCalls    [][]string
	ExistsCalls []string
	CloseCalls  int
}

type SetCall struct {
	Key        string
	Value      interface{}
	Expiration time.Duration
}

// NewMockCache creates a new mock cache
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

// Ping mocks cache ping
func (m *MockCache) Ping(ctx context.Context) error {
	m.mu.Lock()
	m.PingCalls++
	m.mu.Unlock()

	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Set mocks cache set
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value, Expiration: expiration})
	m.mu.Unlock()

	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case string:
		m.data[key] = v
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprintf("%v", v)
	}
	return nil
}

// Get mocks cache get
func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, key)
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

// Del mocks cache delete
func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	m.DelCalls = append(m.DelCalls, keys)
	m.mu.Unlock()

	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Exists mocks cache exists check
func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	m.ExistsCalls = append(m.ExistsCalls, key)
	m.mu.Unlock()

	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// Close mocks cache close
func (m *MockCache) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Reset clears stored data and call tracking
func (m *MockCache) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	m.PingCalls = 0
	m.SetCalls = nil
	m.GetCalls = nil
	m.DelCalls = nil
	m.ExistsCalls = nil
	m.CloseCalls = 0
}

// Ensure MockCache implements Cache interface
var _ Cache = (*MockCache)(nil)
