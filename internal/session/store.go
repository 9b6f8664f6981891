// Package session holds the signed-in user's identity on the client.
//
// The Store is created once at startup and injected into the API client,
// the presenters and the shell. It is cleared only by an explicit logout.
package session

import (
	"fmt"
	"sync"

	"storyline/internal/logging"
)

// Persisted keys.
const (
	KeyToken        = "token"
	KeyUserID       = "userId"
	KeyUserName     = "userName"
	KeyPushEndpoint = "pushEndpoint"
)

var sessionKeys = []string{KeyToken, KeyUserID, KeyUserName}

// Session is the persisted identity. The three fields are written and
// cleared together.
type Session struct {
	Token    string
	UserID   string
	UserName string
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool { return s.Token != "" }

// Store is the session contract consumed by the rest of the client.
type Store interface {
	Set(token, userID, userName string) error
	Get() (Session, error)
	Clear() error
}

// KV is the key/value backend behind a Store. Multi-key writes and deletes
// must be atomic. store.LocalStore implements it over SQLite.
type KV interface {
	Values(keys ...string) (map[string]string, error)
	SetValues(values map[string]string) error
	DeleteValues(keys ...string) error
}

// KVStore is a Store over a KV backend.
type KVStore struct {
	mu sync.Mutex
	kv KV
}

// NewStore wraps kv.
func NewStore(kv KV) *KVStore {
	return &KVStore{kv: kv}
}

// Set persists all three fields. No token format validation is done.
func (s *KVStore) Set(token, userID, userName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.kv.SetValues(map[string]string{
		KeyToken:    token,
		KeyUserID:   userID,
		KeyUserName: userName,
	})
	if err != nil {
		logging.SessionError("failed to persist session for %s: %v", userID, err)
		return fmt.Errorf("failed to persist session: %w", err)
	}
	logging.Session("session stored for user %s", userID)
	logging.Audit().Log(logging.AuditEvent{EventType: logging.AuditSessionStart, Target: userID, Success: true})
	return nil
}

// Get returns the stored session. Missing keys yield empty fields.
func (s *KVStore) Get() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vals, err := s.kv.Values(sessionKeys...)
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}
	return Session{
		Token:    vals[KeyToken],
		UserID:   vals[KeyUserID],
		UserName: vals[KeyUserName],
	}, nil
}

// Clear removes all three fields.
func (s *KVStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.DeleteValues(sessionKeys...); err != nil {
		logging.SessionError("failed to clear session: %v", err)
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logging.Session("session cleared")
	logging.Audit().Log(logging.AuditEvent{EventType: logging.AuditSessionEnd, Success: true})
	return nil
}

// PushEndpoint returns the endpoint of the last push subscription sent to
// the API, or "" when there is none.
func (s *KVStore) PushEndpoint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vals, err := s.kv.Values(KeyPushEndpoint)
	if err != nil {
		return "", fmt.Errorf("failed to read push endpoint: %w", err)
	}
	return vals[KeyPushEndpoint], nil
}

// SetPushEndpoint records endpoint. An empty endpoint deletes the key.
func (s *KVStore) SetPushEndpoint(endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if endpoint == "" {
		return s.kv.DeleteValues(KeyPushEndpoint)
	}
	return s.kv.SetValues(map[string]string{KeyPushEndpoint: endpoint})
}

// MemoryKV is an in-process KV. Used by tests and by --workspace-less runs.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Values(keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryKV) SetValues(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

func (m *MemoryKV) DeleteValues(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// NewMemoryStore returns a Store that lives only as long as the process.
func NewMemoryStore() *KVStore {
	return NewStore(NewMemoryKV())
}
