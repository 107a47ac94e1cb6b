package oauth

import (
	"encoding/json"
	"sync"

	"github.com/jonboulle/clockwork"
)

// TokenSet is the persisted OAuth token state.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    *int64 `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
	Sub          string `json:"sub"`
	ExpiresAt    *int64 `json:"expires_at,omitempty"`
}

const refreshWindowSeconds = 60

// SecureStorage is the external collaborator that persists a single
// opaque token blob keyed by a caller-configured identifier.
// Implementations need not be atomic across process crashes; the only
// ordering requirement is that StoreTokens is the last step of a
// successful refresh.
type SecureStorage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// TokenManager owns the current TokenSet and, optionally, a backing
// SecureStorage. Mutation is serialized behind a mutex. The Clock is
// injectable so expiry behavior is testable against a fake clock.
type TokenManager struct {
	Clock clockwork.Clock

	storage    SecureStorage
	storageKey string

	mu     sync.Mutex
	tokens *TokenSet
	loaded bool
}

// NewTokenManager constructs a TokenManager. storage and storageKey may be
// empty/zero to run purely in-memory.
func NewTokenManager(storage SecureStorage, storageKey string) *TokenManager {
	return &TokenManager{
		Clock:      clockwork.NewRealClock(),
		storage:    storage,
		storageKey: storageKey,
	}
}

// StoreTokens records tokens as the current set, normalizing ExpiresAt:
// if absent but ExpiresIn is present, ExpiresAt := now + ExpiresIn;
// otherwise the caller-supplied ExpiresAt is preserved verbatim. This is
// the last step of a successful refresh so a cancelled refresh never
// leaves half-written tokens.
func (m *TokenManager) StoreTokens(tokens TokenSet) error {
	if tokens.ExpiresAt == nil && tokens.ExpiresIn != nil {
		at := m.Clock.Now().Unix() + *tokens.ExpiresIn
		tokens.ExpiresAt = &at
	}

	m.mu.Lock()
	m.tokens = &tokens
	m.loaded = true
	m.mu.Unlock()

	if m.storage == nil {
		return nil
	}
	encoded, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return m.storage.Set(m.storageKey, encoded)
}

// GetTokens returns the current tokens, loading from storage on first
// access for a cold manager.
func (m *TokenManager) GetTokens() (*TokenSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getTokensLocked()
}

func (m *TokenManager) getTokensLocked() (*TokenSet, error) {
	if m.loaded {
		return m.tokens, nil
	}
	m.loaded = true
	if m.storage == nil {
		return nil, nil
	}
	raw, err := m.storage.Get(m.storageKey)
	if err != nil || len(raw) == 0 {
		return nil, nil
	}
	var tokens TokenSet
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, nil
	}
	m.tokens = &tokens
	return m.tokens, nil
}

// ClearTokens removes tokens from memory and storage. A no-op on an
// already-empty manager.
func (m *TokenManager) ClearTokens() error {
	m.mu.Lock()
	m.tokens = nil
	m.loaded = true
	m.mu.Unlock()

	if m.storage == nil {
		return nil
	}
	return m.storage.Delete(m.storageKey)
}

// NeedsRefresh is true when no tokens are stored, when ExpiresAt is
// absent, or when now + 60s >= ExpiresAt. The 60-second window is a hard
// constant; the boundary value (now + 60s == ExpiresAt) returns true.
func (m *TokenManager) NeedsRefresh() bool {
	m.mu.Lock()
	tokens, _ := m.getTokensLocked()
	m.mu.Unlock()

	if tokens == nil || tokens.ExpiresAt == nil {
		return true
	}
	return m.Clock.Now().Unix()+refreshWindowSeconds >= *tokens.ExpiresAt
}

// IsExpired is true when no tokens, no ExpiresAt, or now >= ExpiresAt.
func (m *TokenManager) IsExpired() bool {
	m.mu.Lock()
	tokens, _ := m.getTokensLocked()
	m.mu.Unlock()

	if tokens == nil || tokens.ExpiresAt == nil {
		return true
	}
	return m.Clock.Now().Unix() >= *tokens.ExpiresAt
}
