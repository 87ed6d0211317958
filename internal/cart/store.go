package cart

import (
	"context"
	"encoding/json"
	"sync"
)

// Raw is a cart as read back from storage. Keys and values are untrusted.
type Raw map[string]any

// Cart is a normalized cart: "productID:sizeID" -> positive quantity.
type Cart map[string]int

// Store persists carts per visitor session.
type Store interface {
	Load(ctx context.Context, sessionID string) (Raw, error)
	Save(ctx context.Context, sessionID string, c Cart) error
}

func decodeRaw(data []byte) Raw {
	var raw Raw
	if len(data) == 0 {
		return Raw{}
	}
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return Raw{}
	}
	return raw
}

// MemoryStore keeps carts in process memory. Payloads go through JSON so
// they decode exactly like the persistent stores.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (Raw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeRaw(m.carts[sessionID]), nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = data
	return nil
}

// SetRaw stores an arbitrary payload, such as a tampered session value.
func (m *MemoryStore) SetRaw(sessionID string, raw Raw) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = data
	return nil
}
