package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/geocoder89/fitspark/internal/cache"
)

// Memory keeps drafts in process. Values are stored encoded so callers never
// share a draft between requests.
type Memory struct {
	c *cache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{c: cache.New(ttl)}
}

func (m *Memory) Save(_ context.Context, key Key, draft any) error {
	b, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", key, err)
	}
	m.c.Set(key.String(), b)
	return nil
}

func (m *Memory) Load(_ context.Context, key Key, out any) error {
	v, ok := m.c.Get(key.String())
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(v.([]byte), out); err != nil {
		return fmt.Errorf("decode draft %s: %w", key, err)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	m.c.Delete(key.String())
	return nil
}
