package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/fitspark/internal/redisclient"
)

// Redis keeps drafts in redis so they survive restarts and are shared by
// every replica.
type Redis struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewRedis(client *redisclient.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) key(k Key) string {
	return r.client.Key("draft", k.Owner, string(k.Kind), k.ID)
}

func (r *Redis) Save(ctx context.Context, key Key, draft any) error {
	b, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", key, err)
	}
	if err := r.client.SetBytes(ctx, r.key(key), b, r.ttl); err != nil {
		return fmt.Errorf("save draft %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, key Key, out any) error {
	b, err := r.client.GetBytes(ctx, r.key(key))
	if errors.Is(err, redisclient.ErrMiss) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load draft %s: %w", key, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode draft %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key Key) error {
	if err := r.client.Del(ctx, r.key(key)); err != nil {
		return fmt.Errorf("delete draft %s: %w", key, err)
	}
	return nil
}
