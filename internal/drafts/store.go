// Package drafts keeps editor drafts between form posts. Drafts are scoped to
// the session that created them and expire after a period of inactivity.
package drafts

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("draft not found")

// DefaultTTL is how long an untouched draft survives.
const DefaultTTL = time.Hour

type Kind string

const (
	KindMealPlan Kind = "meal_plan"
	KindRecipe   Kind = "recipe"
)

// Key addresses one draft.
type Key struct {
	Owner string
	Kind  Kind
	ID    string
}

func (k Key) String() string {
	return k.Owner + ":" + string(k.Kind) + ":" + k.ID
}

// Store persists drafts as opaque values. Save refreshes the ttl; Load of a
// missing or expired draft returns ErrNotFound.
type Store interface {
	Save(ctx context.Context, key Key, draft any) error
	Load(ctx context.Context, key Key, out any) error
	Delete(ctx context.Context, key Key) error
}
