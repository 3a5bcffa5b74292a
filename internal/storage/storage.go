// Package storage holds the local key/value namespace the dashboard keeps its
// session, records and preferences in.
package storage

import (
	"context"
	"errors"
)

// Keys used by the application.
const (
	ThemeKey          = "demo_theme"
	SessionKey        = "demo_session"
	ItemsKey          = "demo_dashboard_items"
	RememberKey       = "demo_login_email"
	IdempotencyPrefix = "demo_idempotency:"
	// id -> idempotency key, so a deleted record can release its key
	IdempotencyOwnerPrefix = "demo_idempotency_owner:"
)

var ErrKeyNotFound = errors.New("key not found")

// Storage is a flat string key/value namespace. Every write replaces the
// previous value; there are no transactions.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
