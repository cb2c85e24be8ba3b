package domain

import (
	"encoding/json"
	"time"
)

// IdempotencyRecord caches the response of an idempotent operation under a
// client-supplied key scoped to one logical endpoint. Once written, its
// request hash is authoritative: a later request reusing the key with a
// different hash is a conflict, never an overwrite.
type IdempotencyRecord struct {
	Key         string
	Scope       string
	RequestHash string
	Response    json.RawMessage
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the record's TTL has elapsed at the given instant.
// Records without an expiry never expire.
func (r IdempotencyRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}
