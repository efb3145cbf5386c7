// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

package models

import "time"

// ActivationCode stores a hashed email activation code. The plaintext code
// leaves the process exactly once, inside the activation link; only the
// SHA256 hash is persisted.
type ActivationCode struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	CodeHash  string    `db:"code_hash" json:"-"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the code is past its expiration at the given time.
func (c *ActivationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
