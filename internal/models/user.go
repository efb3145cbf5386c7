// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

// Package models contains the persisted data structures.
package models

import (
	"database/sql"
	"time"
)

// User is an account record. Nickname is optional and globally unique,
// Verified reports whether the email address has been confirmed.
type User struct { //nolint:govet // fieldalignment not critical for models
	ID           int64          `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Nickname     sql.NullString `db:"nickname" json:"nickname"`
	Verified     bool           `db:"verified" json:"verified"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// NicknameOrEmpty returns the nickname or "" when none is set.
func (u *User) NicknameOrEmpty() string {
	if u.Nickname.Valid {
		return u.Nickname.String
	}
	return ""
}
