// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

// Package session binds a request to a user identity through a signed,
// optionally encrypted client-side cookie. No server-side session storage
// exists; protected requests re-validate the identity against the account
// store, so revoked or deleted accounts degrade to anonymous.
package session

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"codeberg.org/mkoepke/accountd/internal/config"
)

const keyLength = 32

// Data is the identity payload carried by the session cookie.
type Data struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager creates, parses and clears session cookies.
type Manager struct {
	codec      *securecookie.SecureCookie
	cookieName string
	maxAge     int
	secure     bool
}

// NewManager creates a session manager from the given config. The hash key
// is mandatory; startup fails here instead of running with an unsigned
// session cookie.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	if cfg.HashKey == "" {
		return nil, errors.New("session hash key is required")
	}

	hashKey, err := decodeKey(cfg.HashKey)
	if err != nil {
		return nil, fmt.Errorf("invalid session hash key: %w", err)
	}

	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey, err = decodeKey(cfg.BlockKey)
		if err != nil {
			return nil, fmt.Errorf("invalid session block key: %w", err)
		}
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)

	return &Manager{
		codec:      codec,
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     secure,
	}, nil
}

func decodeKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("not hex encoded: %w", err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("must be %d bytes, got %d", keyLength, len(key))
	}
	return key, nil
}

// Create returns a session cookie binding the request to the given user.
func (m *Manager) Create(userID int64, email string) (*http.Cookie, error) {
	data := Data{
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Duration(m.maxAge) * time.Second),
	}

	encoded, err := m.codec.Encode(m.cookieName, data)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}

	return &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Parse extracts the session data from a request. A missing, tampered or
// expired cookie yields (nil, nil): the request is anonymous, not an error.
func (m *Manager) Parse(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, nil //nolint:nilnil // anonymous request
	}

	var data Data
	if err := m.codec.Decode(m.cookieName, cookie.Value, &data); err != nil {
		return nil, nil //nolint:nilnil // invalid cookie, treat as anonymous
	}

	if time.Now().After(data.ExpiresAt) {
		return nil, nil //nolint:nilnil // expired, treat as anonymous
	}

	return &data, nil
}

// Clear returns a cookie that removes the session. A subsequent request
// without a fresh login is anonymous.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
