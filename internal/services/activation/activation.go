// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

// Package activation issues and redeems email activation codes.
package activation

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/mkoepke/accountd/internal/repository"
)

const (
	// CodeLength is the number of random bytes per activation code.
	CodeLength = 32
	// CodeExpiry is how long activation codes are valid.
	CodeExpiry = 48 * time.Hour
)

// Service manages the activation code lifecycle. Codes are generated from
// crypto/rand and stored as SHA256 hashes; the plaintext exists only in the
// activation link handed to the mail collaborator.
type Service struct {
	repo *repository.Repository
	now  func() time.Time
}

// NewService creates a new activation service.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceWithClock creates a service with a custom clock, for tests.
func NewServiceWithClock(repo *repository.Repository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

// Issue generates a new activation code for the user and persists its hash
// with a 48h expiration. It returns the plaintext code.
func (s *Service) Issue(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	plaintext := hex.EncodeToString(buf)
	expiresAt := s.now().Add(CodeExpiry)

	if err := s.repo.CreateActivationCode(ctx, userID, HashCode(plaintext), expiresAt); err != nil {
		return "", fmt.Errorf("failed to store activation code: %w", err)
	}

	slog.Info("activation_issued", "user_id", userID, "expires_at", expiresAt)

	return plaintext, nil
}

// Redeem consumes an activation code and marks the owning account as
// verified. Unknown, already consumed and expired codes all return false
// without side effects; redeeming is never a destructive error path.
func (s *Service) Redeem(ctx context.Context, plaintext string) (bool, error) {
	code, err := s.repo.GetActivationCode(ctx, HashCode(plaintext))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up activation code: %w", err)
	}

	if code.Expired(s.now()) {
		slog.Info("activation_rejected", "user_id", code.UserID, "reason", "expired")
		return false, nil
	}

	// Delete first: the row removal is the one-shot guard against a
	// concurrent redemption of the same code.
	consumed, err := s.repo.ConsumeActivationCode(ctx, code.ID)
	if err != nil {
		return false, fmt.Errorf("failed to consume activation code: %w", err)
	}
	if !consumed {
		return false, nil
	}

	if err := s.repo.SetVerified(ctx, code.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Account deleted while the code was outstanding.
			return false, nil
		}
		return false, fmt.Errorf("failed to mark user verified: %w", err)
	}

	slog.Info("activation_redeemed", "user_id", code.UserID)

	return true, nil
}

// PurgeExpired removes all expired codes.
func (s *Service) PurgeExpired(ctx context.Context) error {
	return s.repo.DeleteExpiredActivationCodes(ctx)
}

// HashCode computes the SHA256 hash of an activation code.
func HashCode(code string) string {
	hash := sha256.Sum256([]byte(code))
	return hex.EncodeToString(hash[:])
}
