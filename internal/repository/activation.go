// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/mkoepke/accountd/internal/models"
)

// CreateActivationCode records a new activation code hash for a user.
// Multiple outstanding codes per user are permitted.
func (r *Repository) CreateActivationCode(ctx context.Context, userID int64, codeHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activation_codes (code_hash, user_id, expires_at) VALUES (?, ?, ?)`,
		codeHash, userID, expiresAt)
	return err
}

// GetActivationCode retrieves an activation code by hash.
func (r *Repository) GetActivationCode(ctx context.Context, codeHash string) (*models.ActivationCode, error) {
	var code models.ActivationCode
	err := r.db.GetContext(ctx, &code,
		`SELECT * FROM activation_codes WHERE code_hash = ?`, codeHash)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &code, nil
}

// ConsumeActivationCode deletes a code by id and reports whether a row was
// actually removed. The delete is the one-shot guard: of two concurrent
// redemptions exactly one sees a deleted row.
func (r *Repository) ConsumeActivationCode(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activation_codes WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// DeleteUserActivationCodes deletes all codes for a user.
func (r *Repository) DeleteUserActivationCodes(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM activation_codes WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredActivationCodes deletes codes past their expiration.
func (r *Repository) DeleteExpiredActivationCodes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM activation_codes WHERE expires_at < ?`, time.Now().UTC())
	return err
}
