// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/mkoepke/accountd/internal/models"
)

// CreateUser inserts a new account with the given bcrypt hash. The email
// unique constraint is the only duplicate guard; two concurrent inserts
// with the same email leave exactly one row, the loser gets
// ErrDuplicateEmail.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`INSERT INTO users (email, password_hash) VALUES (?, ?) RETURNING *`,
		email, passwordHash)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by id.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

// UserExists reports whether an account with the given id exists.
func (r *Repository) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE id = ?`, id); err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetNickname updates the nickname of an account. The nickname unique
// constraint decides conflicts, there is no read-then-write pre-check.
func (r *Repository) SetNickname(ctx context.Context, id int64, nickname string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET nickname = ?, updated_at = ? WHERE id = ?`,
		nickname, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err, "users.nickname") {
			return ErrDuplicateNickname
		}
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVerified marks the account's email address as confirmed.
func (r *Repository) SetVerified(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET verified = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser deletes an account by id.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// CountUsers returns the total number of accounts.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}
	return count, nil
}
