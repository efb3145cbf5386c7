// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

// Package repository persists users and activation codes.
//
// Storage-constraint violations are translated into domain errors at this
// boundary; raw driver errors never cross it for the unique-key cases.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/vinovest/sqlx"
	sqlite "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when the email unique constraint fires.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateNickname is returned when the nickname unique constraint fires.
	ErrDuplicateNickname = errors.New("nickname already taken")
)

// SQLite extended result codes for unique-constraint violations.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// Repository wraps sqlx for database operations.
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying sqlx DB for direct access.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// wrapNotFound converts sql.ErrNoRows to ErrNotFound.
func wrapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation reports whether err is a unique-constraint violation
// on the given column (as "table.column").
func isUniqueViolation(err error, column string) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code()
	if code != sqliteConstraintUnique && code != sqliteConstraintPrimaryKey {
		return false
	}
	return strings.Contains(serr.Error(), column)
}
