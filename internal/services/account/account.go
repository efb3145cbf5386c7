// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

// Package account orchestrates registration, login, profile changes and the
// email verification workflow.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"golang.org/x/crypto/bcrypt"

	"codeberg.org/mkoepke/accountd/internal/models"
	"codeberg.org/mkoepke/accountd/internal/repository"
	"codeberg.org/mkoepke/accountd/internal/services/activation"
	"codeberg.org/mkoepke/accountd/internal/services/email"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidEmail is returned for malformed email addresses.
	ErrInvalidEmail = errors.New("invalid email format")
)

// dummyHash is compared against on the unknown-email path so that unknown
// email and wrong password take comparable time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Service implements the account use cases on top of the credential store,
// the activation ledger and the mail collaborator.
type Service struct {
	repo       *repository.Repository
	activation *activation.Service
	mailer     email.Sender
}

// NewService creates a new account service.
func NewService(repo *repository.Repository, act *activation.Service, mailer email.Sender) *Service {
	return &Service{
		repo:       repo,
		activation: act,
		mailer:     mailer,
	}
}

// Register creates a new, unverified account. A duplicate email surfaces as
// repository.ErrDuplicateEmail; nothing beyond "this email is taken" leaks.
// The plaintext password is hashed with bcrypt (fresh salt embedded in the
// hash string) and never stored or logged.
func (s *Service) Register(ctx context.Context, emailAddr, password string) (*models.User, error) {
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, ErrInvalidEmail
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, emailAddr, string(passwordHash))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			slog.Warn("register_failed", "email", emailAddr, "reason", "duplicate_email")
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("register_success", "user_id", user.ID, "email", emailAddr)

	return user, nil
}

// Login authenticates a user and returns the user if successful. Unknown
// email and wrong password collapse into ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform a bcrypt comparison
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", emailAddr, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "email", emailAddr, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID, "email", emailAddr)

	return user, nil
}

// VerifyPassword is the boolean form of Login. All failure modes, unknown
// email included, yield false.
func (s *Service) VerifyPassword(ctx context.Context, emailAddr, password string) bool {
	_, err := s.Login(ctx, emailAddr, password)
	return err == nil
}

// Profile returns the account record for the given id.
func (s *Service) Profile(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// SetNickname updates the nickname. A conflicting nickname surfaces as
// repository.ErrDuplicateNickname and leaves the holder untouched.
func (s *Service) SetNickname(ctx context.Context, id int64, nickname string) error {
	return s.repo.SetNickname(ctx, id, nickname)
}

// RequestVerification issues a fresh activation code and hands it to the
// mail collaborator. A delivery failure is logged and swallowed: issuing
// must not abort because mail is down.
func (s *Service) RequestVerification(ctx context.Context, id int64) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	code, err := s.activation.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	if err := s.mailer.SendVerification(ctx, user.Email, code); err != nil {
		slog.Warn("verification_mail_failed", "user_id", user.ID, "error", err)
	}

	return nil
}

// Activate redeems an activation code. It is anonymous-accessible and does
// not establish a session.
func (s *Service) Activate(ctx context.Context, code string) (bool, error) {
	return s.activation.Redeem(ctx, code)
}
