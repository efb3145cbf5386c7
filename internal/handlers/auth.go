// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/mkoepke/accountd/internal/repository"
	"codeberg.org/mkoepke/accountd/internal/services/account"
	"codeberg.org/mkoepke/accountd/internal/services/session"
)

// AuthHandlers contains handlers for registration, login and logout.
type AuthHandlers struct {
	accounts *account.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(accounts *account.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{accounts: accounts, sessions: sessions}
}

// RegisterPage renders the registration page.
func (h *AuthHandlers) RegisterPage(c echo.Context) error {
	return Render(c, http.StatusOK, "register.html", map[string]any{
		"Flash": PopFlash(c),
		"CSRF":  csrfToken(c),
	})
}

// Register creates a new account from the submitted form.
func (h *AuthHandlers) Register(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	user, err := h.accounts.Register(c.Request().Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			SetFlash(c, "This email is taken")
		case errors.Is(err, account.ErrInvalidEmail):
			SetFlash(c, "Please enter a valid email address")
		default:
			slog.Error("register_error", "error", err)
			SetFlash(c, "Failed to register")
		}
		return c.Redirect(http.StatusSeeOther, "/auth/register")
	}

	SetFlash(c, fmt.Sprintf("User '%s' created", user.Email))
	return c.Redirect(http.StatusSeeOther, "/")
}

// LoginPage renders the login page.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	return Render(c, http.StatusOK, "login.html", map[string]any{
		"Flash": PopFlash(c),
		"CSRF":  csrfToken(c),
	})
}

// Login authenticates the submitted credentials. Any prior session is
// cleared before the credential check so a failed attempt cannot ride on a
// previous identity.
func (h *AuthHandlers) Login(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())

	email := c.FormValue("email")
	password := c.FormValue("password")

	user, err := h.accounts.Login(c.Request().Context(), email, password)
	if err != nil {
		SetFlash(c, "Failed to authenticate")
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}

	cookie, err := h.sessions.Create(user.ID, user.Email)
	if err != nil {
		slog.Error("session_create_failed", "error", err, "user_id", user.ID)
		SetFlash(c, "Failed to authenticate")
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}
	c.SetCookie(cookie)

	SetFlash(c, "Authentication succeeded")
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the session cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	SetFlash(c, "Signed out")
	return c.Redirect(http.StatusSeeOther, "/")
}
