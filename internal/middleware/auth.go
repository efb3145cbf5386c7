// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

// Package middleware contains the echo middleware for identity resolution.
package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/mkoepke/accountd/internal/auth"
	"codeberg.org/mkoepke/accountd/internal/models"
	"codeberg.org/mkoepke/accountd/internal/services/session"
)

// UserLoader is an interface for loading full user data.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// LoadUser resolves the session cookie once per request and exposes the
// account as a typed optional value on the request context. A session
// naming a deleted or nonexistent account stays anonymous, it is not an
// error.
func LoadUser(sm *session.Manager, loader UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, err := sm.Parse(c.Request())
			if err != nil || data == nil {
				return next(c)
			}

			user, err := loader.GetUserByID(c.Request().Context(), data.UserID)
			if err != nil || user == nil {
				// Dangling identity, drop the cookie and continue anonymous.
				c.SetCookie(sm.Clear())
				return next(c)
			}

			ctx := auth.SetUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAuth redirects unauthenticated requests to the login page.
// Hitting a protected route anonymously is a normal redirect outcome.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !auth.IsAuthenticated(c.Request().Context()) {
			return c.Redirect(http.StatusSeeOther, "/auth/login")
		}
		return next(c)
	}
}
