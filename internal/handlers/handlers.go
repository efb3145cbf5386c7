// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

// Package handlers contains all HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/mkoepke/accountd/internal/auth"
	"codeberg.org/mkoepke/accountd/internal/services/account"
)

// Handlers contains the non-auth HTTP handlers.
type Handlers struct {
	accounts *account.Service
}

// New creates a new Handlers instance.
func New(accounts *account.Service) *Handlers {
	return &Handlers{accounts: accounts}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the home page, showing the identity when logged in.
func (h *Handlers) Home(c echo.Context) error {
	return Render(c, http.StatusOK, "home.html", map[string]any{
		"User":  auth.GetUser(c.Request().Context()),
		"Flash": PopFlash(c),
		"CSRF":  csrfToken(c),
	})
}

// Activate redeems an activation code from the emailed link. It is
// anonymous-accessible and never logs anyone in.
func (h *Handlers) Activate(c echo.Context) error {
	ok, err := h.accounts.Activate(c.Request().Context(), c.Param("code"))
	if err != nil {
		SetFlash(c, "Could not activate user")
		return c.Redirect(http.StatusSeeOther, "/")
	}

	if ok {
		SetFlash(c, "User has been activated")
	} else {
		SetFlash(c, "Could not activate user")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
