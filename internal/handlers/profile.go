// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/mkoepke/accountd/internal/auth"
	"codeberg.org/mkoepke/accountd/internal/repository"
)

// ProfilePage renders the profile page of the signed-in user.
func (h *Handlers) ProfilePage(c echo.Context) error {
	user := auth.GetUser(c.Request().Context())

	profile, err := h.accounts.Profile(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load profile")
	}

	return Render(c, http.StatusOK, "profile.html", map[string]any{
		"User":  profile,
		"Flash": PopFlash(c),
		"CSRF":  csrfToken(c),
	})
}

// ProfileUpdate handles the profile form: either a nickname change or a
// request for a fresh verification mail.
func (h *Handlers) ProfileUpdate(c echo.Context) error {
	user := auth.GetUser(c.Request().Context())
	ctx := c.Request().Context()

	switch {
	case c.FormValue("nickname") != "":
		err := h.accounts.SetNickname(ctx, user.ID, c.FormValue("nickname"))
		switch {
		case errors.Is(err, repository.ErrDuplicateNickname):
			SetFlash(c, "This nickname is taken")
		case err != nil:
			slog.Error("nickname_update_failed", "error", err, "user_id", user.ID)
			SetFlash(c, "Failed to update nickname")
		default:
			SetFlash(c, "Nickname updated")
		}

	case c.FormValue("verifyme") != "":
		if err := h.accounts.RequestVerification(ctx, user.ID); err != nil {
			slog.Error("verification_request_failed", "error", err, "user_id", user.ID)
			SetFlash(c, "Failed to request verification")
		} else {
			SetFlash(c, "Verification email requested")
		}
	}

	return c.Redirect(http.StatusSeeOther, "/profile")
}
