// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mkoepke/accountd/internal/auth"
	"codeberg.org/mkoepke/accountd/internal/config"
	"codeberg.org/mkoepke/accountd/internal/middleware"
	"codeberg.org/mkoepke/accountd/internal/services/session"
	"codeberg.org/mkoepke/accountd/internal/testutil"
)

const hashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	mgr, err := session.NewManager(&config.SessionConfig{
		CookieName: "_session",
		MaxAge:     3600,
		HashKey:    hashKey,
	}, false)
	require.NoError(t, err)
	return mgr
}

func TestLoadUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	sm := newSessionManager(t)
	user := testutil.NewTestUser(t, repo, "a@x.com", "pw1")

	cookie, err := sm.Create(user.ID, user.Email)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.LoadUser(sm, repo)(func(c echo.Context) error {
		loaded := auth.GetUser(c.Request().Context())
		require.NotNil(t, loaded)
		assert.Equal(t, user.ID, loaded.ID)
		assert.Equal(t, "a@x.com", loaded.Email)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoadUser_NoSession(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	sm := newSessionManager(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.LoadUser(sm, repo)(func(c echo.Context) error {
		assert.Nil(t, auth.GetUser(c.Request().Context()))
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
}

func TestLoadUser_DeletedAccountIsAnonymous(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	sm := newSessionManager(t)
	user := testutil.NewTestUser(t, repo, "a@x.com", "pw1")

	cookie, err := sm.Create(user.ID, user.Email)
	require.NoError(t, err)

	// The account disappears while the session is live
	require.NoError(t, repo.DeleteUser(context.Background(), user.ID))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.LoadUser(sm, repo)(func(c echo.Context) error {
		assert.Nil(t, auth.GetUser(c.Request().Context()))
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_Anonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.RequireAuth(func(c echo.Context) error {
		t.Fatal("protected handler must not run for anonymous requests")
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestRequireAuth_Authenticated(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewTestUser(t, repo, "a@x.com", "pw1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req = req.WithContext(auth.SetUser(req.Context(), user))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.RequireAuth(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
