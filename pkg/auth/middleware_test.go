package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedEcho(t *testing.T, signer *Signer) (*echo.Echo, *uuid.UUID) {
	t.Helper()

	var seen uuid.UUID
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError, "user id missing from context")
		}
		seen = id
		return c.NoContent(http.StatusOK)
	}, Middleware(signer))

	return e, &seen
}

func TestMiddleware_AllowsValidToken(t *testing.T) {
	signer := newTestSigner(t, time.Minute)
	userID := uuid.New()

	token, _, err := signer.GenerateToken(userID, "mario@example.com", "Mario Rossi")
	require.NoError(t, err)

	e, seen := newProtectedEcho(t, signer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, *seen)
}

func TestMiddleware_RejectsMissingHeader(t *testing.T) {
	signer := newTestSigner(t, time.Minute)
	e, _ := newProtectedEcho(t, signer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RejectsBadFormat(t *testing.T) {
	signer := newTestSigner(t, time.Minute)
	e, _ := newProtectedEcho(t, signer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RejectsInvalidToken(t *testing.T) {
	signer := newTestSigner(t, time.Minute)
	e, _ := newProtectedEcho(t, signer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer this.is.garbage")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
