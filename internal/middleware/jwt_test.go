package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

func newAuthApp(jm *utils.JWTManager, rc RevocationChecker) *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTAuth(jm, rc, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendString(Username(c))
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestJWTAuth(t *testing.T) {
	jm := utils.NewJWTManager("secret", time.Hour)
	valid, claims, err := jm.Generate("alice")
	require.NoError(t, err)
	expired, _, err := utils.NewJWTManager("secret", -time.Minute).Generate("alice")
	require.NoError(t, err)

	tests := []struct {
		name       string
		auth       string
		rc         RevocationChecker
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", auth: "", wantStatus: http.StatusUnauthorized, wantBody: "Token is missing!"},
		{name: "wrong scheme", auth: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: "Invalid authorization header"},
		{name: "garbage token", auth: "Bearer nope", wantStatus: http.StatusUnauthorized, wantBody: "Token is invalid!"},
		{name: "expired token", auth: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantBody: "Token has expired!"},
		{name: "valid token", auth: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: "alice"},
		{
			name:       "revoked token",
			auth:       "Bearer " + valid,
			rc:         stubRevocations{revoked: map[string]bool{claims.ID: true}},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Token has been revoked!",
		},
		{
			name:       "revocation store down",
			auth:       "Bearer " + valid,
			rc:         stubRevocations{err: errors.New("redis down")},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doGet(t, newAuthApp(jm, tt.rc), tt.auth)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantBody != "" {
				assert.Contains(t, body, tt.wantBody)
			}
		})
	}
}
