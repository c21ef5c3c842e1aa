package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lifedash/internal/server/handlers"
	"github.com/iudanet/lifedash/internal/server/jwt"
	"github.com/iudanet/lifedash/pkg/api"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthMiddleware(t *testing.T) {
	service := jwt.NewService(testSecret, "lifedash", time.Hour)
	valid, _, err := service.GenerateAccessToken("alice@example.com", 0)
	require.NoError(t, err)
	foreign, _, err := jwt.NewService("ffffffffffffffffffffffffffffffff", "lifedash", time.Hour).
		GenerateAccessToken("alice@example.com", 0)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantUser   string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantUser: "alice@example.com"},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK, wantUser: "alice@example.com"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "no token", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = handlers.GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/rows", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			AuthMiddleware(discardLogger(), service)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantUser, gotUser)
			if tt.wantStatus == http.StatusUnauthorized {
				var body api.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "unauthorized", body.Error)
			}
		})
	}
}

type stubValidator struct {
	err    error
	claims *jwt.Claims
}

func (s stubValidator) ValidateAccessToken(string) (*jwt.Claims, error) {
	return s.claims, s.err
}

func TestAuthMiddleware_RejectsValidatorError(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rows", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()

	AuthMiddleware(discardLogger(), stubValidator{err: jwt.ErrInvalidToken})(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
