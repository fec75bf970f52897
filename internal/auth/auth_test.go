package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/blobfiles/internal/config"
	"github.com/radif/blobfiles/internal/response"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "secret",
		ApplicationID: "app1",
		MasterKey:     "master",
	}
}

func TestIssueToken(t *testing.T) {
	svc := NewService(testConfig())
	fixed := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }

	tok, err := svc.IssueToken("app1", "master")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(tokenTTL), tok.ExpiresAt)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "app1", sub)
}

func TestIssueToken_InvalidCredentials(t *testing.T) {
	svc := NewService(testConfig())

	_, err := svc.IssueToken("app1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.IssueToken("other", "master")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	cfg := testConfig()
	cfg.MasterKey = ""
	_, err = NewService(cfg).IssueToken("app1", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHandler_IssueToken(t *testing.T) {
	h := NewHandler(NewService(testConfig()), slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"applicationId":"app1","masterKey":"master"}`, http.StatusOK},
		{"wrong key", `{"applicationId":"app1","masterKey":"nope"}`, http.StatusUnauthorized},
		{"missing fields", `{"applicationId":"app1"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.IssueToken(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var env response.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tt.wantStatus == http.StatusOK, env.Success)
		})
	}
}
