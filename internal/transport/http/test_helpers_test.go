package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/avkor/securechat-server/internal/auth"
	"github.com/avkor/securechat-server/internal/config"
	"github.com/avkor/securechat-server/internal/core"
	"github.com/avkor/securechat-server/internal/store/memory"
)

// startTestServer builds a full server on an in-memory store.
func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := memory.New()
	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	logger := zerolog.Nop()
	hub := core.NewHub(st, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := &config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}
	server := NewServer(hub, authService, cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

// registerUser creates an account through the API and returns the auth response.
func registerUser(t *testing.T, ts *httptest.Server, username, email string) AuthResponse {
	t.Helper()

	body, _ := json.Marshal(RegisterRequest{
		Username: username,
		Email:    email,
		Password: "password123",
	})

	resp, err := ts.Client().Post(ts.URL+"/api/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 201 {
		t.Fatalf("register %s: unexpected status %d", username, resp.StatusCode)
	}

	var out AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if out.Token == "" || out.User.ID == 0 {
		t.Fatalf("incomplete register response: %+v", out)
	}
	return out
}
