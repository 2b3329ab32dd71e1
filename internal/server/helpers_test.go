package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"moodfeed/internal/config"
	"moodfeed/internal/database"
	"moodfeed/internal/middleware"
	"moodfeed/internal/models"
	"moodfeed/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	server *Server
	app    *fiber.App
	mr     *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:                testSecret,
		Port:                     "0",
		DBDriver:                 "sqlite",
		DBName:                   ":memory:",
		DBConnMaxLifetimeMinutes: 30,
		Env:                      "test",
		AllowedOrigins:           "http://localhost:5173",
		FeatureFlags:             "emoji_suggest=on",
	}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	return &testEnv{server: s, app: s.App(), mr: mr}
}

// register creates an account directly through the service and returns it
// with a bearer token.
func (e *testEnv) register(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	user, err := e.server.userService.Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	token, _, err := middleware.IssueToken(testSecret, user.ID, time.Now())
	require.NoError(t, err)
	return user, token
}

type apiResponse struct {
	Success bool                     `json:"success"`
	Error   string                   `json:"error"`
	Message string                   `json:"message"`
	Details []models.ValidationIssue `json:"details"`
	Data    json.RawMessage          `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func decodeData[T any](t *testing.T, r apiResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(r.Data, &v), string(r.Data))
	return v
}

