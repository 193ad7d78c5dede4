package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"line-dealer-bot/middleware"
	"line-dealer-bot/models"
)

const testAdminToken = "test-admin-token"

type fakeChatModeStore struct {
	state      *models.ChatState
	findErr    error
	setErr     error
	revertIDs  []string
	revertErr  error
	lastMode   models.ChatMode
	lastUserID string
	lastCutoff time.Time
}

func (f *fakeChatModeStore) FindState(ctx context.Context, userID string) (*models.ChatState, error) {
	f.lastUserID = userID
	return f.state, f.findErr
}

func (f *fakeChatModeStore) SetMode(ctx context.Context, userID string, mode models.ChatMode) (*models.ChatState, error) {
	f.lastUserID = userID
	f.lastMode = mode
	if f.setErr != nil {
		return nil, f.setErr
	}
	return &models.ChatState{UserID: userID, Mode: mode}, nil
}

func (f *fakeChatModeStore) RevertStale(ctx context.Context, cutoff time.Time) ([]string, int64, error) {
	f.lastCutoff = cutoff
	if f.revertErr != nil {
		return nil, 0, f.revertErr
	}
	if f.revertIDs == nil {
		return []string{}, 0, nil
	}
	return f.revertIDs, int64(len(f.revertIDs)), nil
}

func newAdminApp(store *fakeChatModeStore) *fiber.App {
	app := fiber.New()
	handler := NewAdminHandler(store, 2*time.Minute)

	admin := app.Group("/admin", middleware.RequireAdminToken(testAdminToken))
	admin.Post("/chat-mode", handler.SwitchChatMode)
	admin.Get("/chat-mode/:userID", handler.GetChatMode)
	admin.Post("/chat-mode/revert", handler.RevertStaleSessions)

	return app
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&result))
	return result
}

func TestAdminRoutesRequireToken(t *testing.T) {
	store := &fakeChatModeStore{}
	app := newAdminApp(store)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/chat-mode", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		// The token check runs before any validation touches the store
		assert.Empty(t, store.lastUserID)
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/chat-mode/U1", nil)
		req.Header.Set(middleware.AdminTokenHeader, "not-the-token")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestSwitchChatMode(t *testing.T) {
	t.Run("switch to human", func(t *testing.T) {
		store := &fakeChatModeStore{}
		app := newAdminApp(store)

		req := httptest.NewRequest("POST", "/admin/chat-mode",
			strings.NewReader(`{"user_id": "U1", "mode": "human"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp.Body)
		assert.Equal(t, "U1", body["user_id"])
		assert.Equal(t, "human", body["mode"])
		assert.Equal(t, models.ModeHuman, store.lastMode)
	})

	t.Run("missing user_id", func(t *testing.T) {
		store := &fakeChatModeStore{}
		app := newAdminApp(store)

		req := httptest.NewRequest("POST", "/admin/chat-mode",
			strings.NewReader(`{"mode": "human"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid mode", func(t *testing.T) {
		store := &fakeChatModeStore{}
		app := newAdminApp(store)

		req := httptest.NewRequest("POST", "/admin/chat-mode",
			strings.NewReader(`{"user_id": "U1", "mode": "paused"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, store.lastUserID)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeChatModeStore{setErr: errors.New("write conflict")}
		app := newAdminApp(store)

		req := httptest.NewRequest("POST", "/admin/chat-mode",
			strings.NewReader(`{"user_id": "U1", "mode": "automated"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetChatMode(t *testing.T) {
	t.Run("unknown user defaults to automated", func(t *testing.T) {
		store := &fakeChatModeStore{}
		app := newAdminApp(store)

		req := httptest.NewRequest("GET", "/admin/chat-mode/U404", nil)
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp.Body)
		assert.Equal(t, "U404", body["user_id"])
		assert.Equal(t, "automated", body["mode"])
	})

	t.Run("human mode with activity timestamp", func(t *testing.T) {
		lastActivity := time.Now().Add(-time.Minute)
		store := &fakeChatModeStore{state: &models.ChatState{
			UserID:              "U1",
			Mode:                models.ModeHuman,
			LastHumanActivityAt: &lastActivity,
		}}
		app := newAdminApp(store)

		req := httptest.NewRequest("GET", "/admin/chat-mode/U1", nil)
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp.Body)
		assert.Equal(t, "human", body["mode"])
		assert.Contains(t, body, "last_human_activity_at")
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeChatModeStore{findErr: errors.New("server selection timeout")}
		app := newAdminApp(store)

		req := httptest.NewRequest("GET", "/admin/chat-mode/U1", nil)
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestRevertStaleSessions(t *testing.T) {
	t.Run("reverts stale sessions", func(t *testing.T) {
		store := &fakeChatModeStore{revertIDs: []string{"U1", "U2"}}
		app := newAdminApp(store)

		req := httptest.NewRequest("POST", "/admin/chat-mode/revert", nil)
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp.Body)
		assert.Equal(t, float64(2), body["reverted_count"])
		assert.Equal(t, []interface{}{"U1", "U2"}, body["user_ids"])

		// Cutoff reflects the configured two minute window
		assert.WithinDuration(t, time.Now().Add(-2*time.Minute), store.lastCutoff, 5*time.Second)
	})

	t.Run("zero matches is success", func(t *testing.T) {
		store := &fakeChatModeStore{}
		app := newAdminApp(store)

		req := httptest.NewRequest("POST", "/admin/chat-mode/revert", nil)
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp.Body)
		assert.Equal(t, float64(0), body["reverted_count"])
		assert.Equal(t, []interface{}{}, body["user_ids"])
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeChatModeStore{revertErr: errors.New("network error")}
		app := newAdminApp(store)

		req := httptest.NewRequest("POST", "/admin/chat-mode/revert", nil)
		req.Header.Set(middleware.AdminTokenHeader, testAdminToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}
