package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"line-dealer-bot/models"
)

// ChatModeStore is the admin surface's view of the chat state store.
type ChatModeStore interface {
	FindState(ctx context.Context, userID string) (*models.ChatState, error)
	SetMode(ctx context.Context, userID string, mode models.ChatMode) (*models.ChatState, error)
	RevertStale(ctx context.Context, cutoff time.Time) ([]string, int64, error)
}

// AdminHandler exposes the manual handoff controls.
type AdminHandler struct {
	states  ChatModeStore
	timeout time.Duration // human-mode idle window before revert
}

func NewAdminHandler(states ChatModeStore, timeout time.Duration) *AdminHandler {
	return &AdminHandler{states: states, timeout: timeout}
}

type switchModeRequest struct {
	UserID string          `json:"user_id"`
	Mode   models.ChatMode `json:"mode"`
}

// SwitchChatMode manually switches a user between automated and human mode.
func (h *AdminHandler) SwitchChatMode(c *fiber.Ctx) error {
	var req switchModeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}
	if !req.Mode.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": `mode must be "automated" or "human"`,
		})
	}

	state, err := h.states.SetMode(c.Context(), req.UserID, req.Mode)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update chat mode",
		})
	}

	slog.Info("Chat mode switched by admin", "userID", state.UserID, "mode", state.Mode)

	return c.JSON(fiber.Map{
		"user_id": state.UserID,
		"mode":    state.Mode,
	})
}

// GetChatMode reports a user's stored chat mode. Unlike the webhook path this
// surfaces store errors instead of defaulting to automated.
func (h *AdminHandler) GetChatMode(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User ID is required",
		})
	}

	state, err := h.states.FindState(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read chat state",
		})
	}

	mode := models.ModeAutomated
	response := fiber.Map{"user_id": userID}
	if state != nil {
		if state.Mode == models.ModeHuman {
			mode = models.ModeHuman
		}
		if state.LastHumanActivityAt != nil {
			response["last_human_activity_at"] = state.LastHumanActivityAt
		}
	}
	response["mode"] = mode

	return c.JSON(response)
}

// RevertStaleSessions reverts every human-mode session idle past the timeout
// window. Zero matches is a success, not an error.
func (h *AdminHandler) RevertStaleSessions(c *fiber.Ctx) error {
	cutoff := time.Now().Add(-h.timeout)

	userIDs, count, err := h.states.RevertStale(c.Context(), cutoff)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to revert stale sessions",
		})
	}

	return c.JSON(fiber.Map{
		"reverted_count": count,
		"user_ids":       userIDs,
	})
}
