package webhooks

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"line-dealer-bot/config"
)

const signatureHeader = "X-Line-Signature"

// EventQueue schedules background processing for parsed events.
type EventQueue interface {
	Enqueue(Event)
}

// RegisterRoutes registers the LINE webhook endpoint.
func RegisterRoutes(app *fiber.App, cfg *config.Config, queue EventQueue) {
	app.Post("/webhook", handleWebhookEvent(cfg.LineChannelSecret, queue))
}

// handleWebhookEvent verifies and parses the webhook batch synchronously, then
// schedules each text message event and acknowledges immediately.
func handleWebhookEvent(channelSecret string, queue EventQueue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(signatureHeader) == "" {
			slog.Warn("Webhook request missing signature header")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing " + signatureHeader + " header",
			})
		}

		// The LINE SDK parser wants a *http.Request
		req, err := adaptor.ConvertRequest(c, false)
		if err != nil {
			slog.Error("Failed to convert webhook request", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "malformed request",
			})
		}

		cb, err := webhook.ParseRequest(channelSecret, req)
		if err != nil {
			if errors.Is(err, webhook.ErrInvalidSignature) {
				slog.Warn("Invalid webhook signature")
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid signature",
				})
			}
			slog.Error("Failed to parse webhook request", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid webhook payload",
			})
		}

		scheduled := 0
		for _, ev := range cb.Events {
			event, ok := textMessageEvent(ev)
			if !ok {
				continue
			}
			queue.Enqueue(event)
			scheduled++
		}

		slog.Info("Webhook acknowledged", "events", len(cb.Events), "scheduled", scheduled)

		// LINE expects a fast 200 regardless of what the background tasks do
		return c.SendString("OK")
	}
}

// textMessageEvent converts a text message event from a user source into a
// dispatch event. Everything else is skipped.
func textMessageEvent(ev webhook.EventInterface) (Event, bool) {
	msgEvent, ok := ev.(webhook.MessageEvent)
	if !ok {
		return Event{}, false
	}

	textMsg, ok := msgEvent.Message.(webhook.TextMessageContent)
	if !ok {
		return Event{}, false
	}

	source, ok := msgEvent.Source.(webhook.UserSource)
	if !ok {
		return Event{}, false
	}

	event := Event{
		UserID:         source.UserId,
		ReplyToken:     msgEvent.ReplyToken,
		Text:           textMsg.Text,
		WebhookEventID: msgEvent.WebhookEventId,
	}
	if msgEvent.DeliveryContext != nil {
		event.IsRedelivery = msgEvent.DeliveryContext.IsRedelivery
	}

	return event, true
}
