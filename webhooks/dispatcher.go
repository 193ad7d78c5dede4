package webhooks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"line-dealer-bot/models"
)

// apologyReply is sent when the responder fails, so the customer still gets
// an answer correlated to their message.
const apologyReply = "系統發生了一點問題，請稍後再試。"

// taskTimeout bounds one background dispatch: store read, inventory lookup,
// completion call and reply send.
const taskTimeout = 60 * time.Second

// Event is a transport-neutral text message event handed from the webhook
// ingress to background processing.
type Event struct {
	UserID         string
	ReplyToken     string
	Text           string
	WebhookEventID string
	IsRedelivery   bool
}

// ModeResolver reports the chat mode for a user; it never fails.
type ModeResolver interface {
	Mode(ctx context.Context, userID string) models.ChatMode
}

// Responder produces a natural-language answer for a customer question.
type Responder interface {
	Answer(ctx context.Context, question string) (string, error)
}

// ReplySender delivers text back to the platform using a reply token.
type ReplySender interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// Dispatcher runs one background task per inbound event after the webhook has
// already been acknowledged. Failures are terminal for their own event and
// never reach the webhook caller.
type Dispatcher struct {
	modes     ModeResolver
	responder Responder
	replier   ReplySender
	wg        sync.WaitGroup
}

func NewDispatcher(modes ModeResolver, responder Responder, replier ReplySender) *Dispatcher {
	return &Dispatcher{
		modes:     modes,
		responder: responder,
		replier:   replier,
	}
}

// Enqueue schedules background processing for one event and returns
// immediately.
func (d *Dispatcher) Enqueue(event Event) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic in event dispatch",
					"panic", r,
					"webhookEventID", event.WebhookEventID)
			}
		}()
		d.dispatch(event)
	}()
}

func (d *Dispatcher) dispatch(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	if d.modes.Mode(ctx, event.UserID) == models.ModeHuman {
		// A human operator owns this conversation; dropping the event is the
		// intended behavior, not an error.
		slog.Info("User in human mode, skipping automated reply",
			"userID", event.UserID,
			"webhookEventID", event.WebhookEventID)
		return
	}

	answer, err := d.responder.Answer(ctx, event.Text)
	if err != nil {
		slog.Error("Responder failed, sending apology",
			"userID", event.UserID,
			"webhookEventID", event.WebhookEventID,
			"error", err)
		answer = apologyReply
	}

	if err := d.replier.Reply(ctx, event.ReplyToken, answer); err != nil {
		slog.Error("Failed to send reply",
			"userID", event.UserID,
			"webhookEventID", event.WebhookEventID,
			"isRedelivery", event.IsRedelivery,
			"error", err)
	}
}

// Shutdown waits for all in-flight tasks to complete or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
