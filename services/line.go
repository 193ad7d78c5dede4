package services

import (
	"context"
	"log/slog"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// LineReplier sends reply messages through the LINE Messaging API.
type LineReplier struct {
	client *messaging_api.MessagingApiAPI
}

func NewLineReplier(channelAccessToken string) (*LineReplier, error) {
	client, err := messaging_api.NewMessagingApiAPI(channelAccessToken)
	if err != nil {
		return nil, err
	}
	return &LineReplier{client: client}, nil
}

// Reply sends text correlated to an inbound event via its single-use reply
// token. Expired or already-used tokens fail and are not retried.
func (r *LineReplier) Reply(ctx context.Context, replyToken, text string) error {
	_, err := r.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})
	if err != nil {
		slog.Error("Failed to send LINE reply", "error", err)
		return err
	}

	return nil
}
