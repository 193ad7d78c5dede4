package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"line-dealer-bot/models"
)

// NoMatchMessage is the canned reply when no vehicle matches the question.
const NoMatchMessage = "不好意思，根據您的描述，目前資料庫中找不到符合的車輛。您可以試著更換關鍵字，例如「藍色 豐田」或「2023年的休旅車」。"

const salesSystemPrompt = "你是一位專業、親切且樂於助人的汽車銷售顧問。你的任務是根據公司提供的車輛資料庫資訊，" +
	"來回答客戶的問題。請用繁體中文回答。" +
	"你的回答應該基於以下提供的「符合的車輛資料」。" +
	"請不要編造資料中沒有的資訊。如果資料不完整，可以友善地提醒客戶歡迎來店詳談。" +
	"回答時，先總結有哪些車款可能符合客戶需求，然後可以稍微詳細介紹其中一兩款。"

// VehicleSearcher is the inventory lookup used by the responder.
type VehicleSearcher interface {
	Search(ctx context.Context, keyword string, limit int64) ([]models.Vehicle, error)
}

// Responder answers free-text customer questions by combining an inventory
// lookup with a chat completion call.
type Responder struct {
	client   openai.Client
	model    string
	vehicles VehicleSearcher
}

func NewResponder(apiKey, model string, vehicles VehicleSearcher) *Responder {
	return &Responder{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		vehicles: vehicles,
	}
}

// Answer resolves the customer's question against the inventory. It returns a
// canned message when nothing matches and an error on any collaborator
// failure; the caller decides how to degrade.
func (r *Responder) Answer(ctx context.Context, question string) (string, error) {
	processed := ConvertChineseNumerals(question)
	slog.Info("Handling inventory question", "question", question, "processed", processed)

	vehicles, err := r.vehicles.Search(ctx, processed, 5)
	if err != nil {
		return "", fmt.Errorf("search vehicles: %w", err)
	}

	if len(vehicles) == 0 {
		return NoMatchMessage, nil
	}

	completion, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(salesSystemPrompt),
			openai.UserMessage(buildSalesPrompt(question, vehicles)),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	slog.Info("Completion generated",
		"inputTokens", completion.Usage.PromptTokens,
		"outputTokens", completion.Usage.CompletionTokens,
		"matches", len(vehicles),
	)

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// buildSalesPrompt assembles the user prompt from the customer question and
// the formatted inventory matches.
func buildSalesPrompt(question string, vehicles []models.Vehicle) string {
	formatted := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		formatted = append(formatted, FormatVehicleDetails(v))
	}

	return fmt.Sprintf(`客戶的問題是：「%s」

以下是從我們資料庫中找到，可能符合的車輛資料：
---
%s
---

請根據以上資料，以專業銷售顧問的口吻回答客戶的問題。`, question, strings.Join(formatted, "\n\n---\n\n"))
}
