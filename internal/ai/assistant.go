// Package ai forwards the site's fixed prompt templates to a chat completion
// API and returns the generated text unchanged.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/PortNumber53/lifesync-pro/backend/internal/apperr"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

const (
	chatMaxTokens     = 256
	insightsMaxTokens = 1024
)

var errMissingKey = errors.New("completion API key is not configured")

// ChatCompleter is the subset of the OpenAI client used by Assistant.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Assistant is a stateless prompt proxy. Each call is independent.
type Assistant struct {
	client ChatCompleter
	model  string
}

// NewAssistant builds an Assistant backed by the OpenAI API. An empty apiKey
// still yields a usable value whose calls fail with an upstream error.
func NewAssistant(apiKey, model string) *Assistant {
	var client ChatCompleter
	if strings.TrimSpace(apiKey) != "" {
		client = openai.NewClient(apiKey)
	}
	return NewAssistantWithClient(client, model)
}

// NewAssistantWithClient builds an Assistant around an existing completer.
func NewAssistantWithClient(client ChatCompleter, model string) *Assistant {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Assistant{client: client, model: model}
}

// Chat answers a free-form message as the LifeSync Pro assistant. userContext
// is optional background about the user.
func (a *Assistant) Chat(ctx context.Context, message, userContext string) (string, error) {
	return a.complete(ctx, "ai.Chat", chatSystemPrompt(userContext), message, chatMaxTokens)
}

// GoalRecommendations asks for three goals formatted as a JSON array.
func (a *Assistant) GoalRecommendations(ctx context.Context, userContext string) (string, error) {
	prompt := fmt.Sprintf(
		"As a productivity and finance expert, provide 3 specific, achievable goals for this user based on their context: \"%s\". "+
			"Format as a JSON array with objects containing 'goal', 'category' (finance/health/productivity/learning), "+
			"'difficulty' (easy/medium/hard), and 'reward_points'.",
		userContext,
	)
	return a.complete(ctx, "ai.GoalRecommendations", "", prompt, insightsMaxTokens)
}

// FinancialInsights asks for three insights formatted as a JSON object.
func (a *Assistant) FinancialInsights(ctx context.Context, financialData string) (string, error) {
	prompt := fmt.Sprintf(
		"As a financial advisor, analyze this financial data and provide 3 actionable insights: \"%s\". "+
			"Be specific and practical. Format as a JSON object with 'insights' array containing objects with 'title' and 'recommendation'.",
		financialData,
	)
	return a.complete(ctx, "ai.FinancialInsights", "", prompt, insightsMaxTokens)
}

// AnalyzeProgress reviews progress on a goal through the chat template.
func (a *Assistant) AnalyzeProgress(ctx context.Context, goalDescription string, progress float64) (string, error) {
	message := fmt.Sprintf(
		"Analyze my goal progress: \"%s\" - I'm at %s%% completion. Provide next steps and encouragement.",
		goalDescription, strconv.FormatFloat(progress, 'f', -1, 64),
	)
	return a.complete(ctx, "ai.AnalyzeProgress", chatSystemPrompt(""), message, chatMaxTokens)
}

func chatSystemPrompt(userContext string) string {
	var b strings.Builder
	b.WriteString("You are LifeSync Pro, an AI assistant helping ambitious professionals manage their finances, track goals, and grow side hustles.\n")
	if userContext != "" {
		b.WriteString("User context: ")
		b.WriteString(userContext)
		b.WriteString("\n")
	}
	b.WriteString("Be concise, helpful, and encouraging. Keep responses under 150 words.")
	return b.String()
}

func (a *Assistant) complete(ctx context.Context, op, system, user string, maxTokens int) (string, error) {
	if a.client == nil {
		return "", apperr.Upstream(op, errMissingKey)
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", apperr.Upstream(op, err)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.Upstream(op, errors.New("completion returned no choices"))
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", apperr.Upstream(op, errors.New("completion returned empty content"))
	}
	return content, nil
}
