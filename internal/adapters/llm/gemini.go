package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/ports"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiAdapter implements ports.LLMService against the Gemini API.
type GeminiAdapter struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiAdapter creates an adapter for the Gemini API.
func NewGeminiAdapter(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiAdapter, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiAdapter{client: client, model: model, timeout: timeout}, nil
}

// Chat sends one generation request and returns the model text.
func (a *GeminiAdapter) Chat(ctx context.Context, system string, turns []entities.ChatTurn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Models.GenerateContent(ctx, a.model, toContents(turns), generateConfig(system))
	if err != nil {
		return "", providerErr(err)
	}
	return resp.Text(), nil
}

// ChatStream sends one streaming generation request and emits text fragments
// on the returned channel.
func (a *GeminiAdapter) ChatStream(ctx context.Context, system string, turns []entities.ChatTurn) (<-chan ports.StreamToken, error) {
	streamCtx, cancel := context.WithTimeout(ctx, a.timeout)

	tokens := make(chan ports.StreamToken, 100)
	go func() {
		defer close(tokens)
		defer cancel()

		for resp, err := range a.client.Models.GenerateContentStream(streamCtx, a.model, toContents(turns), generateConfig(system)) {
			if err != nil {
				emit(streamCtx, tokens, ports.StreamToken{Err: providerErr(err)})
				return
			}
			if text := resp.Text(); text != "" {
				if !emit(streamCtx, tokens, ports.StreamToken{Content: text}) {
					return
				}
			}
		}
		emit(streamCtx, tokens, ports.StreamToken{Done: true})
	}()

	return tokens, nil
}

// generateConfig puts the persona into the system instruction.
func generateConfig(system string) *genai.GenerateContentConfig {
	if system == "" {
		return nil
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
}

// toContents maps chat turns to Gemini contents. Gemini has no system role
// inside the conversation, so stray system turns are folded into user turns.
func toContents(turns []entities.ChatTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		var role genai.Role = genai.RoleUser
		if turn.Role == entities.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	return contents
}

// providerErr maps a Gemini API error to the domain provider error.
func providerErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &entities.ProviderError{StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	return err
}
