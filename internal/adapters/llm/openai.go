// Package llm provides LLM provider adapters.
// Clean Architecture: Adapters implementing ports.LLMService.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/ports"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultTimeout       = 60 * time.Second

	// maxErrorBody bounds how much of a provider error payload we keep.
	maxErrorBody = 4096
)

// OpenAIAdapter implements ports.LLMService against any OpenAI-compatible
// chat completions endpoint.
type OpenAIAdapter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIAdapter creates an adapter for an OpenAI-compatible API.
// baseURL and model fall back to the OpenAI defaults when empty.
func NewOpenAIAdapter(baseURL, apiKey, model string, timeout time.Duration) *OpenAIAdapter {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIAdapter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// Chat sends one completion request and returns the assistant text.
func (a *OpenAIAdapter) Chat(ctx context.Context, system string, turns []entities.ChatTurn) (string, error) {
	resp, err := a.send(ctx, system, turns, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decoding completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// ChatStream sends one streaming completion request and emits content deltas
// on the returned channel. The channel is closed after the Done token.
func (a *OpenAIAdapter) ChatStream(ctx context.Context, system string, turns []entities.ChatTurn) (<-chan ports.StreamToken, error) {
	resp, err := a.send(ctx, system, turns, true)
	if err != nil {
		return nil, err
	}

	tokens := make(chan ports.StreamToken, 100)
	go func() {
		defer close(tokens)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				break
			}

			var chunk chatCompletionChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				emit(ctx, tokens, ports.StreamToken{Err: fmt.Errorf("decoding stream chunk: %w", err)})
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if content := chunk.Choices[0].Delta.Content; content != "" {
				if !emit(ctx, tokens, ports.StreamToken{Content: content}) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			emit(ctx, tokens, ports.StreamToken{Err: fmt.Errorf("reading stream: %w", err)})
			return
		}
		emit(ctx, tokens, ports.StreamToken{Done: true})
	}()

	return tokens, nil
}

// send posts a chat completion request and returns the raw response after
// status checking. The caller owns the body.
func (a *OpenAIAdapter) send(ctx context.Context, system string, turns []entities.ChatTurn, stream bool) (*http.Response, error) {
	messages := make([]chatMessage, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	for _, turn := range turns {
		messages = append(messages, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:    a.model,
		Messages: messages,
		Stream:   stream,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling provider: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &entities.ProviderError{StatusCode: resp.StatusCode, Body: string(detail)}
	}
	return resp, nil
}

// emit sends a token unless the context is gone. Reports whether the send
// happened.
func emit(ctx context.Context, tokens chan<- ports.StreamToken, tok ports.StreamToken) bool {
	select {
	case tokens <- tok:
		return true
	case <-ctx.Done():
		return false
	}
}
