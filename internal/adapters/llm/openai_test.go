package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
)

func TestOpenAIChat(t *testing.T) {
	var gotBody chatCompletionRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "We open at 11am!"}},
			},
		})
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter(srv.URL, "test-key", "test-model", time.Second)
	answer, err := adapter.Chat(context.Background(), "persona", []entities.ChatTurn{
		{Role: entities.RoleUser, Content: "hours?"},
	})
	require.NoError(t, err)

	assert.Equal(t, "We open at 11am!", answer)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "persona", gotBody.Messages[0].Content)
	assert.Equal(t, "user", gotBody.Messages[1].Role)
	assert.False(t, gotBody.Stream)
}

func TestOpenAIChatProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter(srv.URL, "k", "m", time.Second)
	_, err := adapter.Chat(context.Background(), "", nil)
	require.Error(t, err)

	var provErr *entities.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
	assert.Contains(t, provErr.Body, "rate limited")
}

func TestOpenAIChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter(srv.URL, "k", "m", time.Second)
	_, err := adapter.Chat(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestOpenAIChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"We "}}]}` + "\n\n"))
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"open."}}]}` + "\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter(srv.URL, "k", "m", time.Second)
	tokens, err := adapter.ChatStream(context.Background(), "", []entities.ChatTurn{
		{Role: entities.RoleUser, Content: "hours?"},
	})
	require.NoError(t, err)

	var content string
	var done bool
	for tok := range tokens {
		require.NoError(t, tok.Err)
		content += tok.Content
		if tok.Done {
			done = true
		}
	}
	assert.Equal(t, "We open.", content)
	assert.True(t, done)
}

func TestOpenAIDefaults(t *testing.T) {
	adapter := NewOpenAIAdapter("", "k", "", 0)
	assert.Equal(t, defaultOpenAIBaseURL, adapter.baseURL)
	assert.Equal(t, defaultOpenAIModel, adapter.model)
	assert.Equal(t, defaultTimeout, adapter.client.Timeout)
}
