package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/ports"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/usecases"
)

type stubRetriever struct{}

func (stubRetriever) Retrieve(string) (string, bool) { return "Open daily.", true }

type stubPersona struct{ text string }

func (s stubPersona) System() string { return s.text }

type stubLLM struct {
	answer string
	err    error
	stream []ports.StreamToken
}

func (s *stubLLM) Chat(context.Context, string, []entities.ChatTurn) (string, error) {
	return s.answer, s.err
}

func (s *stubLLM) ChatStream(context.Context, string, []entities.ChatTurn) (<-chan ports.StreamToken, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan ports.StreamToken, len(s.stream))
	for _, tok := range s.stream {
		ch <- tok
	}
	close(ch)
	return ch, nil
}

func newTestServer(llm ports.LLMService, personaText string) *Server {
	kb := &entities.KnowledgeBase{
		Restaurant: "Pizza Alchemy",
		Entries:    []entities.KnowledgeEntry{{Topic: "Hours", Keywords: []string{"hours"}, Content: "Open daily."}},
	}
	persona := stubPersona{text: personaText}
	chat := usecases.NewChatUseCase(stubRetriever{}, llm, persona, nil, kb.Restaurant, 0)
	return NewServer(":0", "gemini", kb, persona, chat)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRootBanner(t *testing.T) {
	s := newTestServer(&stubLLM{answer: "hi"}, "persona")

	rec := doRequest(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Pizza Alchemy", body["restaurant"])
	assert.Equal(t, "gemini", body["provider"])
	assert.Equal(t, float64(1), body["entries"])
}

func TestHealthOK(t *testing.T) {
	s := newTestServer(&stubLLM{}, "persona")

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.True(t, body.KnowledgeBase)
	assert.True(t, body.Persona)
	assert.True(t, body.ProviderConfigured)
}

func TestHealthDegradedWithoutPersona(t *testing.T) {
	s := newTestServer(&stubLLM{}, "")

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.False(t, body.Persona)
}

func TestChatSuccess(t *testing.T) {
	s := newTestServer(&stubLLM{answer: "We open at 11am!"}, "persona")

	rec := doRequest(t, s, http.MethodPost, "/chat", `{
		"message": "when do you open?",
		"history": [{"role": "user", "content": "hi"}, {"role": "assistant", "content": "hello!"}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body ChatResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "We open at 11am!", body.Response)
	require.Len(t, body.History, 4)
	assert.Equal(t, "when do you open?", body.History[2].Content)
	assert.Equal(t, entities.RoleAssistant, body.History[3].Role)
}

func TestChatMissingMessage(t *testing.T) {
	s := newTestServer(&stubLLM{answer: "hi"}, "persona")

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"history": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatBlankMessage(t *testing.T) {
	s := newTestServer(&stubLLM{answer: "hi"}, "persona")

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"message": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatInvalidHistoryRole(t *testing.T) {
	s := newTestServer(&stubLLM{answer: "hi"}, "persona")

	rec := doRequest(t, s, http.MethodPost, "/chat", `{
		"message": "hi",
		"history": [{"role": "robot", "content": "beep"}]
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatProviderErrorHidesDetails(t *testing.T) {
	s := newTestServer(&stubLLM{err: &entities.ProviderError{StatusCode: 500, Body: "secret internal detail"}}, "persona")

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"message": "hi"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret internal detail")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "assistant is temporarily unavailable", body.Error)
}

func TestChatTimeout(t *testing.T) {
	s := newTestServer(&stubLLM{err: context.DeadlineExceeded}, "persona")

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"message": "hi"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestChatStreamSSE(t *testing.T) {
	s := newTestServer(&stubLLM{stream: []ports.StreamToken{
		{Content: "We "},
		{Content: "open."},
		{Done: true},
	}}, "persona")

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"message": "hours?", "stream": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	body := rec.Body.String()
	assert.Contains(t, body, "We ")
	assert.Contains(t, body, "open.")
	assert.Contains(t, body, `"done":true`)
	assert.Contains(t, body, "history")
}

func TestRedocRedirects(t *testing.T) {
	s := newTestServer(&stubLLM{}, "persona")

	rec := doRequest(t, s, http.MethodGet, "/redoc", "")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/docs/index.html", rec.Header().Get("Location"))
}
