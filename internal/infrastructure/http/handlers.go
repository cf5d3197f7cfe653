package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
)

// ChatRequestBody is the wire shape of a chat request.
type ChatRequestBody struct {
	Message string              `json:"message" binding:"required" example:"What pizzas do you have?"`
	History []entities.ChatTurn `json:"history"`
	Stream  bool                `json:"stream"`
}

// ChatResponseBody is the wire shape of a chat response.
type ChatResponseBody struct {
	Response string              `json:"response"`
	History  []entities.ChatTurn `json:"history"`
}

// ErrorResponse is the wire shape of an error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports per-component readiness.
type HealthResponse struct {
	Status             string `json:"status"`
	KnowledgeBase      bool   `json:"knowledge_base_loaded"`
	Persona            bool   `json:"persona_loaded"`
	ProviderConfigured bool   `json:"provider_configured"`
}

// streamEvent is one SSE payload during a streaming chat.
type streamEvent struct {
	Content string              `json:"content,omitempty"`
	Done    bool                `json:"done"`
	History []entities.ChatTurn `json:"history,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// handleRoot godoc
// @Summary Service banner
// @Description Returns the service name and restaurant.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":    "restaurant-chatbot",
		"version":    serviceVersion,
		"restaurant": s.kb.Restaurant,
		"entries":    len(s.kb.Entries),
		"provider":   s.provider,
		"docs":       "/docs/index.html",
	})
}

// handleHealth godoc
// @Summary Health check
// @Description Reports whether the knowledge base, persona, and provider are ready.
// @Tags meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		KnowledgeBase:      s.kb != nil && len(s.kb.Entries) > 0,
		Persona:            s.persona != nil && s.persona.System() != "",
		ProviderConfigured: s.provider != "",
	}

	if resp.KnowledgeBase && resp.Persona && resp.ProviderConfigured {
		resp.Status = "ok"
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Status = "degraded"
	c.JSON(http.StatusServiceUnavailable, resp)
}

// handleChat godoc
// @Summary Chat with the restaurant assistant
// @Description Answers a customer message using the knowledge base. Set stream to true for server-sent events.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body ChatRequestBody true "Chat request"
// @Success 200 {object} ChatResponseBody
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /chat [post]
func (s *Server) handleChat(c *gin.Context) {
	var body ChatRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message is required"})
		return
	}

	req := &entities.ChatRequest{Message: body.Message, History: body.History}
	if body.Stream {
		s.streamChat(c, req)
		return
	}

	resp, err := s.chat.Chat(c.Request.Context(), req)
	if err != nil {
		s.writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChatResponseBody{Response: resp.Response, History: resp.History})
}

// streamChat delivers the response as server-sent events. Each event carries
// a content fragment; the final event carries the full history.
func (s *Server) streamChat(c *gin.Context, req *entities.ChatRequest) {
	// Headers go out with the first event, so errors raised before any
	// fragment arrives can still be plain JSON responses.
	started := false
	begin := func() {
		if started {
			return
		}
		started = true
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
	}

	resp, err := s.chat.ChatStream(c.Request.Context(), req, func(chunk string) {
		begin()
		c.SSEvent("message", streamEvent{Content: chunk})
		c.Writer.Flush()
	})
	if err != nil {
		if !started {
			s.writeChatError(c, err)
			return
		}
		s.logChatError(c, err)
		c.SSEvent("message", streamEvent{Done: true, Error: "assistant is temporarily unavailable"})
		c.Writer.Flush()
		return
	}

	begin()
	c.SSEvent("message", streamEvent{Done: true, History: resp.History})
	c.Writer.Flush()
}

// writeChatError maps domain errors to HTTP statuses. Provider payloads are
// logged but never forwarded to the client.
func (s *Server) writeChatError(c *gin.Context, err error) {
	s.logChatError(c, err)

	switch {
	case errors.Is(err, entities.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message must not be empty"})
	case errors.Is(err, entities.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "history contains an invalid role"})
	case entities.IsTimeout(err):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "assistant timed out"})
	default:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "assistant is temporarily unavailable"})
	}
}

func (s *Server) logChatError(c *gin.Context, err error) {
	requestID, _ := c.Get("request_id")
	s.logger.Error("chat failed", "request_id", requestID, "error", err)
}
