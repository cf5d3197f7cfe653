// Package http provides the HTTP transport layer.
// Clean Architecture: Infrastructure wiring the usecases to the outside world.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/pizza-alchemy/chatbot-go/docs"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/ports"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/usecases"
	applog "github.com/pizza-alchemy/chatbot-go/internal/infrastructure/log"
)

const serviceVersion = "1.0.0"

// Server is the HTTP server exposing the chatbot API.
type Server struct {
	addr     string
	provider string
	kb       *entities.KnowledgeBase
	persona  ports.PersonaSource
	chat     *usecases.ChatUseCase
	engine   *gin.Engine
	logger   *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr, provider string, kb *entities.KnowledgeBase, persona ports.PersonaSource, chat *usecases.ChatUseCase) *Server {
	s := &Server{
		addr:     addr,
		provider: provider,
		kb:       kb,
		persona:  persona,
		chat:     chat,
		logger:   applog.NewModuleLogger("http", "server"),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)
	engine.POST("/chat", s.handleChat)
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/redoc", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})

	s.engine = engine
	return s
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown failed", "error", err)
		}
	}()

	s.logger.Info("listening", "addr", s.addr, "provider", s.provider)
	return srv.ListenAndServe()
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		c.Next()

		s.logger.Info("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
