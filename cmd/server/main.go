// Command server runs the restaurant chatbot HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pizza-alchemy/chatbot-go/internal/adapters/filewatcher"
	"github.com/pizza-alchemy/chatbot-go/internal/adapters/knowledge"
	"github.com/pizza-alchemy/chatbot-go/internal/adapters/llm"
	"github.com/pizza-alchemy/chatbot-go/internal/adapters/persona"
	"github.com/pizza-alchemy/chatbot-go/internal/adapters/transcript"
	"github.com/pizza-alchemy/chatbot-go/internal/config"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/ports"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/usecases"
	httpserver "github.com/pizza-alchemy/chatbot-go/internal/infrastructure/http"
	applog "github.com/pizza-alchemy/chatbot-go/internal/infrastructure/log"
)

// @title Restaurant Chatbot API
// @version 1.0
// @description Keyword-retrieval chatbot for a restaurant, answering from a curated knowledge base.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		applog.GetLogger().Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	applog.Init(cfg.LogLevel, cfg.LogFormat)
	logger := applog.NewModuleLogger("cmd", "server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kb, err := knowledge.NewJSONLoader().Load(cfg.KBPath)
	if err != nil {
		logger.Error("loading knowledge base", "error", err)
		os.Exit(1)
	}
	logger.Info("knowledge base loaded", "restaurant", kb.Restaurant, "entries", len(kb.Entries))

	retriever, err := knowledge.NewKeywordRetriever(kb, knowledge.RetrieverConfig{
		MaxContextTokens: cfg.MaxContextTokens,
		CaseSensitive:    cfg.CaseSensitive,
	})
	if err != nil {
		logger.Error("building retriever", "error", err)
		os.Exit(1)
	}

	personaSrc, err := persona.NewSource(cfg.SystemPromptPath)
	if err != nil {
		logger.Error("loading persona", "error", err)
		os.Exit(1)
	}

	if cfg.PersonaReload {
		watcher, err := filewatcher.NewFSNotifyWatcher(nil)
		if err != nil {
			logger.Error("starting file watcher", "error", err)
			os.Exit(1)
		}
		defer watcher.Stop()
		go func() {
			if err := personaSrc.WatchForChanges(ctx, watcher); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("persona watch stopped", "error", err)
			}
		}()
		logger.Info("persona hot reload enabled", "path", cfg.SystemPromptPath)
	}

	var llmService ports.LLMService
	switch cfg.Provider {
	case config.ProviderGemini:
		llmService, err = llm.NewGeminiAdapter(ctx, cfg.APIKey, cfg.Model, cfg.LLMTimeout)
		if err != nil {
			logger.Error("creating gemini adapter", "error", err)
			os.Exit(1)
		}
	case config.ProviderOpenAI:
		llmService = llm.NewOpenAIAdapter(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.LLMTimeout)
	}

	var transcriptLog ports.TranscriptLog
	if cfg.TranscriptDBPath != "" {
		sqliteLog, err := transcript.NewSQLiteLog(cfg.TranscriptDBPath)
		if err != nil {
			logger.Error("opening transcript log", "error", err)
			os.Exit(1)
		}
		defer sqliteLog.Close()
		transcriptLog = sqliteLog
		logger.Info("transcript log enabled", "path", cfg.TranscriptDBPath)
	}

	chat := usecases.NewChatUseCase(retriever, llmService, personaSrc, transcriptLog, kb.Restaurant, cfg.MaxPromptTurns)
	server := httpserver.NewServer(cfg.Addr(), cfg.Provider, kb, personaSrc, chat)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
