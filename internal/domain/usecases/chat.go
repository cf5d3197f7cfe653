// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
	"github.com/pizza-alchemy/chatbot-go/internal/domain/ports"
)

const defaultMaxPromptTurns = 20

// ChatUseCase orchestrates one chat exchange:
// retrieve context -> assemble prompt -> call LLM -> append history.
// Idle -> Processing -> Idle per request; no state survives between calls.
type ChatUseCase struct {
	retriever      ports.ContextRetriever
	llm            ports.LLMService
	persona        ports.PersonaSource
	transcript     ports.TranscriptLog // optional, may be nil
	restaurant     string
	maxPromptTurns int
	logger         *slog.Logger
}

// NewChatUseCase creates a ChatUseCase with injected dependencies.
// transcript may be nil to disable exchange logging.
func NewChatUseCase(
	retriever ports.ContextRetriever,
	llm ports.LLMService,
	persona ports.PersonaSource,
	transcript ports.TranscriptLog,
	restaurant string,
	maxPromptTurns int,
) *ChatUseCase {
	if maxPromptTurns <= 0 {
		maxPromptTurns = defaultMaxPromptTurns
	}
	return &ChatUseCase{
		retriever:      retriever,
		llm:            llm,
		persona:        persona,
		transcript:     transcript,
		restaurant:     restaurant,
		maxPromptTurns: maxPromptTurns,
		logger:         slog.Default().With("module", "usecases", "component", "chat"),
	}
}

// Chat handles one non-streaming exchange.
func (uc *ChatUseCase) Chat(ctx context.Context, req *entities.ChatRequest) (*entities.ChatResponse, error) {
	system, turns, err := uc.prepare(req)
	if err != nil {
		return nil, err
	}

	answer, err := uc.llm.Chat(ctx, system, turns)
	if err != nil {
		return nil, fmt.Errorf("generating response: %w", err)
	}

	resp := finalize(req, answer)
	uc.record(ctx, req.Message, answer)
	return resp, nil
}

// ChatStream handles one streaming exchange. Each fragment is passed to
// onChunk as it arrives; the concatenation becomes the assistant turn of the
// returned history. On mid-stream failure the partial response (if any) is
// returned alongside the error so the caller still gets a usable history.
func (uc *ChatUseCase) ChatStream(ctx context.Context, req *entities.ChatRequest, onChunk func(string)) (*entities.ChatResponse, error) {
	system, turns, err := uc.prepare(req)
	if err != nil {
		return nil, err
	}

	tokens, err := uc.llm.ChatStream(ctx, system, turns)
	if err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}

	var full strings.Builder
	for tok := range tokens {
		if tok.Err != nil {
			err = fmt.Errorf("streaming response: %w", tok.Err)
			break
		}
		if tok.Content != "" {
			full.WriteString(tok.Content)
			if onChunk != nil {
				onChunk(tok.Content)
			}
		}
		if tok.Done {
			break
		}
	}

	if err != nil {
		if full.Len() == 0 {
			return nil, err
		}
		return finalize(req, full.String()), err
	}

	resp := finalize(req, full.String())
	uc.record(ctx, req.Message, resp.Response)
	return resp, nil
}

// prepare validates the request and assembles the provider payload.
func (uc *ChatUseCase) prepare(req *entities.ChatRequest) (system string, turns []entities.ChatTurn, err error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", nil, entities.ErrEmptyMessage
	}
	for _, turn := range req.History {
		if !turn.Role.Valid() {
			return "", nil, fmt.Errorf("%w: %q", entities.ErrInvalidRole, turn.Role)
		}
	}

	snippet, _ := uc.retriever.Retrieve(req.Message)
	system = buildSystemPrompt(uc.persona.System(), uc.restaurant)
	turns = promptTurns(req.History, buildUserContent(snippet, req.Message), uc.maxPromptTurns)
	return system, turns, nil
}

// finalize appends the user and assistant turns to a copy of the input
// history. The input slice is never mutated.
func finalize(req *entities.ChatRequest, answer string) *entities.ChatResponse {
	history := make([]entities.ChatTurn, 0, len(req.History)+2)
	history = append(history, req.History...)
	history = append(history,
		entities.ChatTurn{Role: entities.RoleUser, Content: req.Message},
		entities.ChatTurn{Role: entities.RoleAssistant, Content: answer},
	)
	return &entities.ChatResponse{Response: answer, History: history}
}

// record writes the exchange to the transcript log, best effort.
func (uc *ChatUseCase) record(ctx context.Context, message, answer string) {
	if uc.transcript == nil {
		return
	}
	if err := uc.transcript.Record(ctx, entities.Transcript{Message: message, Response: answer}); err != nil {
		uc.logger.Warn("transcript record failed", "error", err)
	}
}
