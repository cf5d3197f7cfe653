// Package usecases - prompt.go assembles the exact payload sent to the LLM.
package usecases

import (
	"fmt"
	"strings"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
)

// buildSystemPrompt composes the persona text with the waiter identity block.
// Deterministic string composition - no conditional logic beyond the
// restaurant name substitution.
func buildSystemPrompt(persona, restaurant string) string {
	if restaurant == "" {
		restaurant = "the restaurant"
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(persona))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("You are the friendly waiter at %s.\n", restaurant))
	sb.WriteString("You have access to the restaurant's knowledge base. ")
	sb.WriteString("Relevant information is provided with each customer message. ")
	sb.WriteString("Use it to assist the customer. Be concise and friendly.")
	return sb.String()
}

// buildUserContent prefixes the retrieved snippet to the customer message.
func buildUserContent(snippet, message string) string {
	var sb strings.Builder
	sb.WriteString("Context from Knowledge Base:\n")
	sb.WriteString(snippet)
	sb.WriteString("\n\nCustomer: ")
	sb.WriteString(message)
	return sb.String()
}

// promptTurns returns the turns sent to the provider: a capped tail of the
// prior history followed by the new user turn. The cap bounds provider
// context only - returned history is never trimmed.
func promptTurns(history []entities.ChatTurn, userContent string, maxTurns int) []entities.ChatTurn {
	tail := history
	if maxTurns > 0 && len(tail) > maxTurns {
		tail = tail[len(tail)-maxTurns:]
	}

	turns := make([]entities.ChatTurn, 0, len(tail)+1)
	turns = append(turns, tail...)
	turns = append(turns, entities.ChatTurn{Role: entities.RoleUser, Content: userContent})
	return turns
}
