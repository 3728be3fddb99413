package chatbot

import (
	"context"

	"fixerhub/models"
)

// ChatService answers chat widget messages.
type ChatService interface {
	Reply(ctx context.Context, userID string, req models.ChatRequest) (*models.ChatResponse, error)
}

// ProviderFinder is the slice of the user service the bot needs.
type ProviderFinder interface {
	SearchProviders(ctx context.Context, criteria models.ProviderSearchCriteria) ([]models.User, error)
}

// Generator produces free text for messages no rule matched.
type Generator interface {
	Generate(ctx context.Context, history []models.ChatTurn, message string) (string, error)
}

// ContextStore keeps the recent turns of a chat session.
type ContextStore interface {
	Get(ctx context.Context, sessionID string) ([]models.ChatTurn, error)
	Append(ctx context.Context, sessionID string, turns ...models.ChatTurn) error
}
