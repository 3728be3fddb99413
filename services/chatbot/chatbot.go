package chatbot

import (
	"context"
	"fmt"
	"strings"

	"fixerhub/models"
	"fixerhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const fallbackReply = "I'm not sure I understood. I can help you find a provider, or answer questions about bookings, payments, certifications and disputes."

type DefaultChatService struct {
	Providers ProviderFinder
	// Generator and Store are optional.
	Generator Generator
	Store     ContextStore
}

func (s *DefaultChatService) Reply(ctx context.Context, userID string, req models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	// Signed-in users cannot read another user's session by guessing its id.
	storeKey := sessionID
	if userID != "" {
		storeKey = userID + ":" + sessionID
	}

	intent, reply := Classify(message)
	resp := &models.ChatResponse{SessionID: sessionID, Intent: intent, Reply: reply}

	switch intent {
	case IntentFindProvider:
		s.findProviders(ctx, message, resp)
	case IntentBookingHelp:
		resp.Actions = []models.ChatAction{{Label: "My bookings", Type: "navigate", Value: "/bookings"}}
	case IntentDispute:
		resp.Actions = []models.ChatAction{{Label: "Open a dispute", Type: "navigate", Value: "/disputes/new"}}
	case IntentFallback:
		resp.Reply = s.generate(ctx, storeKey, message)
	}

	s.remember(ctx, storeKey, message, resp.Reply)
	return resp, nil
}

func (s *DefaultChatService) findProviders(ctx context.Context, message string, resp *models.ChatResponse) {
	category, location := ExtractSearch(message)
	providers, err := s.Providers.SearchProviders(ctx, models.ProviderSearchCriteria{
		Category: category,
		Location: location,
		Limit:    3,
	})
	if err != nil {
		utils.GetLogger().Warn("chatbot provider search failed", zap.Error(err))
		resp.Reply = "I couldn't search providers right now. Please try again shortly."
		return
	}
	if len(providers) == 0 {
		resp.Reply = "I couldn't find a matching provider yet. Try another area or browse all providers."
		resp.Actions = []models.ChatAction{{Label: "Browse providers", Type: "navigate", Value: "/providers"}}
		return
	}

	what := "providers"
	if category != "" {
		what = category + " providers"
	}
	where := ""
	if location != "" {
		where = " near " + location
	}
	resp.Reply = fmt.Sprintf("Here are the top %s%s.", what, where)
	resp.Providers = make([]models.User, 0, len(providers))
	for _, p := range providers {
		resp.Providers = append(resp.Providers, p.Public())
		resp.Actions = append(resp.Actions, models.ChatAction{Label: "View " + p.Name, Type: "provider", Value: p.ID})
	}
}

func (s *DefaultChatService) generate(ctx context.Context, sessionID, message string) string {
	if s.Generator == nil {
		return fallbackReply
	}
	var history []models.ChatTurn
	if s.Store != nil {
		h, err := s.Store.Get(ctx, sessionID)
		if err != nil {
			utils.GetLogger().Warn("chat context unavailable", zap.Error(err))
		}
		history = h
	}
	text, err := s.Generator.Generate(ctx, history, message)
	if err != nil || text == "" {
		if err != nil {
			utils.GetLogger().Warn("chat generation failed", zap.Error(err))
		}
		return fallbackReply
	}
	return text
}

func (s *DefaultChatService) remember(ctx context.Context, sessionID, message, reply string) {
	if s.Store == nil {
		return
	}
	err := s.Store.Append(ctx, sessionID,
		models.ChatTurn{Role: "user", Text: message},
		models.ChatTurn{Role: "bot", Text: reply},
	)
	if err != nil {
		utils.GetLogger().Warn("chat context not saved", zap.Error(err))
	}
}
