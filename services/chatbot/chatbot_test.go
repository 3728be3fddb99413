package chatbot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fixerhub/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"I need a plumber in Colombo", IntentFindProvider},
		{"Looking for an electrician near Kandy.", IntentFindProvider},
		{"How do I cancel my booking?", IntentBookingHelp},
		{"Can I pay by card?", IntentPaymentHelp},
		{"How many points for silver level", IntentCertification},
		{"The provider did not show up, I want to complain", IntentDispute},
		{"how much does it cost", IntentPricing},
		{"thanks a lot", IntentThanks},
		{"Hello there", IntentGreeting},
		{"what is the weather like", IntentFallback},
	}
	for _, tt := range tests {
		got, reply := Classify(tt.message)
		if got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.message, got, tt.want)
		}
		if tt.want != IntentFindProvider && tt.want != IntentFallback && reply == "" {
			t.Errorf("Classify(%q) returned no canned reply", tt.message)
		}
	}
}

func TestExtractSearch(t *testing.T) {
	tests := []struct {
		message, category, location string
	}{
		{"I need a plumber in Colombo", "plumbing", "colombo"},
		{"Looking for an electrician near Kandy.", "electrical", "kandy"},
		{"find a house cleaner around mount lavinia, please", "cleaning", "mount lavinia"},
		{"hire a fixer", "", ""},
	}
	for _, tt := range tests {
		category, location := ExtractSearch(tt.message)
		if category != tt.category || location != tt.location {
			t.Errorf("ExtractSearch(%q) = (%q, %q), want (%q, %q)", tt.message, category, location, tt.category, tt.location)
		}
	}
}

type fakeFinder struct {
	providers []models.User
	err       error
	got       models.ProviderSearchCriteria
}

func (f *fakeFinder) SearchProviders(_ context.Context, c models.ProviderSearchCriteria) ([]models.User, error) {
	f.got = c
	return f.providers, f.err
}

type fakeGenerator struct {
	text    string
	err     error
	history []models.ChatTurn
}

func (g *fakeGenerator) Generate(_ context.Context, history []models.ChatTurn, message string) (string, error) {
	g.history = history
	return g.text, g.err
}

type mapStore map[string][]models.ChatTurn

func (m mapStore) Get(_ context.Context, sessionID string) ([]models.ChatTurn, error) {
	return m[sessionID], nil
}

func (m mapStore) Append(_ context.Context, sessionID string, turns ...models.ChatTurn) error {
	m[sessionID] = append(m[sessionID], turns...)
	return nil
}

func TestReplyFindsProviders(t *testing.T) {
	finder := &fakeFinder{providers: []models.User{
		{ID: "provider-1", Name: "Sunil", Phone: "0771234567", Role: models.RoleProvider},
		{ID: "provider-2", Name: "Ruwan", Role: models.RoleProvider},
	}}
	svc := &DefaultChatService{Providers: finder}

	resp, err := svc.Reply(context.Background(), "", models.ChatRequest{Message: "I need a plumber in Colombo"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
	if finder.got.Category != "plumbing" || finder.got.Location != "colombo" || finder.got.Limit != 3 {
		t.Fatalf("search criteria = %+v", finder.got)
	}
	if resp.Reply != "Here are the top plumbing providers near colombo." {
		t.Fatalf("reply = %q", resp.Reply)
	}
	if len(resp.Providers) != 2 || resp.Providers[0].Phone != "" {
		t.Fatalf("providers = %+v", resp.Providers)
	}
	if len(resp.Actions) != 2 || resp.Actions[1].Value != "provider-2" {
		t.Fatalf("actions = %+v", resp.Actions)
	}
}

func TestReplyWithNoProviders(t *testing.T) {
	svc := &DefaultChatService{Providers: &fakeFinder{}}
	resp, err := svc.Reply(context.Background(), "", models.ChatRequest{Message: "find a gardener"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if !strings.Contains(resp.Reply, "couldn't find") || len(resp.Actions) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}

	svc.Providers = &fakeFinder{err: errors.New("mongo down")}
	resp, err = svc.Reply(context.Background(), "", models.ChatRequest{Message: "find a gardener"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if !strings.Contains(resp.Reply, "couldn't search") {
		t.Fatalf("reply = %q", resp.Reply)
	}
}

func TestReplyFallback(t *testing.T) {
	svc := &DefaultChatService{Providers: &fakeFinder{}}
	resp, err := svc.Reply(context.Background(), "", models.ChatRequest{Message: "what is the weather like"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if resp.Intent != IntentFallback || resp.Reply != fallbackReply {
		t.Fatalf("unexpected response %+v", resp)
	}

	svc.Generator = &fakeGenerator{err: errors.New("quota exceeded")}
	resp, err = svc.Reply(context.Background(), "", models.ChatRequest{Message: "what is the weather like"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if resp.Reply != fallbackReply {
		t.Fatalf("reply = %q, want fallback", resp.Reply)
	}
}

func TestReplyKeepsSessionContextPerUser(t *testing.T) {
	store := mapStore{}
	gen := &fakeGenerator{text: "Sunny in Colombo today."}
	svc := &DefaultChatService{Providers: &fakeFinder{}, Generator: gen, Store: store}
	ctx := context.Background()

	first, err := svc.Reply(ctx, "seeker-1", models.ChatRequest{SessionID: "s1", Message: "Hello"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if first.Intent != IntentGreeting {
		t.Fatalf("intent = %s", first.Intent)
	}

	resp, err := svc.Reply(ctx, "seeker-1", models.ChatRequest{SessionID: "s1", Message: "what is the weather like"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if resp.Reply != "Sunny in Colombo today." {
		t.Fatalf("reply = %q", resp.Reply)
	}
	if len(gen.history) != 2 || gen.history[0].Text != "Hello" || gen.history[1].Role != "bot" {
		t.Fatalf("history = %+v", gen.history)
	}

	if _, err := svc.Reply(ctx, "seeker-2", models.ChatRequest{SessionID: "s1", Message: "what is the weather like"}); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if len(gen.history) != 0 {
		t.Fatalf("another user saw %d turns of the session", len(gen.history))
	}
	if len(store["seeker-1:s1"]) != 4 || len(store["seeker-2:s1"]) != 2 {
		t.Fatalf("stored turns = %d and %d", len(store["seeker-1:s1"]), len(store["seeker-2:s1"]))
	}
}
