package models

// ChatRequest is the payload sent by the chat widget.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message" binding:"required"`
}

// ChatAction is a quick-reply button rendered under a bot message.
type ChatAction struct {
	Label string `json:"label"`
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type ChatResponse struct {
	SessionID string       `json:"sessionId"`
	Intent    string       `json:"intent"`
	Reply     string       `json:"reply"`
	Providers []User       `json:"providers,omitempty"`
	Actions   []ChatAction `json:"actions,omitempty"`
}

// ChatTurn is one exchange kept in the per-session context.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
