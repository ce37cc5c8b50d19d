package dto

// StartChatRequest payload.
type StartChatRequest struct {
	Email string `json:"email"`
}

// ChatTurnRequest payload.
type ChatTurnRequest struct {
	Message string `json:"message"`
}

// ChatReply mirrors a conversation reply. The conversation token is only
// present on a successful start and must accompany every turn.
type ChatReply struct {
	OK                bool           `json:"ok"`
	Message           string         `json:"message"`
	ConversationToken string         `json:"conversation_token,omitempty"`
	TicketResult      map[string]any `json:"ticket_result,omitempty"`
}

// PingResponse is the liveness probe payload.
type PingResponse struct {
	OK  bool   `json:"ok"`
	Now string `json:"now"`
}
