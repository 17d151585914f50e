package domain

import "time"

// TurnKind distinguishes who produced a conversation turn.
type TurnKind string

const (
	TurnCustomerInput TurnKind = "customer_input"
	TurnAIResponse    TurnKind = "ai_response"
)

// CustomerInfo is the optional caller identity attached to a conversation.
type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ConversationTurn is a single persisted exchange half within a session.
// Turns are immutable once written and ordered by Timestamp.
type ConversationTurn struct {
	SessionID    string        `json:"sessionId"`
	Message      string        `json:"message"`
	Timestamp    time.Time     `json:"timestamp"`
	Kind         TurnKind      `json:"type"`
	Action       string        `json:"action,omitempty"`
	FormData     *Record       `json:"formData,omitempty"`
	CustomerInfo *CustomerInfo `json:"customerInfo,omitempty"`
}
