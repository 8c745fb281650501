package conversation

import "time"

// Status marks whether a conversation is still open for new messages.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Conversation groups all messages exchanged with one customer over time.
// At most one conversation per customer number is active at any point.
type Conversation struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customerId"`
	DisplayName  string    `json:"displayName,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	MessageCount int       `json:"messageCount"`
}
