package models

import "time"

// Message direction relative to the business.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Delivery status shown in the conversation view. The gateway does not
// report delivery receipts back to us, so every message renders as read.
const StatusRead = "read"

// UnknownCustomerID is the sentinel identity for records whose phone
// cannot be normalized. A fixed value keeps reconstruction idempotent.
const UnknownCustomerID = 0

// Customer is derived from the conversation log on every read; it is
// never persisted. Identity is stable across reconstructions because the
// id is a pure function of the normalized phone.
type Customer struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	LastActivity time.Time `json:"last_activity"`
	IsOnline     bool      `json:"is_online"`
	UnreadCount  int       `json:"unread_count"`
}

// Message is derived from a ConversationRecord. One record emits up to
// two messages: the sender side gets id record*2, the recipient side
// record*2+1, so both turns stay unique in a single id space.
type Message struct {
	ID         int64     `json:"id"`
	CustomerID int       `json:"customer_id"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Direction  string    `json:"direction"`
	Status     string    `json:"status"`
}

// DashboardStats summarizes the reconstructed conversation set for the
// dashboard cards.
type DashboardStats struct {
	TotalConversations   int     `json:"total_conversations"`
	ActiveConversations  int     `json:"active_conversations"`
	AvgResponseTime      string  `json:"avg_response_time"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	NewToday             int     `json:"new_today"`
}
