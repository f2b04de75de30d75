package models

import "time"

// ConversationRecord is one row of the flat conversation log. A single
// row can carry both a customer message and the business reply from the
// same exchange, so either side may be empty but not both.
type ConversationRecord struct {
	ID               int64
	Sender           string
	Recipient        string
	SenderMessage    string
	RecipientMessage string
	CreatedAt        time.Time
}

type ConversationRepository interface {
	GetAll() ([]*ConversationRecord, error)
	Save(record *ConversationRecord) error
}
