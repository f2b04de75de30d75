package models

import "time"

// Contact sources accepted by the importer.
const (
	ContactSourcePhone  = "phone"
	ContactSourceCSV    = "csv"
	ContactSourceManual = "manual"
)

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ContactRepository interface {
	GetAll() ([]*Contact, error)
	GetByPhone(phone string) (*Contact, error)
	Save(contact *Contact) error
	Delete(id string, phone string) error
}
