package repositories

import (
	"database/sql"
	"fmt"
	"whatsapp-console/internal/models"
)

type MySQLContactRepository struct {
	db *sql.DB
}

func NewMySQLContactRepository(db *sql.DB) *MySQLContactRepository {
	return &MySQLContactRepository{db: db}
}

func (r *MySQLContactRepository) GetAll() ([]*models.Contact, error) {
	query := `
		SELECT id, name, phone, source, created_at, updated_at
		FROM contacts
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying contacts: %v", err)
	}
	defer rows.Close()

	var contacts []*models.Contact

	for rows.Next() {
		contact := &models.Contact{}
		err := rows.Scan(
			&contact.ID,
			&contact.Name,
			&contact.Phone,
			&contact.Source,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning contact: %v", err)
		}
		contacts = append(contacts, contact)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %v", err)
	}

	return contacts, nil
}

func (r *MySQLContactRepository) GetByPhone(phone string) (*models.Contact, error) {
	query := `
		SELECT id, name, phone, source, created_at, updated_at
		FROM contacts
		WHERE phone = ?`

	contact := &models.Contact{}
	err := r.db.QueryRow(query, phone).Scan(
		&contact.ID,
		&contact.Name,
		&contact.Phone,
		&contact.Source,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting contact: %v", err)
	}

	return contact, nil
}

func (r *MySQLContactRepository) Save(contact *models.Contact) error {
	// The phone column is UNIQUE; re-importing a known number refreshes
	// the name instead of inserting a duplicate.
	query := `
		INSERT INTO contacts (id, name, phone, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE name = VALUES(name), updated_at = NOW()`

	_, err := r.db.Exec(query,
		contact.ID,
		contact.Name,
		contact.Phone,
		contact.Source,
	)
	if err != nil {
		return fmt.Errorf("error saving contact: %v", err)
	}

	return nil
}

func (r *MySQLContactRepository) Delete(id string, phone string) error {
	result, err := r.db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting contact: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}

	// Older imports had generated ids that never reached the client, so
	// fall back to the phone number.
	if rows == 0 && phone != "" {
		result, err = r.db.Exec(`DELETE FROM contacts WHERE phone = ?`, phone)
		if err != nil {
			return fmt.Errorf("error deleting contact by phone: %v", err)
		}
		rows, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("error getting rows affected: %v", err)
		}
	}

	if rows == 0 {
		return fmt.Errorf("contact not found")
	}

	return nil
}
