package repositories

import (
	"database/sql"
	"fmt"
	"whatsapp-console/internal/models"
	"whatsapp-console/internal/utils"
)

// MySQLConversationRepository reads and appends rows of the flat
// conversation log. The table name is fixed at construction; there is no
// fallback probing of alternative names.
type MySQLConversationRepository struct {
	db    *sql.DB
	table string
}

func NewMySQLConversationRepository(db *sql.DB, table string) (*MySQLConversationRepository, error) {
	r := &MySQLConversationRepository{db: db, table: table}
	if err := r.verifyTable(); err != nil {
		return nil, err
	}
	return r, nil
}

// verifyTable fails fast when the configured table is missing, instead
// of discovering it on the first request.
func (r *MySQLConversationRepository) verifyTable() error {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?`, r.table).Scan(&count)
	if err != nil {
		return fmt.Errorf("error checking conversation table: %v", err)
	}
	if count == 0 {
		return fmt.Errorf("conversation table %q does not exist", r.table)
	}
	return nil
}

func (r *MySQLConversationRepository) GetAll() ([]*models.ConversationRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, sender, recipient, sender_message, recipient_message, created_at
		FROM %s
		ORDER BY created_at DESC, id DESC`, r.table)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %v", err)
	}
	defer rows.Close()

	var records []*models.ConversationRecord

	for rows.Next() {
		record := &models.ConversationRecord{}
		var senderMessage, recipientMessage sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.Sender,
			&record.Recipient,
			&senderMessage,
			&recipientMessage,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation: %v", err)
		}

		record.SenderMessage = senderMessage.String
		record.RecipientMessage = recipientMessage.String

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %v", err)
	}

	return records, nil
}

func (r *MySQLConversationRepository) Save(record *models.ConversationRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (sender, recipient, sender_message, recipient_message, created_at)
		VALUES (?, ?, ?, ?, NOW())`, r.table)

	result, err := r.db.Exec(query,
		record.Sender,
		record.Recipient,
		utils.NullString(record.SenderMessage),
		utils.NullString(record.RecipientMessage),
	)
	if err != nil {
		return fmt.Errorf("error saving conversation record: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("error getting last insert id: %v", err)
	}

	record.ID = id
	return nil
}
