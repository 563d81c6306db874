package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"locallisting/internal/models"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

const messageColumns = `
	m.message_id, m.conversation_id, m.sender_id, u.username AS sender_username,
	m.content, m.timestamp, m.is_read
`

// Create stores the message and bumps the conversation's updated_at.
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.MessageID == "" {
		message.MessageID = uuid.New().String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO messages (message_id, conversation_id, sender_id, content, timestamp, is_read)
		VALUES (:message_id, :conversation_id, :sender_id, :content, :timestamp, :is_read)
	`, message)
	if err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = $1 WHERE conversation_id = $2`,
		message.Timestamp, message.ConversationID)
	if err != nil {
		return fmt.Errorf("error touching conversation: %w", err)
	}
	if err = checkAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	messages := []models.Message{}

	err := r.db.SelectContext(ctx, &messages, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.user_id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.timestamp
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}

	return messages, nil
}

// LastMessages returns the newest message of each conversation that has one.
func (r *messageRepository) LastMessages(ctx context.Context, conversationIDs []string) (map[string]models.Message, error) {
	last := make(map[string]models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return last, nil
	}

	var messages []models.Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT DISTINCT ON (m.conversation_id) `+messageColumns+`
		FROM messages m
		JOIN users u ON u.user_id = m.sender_id
		WHERE m.conversation_id = ANY($1)
		ORDER BY m.conversation_id, m.timestamp DESC
	`, pq.Array(conversationIDs))
	if err != nil {
		return nil, fmt.Errorf("error getting last messages: %w", err)
	}

	for _, message := range messages {
		last[message.ConversationID] = message
	}

	return last, nil
}

// MarkAsRead flags unread messages not sent by the reader. An empty messageIDs marks
// every such message in the conversation.
func (r *messageRepository) MarkAsRead(ctx context.Context, conversationID, readerID string, messageIDs []string) (int64, error) {
	query := `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND NOT is_read
	`
	args := []interface{}{conversationID, readerID}
	if len(messageIDs) > 0 {
		query += ` AND message_id = ANY($3)`
		args = append(args, pq.Array(messageIDs))
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error marking messages as read: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking affected rows: %w", err)
	}

	return updated, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int

	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversation_participants p ON p.conversation_id = m.conversation_id
		WHERE p.user_id = $1 AND m.sender_id <> $1 AND NOT m.is_read
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}

	return count, nil
}

func (r *messageRepository) CountUnreadByConversation(ctx context.Context, userID string) (map[string]int, error) {
	var rows []struct {
		ConversationID string `db:"conversation_id"`
		Count          int    `db:"unread_count"`
	}

	err := r.db.SelectContext(ctx, &rows, `
		SELECT m.conversation_id, COUNT(*) AS unread_count
		FROM messages m
		JOIN conversation_participants p ON p.conversation_id = m.conversation_id
		WHERE p.user_id = $1 AND m.sender_id <> $1 AND NOT m.is_read
		GROUP BY m.conversation_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting unread messages: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ConversationID] = row.Count
	}

	return counts, nil
}
