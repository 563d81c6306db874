package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"locallisting/internal/models"
)

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

const conversationColumns = `c.conversation_id, c.listing_id, c.created_at, c.updated_at`

// GetOrCreate returns the conversation between initiator and owner about the listing,
// creating it when none exists. The listing row stays locked while checking so two
// concurrent first contacts cannot both create one. The bool reports creation.
func (r *conversationRepository) GetOrCreate(ctx context.Context, listingID, initiatorID, ownerID string) (*models.Conversation, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var locked string
	err = tx.GetContext(ctx, &locked, `SELECT listing_id FROM listings WHERE listing_id = $1 FOR UPDATE`, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("error locking listing: %w", err)
	}

	var existing models.Conversation
	err = tx.GetContext(ctx, &existing, `
		SELECT `+conversationColumns+`
		FROM conversations c
		WHERE c.listing_id = $1
		AND EXISTS (SELECT 1 FROM conversation_participants p WHERE p.conversation_id = c.conversation_id AND p.user_id = $2)
		AND EXISTS (SELECT 1 FROM conversation_participants p WHERE p.conversation_id = c.conversation_id AND p.user_id = $3)
		LIMIT 1
	`, listingID, initiatorID, ownerID)
	if err == nil {
		if err = tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("error committing transaction: %w", err)
		}
		return &existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("error finding conversation: %w", err)
	}

	now := time.Now()
	conversation := &models.Conversation{
		ConversationID: uuid.New().String(),
		ListingID:      listingID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO conversations (conversation_id, listing_id, created_at, updated_at)
		VALUES (:conversation_id, :listing_id, :created_at, :updated_at)
	`, conversation)
	if err != nil {
		return nil, false, fmt.Errorf("error creating conversation: %w", err)
	}

	for _, userID := range []string{initiatorID, ownerID} {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2)`,
			conversation.ConversationID, userID)
		if err != nil {
			return nil, false, fmt.Errorf("error adding participant: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("error committing transaction: %w", err)
	}

	return conversation, true, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, conversationID string) (*models.Conversation, error) {
	var conversation models.Conversation

	err := r.db.GetContext(ctx, &conversation,
		`SELECT `+conversationColumns+` FROM conversations c WHERE c.conversation_id = $1`, conversationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting conversation: %w", err)
	}

	return &conversation, nil
}

func (r *conversationRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var exists bool

	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2
		)
	`, conversationID, userID)
	if err != nil {
		return false, fmt.Errorf("error checking participant: %w", err)
	}

	return exists, nil
}

// ListForUser returns the user's conversations, most recently active first.
// A non-empty listingID restricts the result to that listing.
func (r *conversationRepository) ListForUser(ctx context.Context, userID, listingID string) ([]models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.conversation_id
		WHERE p.user_id = $1
	`
	args := []interface{}{userID}
	if listingID != "" {
		query += ` AND c.listing_id = $2`
		args = append(args, listingID)
	}
	query += ` ORDER BY c.updated_at DESC`

	conversations := []models.Conversation{}
	if err := r.db.SelectContext(ctx, &conversations, query, args...); err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}

	return conversations, nil
}

func (r *conversationRepository) ListForListing(ctx context.Context, listingID string) ([]models.Conversation, error) {
	conversations := []models.Conversation{}

	err := r.db.SelectContext(ctx, &conversations,
		`SELECT `+conversationColumns+` FROM conversations c WHERE c.listing_id = $1 ORDER BY c.updated_at DESC`, listingID)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}

	return conversations, nil
}

func (r *conversationRepository) GetParticipants(ctx context.Context, conversationIDs []string) (map[string][]models.UserSummary, error) {
	byConversation := make(map[string][]models.UserSummary, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return byConversation, nil
	}

	var rows []struct {
		ConversationID string `db:"conversation_id"`
		models.UserSummary
	}

	err := r.db.SelectContext(ctx, &rows, `
		SELECT p.conversation_id, u.user_id, u.username
		FROM conversation_participants p
		JOIN users u ON u.user_id = p.user_id
		WHERE p.conversation_id = ANY($1)
		ORDER BY u.username
	`, pq.Array(conversationIDs))
	if err != nil {
		return nil, fmt.Errorf("error getting participants: %w", err)
	}

	for _, row := range rows {
		byConversation[row.ConversationID] = append(byConversation[row.ConversationID], row.UserSummary)
	}

	return byConversation, nil
}
