package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"locallisting/internal/metrics"
	"locallisting/internal/models"
	"locallisting/internal/repository"
)

const maxMessageLength = 5000

type MessagingService interface {
	StartConversation(ctx context.Context, userID, listingID string) (*models.Conversation, bool, error)
	ListConversations(ctx context.Context, userID, listingID string) ([]models.Conversation, error)
	GetConversation(ctx context.Context, conversationID, userID string) (*models.Conversation, error)
	ListMessages(ctx context.Context, conversationID, userID string) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationID, userID, content string) (*models.Message, error)
	MarkAsRead(ctx context.Context, conversationID, userID string, messageIDs []string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	UnreadCountsByConversation(ctx context.Context, userID string) (map[string]int, error)
	ListingConversations(ctx context.Context, listingID, userID string) ([]models.Conversation, error)
}

type messagingService struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	listingRepo      repository.ListingRepository
	userRepo         repository.UserRepository
	log              *logrus.Logger
}

func NewMessagingService(rep *repository.Repository, log *logrus.Logger) MessagingService {
	return &messagingService{
		conversationRepo: rep.Conversation,
		messageRepo:      rep.Message,
		listingRepo:      rep.Listing,
		userRepo:         rep.User,
		log:              log,
	}
}

// StartConversation returns the caller's conversation about the listing, creating it on first
// contact. The bool reports whether it was created.
func (s *messagingService) StartConversation(ctx context.Context, userID, listingID string) (*models.Conversation, bool, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, false, err
	}

	if listing.OwnerID == userID {
		return nil, false, NewValidationError("listingId", "Cannot start a conversation with yourself.")
	}

	conversation, created, err := s.conversationRepo.GetOrCreate(ctx, listingID, userID, listing.OwnerID)
	if err != nil {
		return nil, false, err
	}

	if created {
		s.log.WithFields(logrus.Fields{
			"conversation_id": conversation.ConversationID,
			"listing_id":      listingID,
		}).Info("conversation started")
	}

	conversations := []models.Conversation{*conversation}
	if err = s.enrich(ctx, conversations); err != nil {
		return nil, false, err
	}
	conversations[0].Listing = listing

	return &conversations[0], created, nil
}

// ListConversations returns the user's conversations; a listingID narrows them to one listing
// and must exist.
func (s *messagingService) ListConversations(ctx context.Context, userID, listingID string) ([]models.Conversation, error) {
	if listingID != "" {
		if _, err := s.listingRepo.GetByID(ctx, listingID); err != nil {
			return nil, err
		}
	}

	conversations, err := s.conversationRepo.ListForUser(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	if err = s.enrich(ctx, conversations); err != nil {
		return nil, err
	}

	return conversations, nil
}

// GetConversation hides conversations the user is not part of behind ErrNotFound.
func (s *messagingService) GetConversation(ctx context.Context, conversationID, userID string) (*models.Conversation, error) {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	ok, err := s.conversationRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	conversations := []models.Conversation{*conversation}
	if err = s.enrich(ctx, conversations); err != nil {
		return nil, err
	}
	conversation = &conversations[0]

	conversation.Messages, err = s.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, conversation.ListingID)
	switch {
	case err == nil:
		conversation.Listing = listing
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("error loading conversation listing: %w", err)
	}

	return conversation, nil
}

// requireParticipant returns ErrNotFound for a missing conversation and ErrForbidden for outsiders.
func (s *messagingService) requireParticipant(ctx context.Context, conversationID, userID string) error {
	if _, err := s.conversationRepo.GetByID(ctx, conversationID); err != nil {
		return err
	}

	ok, err := s.conversationRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}

	return nil
}

func (s *messagingService) ListMessages(ctx context.Context, conversationID, userID string) ([]models.Message, error) {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	return s.messageRepo.ListByConversation(ctx, conversationID)
}

func (s *messagingService) SendMessage(ctx context.Context, conversationID, userID, content string) (*models.Message, error) {
	switch {
	case strings.TrimSpace(content) == "":
		return nil, NewValidationError("content", msgRequired)
	case len([]rune(content)) > maxMessageLength:
		return nil, NewValidationError("content", "Message is too long.")
	}

	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		SenderUsername: sender.Username,
		Content:        content,
	}

	if err = s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	metrics.MessageSent()

	return message, nil
}

// MarkAsRead marks the given messages, or all when messageIDs is empty. The caller's own
// messages are never touched.
func (s *messagingService) MarkAsRead(ctx context.Context, conversationID, userID string, messageIDs []string) (int64, error) {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return 0, err
	}

	return s.messageRepo.MarkAsRead(ctx, conversationID, userID, messageIDs)
}

func (s *messagingService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}

func (s *messagingService) UnreadCountsByConversation(ctx context.Context, userID string) (map[string]int, error) {
	return s.messageRepo.CountUnreadByConversation(ctx, userID)
}

// ListingConversations gives the owner every conversation about the listing and anyone else
// only their own.
func (s *messagingService) ListingConversations(ctx context.Context, listingID, userID string) ([]models.Conversation, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	var conversations []models.Conversation
	if listing.OwnerID == userID {
		conversations, err = s.conversationRepo.ListForListing(ctx, listingID)
	} else {
		conversations, err = s.conversationRepo.ListForUser(ctx, userID, listingID)
	}
	if err != nil {
		return nil, err
	}

	if err = s.enrich(ctx, conversations); err != nil {
		return nil, err
	}

	return conversations, nil
}

// enrich fills participants and the last message for each conversation.
func (s *messagingService) enrich(ctx context.Context, conversations []models.Conversation) error {
	if len(conversations) == 0 {
		return nil
	}

	ids := make([]string, len(conversations))
	for i := range conversations {
		ids[i] = conversations[i].ConversationID
	}

	participants, err := s.conversationRepo.GetParticipants(ctx, ids)
	if err != nil {
		return err
	}

	lastMessages, err := s.messageRepo.LastMessages(ctx, ids)
	if err != nil {
		return err
	}

	for i := range conversations {
		conversations[i].Participants = participants[conversations[i].ConversationID]
		if conversations[i].Participants == nil {
			conversations[i].Participants = []models.UserSummary{}
		}
		if last, ok := lastMessages[conversations[i].ConversationID]; ok {
			conversations[i].LastMessage = &last
		}
	}

	return nil
}
