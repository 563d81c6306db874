package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

type StartConversationRequest struct {
	ListingID string `json:"listingId" validate:"required,uuid"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

// MarkAsReadRequest marks every unread message when MessageIDs is empty.
type MarkAsReadRequest struct {
	MessageIDs []string `json:"messageIds" validate:"omitempty,dive,uuid"`
}

type MarkAsReadResponse struct {
	Marked int64 `json:"marked"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}

func (h *Handlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID := r.URL.Query().Get("listing")
	if listingID != "" {
		if _, err := uuid.Parse(listingID); err != nil {
			WriteValidationError(w, map[string]string{"listing": "Select a valid choice."})
			return
		}
	}

	conversations, err := h.MessagingService.ListConversations(r.Context(), userID, listingID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, conversations, http.StatusOK)
}

// StartConversation answers 201 for a new conversation and 200 when one already existed.
func (h *Handlers) StartConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req StartConversationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	conversation, created, err := h.MessagingService.StartConversation(r.Context(), userID, req.ListingID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeSuccess(w, conversation, status)
}

func (h *Handlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	conversationID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	conversation, err := h.MessagingService.GetConversation(r.Context(), conversationID, userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, conversation, http.StatusOK)
}

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	conversationID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	messages, err := h.MessagingService.ListMessages(r.Context(), conversationID, userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, messages, http.StatusOK)
}

func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	conversationID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	message, err := h.MessagingService.SendMessage(r.Context(), conversationID, userID, req.Content)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, message, http.StatusCreated)
}

func (h *Handlers) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	conversationID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req MarkAsReadRequest
	if r.ContentLength != 0 && !h.decodeAndValidate(w, r, &req) {
		return
	}

	marked, err := h.MessagingService.MarkAsRead(r.Context(), conversationID, userID, req.MessageIDs)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, MarkAsReadResponse{Marked: marked}, http.StatusOK)
}

func (h *Handlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	count, err := h.MessagingService.UnreadCount(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, UnreadCountResponse{UnreadCount: count}, http.StatusOK)
}

// ConversationUnreadCounts maps conversation ids to their unread message counts.
func (h *Handlers) ConversationUnreadCounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	counts, err := h.MessagingService.UnreadCountsByConversation(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, counts, http.StatusOK)
}

func (h *Handlers) ListingConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "listingId")
	if !ok {
		return
	}

	conversations, err := h.MessagingService.ListingConversations(r.Context(), listingID, userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, conversations, http.StatusOK)
}
