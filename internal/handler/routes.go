package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the API under /api. auth guards the routes that need a caller and
// limit throttles the credential endpoints.
func (h *Handlers) RegisterRoutes(r *mux.Router, auth, limit func(http.Handler) http.Handler) {
	protected := func(fn http.HandlerFunc) http.Handler { return auth(fn) }
	throttled := func(fn http.HandlerFunc) http.Handler { return limit(fn) }

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/tables", h.TablesHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	users := api.PathPrefix("/users").Subrouter()
	users.Handle("/register", throttled(h.Register)).Methods(http.MethodPost)
	users.Handle("/login", throttled(h.Login)).Methods(http.MethodPost)
	users.Handle("/token/refresh", throttled(h.RefreshToken)).Methods(http.MethodPost)
	users.Handle("/password-reset-request", throttled(h.PasswordResetRequest)).Methods(http.MethodPost)
	users.Handle("/password-reset-confirm", throttled(h.PasswordResetConfirm)).Methods(http.MethodPost)
	users.Handle("/profile", protected(h.GetCurrentUser)).Methods(http.MethodGet)
	users.Handle("/profile", protected(h.UpdateCurrentUser)).Methods(http.MethodPut, http.MethodPatch)
	users.Handle("/logout", protected(h.Logout)).Methods(http.MethodPost)
	users.Handle("/change-password", protected(h.ChangePassword)).Methods(http.MethodPost)

	listings := api.PathPrefix("/listings").Subrouter()
	listings.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	listings.HandleFunc("/categories/{id}", h.GetCategory).Methods(http.MethodGet)
	listings.HandleFunc("/subcategories", h.ListSubcategories).Methods(http.MethodGet)
	listings.HandleFunc("/subcategories/{id}", h.GetSubcategory).Methods(http.MethodGet)
	listings.HandleFunc("/subcategories/by-category/{categoryId}", h.ListSubcategoriesByCategory).Methods(http.MethodGet)
	listings.HandleFunc("/listings", h.ListListings).Methods(http.MethodGet)
	listings.Handle("/listings", protected(h.CreateListing)).Methods(http.MethodPost)
	listings.HandleFunc("/listings/{id}", h.GetListing).Methods(http.MethodGet)
	listings.Handle("/listings/{id}", protected(h.UpdateListing)).Methods(http.MethodPut, http.MethodPatch)
	listings.Handle("/listings/{id}", protected(h.DeleteListing)).Methods(http.MethodDelete)
	listings.Handle("/listings/{id}/status", protected(h.UpdateListingStatus)).Methods(http.MethodPatch)
	listings.Handle("/listings/{id}/favorite", protected(h.ToggleFavorite)).Methods(http.MethodPost)
	listings.Handle("/listings/{id}/unfavorite", protected(h.ToggleFavorite)).Methods(http.MethodPost)
	listings.Handle("/my-listings", protected(h.MyListings)).Methods(http.MethodGet)
	listings.Handle("/favorites", protected(h.FavoriteListings)).Methods(http.MethodGet)

	profiles := api.PathPrefix("/profiles").Subrouter()
	profiles.Handle("/profile", protected(h.GetOwnProfile)).Methods(http.MethodGet)
	profiles.Handle("/profile", protected(h.UpdateOwnProfile)).Methods(http.MethodPut, http.MethodPatch)
	profiles.HandleFunc("/profiles/{username}", h.GetPublicProfile).Methods(http.MethodGet)
	profiles.HandleFunc("/listings/user/{username}", h.UserListings).Methods(http.MethodGet)

	messaging := api.PathPrefix("/messaging").Subrouter()
	messaging.Handle("/conversations", protected(h.ListConversations)).Methods(http.MethodGet)
	messaging.Handle("/conversations", protected(h.StartConversation)).Methods(http.MethodPost)
	messaging.Handle("/conversations/{id}", protected(h.GetConversation)).Methods(http.MethodGet)
	messaging.Handle("/conversations/{id}/messages", protected(h.ListMessages)).Methods(http.MethodGet)
	messaging.Handle("/conversations/{id}/messages", protected(h.SendMessage)).Methods(http.MethodPost)
	messaging.Handle("/conversations/{id}/mark-as-read", protected(h.MarkAsRead)).Methods(http.MethodPost)
	messaging.Handle("/conversation-unread-counts", protected(h.ConversationUnreadCounts)).Methods(http.MethodGet)
	messaging.Handle("/unread-messages", protected(h.UnreadCount)).Methods(http.MethodGet)
	messaging.Handle("/listing/{listingId}/messages", protected(h.ListingConversations)).Methods(http.MethodGet)

	reviews := api.PathPrefix("/reviews").Subrouter()
	reviews.HandleFunc("/users/{userId}/reviews", h.ListUserReviews).Methods(http.MethodGet)
	reviews.Handle("/users/{userId}/reviews", protected(h.SubmitReview)).Methods(http.MethodPost)
	reviews.HandleFunc("/users/{userId}/reviewer/{reviewerId}", h.ReviewByReviewer).Methods(http.MethodGet)
	reviews.Handle("/reviews/{id}", protected(h.GetReview)).Methods(http.MethodGet)
	reviews.Handle("/reviews/{id}", protected(h.UpdateReview)).Methods(http.MethodPut, http.MethodPatch)
	reviews.Handle("/reviews/{id}", protected(h.DeleteReview)).Methods(http.MethodDelete)
}
