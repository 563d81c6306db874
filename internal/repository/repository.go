package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"locallisting/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, password string) error
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
	SetPasswordResetToken(ctx context.Context, userID, token string) error
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateListingCounts(ctx context.Context, userID string) error
	RecalcRating(ctx context.Context, userID string) error
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*models.Category, error)
	ListSubcategories(ctx context.Context) ([]models.Subcategory, error)
	GetSubcategory(ctx context.Context, subcategoryID string) (*models.Subcategory, error)
	ListSubcategoriesByCategory(ctx context.Context, categoryID string) ([]models.Subcategory, error)
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, listingID string) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	UpdateStatus(ctx context.Context, listingID, status string) error
	Delete(ctx context.Context, listingID string) error
	IncrementViewCount(ctx context.Context, listingID string) error
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, int, error)
	ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]models.Listing, error)
	ListFavoritedBy(ctx context.Context, userID string) ([]models.Listing, error)
	ToggleFavorite(ctx context.Context, listingID, userID string) (bool, int, error)
}

type ImageRepository interface {
	Create(ctx context.Context, image *models.ListingImage) error
	GetByListingID(ctx context.Context, listingID string) ([]models.ListingImage, error)
	GetByListingIDs(ctx context.Context, listingIDs []string) (map[string][]models.ListingImage, error)
	Delete(ctx context.Context, imageID string) error
	DeleteByListingID(ctx context.Context, listingID string) error
}

type ConversationRepository interface {
	GetOrCreate(ctx context.Context, listingID, initiatorID, ownerID string) (*models.Conversation, bool, error)
	GetByID(ctx context.Context, conversationID string) (*models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	ListForUser(ctx context.Context, userID, listingID string) ([]models.Conversation, error)
	ListForListing(ctx context.Context, listingID string) ([]models.Conversation, error)
	GetParticipants(ctx context.Context, conversationIDs []string) (map[string][]models.UserSummary, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
	LastMessages(ctx context.Context, conversationIDs []string) (map[string]models.Message, error)
	MarkAsRead(ctx context.Context, conversationID, readerID string, messageIDs []string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	CountUnreadByConversation(ctx context.Context, userID string) (map[string]int, error)
}

type ReviewRepository interface {
	Upsert(ctx context.Context, review *models.Review) (bool, error)
	GetByID(ctx context.Context, reviewID string) (*models.Review, error)
	GetByPair(ctx context.Context, reviewerID, reviewedUserID string) (*models.Review, error)
	ListForUser(ctx context.Context, reviewedUserID string) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, reviewID string) error
}

type TablesRepository interface {
	CountTablesDB(ctx context.Context) (int, error)
}

type Repository struct {
	User         UserRepository
	Profile      ProfileRepository
	Category     CategoryRepository
	Listing      ListingRepository
	Image        ImageRepository
	Conversation ConversationRepository
	Message      MessageRepository
	Review       ReviewRepository
	Tables       TablesRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:         NewUserRepository(db),
		Profile:      NewProfileRepository(db),
		Category:     NewCategoryRepository(db),
		Listing:      NewListingRepository(db),
		Image:        NewImageRepository(db),
		Conversation: NewConversationRepository(db),
		Message:      NewMessageRepository(db),
		Review:       NewReviewRepository(db),
		Tables:       NewTablesRepository(db),
	}
}
