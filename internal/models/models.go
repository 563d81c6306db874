package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	UserID                 string    `json:"userId" db:"user_id"`
	Email                  string    `json:"email" db:"email"`
	Username               string    `json:"username" db:"username"`
	Street                 string    `json:"street" db:"street"`
	Zip                    string    `json:"zip" db:"zip"`
	City                   string    `json:"city" db:"city"`
	PasswordHash           string    `json:"-" db:"password_hash"`
	IsActive               bool      `json:"-" db:"is_active"`
	DateJoined             time.Time `json:"dateJoined" db:"date_joined"`
	PasswordResetToken     *string   `json:"-" db:"password_reset_token"`
	RefreshToken           string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"-" db:"refresh_token_expiry_time"`
}

// UserSummary is the public view of a user embedded in other resources.
type UserSummary struct {
	UserID   string `json:"userId" db:"user_id"`
	Username string `json:"username" db:"username"`
}

type Profile struct {
	UserID         string          `json:"userId" db:"user_id"`
	Username       string          `json:"username" db:"username"`
	Email          string          `json:"email,omitempty" db:"email"`
	Bio            string          `json:"bio" db:"bio"`
	Location       string          `json:"location" db:"location"`
	DateJoined     time.Time       `json:"dateJoined" db:"date_joined"`
	TotalListings  int             `json:"totalListings" db:"total_listings"`
	ActiveListings int             `json:"activeListings" db:"active_listings"`
	Rating         decimal.Decimal `json:"rating" db:"rating"`
	NumRatings     int             `json:"numRatings" db:"num_ratings"`
}

type Category struct {
	CategoryID string `json:"categoryId" db:"category_id"`
	Name       string `json:"name" db:"name"`
}

type Subcategory struct {
	SubcategoryID string `json:"subcategoryId" db:"subcategory_id"`
	Name          string `json:"name" db:"name"`
	CategoryID    string `json:"categoryId" db:"category_id"`
}

type Listing struct {
	ListingID       string              `json:"listingId" db:"listing_id"`
	OwnerID         string              `json:"ownerId" db:"owner_id"`
	OwnerUsername   string              `json:"owner" db:"owner_username"`
	Title           string              `json:"title" db:"title"`
	Description     string              `json:"description" db:"description"`
	ListingType     string              `json:"listingType" db:"listing_type"`
	CategoryID      *string             `json:"categoryId" db:"category_id"`
	CategoryName    *string             `json:"categoryName" db:"category_name"`
	SubcategoryID   *string             `json:"subcategoryId" db:"subcategory_id"`
	SubcategoryName *string             `json:"subcategoryName" db:"subcategory_name"`
	Price           decimal.NullDecimal `json:"price" db:"price"`
	PriceType       string              `json:"priceType" db:"price_type"`
	Condition       *string             `json:"condition" db:"condition"`
	DeliveryOption  string              `json:"deliveryOption" db:"delivery_option"`
	Location        string              `json:"location" db:"location"`
	EventDate       *time.Time          `json:"eventDate" db:"event_date"`
	CreatedAt       time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time           `json:"updatedAt" db:"updated_at"`
	IsActive        bool                `json:"isActive" db:"is_active"`
	Status          string              `json:"status" db:"status"`
	ViewCount       int                 `json:"viewCount" db:"view_count"`
	FavoriteCount   int                 `json:"favoriteCount" db:"favorite_count"`
	Images          []ListingImage      `json:"images" db:"-"`
}

// SetStatus is the only way status should change: is_active always follows it.
func (l *Listing) SetStatus(status string) {
	l.Status = status
	l.IsActive = status == StatusActive
}

type ListingImage struct {
	ImageID     string    `json:"imageId" db:"image_id"`
	ListingID   string    `json:"listingId" db:"listing_id"`
	ExternalRef string    `json:"-" db:"external_ref"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

type Conversation struct {
	ConversationID string        `json:"conversationId" db:"conversation_id"`
	ListingID      string        `json:"listingId" db:"listing_id"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
	Listing        *Listing      `json:"listing,omitempty" db:"-"`
	Participants   []UserSummary `json:"participants" db:"-"`
	LastMessage    *Message      `json:"lastMessage" db:"-"`
	Messages       []Message     `json:"messages,omitempty" db:"-"`
}

type Message struct {
	MessageID      string    `json:"messageId" db:"message_id"`
	ConversationID string    `json:"conversationId" db:"conversation_id"`
	SenderID       string    `json:"senderId" db:"sender_id"`
	SenderUsername string    `json:"sender" db:"sender_username"`
	Content        string    `json:"content" db:"content"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
	IsRead         bool      `json:"isRead" db:"is_read"`
}

type Review struct {
	ReviewID         string    `json:"reviewId" db:"review_id"`
	ReviewerID       string    `json:"reviewerId" db:"reviewer_id"`
	ReviewerUsername string    `json:"reviewerUsername" db:"reviewer_username"`
	ReviewedUserID   string    `json:"reviewedUser" db:"reviewed_user_id"`
	Rating           int       `json:"rating" db:"rating"`
	Content          string    `json:"content" db:"content"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}
