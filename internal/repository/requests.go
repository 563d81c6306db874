package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"locallisting/internal/storage"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	Street    string `json:"street"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
}

// UpdateUserRequest carries optional account fields; nil means "leave as is".
type UpdateUserRequest struct {
	UserID   string
	Username *string
	Street   *string
	Zip      *string
	City     *string
}

type UpdateProfileRequest struct {
	UserID   string
	Bio      *string
	Location *string
}

// ListingFields is the writable part of a listing. On a partial update only
// the non-nil fields are applied.
type ListingFields struct {
	Title          *string
	Description    *string
	ListingType    *string
	CategoryID     *string
	SubcategoryID  *string
	Price          *decimal.Decimal
	PriceType      *string
	Condition      *string
	DeliveryOption *string
	Location       *string
	EventDate      *time.Time
}

type CreateListingRequest struct {
	OwnerID string
	Fields  ListingFields
	Images  []storage.Upload
}

type UpdateListingRequest struct {
	ListingID string
	UserID    string
	Partial   bool
	Fields    ListingFields

	// ManageImages is set when the client sent existing_images or new_images.
	ManageImages   bool
	ExistingImages []string
	NewImages      []storage.Upload
}

type ListingFilter struct {
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	CategoryID     string
	SubcategoryID  string
	Condition      string
	DeliveryOption string
	ListingType    string
	Location       string
	StartDate      *time.Time
	EndDate        *time.Time
	Search         string
	Ordering       string
	Page           int
	PageSize       int
}

type SubmitReviewRequest struct {
	ReviewerID     string
	ReviewedUserID string
	Rating         int
	Content        string
}

type UpdateReviewRequest struct {
	ReviewID string
	UserID   string
	Rating   *int
	Content  *string
}
