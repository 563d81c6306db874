package models

import "slices"

const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusSold      = "sold"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

const (
	ListingTypeItemSale   = "item_sale"
	ListingTypeItemFree   = "item_free"
	ListingTypeItemWanted = "item_wanted"
	ListingTypeService    = "service"
	ListingTypeJob        = "job"
	ListingTypeHousing    = "housing"
	ListingTypeEvent      = "event"
	ListingTypeOther      = "other"
)

const (
	PriceTypeFixed      = "fixed"
	PriceTypeNegotiable = "negotiable"
	PriceTypeFree       = "free"
	PriceTypeContact    = "contact"
	PriceTypeNA         = "na"
)

const DeliveryNA = "na"

var (
	ListingStatuses = []string{StatusDraft, StatusActive, StatusPending, StatusSold, StatusExpired, StatusCancelled}
	ListingTypes    = []string{
		ListingTypeItemSale, ListingTypeItemFree, ListingTypeItemWanted, ListingTypeService,
		ListingTypeJob, ListingTypeHousing, ListingTypeEvent, ListingTypeOther,
	}
	PriceTypes      = []string{PriceTypeFixed, PriceTypeNegotiable, PriceTypeFree, PriceTypeContact, PriceTypeNA}
	Conditions      = []string{"new", "like_new", "good", "fair", "poor", "na"}
	DeliveryOptions = []string{"pickup", "delivery", "both", DeliveryNA}
)

// PriceRequired reports whether a listing with this price type must carry a price.
func PriceRequired(priceType string) bool {
	return !slices.Contains([]string{PriceTypeContact, PriceTypeFree, PriceTypeNA}, priceType)
}

// ConditionRequired reports whether the listing type describes a physical item on offer.
func ConditionRequired(listingType string) bool {
	return listingType == ListingTypeItemSale || listingType == ListingTypeItemFree
}
