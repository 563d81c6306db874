package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_SetStatusKeepsIsActiveInSync(t *testing.T) {
	listing := &Listing{}

	for _, from := range ListingStatuses {
		for _, to := range ListingStatuses {
			listing.SetStatus(from)
			listing.SetStatus(to)

			assert.Equal(t, to == StatusActive, listing.IsActive, "%s -> %s", from, to)
			assert.Equal(t, to, listing.Status)
		}
	}
}

func TestPriceRequired(t *testing.T) {
	assert.True(t, PriceRequired(PriceTypeFixed))
	assert.True(t, PriceRequired(PriceTypeNegotiable))
	assert.False(t, PriceRequired(PriceTypeFree))
	assert.False(t, PriceRequired(PriceTypeContact))
	assert.False(t, PriceRequired(PriceTypeNA))
}

func TestConditionRequired(t *testing.T) {
	assert.True(t, ConditionRequired(ListingTypeItemSale))
	assert.True(t, ConditionRequired(ListingTypeItemFree))
	assert.False(t, ConditionRequired(ListingTypeItemWanted))
	assert.False(t, ConditionRequired(ListingTypeEvent))
}

func TestListing_JSONHidesInternalFields(t *testing.T) {
	listing := Listing{
		ListingID: "l-1",
		Title:     "Bike",
		Price:     decimal.NewNullDecimal(decimal.RequireFromString("120.50")),
		Images:    []ListingImage{{ImageID: "i-1", ExternalRef: "listings/l-1/x.jpg", ImageURL: "http://img/x.jpg"}},
	}

	data, err := json.Marshal(listing)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "120.5", out["price"])
	images := out["images"].([]interface{})
	image := images[0].(map[string]interface{})
	assert.NotContains(t, image, "ExternalRef")
	assert.Equal(t, "http://img/x.jpg", image["imageUrl"])
}
