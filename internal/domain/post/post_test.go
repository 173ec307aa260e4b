package post_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carryon/internal/domain/post"
)

func validTravellerParams(now time.Time) post.CreateTravellerParams {
	return post.CreateTravellerParams{
		ID:               "tp-1",
		OwnerID:          "traveller",
		DepartureCountry: "Germany",
		DepartureCity:    "Berlin",
		DepartureDate:    now.Add(48 * time.Hour),
		ArrivalCountry:   "Georgia",
		ArrivalCity:      "Tbilisi",
		ArrivalDate:      now.Add(52 * time.Hour),
		AvailableWeight:  12,
		PricePerKg:       8,
		Now:              now,
	}
}

func validSenderParams() post.CreateSenderParams {
	return post.CreateSenderParams{
		ID:                 "sp-1",
		OwnerID:            "sender",
		OriginCountry:      "Germany",
		OriginCity:         "Berlin",
		DestinationCountry: "Georgia",
		DestinationCity:    "Tbilisi",
		ItemCategory:       "documents",
		ItemDescription:    "a small folder of papers",
		Weight:             0.5,
	}
}

func TestNewTravellerPost(t *testing.T) {
	now := time.Now()
	p, err := post.NewTravellerPost(validTravellerParams(now))
	require.NoError(t, err)

	assert.Equal(t, post.StatusActive, p.Status)
	assert.True(t, p.Active())
	assert.Equal(t, "Germany", p.DepartureCountry)
}

func TestNewTravellerPostValidation(t *testing.T) {
	now := time.Now()

	params := validTravellerParams(now)
	params.DepartureCountry = " "
	params.AvailableWeight = 0
	params.PricePerKg = -1

	_, err := post.NewTravellerPost(params)
	var verr *post.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "departureCountry")
	assert.Contains(t, verr.Fields, "availableWeight")
	assert.Contains(t, verr.Fields, "pricePerKg")
}

func TestNewTravellerPostDateOrdering(t *testing.T) {
	now := time.Now()

	params := validTravellerParams(now)
	params.ArrivalDate = params.DepartureDate.Add(-time.Hour)
	_, err := post.NewTravellerPost(params)
	var verr *post.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "departureDate")

	params = validTravellerParams(now)
	params.DepartureDate = now.Add(-time.Hour)
	params.ArrivalDate = now.Add(time.Hour)
	_, err = post.NewTravellerPost(params)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "departureDate")
}

func TestNewTravellerPostRequiresOwner(t *testing.T) {
	params := validTravellerParams(time.Now())
	params.OwnerID = ""
	_, err := post.NewTravellerPost(params)
	assert.ErrorIs(t, err, post.ErrOwnerRequired)
}

func TestNewSenderPost(t *testing.T) {
	p, err := post.NewSenderPost(validSenderParams())
	require.NoError(t, err)

	assert.Equal(t, post.StatusActive, p.Status)
	assert.NotNil(t, p.Photos)
	assert.Empty(t, p.Photos)
}

func TestNewSenderPostValidation(t *testing.T) {
	params := validSenderParams()
	params.ItemCategory = ""
	params.Weight = 0

	_, err := post.NewSenderPost(params)
	var verr *post.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "itemCategory")
	assert.Contains(t, verr.Fields, "weight")
}

func TestAttachPhoto(t *testing.T) {
	p, err := post.NewSenderPost(validSenderParams())
	require.NoError(t, err)

	require.NoError(t, p.AttachPhoto("https://cdn.example.com/a.jpg", time.Now()))
	require.NoError(t, p.AttachPhoto("https://cdn.example.com/b.jpg", time.Now()))
	assert.Len(t, p.Photos, 2)

	err = p.AttachPhoto("  ", time.Now())
	var verr *post.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTravellerSearchNormalized(t *testing.T) {
	search := post.TravellerSearch{
		DepartureCountry: "  Germany ",
		ArrivalCountry:   "GEORGIA",
		Page:             0,
		Limit:            500,
	}.Normalized()

	assert.Equal(t, "germany", search.DepartureCountry)
	assert.Equal(t, "georgia", search.ArrivalCountry)
	assert.Equal(t, 1, search.Page)
	assert.Equal(t, 50, search.Limit)
	assert.True(t, search.FutureOnly())
}

func TestTravellerSearchOwnerDisablesFutureCut(t *testing.T) {
	search := post.TravellerSearch{Owner: "traveller"}.Normalized()
	assert.False(t, search.FutureOnly())
}

func TestTravellerSearchDropsInvertedDateRange(t *testing.T) {
	from := time.Now()
	search := post.TravellerSearch{DateFrom: from, DateTo: from.Add(-time.Hour)}.Normalized()
	assert.True(t, search.DateTo.IsZero())
}

func TestSenderSearchNormalized(t *testing.T) {
	search := post.SenderSearch{
		MinWeight: -1,
		MaxWeight: 5,
		MinPrice:  10,
		MaxPrice:  5,
	}.Normalized()

	assert.Zero(t, search.MinWeight)
	assert.Equal(t, 5.0, search.MaxWeight)
	assert.Zero(t, search.MaxPrice)
}
