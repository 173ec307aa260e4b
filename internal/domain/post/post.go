package post

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"carryon/internal/domain/user"
)

var (
	ErrNotFound      = errors.New("post: not found")
	ErrOwnerRequired = errors.New("post: owner is required")
	ErrNotOwner      = errors.New("post: caller does not own this post")
)

type ID string

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ValidationError carries per-field messages back to the caller.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "post: invalid input"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "post: invalid input (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// TravellerPost offers spare luggage capacity on a booked trip.
type TravellerPost struct {
	ID               ID
	OwnerID          user.ID
	DepartureCountry string
	DepartureCity    string
	DepartureAirport string
	DepartureDate    time.Time
	DepartureTime    string
	ArrivalCountry   string
	ArrivalCity      string
	ArrivalAirport   string
	ArrivalDate      time.Time
	ArrivalTime      string
	AvailableWeight  float64
	PricePerKg       float64
	SpecialNotes     string
	PickupLocation   string
	DeliveryLocation string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SenderPost describes an item that needs to travel.
type SenderPost struct {
	ID                 ID
	OwnerID            user.ID
	OriginCountry      string
	OriginCity         string
	OriginAddress      string
	DestinationCountry string
	DestinationCity    string
	DestinationAddress string
	ItemCategory       string
	ItemDescription    string
	Weight             float64
	MaxPrice           float64
	Photos             []string
	SpecialNotes       string
	PickupNotes        string
	DeliveryNotes      string
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type TravellerRepository interface {
	ByID(ctx context.Context, id ID) (*TravellerPost, error)
	Save(ctx context.Context, post *TravellerPost) error
	Search(ctx context.Context, params TravellerSearch) ([]*TravellerPost, int, error)
}

type SenderRepository interface {
	ByID(ctx context.Context, id ID) (*SenderPost, error)
	Save(ctx context.Context, post *SenderPost) error
	Search(ctx context.Context, params SenderSearch) ([]*SenderPost, int, error)
}

type CreateTravellerParams struct {
	ID               ID
	OwnerID          user.ID
	DepartureCountry string
	DepartureCity    string
	DepartureAirport string
	DepartureDate    time.Time
	DepartureTime    string
	ArrivalCountry   string
	ArrivalCity      string
	ArrivalAirport   string
	ArrivalDate      time.Time
	ArrivalTime      string
	AvailableWeight  float64
	PricePerKg       float64
	SpecialNotes     string
	PickupLocation   string
	DeliveryLocation string
	Now              time.Time
}

func NewTravellerPost(params CreateTravellerParams) (*TravellerPost, error) {
	if strings.TrimSpace(string(params.OwnerID)) == "" {
		return nil, ErrOwnerRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	var verr ValidationError
	if strings.TrimSpace(params.DepartureCountry) == "" {
		verr.add("departureCountry", "departure country is required")
	}
	if strings.TrimSpace(params.ArrivalCountry) == "" {
		verr.add("arrivalCountry", "arrival country is required")
	}
	if params.DepartureDate.IsZero() {
		verr.add("departureDate", "departure date is required")
	}
	if params.ArrivalDate.IsZero() {
		verr.add("arrivalDate", "arrival date is required")
	}
	if params.AvailableWeight <= 0 {
		verr.add("availableWeight", "available weight must be greater than 0")
	}
	if params.PricePerKg <= 0 {
		verr.add("pricePerKg", "price per kg must be greater than 0")
	}
	if !params.DepartureDate.IsZero() && !params.ArrivalDate.IsZero() && !params.DepartureDate.Before(params.ArrivalDate) {
		verr.add("departureDate", "departure date must be before arrival date")
	}
	if !params.DepartureDate.IsZero() && params.DepartureDate.Before(now) {
		verr.add("departureDate", "departure date must be in the future")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	return &TravellerPost{
		ID:               params.ID,
		OwnerID:          params.OwnerID,
		DepartureCountry: strings.TrimSpace(params.DepartureCountry),
		DepartureCity:    strings.TrimSpace(params.DepartureCity),
		DepartureAirport: strings.TrimSpace(params.DepartureAirport),
		DepartureDate:    params.DepartureDate.UTC(),
		DepartureTime:    strings.TrimSpace(params.DepartureTime),
		ArrivalCountry:   strings.TrimSpace(params.ArrivalCountry),
		ArrivalCity:      strings.TrimSpace(params.ArrivalCity),
		ArrivalAirport:   strings.TrimSpace(params.ArrivalAirport),
		ArrivalDate:      params.ArrivalDate.UTC(),
		ArrivalTime:      strings.TrimSpace(params.ArrivalTime),
		AvailableWeight:  params.AvailableWeight,
		PricePerKg:       params.PricePerKg,
		SpecialNotes:     strings.TrimSpace(params.SpecialNotes),
		PickupLocation:   strings.TrimSpace(params.PickupLocation),
		DeliveryLocation: strings.TrimSpace(params.DeliveryLocation),
		Status:           StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

type CreateSenderParams struct {
	ID                 ID
	OwnerID            user.ID
	OriginCountry      string
	OriginCity         string
	OriginAddress      string
	DestinationCountry string
	DestinationCity    string
	DestinationAddress string
	ItemCategory       string
	ItemDescription    string
	Weight             float64
	MaxPrice           float64
	SpecialNotes       string
	PickupNotes        string
	DeliveryNotes      string
	Now                time.Time
}

func NewSenderPost(params CreateSenderParams) (*SenderPost, error) {
	if strings.TrimSpace(string(params.OwnerID)) == "" {
		return nil, ErrOwnerRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	var verr ValidationError
	if strings.TrimSpace(params.OriginCountry) == "" {
		verr.add("originCountry", "origin country is required")
	}
	if strings.TrimSpace(params.OriginCity) == "" {
		verr.add("originCity", "origin city is required")
	}
	if strings.TrimSpace(params.DestinationCountry) == "" {
		verr.add("destinationCountry", "destination country is required")
	}
	if strings.TrimSpace(params.DestinationCity) == "" {
		verr.add("destinationCity", "destination city is required")
	}
	if strings.TrimSpace(params.ItemCategory) == "" {
		verr.add("itemCategory", "item category is required")
	}
	if strings.TrimSpace(params.ItemDescription) == "" {
		verr.add("itemDescription", "item description is required")
	}
	if params.Weight <= 0 {
		verr.add("weight", "weight must be greater than 0")
	}
	if params.MaxPrice < 0 {
		verr.add("maxPrice", "max price must be greater than 0")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	return &SenderPost{
		ID:                 params.ID,
		OwnerID:            params.OwnerID,
		OriginCountry:      strings.TrimSpace(params.OriginCountry),
		OriginCity:         strings.TrimSpace(params.OriginCity),
		OriginAddress:      strings.TrimSpace(params.OriginAddress),
		DestinationCountry: strings.TrimSpace(params.DestinationCountry),
		DestinationCity:    strings.TrimSpace(params.DestinationCity),
		DestinationAddress: strings.TrimSpace(params.DestinationAddress),
		ItemCategory:       strings.TrimSpace(params.ItemCategory),
		ItemDescription:    strings.TrimSpace(params.ItemDescription),
		Weight:             params.Weight,
		MaxPrice:           params.MaxPrice,
		Photos:             []string{},
		SpecialNotes:       strings.TrimSpace(params.SpecialNotes),
		PickupNotes:        strings.TrimSpace(params.PickupNotes),
		DeliveryNotes:      strings.TrimSpace(params.DeliveryNotes),
		Status:             StatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Active reports whether the post can still receive requests.
func (p *TravellerPost) Active() bool { return p.Status == StatusActive }

func (p *SenderPost) Active() bool { return p.Status == StatusActive }

// AttachPhoto appends an uploaded photo URL to the post.
func (p *SenderPost) AttachPhoto(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return &ValidationError{Fields: map[string]string{"photo": "photo url is required"}}
	}
	p.Photos = append(p.Photos, url)
	if now.IsZero() {
		now = time.Now()
	}
	p.UpdatedAt = now.UTC()
	return nil
}
