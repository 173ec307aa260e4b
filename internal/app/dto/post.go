package dto

import (
	"time"

	domainpost "carryon/internal/domain/post"
	domainuser "carryon/internal/domain/user"
)

type TravellerPostView struct {
	ID               string        `json:"id"`
	Owner            PublicProfile `json:"owner"`
	DepartureCountry string        `json:"departure_country"`
	DepartureCity    string        `json:"departure_city,omitempty"`
	DepartureAirport string        `json:"departure_airport,omitempty"`
	DepartureDate    time.Time     `json:"departure_date"`
	DepartureTime    string        `json:"departure_time,omitempty"`
	ArrivalCountry   string        `json:"arrival_country"`
	ArrivalCity      string        `json:"arrival_city,omitempty"`
	ArrivalAirport   string        `json:"arrival_airport,omitempty"`
	ArrivalDate      time.Time     `json:"arrival_date"`
	ArrivalTime      string        `json:"arrival_time,omitempty"`
	AvailableWeight  float64       `json:"available_weight"`
	PricePerKg       float64       `json:"price_per_kg"`
	SpecialNotes     string        `json:"special_notes,omitempty"`
	PickupLocation   string        `json:"pickup_location,omitempty"`
	DeliveryLocation string        `json:"delivery_location,omitempty"`
	Status           string        `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

type SenderPostView struct {
	ID                 string        `json:"id"`
	Owner              PublicProfile `json:"owner"`
	OriginCountry      string        `json:"origin_country"`
	OriginCity         string        `json:"origin_city"`
	OriginAddress      string        `json:"origin_address,omitempty"`
	DestinationCountry string        `json:"destination_country"`
	DestinationCity    string        `json:"destination_city"`
	DestinationAddress string        `json:"destination_address,omitempty"`
	ItemCategory       string        `json:"item_category"`
	ItemDescription    string        `json:"item_description"`
	Weight             float64       `json:"weight"`
	MaxPrice           float64       `json:"max_price,omitempty"`
	Photos             []string      `json:"photos"`
	SpecialNotes       string        `json:"special_notes,omitempty"`
	PickupNotes        string        `json:"pickup_notes,omitempty"`
	DeliveryNotes      string        `json:"delivery_notes,omitempty"`
	Status             string        `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
}

type TravellerPostCollection struct {
	Posts      []TravellerPostView `json:"posts"`
	Pagination Pagination          `json:"pagination"`
}

type SenderPostCollection struct {
	Posts      []SenderPostView `json:"posts"`
	Pagination Pagination       `json:"pagination"`
}

func MapTravellerPost(post *domainpost.TravellerPost, owner *domainuser.User) TravellerPostView {
	if post == nil {
		return TravellerPostView{}
	}
	return TravellerPostView{
		ID:               string(post.ID),
		Owner:            MapPublicProfile(owner),
		DepartureCountry: post.DepartureCountry,
		DepartureCity:    post.DepartureCity,
		DepartureAirport: post.DepartureAirport,
		DepartureDate:    post.DepartureDate,
		DepartureTime:    post.DepartureTime,
		ArrivalCountry:   post.ArrivalCountry,
		ArrivalCity:      post.ArrivalCity,
		ArrivalAirport:   post.ArrivalAirport,
		ArrivalDate:      post.ArrivalDate,
		ArrivalTime:      post.ArrivalTime,
		AvailableWeight:  post.AvailableWeight,
		PricePerKg:       post.PricePerKg,
		SpecialNotes:     post.SpecialNotes,
		PickupLocation:   post.PickupLocation,
		DeliveryLocation: post.DeliveryLocation,
		Status:           string(post.Status),
		CreatedAt:        post.CreatedAt,
	}
}

func MapSenderPost(post *domainpost.SenderPost, owner *domainuser.User) SenderPostView {
	if post == nil {
		return SenderPostView{}
	}
	photos := post.Photos
	if photos == nil {
		photos = []string{}
	}
	return SenderPostView{
		ID:                 string(post.ID),
		Owner:              MapPublicProfile(owner),
		OriginCountry:      post.OriginCountry,
		OriginCity:         post.OriginCity,
		OriginAddress:      post.OriginAddress,
		DestinationCountry: post.DestinationCountry,
		DestinationCity:    post.DestinationCity,
		DestinationAddress: post.DestinationAddress,
		ItemCategory:       post.ItemCategory,
		ItemDescription:    post.ItemDescription,
		Weight:             post.Weight,
		MaxPrice:           post.MaxPrice,
		Photos:             append([]string(nil), photos...),
		SpecialNotes:       post.SpecialNotes,
		PickupNotes:        post.PickupNotes,
		DeliveryNotes:      post.DeliveryNotes,
		Status:             string(post.Status),
		CreatedAt:          post.CreatedAt,
	}
}
