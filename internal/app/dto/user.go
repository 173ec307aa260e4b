package dto

import (
	"time"

	domainuser "carryon/internal/domain/user"
)

type UserProfile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	LastName   string    `json:"last_name,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	Rating     float64   `json:"rating"`
	TotalTrips int       `json:"total_trips"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PublicProfile is the counterparty view: no email, no timestamps.
type PublicProfile struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	LastName   string  `json:"last_name,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
	Rating     float64 `json:"rating"`
	TotalTrips int     `json:"total_trips"`
}

type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

func MapUserProfile(user *domainuser.User) UserProfile {
	if user == nil {
		return UserProfile{}
	}
	return UserProfile{
		ID:         string(user.ID),
		Email:      user.Email,
		Name:       user.Name,
		LastName:   user.LastName,
		ImageURL:   user.ImageURL,
		Rating:     user.Rating,
		TotalTrips: user.TotalTrips,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func MapPublicProfile(user *domainuser.User) PublicProfile {
	if user == nil {
		return PublicProfile{}
	}
	return PublicProfile{
		ID:         string(user.ID),
		Name:       user.Name,
		LastName:   user.LastName,
		ImageURL:   user.ImageURL,
		Rating:     user.Rating,
		TotalTrips: user.TotalTrips,
	}
}

func NewAuthResponse(user *domainuser.User, token string) AuthResponse {
	return AuthResponse{
		User:  MapUserProfile(user),
		Token: token,
	}
}
