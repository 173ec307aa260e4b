package dto

import (
	"time"

	domainpost "carryon/internal/domain/post"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

type RequestView struct {
	ID             string            `json:"id"`
	Status         string            `json:"status"`
	Message        string            `json:"message,omitempty"`
	ProposedPrice  float64           `json:"proposed_price,omitempty"`
	AgreedPrice    float64           `json:"agreed_price,omitempty"`
	Sender         PublicProfile     `json:"sender"`
	Receiver       PublicProfile     `json:"receiver"`
	SenderPost     SenderPostView    `json:"sender_post"`
	TravellerPost  TravellerPostView `json:"traveller_post"`
	ConversationID string            `json:"conversation_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type RequestCollection struct {
	Requests   []RequestView `json:"requests"`
	Pagination Pagination    `json:"pagination"`
}

// MapRequest builds the full negotiation view. The sender user owns the
// sender post and the receiver user owns the traveller post, so the two
// profiles double as post owners.
func MapRequest(
	request *domainrequest.Request,
	sender, receiver *domainuser.User,
	senderPost *domainpost.SenderPost,
	travellerPost *domainpost.TravellerPost,
	conversationID string,
) RequestView {
	if request == nil {
		return RequestView{}
	}
	return RequestView{
		ID:             string(request.ID),
		Status:         string(request.Status),
		Message:        request.Note,
		ProposedPrice:  request.ProposedPrice,
		AgreedPrice:    request.AgreedPrice,
		Sender:         MapPublicProfile(sender),
		Receiver:       MapPublicProfile(receiver),
		SenderPost:     MapSenderPost(senderPost, sender),
		TravellerPost:  MapTravellerPost(travellerPost, receiver),
		ConversationID: conversationID,
		CreatedAt:      request.CreatedAt,
		UpdatedAt:      request.UpdatedAt,
	}
}
