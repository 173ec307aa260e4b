package dto

import (
	"time"

	domainchat "carryon/internal/domain/chat"
	domainuser "carryon/internal/domain/user"
)

type MessageView struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	Sender         PublicProfile `json:"sender"`
	MessageType    string        `json:"message_type"`
	Content        string        `json:"content"`
	CreatedAt      time.Time     `json:"created_at"`
}

type ConversationView struct {
	ID               string        `json:"id"`
	RequestID        string        `json:"request_id"`
	RequestStatus    string        `json:"request_status,omitempty"`
	OtherParticipant PublicProfile `json:"other_participant"`
	LatestMessage    *MessageView  `json:"latest_message,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type ConversationCollection struct {
	Conversations []ConversationView `json:"conversations"`
	Pagination    Pagination         `json:"pagination"`
}

type MessageCollection struct {
	Messages   []MessageView `json:"messages"`
	Pagination Pagination    `json:"pagination"`
}

func MapMessage(message *domainchat.Message, sender *domainuser.User) MessageView {
	if message == nil {
		return MessageView{}
	}
	return MessageView{
		ID:             string(message.ID),
		ConversationID: string(message.ConversationID),
		Sender:         MapPublicProfile(sender),
		MessageType:    string(message.Type),
		Content:        message.Content,
		CreatedAt:      message.CreatedAt,
	}
}

func MapConversation(
	conversation *domainchat.Conversation,
	requestStatus string,
	other *domainuser.User,
	latest *domainchat.Message,
	latestSender *domainuser.User,
) ConversationView {
	if conversation == nil {
		return ConversationView{}
	}
	view := ConversationView{
		ID:               string(conversation.ID),
		RequestID:        string(conversation.RequestID),
		RequestStatus:    requestStatus,
		OtherParticipant: MapPublicProfile(other),
		CreatedAt:        conversation.CreatedAt,
		UpdatedAt:        conversation.UpdatedAt,
	}
	if latest != nil {
		mapped := MapMessage(latest, latestSender)
		view.LatestMessage = &mapped
	}
	return view
}
