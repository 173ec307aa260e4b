package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"carryon/internal/domain/request"
	"carryon/internal/domain/user"
)

var (
	ErrNotFound        = errors.New("chat: conversation not found")
	ErrNotParticipant  = errors.New("chat: caller is not a participant")
	ErrEmptyContent    = errors.New("chat: message content is required")
	ErrInvalidType     = errors.New("chat: invalid message type")
	ErrTwoParticipants = errors.New("chat: a conversation needs two distinct participants")
)

type ConversationID string

type MessageID string

type MessageType string

const (
	TypeText         MessageType = "TEXT"
	TypeSystem       MessageType = "SYSTEM"
	TypeStatusUpdate MessageType = "STATUS_UPDATE"
)

// ParseMessageType maps client input onto the closed type set; empty input
// defaults to TEXT.
func ParseMessageType(raw string) (MessageType, bool) {
	switch MessageType(strings.ToUpper(strings.TrimSpace(raw))) {
	case "":
		return TypeText, true
	case TypeText:
		return TypeText, true
	case TypeSystem:
		return TypeSystem, true
	case TypeStatusUpdate:
		return TypeStatusUpdate, true
	default:
		return "", false
	}
}

// Conversation is the single thread attached to a request. It is created in
// the same transaction as the request and never deleted.
type Conversation struct {
	ID           ConversationID
	RequestID    request.ID
	Participants []user.ID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateConversationParams struct {
	ID        ConversationID
	RequestID request.ID
	First     user.ID
	Second    user.ID
	Now       time.Time
}

func NewConversation(params CreateConversationParams) (*Conversation, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("chat: conversation id is required")
	}
	if strings.TrimSpace(string(params.RequestID)) == "" {
		return nil, errors.New("chat: request id is required")
	}
	if params.First == "" || params.Second == "" || params.First == params.Second {
		return nil, ErrTwoParticipants
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Conversation{
		ID:           params.ID,
		RequestID:    params.RequestID,
		Participants: []user.ID{params.First, params.Second},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (c *Conversation) HasParticipant(id user.ID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// OtherParticipant returns the counterparty for the given user.
func (c *Conversation) OtherParticipant(id user.ID) (user.ID, bool) {
	for _, p := range c.Participants {
		if p != id {
			return p, true
		}
	}
	return "", false
}

// Message is an immutable conversation entry. SYSTEM messages record request
// transitions and carry the acting user's id as sender.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       user.ID
	Type           MessageType
	Content        string
	CreatedAt      time.Time
}

type CreateMessageParams struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       user.ID
	Type           MessageType
	Content        string
	Now            time.Time
}

func NewMessage(params CreateMessageParams) (*Message, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("chat: message id is required")
	}
	if strings.TrimSpace(string(params.ConversationID)) == "" {
		return nil, errors.New("chat: conversation id is required")
	}
	if strings.TrimSpace(string(params.SenderID)) == "" {
		return nil, errors.New("chat: sender id is required")
	}
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	msgType := params.Type
	if msgType == "" {
		msgType = TypeText
	}
	switch msgType {
	case TypeText, TypeSystem, TypeStatusUpdate:
	default:
		return nil, ErrInvalidType
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &Message{
		ID:             params.ID,
		ConversationID: params.ConversationID,
		SenderID:       params.SenderID,
		Type:           msgType,
		Content:        content,
		CreatedAt:      now.UTC(),
	}, nil
}

type Repository interface {
	CreateConversation(ctx context.Context, conversation *Conversation) error
	ConversationByID(ctx context.Context, id ConversationID) (*Conversation, error)
	ConversationByRequest(ctx context.Context, requestID request.ID) (*Conversation, error)
	// ListConversations returns the user's threads ordered by UpdatedAt
	// descending, plus the total count.
	ListConversations(ctx context.Context, userID user.ID, offset, limit int) ([]*Conversation, int, error)
	// AppendMessage stores the message and bumps the conversation's
	// UpdatedAt to the message's CreatedAt.
	AppendMessage(ctx context.Context, message *Message) error
	// ListMessages returns messages ascending by CreatedAt, plus the total.
	ListMessages(ctx context.Context, id ConversationID, offset, limit int) ([]*Message, int, error)
	LatestMessage(ctx context.Context, id ConversationID) (*Message, error)
}
