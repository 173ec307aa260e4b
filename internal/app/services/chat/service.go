package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainchat "carryon/internal/domain/chat"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

// Service exposes the per-request conversation threads.
type Service struct {
	Chat     domainchat.Repository
	Requests domainrequest.Repository
	Users    domainuser.Repository
	Logger   *slog.Logger
}

// ConversationDetail annotates a thread with everything the inbox view
// renders: the counterparty, the latest message and the request status.
type ConversationDetail struct {
	Conversation  *domainchat.Conversation
	Other         *domainuser.User
	Latest        *domainchat.Message
	LatestSender  *domainuser.User
	RequestStatus domainrequest.Status
}

type ConversationPage struct {
	Conversations []ConversationDetail
	Total         int
	Page          int
	Limit         int
}

type MessageDetail struct {
	Message *domainchat.Message
	Sender  *domainuser.User
}

type MessagePage struct {
	Messages []MessageDetail
	Total    int
	Page     int
	Limit    int
}

type ListParams struct {
	Page  int
	Limit int
}

func (p ListParams) normalized() ListParams {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.Limit
}

type PostMessageParams struct {
	ConversationID domainchat.ConversationID
	Content        string
	Type           domainchat.MessageType
}

// ListConversations returns the actor's threads ordered by latest activity.
func (s *Service) ListConversations(ctx context.Context, actor domainuser.ID, params ListParams) (*ConversationPage, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	params = params.normalized()
	conversations, total, err := s.Chat.ListConversations(ctx, actor, params.offset(), params.Limit)
	if err != nil {
		return nil, err
	}
	page := &ConversationPage{
		Conversations: make([]ConversationDetail, 0, len(conversations)),
		Total:         total,
		Page:          params.Page,
		Limit:         params.Limit,
	}
	for _, conversation := range conversations {
		detail, err := s.annotate(ctx, actor, conversation)
		if err != nil {
			return nil, err
		}
		page.Conversations = append(page.Conversations, *detail)
	}
	return page, nil
}

// GetConversation loads one thread for a participant.
func (s *Service) GetConversation(ctx context.Context, actor domainuser.ID, id domainchat.ConversationID) (*ConversationDetail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	conversation, err := s.Chat.ConversationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(actor) {
		return nil, domainchat.ErrNotFound
	}
	return s.annotate(ctx, actor, conversation)
}

// PostMessage appends a message to a thread the actor participates in.
func (s *Service) PostMessage(ctx context.Context, actor domainuser.ID, params PostMessageParams) (*MessageDetail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	conversation, err := s.Chat.ConversationByID(ctx, params.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(actor) {
		return nil, domainchat.ErrNotFound
	}
	message, err := domainchat.NewMessage(domainchat.CreateMessageParams{
		ID:             domainchat.MessageID(uuid.NewString()),
		ConversationID: conversation.ID,
		SenderID:       actor,
		Type:           params.Type,
		Content:        params.Content,
		Now:            time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Chat.AppendMessage(ctx, message); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("message sent",
			"conversation_id", conversation.ID,
			"message_id", message.ID,
			"type", message.Type,
		)
	}
	sender, err := s.loadUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &MessageDetail{Message: message, Sender: sender}, nil
}

// ListMessages pages through a thread in chronological order.
func (s *Service) ListMessages(ctx context.Context, actor domainuser.ID, id domainchat.ConversationID, params ListParams) (*MessagePage, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	conversation, err := s.Chat.ConversationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(actor) {
		return nil, domainchat.ErrNotFound
	}
	params = params.normalized()
	messages, total, err := s.Chat.ListMessages(ctx, conversation.ID, params.offset(), params.Limit)
	if err != nil {
		return nil, err
	}
	page := &MessagePage{
		Messages: make([]MessageDetail, 0, len(messages)),
		Total:    total,
		Page:     params.Page,
		Limit:    params.Limit,
	}
	senders := make(map[domainuser.ID]*domainuser.User)
	for _, message := range messages {
		sender, ok := senders[message.SenderID]
		if !ok {
			sender, err = s.loadUser(ctx, message.SenderID)
			if err != nil {
				return nil, err
			}
			senders[message.SenderID] = sender
		}
		page.Messages = append(page.Messages, MessageDetail{Message: message, Sender: sender})
	}
	return page, nil
}

func (s *Service) annotate(ctx context.Context, actor domainuser.ID, conversation *domainchat.Conversation) (*ConversationDetail, error) {
	detail := &ConversationDetail{Conversation: conversation}

	if otherID, ok := conversation.OtherParticipant(actor); ok {
		other, err := s.loadUser(ctx, otherID)
		if err != nil {
			return nil, err
		}
		detail.Other = other
	}

	latest, err := s.Chat.LatestMessage(ctx, conversation.ID)
	if err != nil && !errors.Is(err, domainchat.ErrNotFound) {
		return nil, err
	}
	if latest != nil {
		detail.Latest = latest
		sender, err := s.loadUser(ctx, latest.SenderID)
		if err != nil {
			return nil, err
		}
		detail.LatestSender = sender
	}

	if s.Requests != nil {
		request, err := s.Requests.ByID(ctx, conversation.RequestID)
		if err != nil && !errors.Is(err, domainrequest.ErrNotFound) {
			return nil, err
		}
		if request != nil {
			detail.RequestStatus = request.Status
		}
	}
	return detail, nil
}

func (s *Service) loadUser(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	user, err := s.Users.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Chat == nil:
		return errors.New("chat: repository required")
	case s.Users == nil:
		return errors.New("chat: user repository required")
	default:
		return nil
	}
}
