package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carryon/internal/app/outbox"
	"carryon/internal/app/uow"
	domainchat "carryon/internal/domain/chat"
	domainpost "carryon/internal/domain/post"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

// Service drives the request lifecycle. Creation and every transition run in
// a single unit of work so the request, its conversation and the system
// message can never drift apart.
type Service struct {
	UoW     uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Detail is the fully hydrated view of one request.
type Detail struct {
	Request        *domainrequest.Request
	Sender         *domainuser.User
	Receiver       *domainuser.User
	SenderPost     *domainpost.SenderPost
	TravellerPost  *domainpost.TravellerPost
	ConversationID domainchat.ConversationID
}

type Page struct {
	Requests []Detail
	Total    int
	Page     int
	Limit    int
}

type CreateParams struct {
	SenderPostID    domainpost.ID
	TravellerPostID domainpost.ID
	Message         string
	ProposedPrice   float64
}

type UpdateParams struct {
	Status      domainrequest.Status
	AgreedPrice float64
}

// Create opens a request between a sender post and a traveller post. The
// actor must own exactly one of the two posts; the item owner is always the
// request sender and the counterparty the receiver, whichever side opened it.
func (s *Service) Create(ctx context.Context, actor domainuser.ID, params CreateParams) (*Detail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(ctx) }()
	ctx = unit.Context(ctx)

	senderPost, err := unit.SenderPosts().ByID(ctx, params.SenderPostID)
	if err != nil {
		return nil, err
	}
	travellerPost, err := unit.TravellerPosts().ByID(ctx, params.TravellerPostID)
	if err != nil {
		return nil, err
	}
	// Inactive posts are indistinguishable from missing ones to the caller.
	if !senderPost.Active() || !travellerPost.Active() {
		return nil, domainpost.ErrNotFound
	}

	ownsSender := senderPost.OwnerID == actor
	ownsTraveller := travellerPost.OwnerID == actor
	switch {
	case ownsSender && ownsTraveller:
		return nil, domainrequest.ErrSelfRequest
	case !ownsSender && !ownsTraveller:
		return nil, domainrequest.ErrParticipantOnly
	}
	senderID := senderPost.OwnerID
	receiverID := travellerPost.OwnerID

	exists, err := unit.Requests().Exists(ctx, senderPost.ID, travellerPost.ID, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainrequest.ErrDuplicate
	}

	now := time.Now()
	request, err := domainrequest.NewRequest(domainrequest.CreateParams{
		ID:              domainrequest.ID(uuid.NewString()),
		SenderPostID:    senderPost.ID,
		TravellerPostID: travellerPost.ID,
		SenderID:        senderID,
		ReceiverID:      receiverID,
		Note:            params.Message,
		ProposedPrice:   params.ProposedPrice,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Requests().Save(ctx, request); err != nil {
		return nil, err
	}

	conversation, err := domainchat.NewConversation(domainchat.CreateConversationParams{
		ID:        domainchat.ConversationID(uuid.NewString()),
		RequestID: request.ID,
		First:     senderID,
		Second:    receiverID,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Chat().CreateConversation(ctx, conversation); err != nil {
		return nil, err
	}

	if note := request.Note; note != "" {
		message, err := domainchat.NewMessage(domainchat.CreateMessageParams{
			ID:             domainchat.MessageID(uuid.NewString()),
			ConversationID: conversation.ID,
			SenderID:       actor,
			Type:           domainchat.TypeText,
			Content:        note,
			Now:            now,
		})
		if err != nil {
			return nil, err
		}
		if err := unit.Chat().AppendMessage(ctx, message); err != nil {
			return nil, err
		}
	}

	if err := outbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, request.PendingEvents()); err != nil {
		return nil, err
	}
	request.ClearEvents()

	sender, receiver, err := s.loadParties(ctx, unit, request)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("request created",
			"request_id", request.ID,
			"sender_id", senderID,
			"receiver_id", receiverID,
			"conversation_id", conversation.ID,
		)
	}
	return &Detail{
		Request:        request,
		Sender:         sender,
		Receiver:       receiver,
		SenderPost:     senderPost,
		TravellerPost:  travellerPost,
		ConversationID: conversation.ID,
	}, nil
}

// UpdateStatus applies one lifecycle transition and appends the matching
// system message to the request's conversation.
func (s *Service) UpdateStatus(ctx context.Context, actor domainuser.ID, id domainrequest.ID, params UpdateParams) (*Detail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(ctx) }()
	ctx = unit.Context(ctx)

	request, err := unit.Requests().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Outsiders learn nothing about requests they are not part of.
	if !request.IsParticipant(actor) {
		return nil, domainrequest.ErrNotFound
	}

	now := time.Now()
	switch params.Status {
	case domainrequest.StatusAccepted:
		err = request.Accept(actor, params.AgreedPrice, now)
	case domainrequest.StatusRejected:
		err = request.Reject(actor, now)
	case domainrequest.StatusCompleted:
		err = request.Complete(actor, now)
	case domainrequest.StatusCancelled:
		err = request.Cancel(actor, now)
	default:
		err = domainrequest.ErrInvalidState
	}
	if err != nil {
		return nil, err
	}
	if err := unit.Requests().Save(ctx, request); err != nil {
		return nil, err
	}

	conversation, err := unit.Chat().ConversationByRequest(ctx, request.ID)
	if err != nil && !errors.Is(err, domainchat.ErrNotFound) {
		return nil, err
	}
	var conversationID domainchat.ConversationID
	if conversation != nil {
		conversationID = conversation.ID
		message, err := domainchat.NewMessage(domainchat.CreateMessageParams{
			ID:             domainchat.MessageID(uuid.NewString()),
			ConversationID: conversation.ID,
			SenderID:       actor,
			Type:           domainchat.TypeSystem,
			Content:        systemNote(request.Status, request.AgreedPrice),
			Now:            now,
		})
		if err != nil {
			return nil, err
		}
		if err := unit.Chat().AppendMessage(ctx, message); err != nil {
			return nil, err
		}
	}

	if err := outbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, request.PendingEvents()); err != nil {
		return nil, err
	}
	request.ClearEvents()

	detail, err := s.hydrate(ctx, unit, request, conversationID)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("request transitioned",
			"request_id", request.ID,
			"status", request.Status,
			"actor_id", actor,
		)
	}
	return detail, nil
}

// Get loads one request for a participant.
func (s *Service) Get(ctx context.Context, actor domainuser.ID, id domainrequest.ID) (*Detail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(ctx) }()
	ctx = unit.Context(ctx)

	request, err := unit.Requests().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.IsParticipant(actor) {
		return nil, domainrequest.ErrNotFound
	}
	conversationID, err := s.conversationID(ctx, unit, request.ID)
	if err != nil {
		return nil, err
	}
	detail, err := s.hydrate(ctx, unit, request, conversationID)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return detail, nil
}

// List pages through the actor's requests, newest first.
func (s *Service) List(ctx context.Context, params domainrequest.ListParams) (*Page, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	params = params.Normalized()
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(ctx) }()
	ctx = unit.Context(ctx)

	items, total, err := unit.Requests().ListForUser(ctx, params)
	if err != nil {
		return nil, err
	}
	page := &Page{
		Requests: make([]Detail, 0, len(items)),
		Total:    total,
		Page:     params.Page,
		Limit:    params.Limit,
	}
	for _, request := range items {
		conversationID, err := s.conversationID(ctx, unit, request.ID)
		if err != nil {
			return nil, err
		}
		detail, err := s.hydrate(ctx, unit, request, conversationID)
		if err != nil {
			return nil, err
		}
		page.Requests = append(page.Requests, *detail)
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *Service) conversationID(ctx context.Context, unit uow.UnitOfWork, id domainrequest.ID) (domainchat.ConversationID, error) {
	conversation, err := unit.Chat().ConversationByRequest(ctx, id)
	if err != nil {
		if errors.Is(err, domainchat.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return conversation.ID, nil
}

func (s *Service) hydrate(ctx context.Context, unit uow.UnitOfWork, request *domainrequest.Request, conversationID domainchat.ConversationID) (*Detail, error) {
	sender, receiver, err := s.loadParties(ctx, unit, request)
	if err != nil {
		return nil, err
	}
	senderPost, err := unit.SenderPosts().ByID(ctx, request.SenderPostID)
	if err != nil && !errors.Is(err, domainpost.ErrNotFound) {
		return nil, err
	}
	travellerPost, err := unit.TravellerPosts().ByID(ctx, request.TravellerPostID)
	if err != nil && !errors.Is(err, domainpost.ErrNotFound) {
		return nil, err
	}
	return &Detail{
		Request:        request,
		Sender:         sender,
		Receiver:       receiver,
		SenderPost:     senderPost,
		TravellerPost:  travellerPost,
		ConversationID: conversationID,
	}, nil
}

func (s *Service) loadParties(ctx context.Context, unit uow.UnitOfWork, request *domainrequest.Request) (*domainuser.User, *domainuser.User, error) {
	sender, err := unit.Users().ByID(ctx, request.SenderID)
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, nil, err
	}
	receiver, err := unit.Users().ByID(ctx, request.ReceiverID)
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, nil, err
	}
	return sender, receiver, nil
}

func (s *Service) ensureDependencies() error {
	if s.UoW == nil {
		return errors.New("requests: unit of work factory required")
	}
	return nil
}

// systemNote renders the conversation entry for a lifecycle transition.
func systemNote(status domainrequest.Status, agreedPrice float64) string {
	switch status {
	case domainrequest.StatusAccepted:
		if agreedPrice > 0 {
			return fmt.Sprintf("Request has been accepted for $%g", agreedPrice)
		}
		return "Request has been accepted"
	case domainrequest.StatusRejected:
		return "Request has been rejected"
	case domainrequest.StatusCompleted:
		return "Request has been completed"
	case domainrequest.StatusCancelled:
		return "Request has been cancelled"
	default:
		return "Request has been updated"
	}
}
