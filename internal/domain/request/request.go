package request

import (
	"context"
	"errors"
	"strings"
	"time"

	"carryon/internal/domain/post"
	"carryon/internal/domain/shared/events"
	"carryon/internal/domain/user"
)

var (
	ErrNotFound        = errors.New("request: not found")
	ErrInvalidState    = errors.New("request: invalid state transition")
	ErrReceiverOnly    = errors.New("request: only the receiver can accept or reject")
	ErrSenderOnly      = errors.New("request: only the sender can cancel")
	ErrParticipantOnly = errors.New("request: caller is not a party to this request")
	ErrDuplicate       = errors.New("request: a request already exists between these posts")
	ErrSelfRequest     = errors.New("request: cannot request against your own posts")
)

type ID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus maps client input onto the closed status set.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusAccepted:
		return StatusAccepted, true
	case StatusRejected:
		return StatusRejected, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusCancelled:
		return StatusCancelled, true
	default:
		return "", false
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Request is the negotiation between a sender post and a traveller post.
// SenderID always names the item owner and ReceiverID the counterparty,
// regardless of which side opened the request.
type Request struct {
	ID              ID
	SenderPostID    post.ID
	TravellerPostID post.ID
	SenderID        user.ID
	ReceiverID      user.ID
	Note            string
	ProposedPrice   float64
	AgreedPrice     float64
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Request, error)
	// Exists reports whether a request already links the same posts in the
	// same direction.
	Exists(ctx context.Context, senderPostID, travellerPostID post.ID, senderID, receiverID user.ID) (bool, error)
	// Save persists the aggregate with a compare-and-swap on Version so
	// concurrent transitions cannot double-apply.
	Save(ctx context.Context, request *Request) error
	ListForUser(ctx context.Context, params ListParams) ([]*Request, int, error)
}

type CreateParams struct {
	ID              ID
	SenderPostID    post.ID
	TravellerPostID post.ID
	SenderID        user.ID
	ReceiverID      user.ID
	Note            string
	ProposedPrice   float64
	CreatedAt       time.Time
}

func NewRequest(params CreateParams) (*Request, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("request: id is required")
	}
	if params.SenderPostID == "" || params.TravellerPostID == "" {
		return nil, errors.New("request: both post ids are required")
	}
	if params.SenderID == "" || params.ReceiverID == "" {
		return nil, errors.New("request: sender and receiver are required")
	}
	if params.SenderID == params.ReceiverID {
		return nil, ErrSelfRequest
	}
	if params.ProposedPrice < 0 {
		return nil, errors.New("request: proposed price must be positive")
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	r := &Request{
		ID:              params.ID,
		SenderPostID:    params.SenderPostID,
		TravellerPostID: params.TravellerPostID,
		SenderID:        params.SenderID,
		ReceiverID:      params.ReceiverID,
		Note:            strings.TrimSpace(params.Note),
		ProposedPrice:   params.ProposedPrice,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.Record(RequestCreated{RequestID: r.ID, SenderPostID: r.SenderPostID, TravellerPostID: r.TravellerPostID, SenderID: r.SenderID, ReceiverID: r.ReceiverID, ProposedPrice: r.ProposedPrice, At: now})
	return r, nil
}

// IsParticipant reports whether id is one of the two negotiating users.
func (r *Request) IsParticipant(id user.ID) bool {
	return id == r.SenderID || id == r.ReceiverID
}

// Accept moves PENDING to ACCEPTED. Only the receiver may accept; an agreed
// price of zero leaves any earlier proposal untouched.
func (r *Request) Accept(actor user.ID, agreedPrice float64, now time.Time) error {
	if actor != r.ReceiverID {
		return ErrReceiverOnly
	}
	if r.Status != StatusPending {
		return ErrInvalidState
	}
	r.Status = StatusAccepted
	if agreedPrice > 0 {
		r.AgreedPrice = agreedPrice
	}
	r.touch(now)
	r.Record(RequestAccepted{RequestID: r.ID, AgreedPrice: r.AgreedPrice, At: r.UpdatedAt})
	return nil
}

// Reject moves PENDING to REJECTED. Only the receiver may reject.
func (r *Request) Reject(actor user.ID, now time.Time) error {
	if actor != r.ReceiverID {
		return ErrReceiverOnly
	}
	if r.Status != StatusPending {
		return ErrInvalidState
	}
	r.Status = StatusRejected
	r.touch(now)
	r.Record(RequestRejected{RequestID: r.ID, At: r.UpdatedAt})
	return nil
}

// Complete moves ACCEPTED to COMPLETED. Either party may mark the delivery
// done; the original left this unrestricted and we restrict it to the two
// participants.
func (r *Request) Complete(actor user.ID, now time.Time) error {
	if !r.IsParticipant(actor) {
		return ErrParticipantOnly
	}
	if r.Status != StatusAccepted {
		return ErrInvalidState
	}
	r.Status = StatusCompleted
	r.touch(now)
	r.Record(RequestCompleted{RequestID: r.ID, At: r.UpdatedAt})
	return nil
}

// Cancel moves PENDING or ACCEPTED to CANCELLED. Only the sender may cancel.
func (r *Request) Cancel(actor user.ID, now time.Time) error {
	if actor != r.SenderID {
		return ErrSenderOnly
	}
	if r.Status != StatusPending && r.Status != StatusAccepted {
		return ErrInvalidState
	}
	r.Status = StatusCancelled
	r.touch(now)
	r.Record(RequestCancelled{RequestID: r.ID, At: r.UpdatedAt})
	return nil
}

func (r *Request) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	r.UpdatedAt = now.UTC()
}

// Box selects which side of the negotiation a page covers.
type Box string

const (
	BoxSent     Box = "sent"
	BoxReceived Box = "received"
	BoxAll      Box = "all"
)

type ListParams struct {
	UserID user.ID
	Box    Box
	Status Status
	Page   int
	Limit  int
}

func (p ListParams) Normalized() ListParams {
	normalized := p
	switch normalized.Box {
	case BoxSent, BoxReceived:
	default:
		normalized.Box = BoxAll
	}
	if normalized.Page <= 0 {
		normalized.Page = 1
	}
	if normalized.Limit <= 0 {
		normalized.Limit = 10
	}
	if normalized.Limit > 50 {
		normalized.Limit = 50
	}
	return normalized
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
