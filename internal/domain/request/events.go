package request

import (
	"time"

	"carryon/internal/domain/post"
	"carryon/internal/domain/user"
)

type RequestCreated struct {
	RequestID       ID
	SenderPostID    post.ID
	TravellerPostID post.ID
	SenderID        user.ID
	ReceiverID      user.ID
	ProposedPrice   float64
	At              time.Time
}

func (e RequestCreated) EventName() string     { return "request.created" }
func (e RequestCreated) AggregateID() string   { return string(e.RequestID) }
func (e RequestCreated) OccurredAt() time.Time { return e.At }

type RequestAccepted struct {
	RequestID   ID
	AgreedPrice float64
	At          time.Time
}

func (e RequestAccepted) EventName() string     { return "request.accepted" }
func (e RequestAccepted) AggregateID() string   { return string(e.RequestID) }
func (e RequestAccepted) OccurredAt() time.Time { return e.At }

type RequestRejected struct {
	RequestID ID
	At        time.Time
}

func (e RequestRejected) EventName() string     { return "request.rejected" }
func (e RequestRejected) AggregateID() string   { return string(e.RequestID) }
func (e RequestRejected) OccurredAt() time.Time { return e.At }

type RequestCompleted struct {
	RequestID ID
	At        time.Time
}

func (e RequestCompleted) EventName() string     { return "request.completed" }
func (e RequestCompleted) AggregateID() string   { return string(e.RequestID) }
func (e RequestCompleted) OccurredAt() time.Time { return e.At }

type RequestCancelled struct {
	RequestID ID
	At        time.Time
}

func (e RequestCancelled) EventName() string     { return "request.cancelled" }
func (e RequestCancelled) AggregateID() string   { return string(e.RequestID) }
func (e RequestCancelled) OccurredAt() time.Time { return e.At }
