package request_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carryon/internal/domain/request"
)

func newPendingRequest(t *testing.T) *request.Request {
	t.Helper()
	r, err := request.NewRequest(request.CreateParams{
		ID:              "req-1",
		SenderPostID:    "sp-1",
		TravellerPostID: "tp-1",
		SenderID:        "sender",
		ReceiverID:      "receiver",
		Note:            "can you take this?",
		ProposedPrice:   25,
	})
	require.NoError(t, err)
	return r
}

func TestNewRequestStartsPending(t *testing.T) {
	r := newPendingRequest(t)

	assert.Equal(t, request.StatusPending, r.Status)
	assert.Equal(t, 25.0, r.ProposedPrice)
	assert.Zero(t, r.AgreedPrice)

	events := r.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "request.created", events[0].EventName())
}

func TestNewRequestRejectsSelfRequest(t *testing.T) {
	_, err := request.NewRequest(request.CreateParams{
		ID:              "req-1",
		SenderPostID:    "sp-1",
		TravellerPostID: "tp-1",
		SenderID:        "same",
		ReceiverID:      "same",
	})
	assert.ErrorIs(t, err, request.ErrSelfRequest)
}

func TestAcceptByReceiver(t *testing.T) {
	r := newPendingRequest(t)
	r.ClearEvents()

	require.NoError(t, r.Accept("receiver", 40, time.Now()))
	assert.Equal(t, request.StatusAccepted, r.Status)
	assert.Equal(t, 40.0, r.AgreedPrice)

	events := r.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "request.accepted", events[0].EventName())
}

func TestAcceptWithoutPriceKeepsProposal(t *testing.T) {
	r := newPendingRequest(t)

	require.NoError(t, r.Accept("receiver", 0, time.Now()))
	assert.Zero(t, r.AgreedPrice)
}

func TestAcceptBySenderFails(t *testing.T) {
	r := newPendingRequest(t)

	err := r.Accept("sender", 40, time.Now())
	assert.ErrorIs(t, err, request.ErrReceiverOnly)
	assert.Equal(t, request.StatusPending, r.Status)
}

func TestRejectByReceiver(t *testing.T) {
	r := newPendingRequest(t)

	require.NoError(t, r.Reject("receiver", time.Now()))
	assert.Equal(t, request.StatusRejected, r.Status)
}

func TestRejectAcceptedRequestFails(t *testing.T) {
	r := newPendingRequest(t)
	require.NoError(t, r.Accept("receiver", 0, time.Now()))

	err := r.Reject("receiver", time.Now())
	assert.ErrorIs(t, err, request.ErrInvalidState)
}

func TestCompleteRequiresAccepted(t *testing.T) {
	r := newPendingRequest(t)

	err := r.Complete("sender", time.Now())
	assert.ErrorIs(t, err, request.ErrInvalidState)

	require.NoError(t, r.Accept("receiver", 0, time.Now()))
	require.NoError(t, r.Complete("sender", time.Now()))
	assert.Equal(t, request.StatusCompleted, r.Status)
}

func TestCompleteByEitherParticipant(t *testing.T) {
	r := newPendingRequest(t)
	require.NoError(t, r.Accept("receiver", 0, time.Now()))
	require.NoError(t, r.Complete("receiver", time.Now()))
	assert.Equal(t, request.StatusCompleted, r.Status)
}

func TestCompleteByStrangerFails(t *testing.T) {
	r := newPendingRequest(t)
	require.NoError(t, r.Accept("receiver", 0, time.Now()))

	err := r.Complete("stranger", time.Now())
	assert.ErrorIs(t, err, request.ErrParticipantOnly)
}

func TestCancelBySenderFromPendingAndAccepted(t *testing.T) {
	pending := newPendingRequest(t)
	require.NoError(t, pending.Cancel("sender", time.Now()))
	assert.Equal(t, request.StatusCancelled, pending.Status)

	accepted := newPendingRequest(t)
	require.NoError(t, accepted.Accept("receiver", 0, time.Now()))
	require.NoError(t, accepted.Cancel("sender", time.Now()))
	assert.Equal(t, request.StatusCancelled, accepted.Status)
}

func TestCancelByReceiverFails(t *testing.T) {
	r := newPendingRequest(t)

	err := r.Cancel("receiver", time.Now())
	assert.ErrorIs(t, err, request.ErrSenderOnly)
}

func TestTerminalStatesAllowNoTransitions(t *testing.T) {
	r := newPendingRequest(t)
	require.NoError(t, r.Reject("receiver", time.Now()))

	assert.ErrorIs(t, r.Cancel("sender", time.Now()), request.ErrInvalidState)
	assert.ErrorIs(t, r.Accept("receiver", 0, time.Now()), request.ErrInvalidState)
	assert.True(t, r.Status.Terminal())
}

func TestParseStatus(t *testing.T) {
	status, ok := request.ParseStatus("accepted")
	require.True(t, ok)
	assert.Equal(t, request.StatusAccepted, status)

	_, ok = request.ParseStatus("shipped")
	assert.False(t, ok)
}

func TestListParamsNormalized(t *testing.T) {
	params := request.ListParams{Box: "outbox", Page: -2, Limit: 500}.Normalized()
	assert.Equal(t, request.BoxAll, params.Box)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 50, params.Limit)
	assert.Equal(t, 0, params.Offset())
}
