package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carryon/internal/domain/request"
	"carryon/internal/infra/storage/memory"
)

func newRequest(t *testing.T, id string, created time.Time) *request.Request {
	t.Helper()
	r, err := request.NewRequest(request.CreateParams{
		ID:              request.ID(id),
		SenderPostID:    "sp-1",
		TravellerPostID: "tp-1",
		SenderID:        "sender",
		ReceiverID:      "receiver",
		CreatedAt:       created,
	})
	require.NoError(t, err)
	r.ClearEvents()
	return r
}

func TestSaveAssignsVersions(t *testing.T) {
	repo := memory.NewRequestRepository()
	ctx := context.Background()

	r := newRequest(t, "req-1", time.Now())
	require.NoError(t, repo.Save(ctx, r))
	assert.Equal(t, int64(1), r.Version)

	require.NoError(t, r.Accept("receiver", 0, time.Now()))
	r.ClearEvents()
	require.NoError(t, repo.Save(ctx, r))
	assert.Equal(t, int64(2), r.Version)
}

func TestSaveDetectsConcurrentUpdate(t *testing.T) {
	repo := memory.NewRequestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newRequest(t, "req-1", time.Now())))

	first, err := repo.ByID(ctx, "req-1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "req-1")
	require.NoError(t, err)

	require.NoError(t, first.Accept("receiver", 0, time.Now()))
	require.NoError(t, repo.Save(ctx, first))

	// The stale copy lost the race.
	require.NoError(t, second.Reject("receiver", time.Now()))
	assert.ErrorIs(t, repo.Save(ctx, second), memory.ErrVersionConflict)

	stored, err := repo.ByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, request.StatusAccepted, stored.Status)
}

func TestStoredCopyIsIsolated(t *testing.T) {
	repo := memory.NewRequestRepository()
	ctx := context.Background()

	r := newRequest(t, "req-1", time.Now())
	require.NoError(t, repo.Save(ctx, r))

	r.Status = request.StatusCancelled

	stored, err := repo.ByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, stored.Status)
	assert.Empty(t, stored.PendingEvents())
}

func TestListForUserSortsAndPages(t *testing.T) {
	repo := memory.NewRequestRepository()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"req-1", "req-2", "req-3"} {
		require.NoError(t, repo.Save(ctx, newRequest(t, id, base.Add(time.Duration(i)*time.Minute))))
	}

	page, total, err := repo.ListForUser(ctx, request.ListParams{UserID: "sender", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, request.ID("req-3"), page[0].ID)
	assert.Equal(t, request.ID("req-2"), page[1].ID)

	page, total, err = repo.ListForUser(ctx, request.ListParams{UserID: "sender", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, request.ID("req-1"), page[0].ID)
}

func TestListForUserFiltersByBoxAndStatus(t *testing.T) {
	repo := memory.NewRequestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newRequest(t, "req-1", time.Now())))

	_, total, err := repo.ListForUser(ctx, request.ListParams{UserID: "receiver", Box: request.BoxSent})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = repo.ListForUser(ctx, request.ListParams{UserID: "receiver", Box: request.BoxReceived})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = repo.ListForUser(ctx, request.ListParams{
		UserID: "receiver",
		Status: request.StatusAccepted,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
}
