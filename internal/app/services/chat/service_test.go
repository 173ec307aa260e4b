package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carryon/internal/app/services/chat"
	domainchat "carryon/internal/domain/chat"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
	"carryon/internal/infra/storage/memory"
)

type fixture struct {
	service      *chat.Service
	chat         *memory.ChatRepository
	requests     *memory.RequestRepository
	alice        *domainuser.User
	bob          *domainuser.User
	conversation *domainchat.Conversation
	request      *domainrequest.Request
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	chatRepo := memory.NewChatRepository()
	requestsRepo := memory.NewRequestRepository()

	alice, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "alice", Email: "alice@example.com", Name: "Alice", PasswordHash: "x",
	})
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, alice))

	bob, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "bob", Email: "bob@example.com", Name: "Bob", PasswordHash: "x",
	})
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, bob))

	request, err := domainrequest.NewRequest(domainrequest.CreateParams{
		ID:              "req-1",
		SenderPostID:    "sp-1",
		TravellerPostID: "tp-1",
		SenderID:        alice.ID,
		ReceiverID:      bob.ID,
	})
	require.NoError(t, err)
	request.ClearEvents()
	require.NoError(t, requestsRepo.Save(ctx, request))

	conversation, err := domainchat.NewConversation(domainchat.CreateConversationParams{
		ID:        "conv-1",
		RequestID: request.ID,
		First:     alice.ID,
		Second:    bob.ID,
	})
	require.NoError(t, err)
	require.NoError(t, chatRepo.CreateConversation(ctx, conversation))

	service := &chat.Service{
		Chat:     chatRepo,
		Requests: requestsRepo,
		Users:    users,
	}
	return &fixture{
		service:      service,
		chat:         chatRepo,
		requests:     requestsRepo,
		alice:        alice,
		bob:          bob,
		conversation: conversation,
		request:      request,
	}
}

func TestPostAndListMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.PostMessage(ctx, f.alice.ID, chat.PostMessageParams{
		ConversationID: f.conversation.ID,
		Content:        "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, domainchat.TypeText, first.Message.Type)
	require.NotNil(t, first.Sender)
	assert.Equal(t, f.alice.ID, first.Sender.ID)

	_, err = f.service.PostMessage(ctx, f.bob.ID, chat.PostMessageParams{
		ConversationID: f.conversation.ID,
		Content:        "hi there",
	})
	require.NoError(t, err)

	page, err := f.service.ListMessages(ctx, f.alice.ID, f.conversation.ID, chat.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Messages, 2)
	// Chronological order, oldest first.
	assert.Equal(t, "hello", page.Messages[0].Message.Content)
	assert.Equal(t, "hi there", page.Messages[1].Message.Content)
	assert.Equal(t, f.bob.ID, page.Messages[1].Sender.ID)
}

func TestPostMessageByOutsiderLooksMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.PostMessage(context.Background(), "mallory", chat.PostMessageParams{
		ConversationID: f.conversation.ID,
		Content:        "let me in",
	})
	assert.ErrorIs(t, err, domainchat.ErrNotFound)
}

func TestListMessagesByOutsiderLooksMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ListMessages(context.Background(), "mallory", f.conversation.ID, chat.ListParams{})
	assert.ErrorIs(t, err, domainchat.ErrNotFound)
}

func TestGetConversationAnnotatesCounterparty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.PostMessage(ctx, f.bob.ID, chat.PostMessageParams{
		ConversationID: f.conversation.ID,
		Content:        "latest word",
	})
	require.NoError(t, err)

	detail, err := f.service.GetConversation(ctx, f.alice.ID, f.conversation.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Other)
	assert.Equal(t, f.bob.ID, detail.Other.ID)
	require.NotNil(t, detail.Latest)
	assert.Equal(t, "latest word", detail.Latest.Content)
	require.NotNil(t, detail.LatestSender)
	assert.Equal(t, f.bob.ID, detail.LatestSender.ID)
	assert.Equal(t, domainrequest.StatusPending, detail.RequestStatus)
}

func TestListConversationsOrderedByActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second, err := domainchat.NewConversation(domainchat.CreateConversationParams{
		ID:        "conv-2",
		RequestID: "req-2",
		First:     f.alice.ID,
		Second:    f.bob.ID,
		Now:       time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, f.chat.CreateConversation(ctx, second))

	// Activity in the older thread bumps it to the top.
	_, err = f.service.PostMessage(ctx, f.alice.ID, chat.PostMessageParams{
		ConversationID: second.ID,
		Content:        "ping",
	})
	require.NoError(t, err)

	page, err := f.service.ListConversations(ctx, f.alice.ID, chat.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Conversations, 2)
	assert.Equal(t, second.ID, page.Conversations[0].Conversation.ID)
	assert.Equal(t, f.conversation.ID, page.Conversations[1].Conversation.ID)
}

func TestListConversationsForStrangerIsEmpty(t *testing.T) {
	f := newFixture(t)

	page, err := f.service.ListConversations(context.Background(), "mallory", chat.ListParams{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Conversations)
}
