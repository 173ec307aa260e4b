package chat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carryon/internal/domain/chat"
)

func TestNewConversation(t *testing.T) {
	c, err := chat.NewConversation(chat.CreateConversationParams{
		ID:        "conv-1",
		RequestID: "req-1",
		First:     "alice",
		Second:    "bob",
	})
	require.NoError(t, err)

	assert.Len(t, c.Participants, 2)
	assert.True(t, c.HasParticipant("alice"))
	assert.True(t, c.HasParticipant("bob"))
	assert.False(t, c.HasParticipant("carol"))
}

func TestNewConversationNeedsTwoDistinctParticipants(t *testing.T) {
	_, err := chat.NewConversation(chat.CreateConversationParams{
		ID:        "conv-1",
		RequestID: "req-1",
		First:     "alice",
		Second:    "alice",
	})
	assert.ErrorIs(t, err, chat.ErrTwoParticipants)
}

func TestOtherParticipant(t *testing.T) {
	c, err := chat.NewConversation(chat.CreateConversationParams{
		ID:        "conv-1",
		RequestID: "req-1",
		First:     "alice",
		Second:    "bob",
	})
	require.NoError(t, err)

	other, ok := c.OtherParticipant("alice")
	require.True(t, ok)
	assert.Equal(t, "bob", string(other))
}

func TestNewMessageDefaultsToText(t *testing.T) {
	m, err := chat.NewMessage(chat.CreateMessageParams{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "alice",
		Content:        "  hello  ",
		Now:            time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, chat.TypeText, m.Type)
	assert.Equal(t, "hello", m.Content)
}

func TestNewMessageRejectsEmptyContent(t *testing.T) {
	_, err := chat.NewMessage(chat.CreateMessageParams{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "alice",
		Content:        "   ",
	})
	assert.ErrorIs(t, err, chat.ErrEmptyContent)
}

func TestNewMessageRejectsUnknownType(t *testing.T) {
	_, err := chat.NewMessage(chat.CreateMessageParams{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "alice",
		Type:           "VOICE",
		Content:        "hello",
	})
	assert.ErrorIs(t, err, chat.ErrInvalidType)
}

func TestParseMessageType(t *testing.T) {
	parsed, ok := chat.ParseMessageType("")
	require.True(t, ok)
	assert.Equal(t, chat.TypeText, parsed)

	parsed, ok = chat.ParseMessageType("system")
	require.True(t, ok)
	assert.Equal(t, chat.TypeSystem, parsed)

	_, ok = chat.ParseMessageType("voice")
	assert.False(t, ok)
}
