package memory

import (
	"context"
	"sort"
	"sync"

	domainchat "carryon/internal/domain/chat"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

// ChatRepository keeps conversations and messages in memory.
type ChatRepository struct {
	mu            sync.RWMutex
	conversations map[domainchat.ConversationID]*domainchat.Conversation
	byRequest     map[domainrequest.ID]domainchat.ConversationID
	messages      map[domainchat.ConversationID][]*domainchat.Message
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{
		conversations: make(map[domainchat.ConversationID]*domainchat.Conversation),
		byRequest:     make(map[domainrequest.ID]domainchat.ConversationID),
		messages:      make(map[domainchat.ConversationID][]*domainchat.Message),
	}
}

func (r *ChatRepository) CreateConversation(ctx context.Context, conversation *domainchat.Conversation) error {
	if conversation == nil || conversation.ID == "" {
		return domainchat.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conversation.ID] = cloneConversation(conversation)
	r.byRequest[conversation.RequestID] = conversation.ID
	return nil
}

func (r *ChatRepository) ConversationByID(ctx context.Context, id domainchat.ConversationID) (*domainchat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, domainchat.ErrNotFound
	}
	return cloneConversation(conversation), nil
}

func (r *ChatRepository) ConversationByRequest(ctx context.Context, requestID domainrequest.ID) (*domainchat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byRequest[requestID]
	if !ok {
		return nil, domainchat.ErrNotFound
	}
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, domainchat.ErrNotFound
	}
	return cloneConversation(conversation), nil
}

func (r *ChatRepository) ListConversations(ctx context.Context, userID domainuser.ID, offset, limit int) ([]*domainchat.Conversation, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainchat.Conversation, 0, len(r.conversations))
	for _, conversation := range r.conversations {
		if conversation.HasParticipant(userID) {
			matches = append(matches, conversation)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
	})
	total := len(matches)
	if offset >= len(matches) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	out := make([]*domainchat.Conversation, 0, end-offset)
	for _, conversation := range matches[offset:end] {
		out = append(out, cloneConversation(conversation))
	}
	return out, total, nil
}

func (r *ChatRepository) AppendMessage(ctx context.Context, message *domainchat.Message) error {
	if message == nil || message.ConversationID == "" {
		return domainchat.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[message.ConversationID]
	if !ok {
		return domainchat.ErrNotFound
	}
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], cloneMessage(message))
	if message.CreatedAt.After(conversation.UpdatedAt) {
		conversation.UpdatedAt = message.CreatedAt
	}
	return nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, id domainchat.ConversationID, offset, limit int) ([]*domainchat.Message, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.conversations[id]; !ok {
		return nil, 0, domainchat.ErrNotFound
	}
	all := r.messages[id]
	sorted := make([]*domainchat.Message, len(all))
	copy(sorted, all)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	total := len(sorted)
	if offset >= len(sorted) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	out := make([]*domainchat.Message, 0, end-offset)
	for _, message := range sorted[offset:end] {
		out = append(out, cloneMessage(message))
	}
	return out, total, nil
}

func (r *ChatRepository) LatestMessage(ctx context.Context, id domainchat.ConversationID) (*domainchat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.messages[id]
	if len(all) == 0 {
		return nil, domainchat.ErrNotFound
	}
	latest := all[0]
	for _, message := range all[1:] {
		if message.CreatedAt.After(latest.CreatedAt) {
			latest = message
		}
	}
	return cloneMessage(latest), nil
}

func cloneConversation(c *domainchat.Conversation) *domainchat.Conversation {
	if c == nil {
		return nil
	}
	copyConversation := *c
	copyConversation.Participants = append([]domainuser.ID(nil), c.Participants...)
	return &copyConversation
}

func cloneMessage(m *domainchat.Message) *domainchat.Message {
	if m == nil {
		return nil
	}
	copyMessage := *m
	return &copyMessage
}

var _ domainchat.Repository = (*ChatRepository)(nil)
