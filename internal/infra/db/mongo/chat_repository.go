package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "carryon/internal/domain/chat"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

type ChatRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	conversations := db.Collection("conversations")
	messages := db.Collection("messages")
	byRequest := mongo.IndexModel{
		Keys:    bson.D{{Key: "request_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	byParticipant := mongo.IndexModel{Keys: bson.D{
		{Key: "participants", Value: 1},
		{Key: "updated_at", Value: -1},
	}}
	_, _ = conversations.Indexes().CreateMany(context.Background(), []mongo.IndexModel{byRequest, byParticipant})
	byConversation := mongo.IndexModel{Keys: bson.D{
		{Key: "conversation_id", Value: 1},
		{Key: "created_at", Value: 1},
	}}
	_, _ = messages.Indexes().CreateOne(context.Background(), byConversation)
	return &ChatRepository{conversations: conversations, messages: messages}
}

func (r *ChatRepository) CreateConversation(ctx context.Context, conversation *domainchat.Conversation) error {
	if conversation == nil || conversation.ID == "" {
		return domainchat.ErrNotFound
	}
	_, err := r.conversations.InsertOne(ctx, newConversationDocument(conversation))
	return err
}

func (r *ChatRepository) ConversationByID(ctx context.Context, id domainchat.ConversationID) (*domainchat.Conversation, error) {
	var doc conversationDocument
	if err := r.conversations.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainchat.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ChatRepository) ConversationByRequest(ctx context.Context, requestID domainrequest.ID) (*domainchat.Conversation, error) {
	var doc conversationDocument
	if err := r.conversations.FindOne(ctx, bson.M{"request_id": string(requestID)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainchat.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ChatRepository) ListConversations(ctx context.Context, userID domainuser.ID, offset, limit int) ([]*domainchat.Conversation, int, error) {
	filter := bson.M{"participants": string(userID)}
	total, err := r.conversations.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.conversations.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []*domainchat.Conversation
	for cursor.Next(ctx) {
		var doc conversationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, int(total), cursor.Err()
}

func (r *ChatRepository) AppendMessage(ctx context.Context, message *domainchat.Message) error {
	if message == nil || message.ConversationID == "" {
		return domainchat.ErrNotFound
	}
	if _, err := r.messages.InsertOne(ctx, newMessageDocument(message)); err != nil {
		return err
	}
	update := bson.M{"$max": bson.M{"updated_at": message.CreatedAt.UnixMilli()}}
	res, err := r.conversations.UpdateByID(ctx, string(message.ConversationID), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainchat.ErrNotFound
	}
	return nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, id domainchat.ConversationID, offset, limit int) ([]*domainchat.Message, int, error) {
	filter := bson.M{"conversation_id": string(id)}
	total, err := r.messages.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.messages.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []*domainchat.Message
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, int(total), cursor.Err()
}

func (r *ChatRepository) LatestMessage(ctx context.Context, id domainchat.ConversationID) (*domainchat.Message, error) {
	findOpts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc messageDocument
	err := r.messages.FindOne(ctx, bson.M{"conversation_id": string(id)}, findOpts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainchat.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

type conversationDocument struct {
	ID           string   `bson:"_id"`
	RequestID    string   `bson:"request_id"`
	Participants []string `bson:"participants"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
}

func newConversationDocument(c *domainchat.Conversation) conversationDocument {
	participants := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		participants = append(participants, string(p))
	}
	return conversationDocument{
		ID:           string(c.ID),
		RequestID:    string(c.RequestID),
		Participants: participants,
		CreatedAt:    c.CreatedAt.UnixMilli(),
		UpdatedAt:    c.UpdatedAt.UnixMilli(),
	}
}

func (d conversationDocument) toAggregate() *domainchat.Conversation {
	participants := make([]domainuser.ID, 0, len(d.Participants))
	for _, p := range d.Participants {
		participants = append(participants, domainuser.ID(p))
	}
	return &domainchat.Conversation{
		ID:           domainchat.ConversationID(d.ID),
		RequestID:    domainrequest.ID(d.RequestID),
		Participants: participants,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

type messageDocument struct {
	ID             string `bson:"_id"`
	ConversationID string `bson:"conversation_id"`
	SenderID       string `bson:"sender_id"`
	Type           string `bson:"type"`
	Content        string `bson:"content"`
	CreatedAt      int64  `bson:"created_at"`
}

func newMessageDocument(m *domainchat.Message) messageDocument {
	return messageDocument{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		SenderID:       string(m.SenderID),
		Type:           string(m.Type),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt.UnixMilli(),
	}
}

func (d messageDocument) toAggregate() *domainchat.Message {
	return &domainchat.Message{
		ID:             domainchat.MessageID(d.ID),
		ConversationID: domainchat.ConversationID(d.ConversationID),
		SenderID:       domainuser.ID(d.SenderID),
		Type:           domainchat.MessageType(d.Type),
		Content:        d.Content,
		CreatedAt:      timestampToTime(d.CreatedAt),
	}
}

var _ domainchat.Repository = (*ChatRepository)(nil)
