package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpost "carryon/internal/domain/post"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	col := db.Collection("agg_request")
	pair := mongo.IndexModel{
		Keys: bson.D{
			{Key: "sender_post_id", Value: 1},
			{Key: "traveller_post_id", Value: 1},
			{Key: "sender_id", Value: 1},
			{Key: "receiver_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	byUser := mongo.IndexModel{Keys: bson.D{
		{Key: "sender_id", Value: 1},
		{Key: "created_at", Value: -1},
	}}
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{pair, byUser})
	return &RequestRepository{col: col}
}

func (r *RequestRepository) ByID(ctx context.Context, id domainrequest.ID) (*domainrequest.Request, error) {
	var doc requestDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainrequest.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RequestRepository) Exists(ctx context.Context, senderPostID, travellerPostID domainpost.ID, senderID, receiverID domainuser.ID) (bool, error) {
	filter := bson.M{
		"sender_post_id":    string(senderPostID),
		"traveller_post_id": string(travellerPostID),
		"sender_id":         string(senderID),
		"receiver_id":       string(receiverID),
	}
	count, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save upserts with a compare-and-swap on version. A lost race surfaces as
// ErrConcurrentUpdate so the caller can retry or give up.
func (r *RequestRepository) Save(ctx context.Context, request *domainrequest.Request) error {
	doc := newRequestDocument(request)
	filter := bson.M{"_id": doc.ID, "version": request.Version}
	doc.Version = request.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	request.Version = doc.Version
	return nil
}

func (r *RequestRepository) ListForUser(ctx context.Context, params domainrequest.ListParams) ([]*domainrequest.Request, int, error) {
	opts := params.Normalized()
	userID := string(opts.UserID)
	var filter bson.M
	switch opts.Box {
	case domainrequest.BoxSent:
		filter = bson.M{"sender_id": userID}
	case domainrequest.BoxReceived:
		filter = bson.M{"receiver_id": userID}
	default:
		filter = bson.M{"$or": []bson.M{
			{"sender_id": userID},
			{"receiver_id": userID},
		}}
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []*domainrequest.Request
	for cursor.Next(ctx) {
		var doc requestDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, int(total), cursor.Err()
}

type requestDocument struct {
	ID              string  `bson:"_id"`
	SenderPostID    string  `bson:"sender_post_id"`
	TravellerPostID string  `bson:"traveller_post_id"`
	SenderID        string  `bson:"sender_id"`
	ReceiverID      string  `bson:"receiver_id"`
	Note            string  `bson:"note"`
	ProposedPrice   float64 `bson:"proposed_price"`
	AgreedPrice     float64 `bson:"agreed_price"`
	Status          string  `bson:"status"`
	CreatedAt       int64   `bson:"created_at"`
	UpdatedAt       int64   `bson:"updated_at"`
	Version         int64   `bson:"version"`
}

func newRequestDocument(r *domainrequest.Request) requestDocument {
	return requestDocument{
		ID:              string(r.ID),
		SenderPostID:    string(r.SenderPostID),
		TravellerPostID: string(r.TravellerPostID),
		SenderID:        string(r.SenderID),
		ReceiverID:      string(r.ReceiverID),
		Note:            r.Note,
		ProposedPrice:   r.ProposedPrice,
		AgreedPrice:     r.AgreedPrice,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt.UnixMilli(),
		UpdatedAt:       r.UpdatedAt.UnixMilli(),
		Version:         r.Version,
	}
}

func (d requestDocument) toAggregate() *domainrequest.Request {
	return &domainrequest.Request{
		ID:              domainrequest.ID(d.ID),
		SenderPostID:    domainpost.ID(d.SenderPostID),
		TravellerPostID: domainpost.ID(d.TravellerPostID),
		SenderID:        domainuser.ID(d.SenderID),
		ReceiverID:      domainuser.ID(d.ReceiverID),
		Note:            d.Note,
		ProposedPrice:   d.ProposedPrice,
		AgreedPrice:     d.AgreedPrice,
		Status:          domainrequest.Status(d.Status),
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
}

var _ domainrequest.Repository = (*RequestRepository)(nil)
