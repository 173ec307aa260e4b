package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpost "carryon/internal/domain/post"
	domainuser "carryon/internal/domain/user"
)

type TravellerPostRepository struct {
	col *mongo.Collection
}

func NewTravellerPostRepository(db *mongo.Database) *TravellerPostRepository {
	col := db.Collection("traveller_posts")
	idx := mongo.IndexModel{Keys: bson.D{
		{Key: "status", Value: 1},
		{Key: "departure_country_key", Value: 1},
		{Key: "departure_date", Value: 1},
	}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &TravellerPostRepository{col: col}
}

func (r *TravellerPostRepository) ByID(ctx context.Context, id domainpost.ID) (*domainpost.TravellerPost, error) {
	var doc travellerPostDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainpost.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *TravellerPostRepository) Save(ctx context.Context, post *domainpost.TravellerPost) error {
	if post == nil || post.ID == "" {
		return domainpost.ErrNotFound
	}
	doc := newTravellerPostDocument(post)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *TravellerPostRepository) Search(ctx context.Context, params domainpost.TravellerSearch) ([]*domainpost.TravellerPost, int, error) {
	opts := params.Normalized()
	filter := bson.M{"status": string(domainpost.StatusActive)}
	if opts.Owner != "" {
		filter["owner_id"] = string(opts.Owner)
	}
	if opts.ExcludeOwner != "" {
		filter["owner_id"] = bson.M{"$ne": string(opts.ExcludeOwner)}
	}
	if opts.DepartureCountry != "" {
		filter["departure_country_key"] = opts.DepartureCountry
	}
	if opts.ArrivalCountry != "" {
		filter["arrival_country_key"] = opts.ArrivalCountry
	}
	dateFilter := bson.M{}
	if opts.FutureOnly() {
		dateFilter["$gte"] = time.Now().UTC().UnixMilli()
	}
	if !opts.DateFrom.IsZero() {
		dateFilter["$gte"] = opts.DateFrom.UTC().UnixMilli()
	}
	if !opts.DateTo.IsZero() {
		dateFilter["$lte"] = opts.DateTo.UTC().UnixMilli()
	}
	if len(dateFilter) > 0 {
		filter["departure_date"] = dateFilter
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

	var out []*domainpost.TravellerPost
	for cursor.Next(ctx) {
		var doc travellerPostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, int(total), cursor.Err()
}

type SenderPostRepository struct {
	col *mongo.Collection
}

func NewSenderPostRepository(db *mongo.Database) *SenderPostRepository {
	col := db.Collection("sender_posts")
	idx := mongo.IndexModel{Keys: bson.D{
		{Key: "status", Value: 1},
		{Key: "origin_country_key", Value: 1},
		{Key: "destination_country_key", Value: 1},
	}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &SenderPostRepository{col: col}
}

func (r *SenderPostRepository) ByID(ctx context.Context, id domainpost.ID) (*domainpost.SenderPost, error) {
	var doc senderPostDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainpost.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *SenderPostRepository) Save(ctx context.Context, post *domainpost.SenderPost) error {
	if post == nil || post.ID == "" {
		return domainpost.ErrNotFound
	}
	doc := newSenderPostDocument(post)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *SenderPostRepository) Search(ctx context.Context, params domainpost.SenderSearch) ([]*domainpost.SenderPost, int, error) {
	opts := params.Normalized()
	filter := bson.M{"status": string(domainpost.StatusActive)}
	if opts.Owner != "" {
		filter["owner_id"] = string(opts.Owner)
	}
	if opts.ExcludeOwner != "" {
		filter["owner_id"] = bson.M{"$ne": string(opts.ExcludeOwner)}
	}
	if opts.OriginCountry != "" {
		filter["origin_country_key"] = opts.OriginCountry
	}
	if opts.DestinationCountry != "" {
		filter["destination_country_key"] = opts.DestinationCountry
	}
	if opts.ItemCategory != "" {
		filter["item_category_key"] = opts.ItemCategory
	}
	weightFilter := bson.M{}
	if opts.MinWeight > 0 {
		weightFilter["$gte"] = opts.MinWeight
	}
	if opts.MaxWeight > 0 {
		weightFilter["$lte"] = opts.MaxWeight
	}
	if len(weightFilter) > 0 {
		filter["weight"] = weightFilter
	}
	priceFilter := bson.M{}
	if opts.MinPrice > 0 {
		priceFilter["$gte"] = opts.MinPrice
	}
	if opts.MaxPrice > 0 {
		priceFilter["$lte"] = opts.MaxPrice
	}
	if len(priceFilter) > 0 {
		filter["max_price"] = priceFilter
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

	var out []*domainpost.SenderPost
	for cursor.Next(ctx) {
		var doc senderPostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, int(total), cursor.Err()
}

type travellerPostDocument struct {
	ID                  string  `bson:"_id"`
	OwnerID             string  `bson:"owner_id"`
	DepartureCountry    string  `bson:"departure_country"`
	DepartureCountryKey string  `bson:"departure_country_key"`
	DepartureCity       string  `bson:"departure_city"`
	DepartureAirport    string  `bson:"departure_airport"`
	DepartureDate       int64   `bson:"departure_date"`
	DepartureTime       string  `bson:"departure_time"`
	ArrivalCountry      string  `bson:"arrival_country"`
	ArrivalCountryKey   string  `bson:"arrival_country_key"`
	ArrivalCity         string  `bson:"arrival_city"`
	ArrivalAirport      string  `bson:"arrival_airport"`
	ArrivalDate         int64   `bson:"arrival_date"`
	ArrivalTime         string  `bson:"arrival_time"`
	AvailableWeight     float64 `bson:"available_weight"`
	PricePerKg          float64 `bson:"price_per_kg"`
	SpecialNotes        string  `bson:"special_notes"`
	PickupLocation      string  `bson:"pickup_location"`
	DeliveryLocation    string  `bson:"delivery_location"`
	Status              string  `bson:"status"`
	CreatedAt           int64   `bson:"created_at"`
	UpdatedAt           int64   `bson:"updated_at"`
}

func newTravellerPostDocument(p *domainpost.TravellerPost) travellerPostDocument {
	return travellerPostDocument{
		ID:                  string(p.ID),
		OwnerID:             string(p.OwnerID),
		DepartureCountry:    p.DepartureCountry,
		DepartureCountryKey: lowerKey(p.DepartureCountry),
		DepartureCity:       p.DepartureCity,
		DepartureAirport:    p.DepartureAirport,
		DepartureDate:       p.DepartureDate.UnixMilli(),
		DepartureTime:       p.DepartureTime,
		ArrivalCountry:      p.ArrivalCountry,
		ArrivalCountryKey:   lowerKey(p.ArrivalCountry),
		ArrivalCity:         p.ArrivalCity,
		ArrivalAirport:      p.ArrivalAirport,
		ArrivalDate:         p.ArrivalDate.UnixMilli(),
		ArrivalTime:         p.ArrivalTime,
		AvailableWeight:     p.AvailableWeight,
		PricePerKg:          p.PricePerKg,
		SpecialNotes:        p.SpecialNotes,
		PickupLocation:      p.PickupLocation,
		DeliveryLocation:    p.DeliveryLocation,
		Status:              string(p.Status),
		CreatedAt:           p.CreatedAt.UnixMilli(),
		UpdatedAt:           p.UpdatedAt.UnixMilli(),
	}
}

func (d travellerPostDocument) toAggregate() *domainpost.TravellerPost {
	return &domainpost.TravellerPost{
		ID:               domainpost.ID(d.ID),
		OwnerID:          domainuser.ID(d.OwnerID),
		DepartureCountry: d.DepartureCountry,
		DepartureCity:    d.DepartureCity,
		DepartureAirport: d.DepartureAirport,
		DepartureDate:    timestampToTime(d.DepartureDate),
		DepartureTime:    d.DepartureTime,
		ArrivalCountry:   d.ArrivalCountry,
		ArrivalCity:      d.ArrivalCity,
		ArrivalAirport:   d.ArrivalAirport,
		ArrivalDate:      timestampToTime(d.ArrivalDate),
		ArrivalTime:      d.ArrivalTime,
		AvailableWeight:  d.AvailableWeight,
		PricePerKg:       d.PricePerKg,
		SpecialNotes:     d.SpecialNotes,
		PickupLocation:   d.PickupLocation,
		DeliveryLocation: d.DeliveryLocation,
		Status:           domainpost.Status(d.Status),
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
	}
}

type senderPostDocument struct {
	ID                    string   `bson:"_id"`
	OwnerID               string   `bson:"owner_id"`
	OriginCountry         string   `bson:"origin_country"`
	OriginCountryKey      string   `bson:"origin_country_key"`
	OriginCity            string   `bson:"origin_city"`
	OriginAddress         string   `bson:"origin_address"`
	DestinationCountry    string   `bson:"destination_country"`
	DestinationCountryKey string   `bson:"destination_country_key"`
	DestinationCity       string   `bson:"destination_city"`
	DestinationAddress    string   `bson:"destination_address"`
	ItemCategory          string   `bson:"item_category"`
	ItemCategoryKey       string   `bson:"item_category_key"`
	ItemDescription       string   `bson:"item_description"`
	Weight                float64  `bson:"weight"`
	MaxPrice              float64  `bson:"max_price"`
	Photos                []string `bson:"photos"`
	SpecialNotes          string   `bson:"special_notes"`
	PickupNotes           string   `bson:"pickup_notes"`
	DeliveryNotes         string   `bson:"delivery_notes"`
	Status                string   `bson:"status"`
	CreatedAt             int64    `bson:"created_at"`
	UpdatedAt             int64    `bson:"updated_at"`
}

func newSenderPostDocument(p *domainpost.SenderPost) senderPostDocument {
	return senderPostDocument{
		ID:                    string(p.ID),
		OwnerID:               string(p.OwnerID),
		OriginCountry:         p.OriginCountry,
		OriginCountryKey:      lowerKey(p.OriginCountry),
		OriginCity:            p.OriginCity,
		OriginAddress:         p.OriginAddress,
		DestinationCountry:    p.DestinationCountry,
		DestinationCountryKey: lowerKey(p.DestinationCountry),
		DestinationCity:       p.DestinationCity,
		DestinationAddress:    p.DestinationAddress,
		ItemCategory:          p.ItemCategory,
		ItemCategoryKey:       lowerKey(p.ItemCategory),
		ItemDescription:       p.ItemDescription,
		Weight:                p.Weight,
		MaxPrice:              p.MaxPrice,
		Photos:                append([]string(nil), p.Photos...),
		SpecialNotes:          p.SpecialNotes,
		PickupNotes:           p.PickupNotes,
		DeliveryNotes:         p.DeliveryNotes,
		Status:                string(p.Status),
		CreatedAt:             p.CreatedAt.UnixMilli(),
		UpdatedAt:             p.UpdatedAt.UnixMilli(),
	}
}

func (d senderPostDocument) toAggregate() *domainpost.SenderPost {
	photos := d.Photos
	if photos == nil {
		photos = []string{}
	}
	return &domainpost.SenderPost{
		ID:                 domainpost.ID(d.ID),
		OwnerID:            domainuser.ID(d.OwnerID),
		OriginCountry:      d.OriginCountry,
		OriginCity:         d.OriginCity,
		OriginAddress:      d.OriginAddress,
		DestinationCountry: d.DestinationCountry,
		DestinationCity:    d.DestinationCity,
		DestinationAddress: d.DestinationAddress,
		ItemCategory:       d.ItemCategory,
		ItemDescription:    d.ItemDescription,
		Weight:             d.Weight,
		MaxPrice:           d.MaxPrice,
		Photos:             photos,
		SpecialNotes:       d.SpecialNotes,
		PickupNotes:        d.PickupNotes,
		DeliveryNotes:      d.DeliveryNotes,
		Status:             domainpost.Status(d.Status),
		CreatedAt:          timestampToTime(d.CreatedAt),
		UpdatedAt:          timestampToTime(d.UpdatedAt),
	}
}

func lowerKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

var _ domainpost.TravellerRepository = (*TravellerPostRepository)(nil)
var _ domainpost.SenderRepository = (*SenderPostRepository)(nil)
