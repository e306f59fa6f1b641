package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Leganyst/room-booking/internal/model"
)

// MongoBookingRepository хранит набор одним документом, поля верхнего уровня
// которого — ключи слотов. Операции над слотом атомарны за счёт фильтра $exists.
type MongoBookingRepository struct {
	coll   *mongo.Collection
	docID  string
	logger *zap.Logger
}

func NewMongoBookingRepository(client *mongo.Client, dbName, collection string, logger *zap.Logger) *MongoBookingRepository {
	return &MongoBookingRepository{
		coll:   client.Database(dbName).Collection(collection),
		docID:  model.BookingsDocumentID,
		logger: logger,
	}
}

func (r *MongoBookingRepository) Networked() bool { return true }

func (r *MongoBookingRepository) Read(ctx context.Context) (model.BookingSet, error) {
	raw, err := r.coll.FindOne(ctx, bson.M{"_id": r.docID}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		if err := r.ensure(ctx); err != nil {
			return nil, err
		}
		return model.BookingSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo read bookings: %w", err)
	}
	return decodeDocument(raw)
}

func (r *MongoBookingRepository) Replace(ctx context.Context, set model.BookingSet) error {
	doc := bson.D{{Key: "_id", Value: r.docID}}
	for _, key := range set.Keys() {
		doc = append(doc, bson.E{Key: key, Value: set[key]})
	}

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": r.docID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace bookings: %w", err)
	}
	return nil
}

func (r *MongoBookingRepository) InsertIfAbsent(ctx context.Context, key string, booking model.Booking) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": r.docID, key: bson.M{"$exists": false}},
		bson.M{"$set": bson.M{key: booking}},
	)
	if err != nil {
		return fmt.Errorf("mongo insert booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSlotTaken
	}
	return nil
}

func (r *MongoBookingRepository) RemoveIfPresent(ctx context.Context, key string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": r.docID, key: bson.M{"$exists": true}},
		bson.M{"$unset": bson.M{key: ""}},
	)
	if err != nil {
		return fmt.Errorf("mongo remove booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSlotMissing
	}
	return nil
}

// Subscribe использует change stream, поэтому требует replica set.
func (r *MongoBookingRepository) Subscribe(ctx context.Context) (<-chan model.BookingSet, func(), error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: r.docID}}}},
	}
	stream, err := r.coll.Watch(ctx, pipeline)
	if err != nil {
		return nil, func() {}, fmt.Errorf("mongo watch bookings: %w", err)
	}

	streamCtx, stopStream := context.WithCancel(context.Background())
	wake := make(chan struct{}, 1)
	go func() {
		defer close(wake)
		for stream.Next(streamCtx) {
			select {
			case wake <- struct{}{}:
			default:
			}
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			r.logger.Warn("mongo change stream stopped", zap.Error(err))
		}
	}()

	stop := func() {
		stopStream()
		_ = stream.Close(context.Background())
	}
	ch, cancel := watch(ctx, r.logger, r.Read, wake, 0, stop)
	return ch, cancel, nil
}

func (r *MongoBookingRepository) ensure(ctx context.Context) error {
	_, err := r.coll.InsertOne(ctx, bson.D{{Key: "_id", Value: r.docID}})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo create bookings document: %w", err)
	}
	return nil
}

func decodeDocument(raw bson.Raw) (model.BookingSet, error) {
	elems, err := raw.Elements()
	if err != nil {
		return nil, fmt.Errorf("decode bookings document: %w", err)
	}

	set := make(model.BookingSet, len(elems))
	for _, el := range elems {
		key := el.Key()
		if key == "_id" {
			continue
		}
		var b model.Booking
		if err := el.Value().Unmarshal(&b); err != nil {
			return nil, fmt.Errorf("decode booking %s: %w", key, err)
		}
		set[key] = b
	}
	return set, nil
}
