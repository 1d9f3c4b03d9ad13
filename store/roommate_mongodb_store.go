package store

import (
	"context"
	"errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"roombuddy/domain"
	"time"
)

type RoommateMongoDBStore struct {
	roommates *mongo.Collection
	tracer    trace.Tracer
}

func NewRoommateMongoDBStore(db *mongo.Database, tracer trace.Tracer) domain.RoommateStore {
	return &RoommateMongoDBStore{
		roommates: db.Collection(ROOMMATES),
		tracer:    tracer,
	}
}

func (store *RoommateMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Roommate, error) {
	ctx, span := store.tracer.Start(ctx, "RoommateStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *RoommateMongoDBStore) GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Roommate, error) {
	ctx, span := store.tracer.Start(ctx, "RoommateStore.GetByUser")
	defer span.End()

	return store.filterOne(ctx, bson.M{"user": userID})
}

func (store *RoommateMongoDBStore) Search(ctx context.Context, params *domain.RoommateSearchParams) ([]*domain.Roommate, int64, error) {
	ctx, span := store.tracer.Start(ctx, "RoommateStore.Search")
	defer span.End()

	filter := RoommateFilter(params)
	total, err := store.roommates.CountDocuments(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(domain.Skip(params.Page)).
		SetLimit(domain.PageSize)
	cursor, err := store.roommates.Find(ctx, filter, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}
	roommates := make([]*domain.Roommate, 0, domain.PageSize)
	if err := cursor.All(ctx, &roommates); err != nil {
		return nil, 0, err
	}
	return roommates, total, nil
}

func (store *RoommateMongoDBStore) Insert(ctx context.Context, roommate *domain.Roommate) error {
	ctx, span := store.tracer.Start(ctx, "RoommateStore.Insert")
	defer span.End()

	now := time.Now().UTC()
	roommate.ID = primitive.NewObjectID()
	roommate.CreatedAt = now
	roommate.UpdatedAt = now
	if _, err := store.roommates.InsertOne(ctx, roommate); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (store *RoommateMongoDBStore) Update(ctx context.Context, roommate *domain.Roommate) error {
	ctx, span := store.tracer.Start(ctx, "RoommateStore.Update")
	defer span.End()

	roommate.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":              roommate.Name,
		"age":               roommate.Age,
		"gender":            roommate.Gender,
		"occupation":        roommate.Occupation,
		"budget":            roommate.Budget,
		"location":          roommate.Location,
		"preferredLocation": roommate.PreferredLocation,
		"moveInDate":        roommate.MoveInDate,
		"stayDuration":      roommate.StayDuration,
		"lifestyle":         roommate.Lifestyle,
		"bio":               roommate.Bio,
		"profileImage":      roommate.ProfileImage,
		"contactPreference": roommate.ContactPreference,
		"phone":             roommate.Phone,
		"isActive":          roommate.IsActive,
		"updatedAt":         roommate.UpdatedAt,
	}}
	result, err := store.roommates.UpdateOne(ctx, bson.M{"_id": roommate.ID}, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (store *RoommateMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "RoommateStore.Delete")
	defer span.End()

	result, err := store.roommates.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (store *RoommateMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.Roommate, error) {
	var roommate domain.Roommate
	err := store.roommates.FindOne(ctx, filter).Decode(&roommate)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &roommate, nil
}
