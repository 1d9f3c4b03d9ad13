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

type UserMongoDBStore struct {
	users  *mongo.Collection
	tracer trace.Tracer
}

func NewUserMongoDBStore(db *mongo.Database, tracer trace.Tracer) domain.UserStore {
	return &UserMongoDBStore{
		users:  db.Collection(USERS),
		tracer: tracer,
	}
}

func (store *UserMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *UserMongoDBStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.GetAll")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := store.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	users := make([]*domain.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (store *UserMongoDBStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.GetByEmail")
	defer span.End()

	return store.filterOne(ctx, bson.M{"email": email})
}

func (store *UserMongoDBStore) GetSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.UserSummary, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.GetSummaries")
	defer span.End()

	summaries := make(map[primitive.ObjectID]*domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	cursor, err := store.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var summary domain.UserSummary
		if err := cursor.Decode(&summary); err != nil {
			return nil, err
		}
		summaries[summary.ID] = &summary
	}
	return summaries, cursor.Err()
}

func (store *UserMongoDBStore) Insert(ctx context.Context, user *domain.User) error {
	ctx, span := store.tracer.Start(ctx, "UserStore.Insert")
	defer span.End()

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := store.users.InsertOne(ctx, user); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (store *UserMongoDBStore) Update(ctx context.Context, user *domain.User) error {
	ctx, span := store.tracer.Start(ctx, "UserStore.Update")
	defer span.End()

	user.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":         user.Name,
		"email":        user.Email,
		"password":     user.Password,
		"phone":        user.Phone,
		"bio":          user.Bio,
		"profileImage": user.ProfileImage,
		"updatedAt":    user.UpdatedAt,
	}}
	result, err := store.users.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (store *UserMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.User, error) {
	var user domain.User
	err := store.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
