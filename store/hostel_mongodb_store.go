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

type HostelMongoDBStore struct {
	hostels *mongo.Collection
	tracer  trace.Tracer
}

func NewHostelMongoDBStore(db *mongo.Database, tracer trace.Tracer) domain.HostelStore {
	return &HostelMongoDBStore{
		hostels: db.Collection(HOSTELS),
		tracer:  tracer,
	}
}

func (store *HostelMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Hostel, error) {
	ctx, span := store.tracer.Start(ctx, "HostelStore.Get")
	defer span.End()

	var hostel domain.Hostel
	err := store.hostels.FindOne(ctx, bson.M{"_id": id}).Decode(&hostel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &hostel, nil
}

func (store *HostelMongoDBStore) Search(ctx context.Context, params *domain.HostelSearchParams) ([]*domain.Hostel, int64, error) {
	ctx, span := store.tracer.Start(ctx, "HostelStore.Search")
	defer span.End()

	filter := HostelFilter(params)
	total, err := store.hostels.CountDocuments(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(domain.Skip(params.Page)).
		SetLimit(domain.PageSize)
	cursor, err := store.hostels.Find(ctx, filter, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}
	hostels := make([]*domain.Hostel, 0, domain.PageSize)
	if err := cursor.All(ctx, &hostels); err != nil {
		return nil, 0, err
	}
	return hostels, total, nil
}

func (store *HostelMongoDBStore) Insert(ctx context.Context, hostel *domain.Hostel) error {
	ctx, span := store.tracer.Start(ctx, "HostelStore.Insert")
	defer span.End()

	now := time.Now().UTC()
	hostel.ID = primitive.NewObjectID()
	hostel.CreatedAt = now
	hostel.UpdatedAt = now
	if hostel.Reviews == nil {
		hostel.Reviews = []domain.Review{}
	}
	if _, err := store.hostels.InsertOne(ctx, hostel); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Update rewrites the editable fields only, so reviews appended concurrently
// are never lost.
func (store *HostelMongoDBStore) Update(ctx context.Context, hostel *domain.Hostel) error {
	ctx, span := store.tracer.Start(ctx, "HostelStore.Update")
	defer span.End()

	hostel.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":         hostel.Name,
		"description":  hostel.Description,
		"address":      hostel.Address,
		"location":     hostel.Location,
		"price":        hostel.Price,
		"images":       hostel.Images,
		"type":         hostel.Type,
		"gender":       hostel.Gender,
		"amenities":    hostel.Amenities,
		"rules":        hostel.Rules,
		"vacancies":    hostel.Vacancies,
		"contactPhone": hostel.ContactPhone,
		"contactEmail": hostel.ContactEmail,
		"updatedAt":    hostel.UpdatedAt,
	}}
	result, err := store.hostels.UpdateOne(ctx, bson.M{"_id": hostel.ID}, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (store *HostelMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "HostelStore.Delete")
	defer span.End()

	result, err := store.hostels.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (store *HostelMongoDBStore) AddReview(ctx context.Context, hostelID primitive.ObjectID, review domain.Review) error {
	ctx, span := store.tracer.Start(ctx, "HostelStore.AddReview")
	defer span.End()

	result, err := store.hostels.UpdateOne(ctx, reviewFilter(hostelID, review.User), reviewPipeline(review))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// nothing matched: either the hostel is gone or the author got there first
	count, err := store.hostels.CountDocuments(ctx, bson.M{"_id": hostelID}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyReviewed
}

func reviewFilter(hostelID, author primitive.ObjectID) bson.M {
	return bson.M{
		"_id":          hostelID,
		"reviews.user": bson.M{"$ne": author},
	}
}

// reviewPipeline appends review and recomputes the aggregates from the
// resulting array inside one document update.
func reviewPipeline(review domain.Review) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "reviews", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}},
				bson.D{{Key: "$literal", Value: bson.A{review}}},
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "numReviews", Value: bson.D{{Key: "$size", Value: "$reviews"}}},
			{Key: "rating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
			{Key: "updatedAt", Value: review.CreatedAt},
		}}},
	}
}
