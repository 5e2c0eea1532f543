package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pulsefit/coach-app/internal/domain"
	"pulsefit/coach-app/internal/repository"
)

const weightCollectionName = "user_weight_history"

// mongoWeightRepository implements repository.WeightRepository
type mongoWeightRepository struct {
	collection *mongo.Collection
}

// NewMongoWeightRepository creates a new Weight repository.
func NewMongoWeightRepository(db *mongo.Database) repository.WeightRepository {
	return &mongoWeightRepository{
		collection: db.Collection(weightCollectionName),
	}
}

// Add records a new weight measurement. Samples are never updated.
func (r *mongoWeightRepository) Add(ctx context.Context, sample *domain.WeightSample) (primitive.ObjectID, error) {
	if sample.UserID == primitive.NilObjectID || sample.WeightKg <= 0 {
		return primitive.NilObjectID, errors.New("weight sample requires userId and a positive weight")
	}
	sample.ID = primitive.NewObjectID()
	if sample.MeasuredAt.IsZero() {
		sample.MeasuredAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, sample)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted sample ID")
	}
	return insertedID, nil
}

// ListSince returns the user's samples measured on or after the given date,
// ascending by measurement date.
func (r *mongoWeightRepository) ListSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.WeightSample, error) {
	filter := bson.M{
		"userId":     userID,
		"measuredAt": bson.M{"$gte": since},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "measuredAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var samples []domain.WeightSample
	if err = cursor.All(ctx, &samples); err != nil {
		return nil, err
	}
	// Empty history is valid; downstream falls back to the target weight.
	return samples, nil
}

// EnsureWeightIndexes creates necessary indexes. Call during startup.
func EnsureWeightIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "measuredAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
