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

const trainingPlanCollectionName = "training_plans"

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Create inserts a new training plan row exactly as given, including its
// active flag. Retirement of the previous active plan happens separately,
// before this is called.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID || plan.PlanName == "" {
		return primitive.NilObjectID, errors.New("plan requires userId and planName")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetActiveByUser retrieves the single active plan for a user.
func (r *mongoTrainingPlanRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	filter := bson.M{"userId": userID, "isActive": true}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// DeactivateActiveByUser flips the active flag off on the user's active
// plan(s), keeping the rows as queryable history. Matching zero rows is not
// an error (first-ever generation).
func (r *mongoTrainingPlanRepository) DeactivateActiveByUser(ctx context.Context, userID primitive.ObjectID) error {
	filter := bson.M{"userId": userID, "isActive": true}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// DeleteActiveByUser removes the user's active plan row(s). No inactive
// history is retained on this path.
func (r *mongoTrainingPlanRepository) DeleteActiveByUser(ctx context.Context, userID primitive.ObjectID) error {
	filter := bson.M{"userId": userID, "isActive": true}
	_, err := r.collection.DeleteMany(ctx, filter)
	return err
}

// ListInactiveByUser returns the user's retained historical plans, newest
// first.
func (r *mongoTrainingPlanRepository) ListInactiveByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	filter := bson.M{"userId": userID, "isActive": false}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.TrainingPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: the active plan of a user.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
