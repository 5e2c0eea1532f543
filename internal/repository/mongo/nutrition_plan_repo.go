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

const nutritionPlanCollectionName = "user_diet_plans"

// mongoNutritionPlanRepository implements repository.NutritionPlanRepository
type mongoNutritionPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoNutritionPlanRepository creates a new NutritionPlan repository.
func NewMongoNutritionPlanRepository(db *mongo.Database) repository.NutritionPlanRepository {
	return &mongoNutritionPlanRepository{
		collection: db.Collection(nutritionPlanCollectionName),
	}
}

// Create inserts a new nutrition plan row.
func (r *mongoNutritionPlanRepository) Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan requires userId")
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

// GetActiveByUser retrieves the single active nutrition plan for a user.
func (r *mongoNutritionPlanRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.NutritionPlan, error) {
	var plan domain.NutritionPlan
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
// nutrition plan(s). Nutrition plans are always retired softly.
func (r *mongoNutritionPlanRepository) DeactivateActiveByUser(ctx context.Context, userID primitive.ObjectID) error {
	filter := bson.M{"userId": userID, "isActive": true}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsureNutritionPlanIndexes creates necessary indexes. Call during startup.
func EnsureNutritionPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
