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

const profileCollectionName = "user_profiles"

// mongoProfileRepository implements repository.ProfileRepository
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new Profile repository.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// GetByUserID retrieves the single profile owned by a user.
func (r *mongoProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert creates the profile on first write and replaces it afterwards.
func (r *mongoProfileRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	if profile.UserID == primitive.NilObjectID {
		return errors.New("profile requires a userId")
	}
	now := time.Now().UTC()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.ID == primitive.NilObjectID {
		profile.ID = primitive.NewObjectID()
	}

	filter := bson.M{"userId": profile.UserID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, profile, opts)
	return err
}

// EnsureProfileIndexes creates necessary indexes. Call during startup.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
