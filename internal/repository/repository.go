package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pulsefit/coach-app/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProfileRepository defines the interface for interacting with user profiles.
// The plan engine only reads profiles; Upsert exists for the profile endpoint.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error)
	Upsert(ctx context.Context, profile *domain.UserProfile) error
}

// WeightRepository defines the interface for interacting with weight history.
type WeightRepository interface {
	Add(ctx context.Context, sample *domain.WeightSample) (primitive.ObjectID, error)
	// ListSince returns samples measured on or after the given date,
	// ascending by measurement date. An empty result is not an error.
	ListSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.WeightSample, error)
}

// TrainingPlanRepository defines the interface for interacting with training
// plan rows. The single-active invariant is enforced by the service layer
// through the retire-then-insert calls below.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error)
	// DeactivateActiveByUser flips the active flag off, keeping the row as
	// history. Used by the generation path.
	DeactivateActiveByUser(ctx context.Context, userID primitive.ObjectID) error
	// DeleteActiveByUser removes the active row outright. Used by the
	// modification path.
	DeleteActiveByUser(ctx context.Context, userID primitive.ObjectID) error
	ListInactiveByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error)
}

// NutritionPlanRepository defines the interface for interacting with
// nutrition plan rows.
type NutritionPlanRepository interface {
	Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.NutritionPlan, error)
	DeactivateActiveByUser(ctx context.Context, userID primitive.ObjectID) error
}
