package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pulsefit/coach-app/internal/domain"
	"pulsefit/coach-app/internal/repository"
)

// ProfileService manages the questionnaire data and weight history the plan
// engine reads.
type ProfileService interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error)
	Upsert(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error)
	AddWeightSample(ctx context.Context, sample *domain.WeightSample) (*domain.WeightSample, error)
	WeightHistory(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.WeightSample, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	weightRepo  repository.WeightRepository
}

func NewProfileService(profileRepo repository.ProfileRepository, weightRepo repository.WeightRepository) ProfileService {
	return &profileService{profileRepo: profileRepo, weightRepo: weightRepo}
}

func (s *profileService) Get(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) Upsert(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	if profile.UserID == primitive.NilObjectID {
		return nil, &ValidationError{Detail: "profile requires a user ID"}
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) AddWeightSample(ctx context.Context, sample *domain.WeightSample) (*domain.WeightSample, error) {
	if sample.WeightKg <= 0 {
		return nil, &ValidationError{Detail: "weight must be positive"}
	}
	id, err := s.weightRepo.Add(ctx, sample)
	if err != nil {
		return nil, err
	}
	sample.ID = id
	return sample, nil
}

func (s *profileService) WeightHistory(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.WeightSample, error) {
	return s.weightRepo.ListSince(ctx, userID, since)
}
