package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pulsefit/coach-app/internal/domain"
	"pulsefit/coach-app/internal/llm"
	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/prompt"
	"pulsefit/coach-app/internal/repository"
	"pulsefit/coach-app/internal/storage"
)

// weightWindow is how far back weight samples feed nutrition generation.
const weightWindow = 30 * 24 * time.Hour

// ModifyResult is the outcome of a weekly plan modification. ArchiveKey is
// empty when archiving is disabled or the snapshot failed.
type ModifyResult struct {
	Plan       *domain.TrainingPlan
	ArchiveKey string
}

// PlanService is the plan engine: generation from profile, weekly
// modification from an analysis signal, and reads of the resulting state.
type PlanService interface {
	GenerateTrainingPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error)
	GenerateNutritionPlan(ctx context.Context, userID primitive.ObjectID) (*domain.NutritionPlan, error)
	ModifyTrainingPlan(ctx context.Context, userID primitive.ObjectID, signal domain.AnalysisSignal) (*ModifyResult, error)
	ActiveTrainingPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error)
	ActiveNutritionPlan(ctx context.Context, userID primitive.ObjectID) (*domain.NutritionPlan, error)
	TrainingPlanHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error)
}

type planService struct {
	profileRepo   repository.ProfileRepository
	weightRepo    repository.WeightRepository
	trainingRepo  repository.TrainingPlanRepository
	nutritionRepo repository.NutritionPlanRepository
	gateway       llm.Gateway
	archive       storage.PlanArchive
	log           *logger.Logger
	now           func() time.Time
}

// NewPlanService wires the plan engine. archive may be nil when plan
// archiving is disabled; now may be nil and defaults to time.Now.
func NewPlanService(
	profileRepo repository.ProfileRepository,
	weightRepo repository.WeightRepository,
	trainingRepo repository.TrainingPlanRepository,
	nutritionRepo repository.NutritionPlanRepository,
	gateway llm.Gateway,
	archive storage.PlanArchive,
	log *logger.Logger,
	now func() time.Time,
) PlanService {
	if now == nil {
		now = time.Now
	}
	return &planService{
		profileRepo:   profileRepo,
		weightRepo:    weightRepo,
		trainingRepo:  trainingRepo,
		nutritionRepo: nutritionRepo,
		gateway:       gateway,
		archive:       archive,
		log:           log,
		now:           now,
	}
}

// GenerateTrainingPlan builds a first training plan from the profile. Any
// previously active plan is retired by flag-flip, so its content survives as
// history.
func (s *planService) GenerateTrainingPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if missing := profile.MissingFields(domain.TrainingRequiredFields); len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}

	now := s.now()
	week, err := s.gateway.GenerateWeekSchedule(ctx, prompt.ComposeTrainingGeneration(profile, now))
	if err != nil {
		return nil, err
	}

	// Retirement failure is not fatal. The insert below still enforces the
	// single-active invariant for readers that pick the newest active row,
	// and a stale flag is preferable to discarding the generated plan.
	if err := s.trainingRepo.DeactivateActiveByUser(ctx, userID); err != nil {
		s.log.Warn("failed to retire previous training plan", "userId", userID.Hex(), "error", err)
	}

	plan := &domain.TrainingPlan{
		UserID:    userID,
		PlanName:  domain.InitialPlanLabel,
		StartDate: now,
		PlanData:  week,
		IsActive:  true,
	}
	id, err := s.trainingRepo.Create(ctx, plan)
	if err != nil {
		return nil, &PersistenceError{Op: "save training plan", TrainingPlan: plan, Err: err}
	}
	plan.ID = id

	s.log.Info("generated training plan", "userId", userID.Hex(), "planId", id.Hex())
	return plan, nil
}

// GenerateNutritionPlan derives daily macro targets from the profile and the
// last month of weight history.
func (s *planService) GenerateNutritionPlan(ctx context.Context, userID primitive.ObjectID) (*domain.NutritionPlan, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if missing := profile.MissingFields(domain.NutritionRequiredFields); len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}

	now := s.now()
	samples, err := s.weightRepo.ListSince(ctx, userID, now.Add(-weightWindow))
	if err != nil {
		// Weight history enriches the prompt but is not required; the
		// composer falls back to the profile's target weight.
		s.log.Warn("failed to load weight history", "userId", userID.Hex(), "error", err)
		samples = nil
	}

	targets, err := s.gateway.GenerateNutrition(ctx, prompt.ComposeNutritionGeneration(profile, now, samples))
	if err != nil {
		return nil, err
	}

	if err := s.nutritionRepo.DeactivateActiveByUser(ctx, userID); err != nil {
		s.log.Warn("failed to retire previous nutrition plan", "userId", userID.Hex(), "error", err)
	}

	plan := &domain.NutritionPlan{
		UserID:        userID,
		DailyCalories: targets.DailyCalories,
		DailyProteinG: targets.DailyProteinG,
		DailyCarbsG:   targets.DailyCarbsG,
		DailyFatG:     targets.DailyFatG,
		Notes:         targets.Notes,
		IsActive:      true,
	}
	id, err := s.nutritionRepo.Create(ctx, plan)
	if err != nil {
		return nil, &PersistenceError{Op: "save nutrition plan", NutritionPlan: plan, Err: err}
	}
	plan.ID = id

	s.log.Info("generated nutrition plan", "userId", userID.Hex(), "planId", id.Hex())
	return plan, nil
}

// ModifyTrainingPlan turns the weekly analysis signal and the current active
// plan into a replacement plan. The retired plan row is deleted, not
// flag-flipped; its content is snapshotted to the archive first when one is
// configured.
func (s *planService) ModifyTrainingPlan(ctx context.Context, userID primitive.ObjectID, signal domain.AnalysisSignal) (*ModifyResult, error) {
	if missing := signal.MissingFields(); len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}
	if !signal.Recommendation.Valid() {
		return nil, &ValidationError{Detail: "unknown recommendation category: " + string(signal.Recommendation)}
	}
	if signal.HasPain {
		var missing []string
		if signal.Area == "" {
			missing = append(missing, "area")
		}
		if signal.Cause == "" {
			missing = append(missing, "cause")
		}
		if len(missing) > 0 {
			return nil, &ValidationError{MissingFields: missing}
		}
	}

	current, err := s.trainingRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivePlanNotFound
		}
		return nil, err
	}

	ins, err := prompt.ComposeModification(signal, current)
	if err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	week, err := s.gateway.GenerateWeekSchedule(ctx, ins)
	if err != nil {
		return nil, err
	}

	var archiveKey string
	if s.archive != nil {
		archiveKey, err = s.archive.ArchivePlan(ctx, current)
		if err != nil {
			s.log.Warn("failed to archive retired plan", "userId", userID.Hex(), "planId", current.ID.Hex(), "error", err)
			archiveKey = ""
		}
	}

	// Deletion failure is not fatal either; see GenerateTrainingPlan.
	if err := s.trainingRepo.DeleteActiveByUser(ctx, userID); err != nil {
		s.log.Warn("failed to delete retired training plan", "userId", userID.Hex(), "error", err)
	}

	now := s.now()
	plan := &domain.TrainingPlan{
		UserID:    userID,
		PlanName:  signal.Recommendation.Label(),
		StartDate: now,
		PlanData:  week,
		IsActive:  true,
	}
	id, err := s.trainingRepo.Create(ctx, plan)
	if err != nil {
		return nil, &PersistenceError{Op: "save modified training plan", TrainingPlan: plan, Err: err}
	}
	plan.ID = id

	s.log.Info("modified training plan",
		"userId", userID.Hex(),
		"planId", id.Hex(),
		"recommendation", signal.Recommendation,
		"hadPain", signal.HasPain,
	)
	return &ModifyResult{Plan: plan, ArchiveKey: archiveKey}, nil
}

func (s *planService) ActiveTrainingPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.trainingRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivePlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) ActiveNutritionPlan(ctx context.Context, userID primitive.ObjectID) (*domain.NutritionPlan, error) {
	plan, err := s.nutritionRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivePlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) TrainingPlanHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return s.trainingRepo.ListInactiveByUser(ctx, userID)
}

func (s *planService) profile(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}
