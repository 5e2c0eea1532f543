package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pulsefit/coach-app/internal/domain"
	"pulsefit/coach-app/internal/llm"
	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/prompt"
	"pulsefit/coach-app/internal/repository"
)

// --- fakes ---

type fakeProfileRepo struct {
	profile *domain.UserProfile
	err     error
	gets    int
}

func (f *fakeProfileRepo) GetByUserID(context.Context, primitive.ObjectID) (*domain.UserProfile, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return nil, repository.ErrNotFound
	}
	return f.profile, nil
}

func (f *fakeProfileRepo) Upsert(context.Context, *domain.UserProfile) error { return nil }

type fakeWeightRepo struct {
	samples []domain.WeightSample
	err     error
}

func (f *fakeWeightRepo) Add(context.Context, *domain.WeightSample) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (f *fakeWeightRepo) ListSince(context.Context, primitive.ObjectID, time.Time) ([]domain.WeightSample, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.samples, nil
}

type fakeTrainingRepo struct {
	active   *domain.TrainingPlan
	inactive []domain.TrainingPlan

	created       []*domain.TrainingPlan
	deactivations int
	deletions     int

	createErr     error
	deactivateErr error
	deleteErr     error
}

func (f *fakeTrainingRepo) Create(_ context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if f.createErr != nil {
		return primitive.NilObjectID, f.createErr
	}
	id := primitive.NewObjectID()
	plan.ID = id
	f.created = append(f.created, plan)
	f.active = plan
	return id, nil
}

func (f *fakeTrainingRepo) GetActiveByUser(context.Context, primitive.ObjectID) (*domain.TrainingPlan, error) {
	if f.active == nil {
		return nil, repository.ErrNotFound
	}
	return f.active, nil
}

func (f *fakeTrainingRepo) DeactivateActiveByUser(context.Context, primitive.ObjectID) error {
	f.deactivations++
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	if f.active != nil {
		f.active.IsActive = false
		f.inactive = append(f.inactive, *f.active)
		f.active = nil
	}
	return nil
}

func (f *fakeTrainingRepo) DeleteActiveByUser(context.Context, primitive.ObjectID) error {
	f.deletions++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.active = nil
	return nil
}

func (f *fakeTrainingRepo) ListInactiveByUser(context.Context, primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return f.inactive, nil
}

type fakeNutritionRepo struct {
	active    *domain.NutritionPlan
	created   []*domain.NutritionPlan
	createErr error
}

func (f *fakeNutritionRepo) Create(_ context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	if f.createErr != nil {
		return primitive.NilObjectID, f.createErr
	}
	id := primitive.NewObjectID()
	plan.ID = id
	f.created = append(f.created, plan)
	f.active = plan
	return id, nil
}

func (f *fakeNutritionRepo) GetActiveByUser(context.Context, primitive.ObjectID) (*domain.NutritionPlan, error) {
	if f.active == nil {
		return nil, repository.ErrNotFound
	}
	return f.active, nil
}

func (f *fakeNutritionRepo) DeactivateActiveByUser(context.Context, primitive.ObjectID) error {
	if f.active != nil {
		f.active.IsActive = false
		f.active = nil
	}
	return nil
}

type fakeGateway struct {
	week    domain.WeekSchedule
	weekErr error

	targets llm.NutritionTargets
	nutErr  error

	weekCalls int
	nutCalls  int
	lastIns   prompt.Instructions
}

func (f *fakeGateway) GenerateWeekSchedule(_ context.Context, ins prompt.Instructions) (domain.WeekSchedule, error) {
	f.weekCalls++
	f.lastIns = ins
	if f.weekErr != nil {
		return domain.WeekSchedule{}, f.weekErr
	}
	return f.week, nil
}

func (f *fakeGateway) GenerateNutrition(_ context.Context, ins prompt.Instructions) (llm.NutritionTargets, error) {
	f.nutCalls++
	f.lastIns = ins
	if f.nutErr != nil {
		return llm.NutritionTargets{}, f.nutErr
	}
	return f.targets, nil
}

type fakeArchive struct {
	key      string
	err      error
	archived []*domain.TrainingPlan
}

func (f *fakeArchive) ArchivePlan(_ context.Context, plan *domain.TrainingPlan) (string, error) {
	f.archived = append(f.archived, plan)
	if f.err != nil {
		return "", f.err
	}
	return f.key, nil
}

func (f *fakeArchive) GeneratePresignedDownloadURL(context.Context, string, time.Duration) (string, error) {
	return "https://example.invalid/" + f.key, nil
}

// --- helpers ---

func completeProfile() *domain.UserProfile {
	dob := time.Date(1992, time.January, 20, 0, 0, 0, 0, time.UTC)
	height := 178.0
	years := 4
	days := 4
	return &domain.UserProfile{
		DateOfBirth:             &dob,
		HeightCm:                &height,
		TrainingExperienceYears: &years,
		TrainingDaysPerWeek:     &days,
		PrimaryFitnessGoal:      "Build muscle",
	}
}

func generatedWeek() domain.WeekSchedule {
	days := make([]domain.PlanDay, domain.DaysPerWeek)
	for i := range days {
		days[i] = domain.PlanDay{DayNumber: i + 1, DayName: "Rest Day", Exercises: []domain.PlanExercise{}}
	}
	days[0].DayName = "Upper Body"
	days[0].Exercises = []domain.PlanExercise{{Name: "Overhead Press", Sets: 3, Reps: "6-8"}}
	return domain.WeekSchedule{WeekNumber: 1, Days: days}
}

func activePlanFixture(userID primitive.ObjectID) *domain.TrainingPlan {
	return &domain.TrainingPlan{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		PlanName: domain.InitialPlanLabel,
		PlanData: generatedWeek(),
		IsActive: true,
	}
}

type planFixtures struct {
	profiles  *fakeProfileRepo
	weights   *fakeWeightRepo
	training  *fakeTrainingRepo
	nutrition *fakeNutritionRepo
	gateway   *fakeGateway
	archive   *fakeArchive
}

func newPlanService(f *planFixtures) PlanService {
	return NewPlanService(f.profiles, f.weights, f.training, f.nutrition,
		f.gateway, f.archive, logger.NewNop(), nil)
}

func defaultFixtures() *planFixtures {
	return &planFixtures{
		profiles:  &fakeProfileRepo{profile: completeProfile()},
		weights:   &fakeWeightRepo{},
		training:  &fakeTrainingRepo{},
		nutrition: &fakeNutritionRepo{},
		gateway:   &fakeGateway{week: generatedWeek(), targets: llm.NutritionTargets{DailyCalories: 2400, DailyProteinG: 170, DailyCarbsG: 240, DailyFatG: 70}},
		archive:   &fakeArchive{key: "plan-archive/u/2024-05-01-x.json"},
	}
}

func scorePtr(v float64) *float64 { return &v }

func deloadSignal() domain.AnalysisSignal {
	return domain.AnalysisSignal{
		Recommendation: domain.RecommendDeload,
		OverallScore:   scorePtr(0.35),
		Confidence:     scorePtr(0.9),
		Factors:        &domain.AnalysisFactors{Performance: 0.5, Recovery: 0.3, Adherence: 0.8, Lifestyle: 0.6},
		Reasons:        []string{"recovery scores trending down"},
		WeekDateRange:  "2024-04-22 to 2024-04-28",
	}
}

// --- generation ---

func TestGenerateTrainingPlanFirstTime(t *testing.T) {
	f := defaultFixtures()
	svc := newPlanService(f)
	userID := primitive.NewObjectID()

	plan, err := svc.GenerateTrainingPlan(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, domain.InitialPlanLabel, plan.PlanName)
	assert.True(t, plan.IsActive)
	assert.False(t, plan.ID.IsZero())
	assert.Equal(t, userID, plan.UserID)
	assert.Equal(t, 1, f.training.deactivations, "retirement runs even when no plan exists")
	require.Len(t, f.training.created, 1)
}

func TestGenerateTrainingPlanRetiresPreviousAsHistory(t *testing.T) {
	f := defaultFixtures()
	userID := primitive.NewObjectID()
	f.training.active = activePlanFixture(userID)
	svc := newPlanService(f)

	plan, err := svc.GenerateTrainingPlan(context.Background(), userID)
	require.NoError(t, err)

	// The generation path keeps the old plan as an inactive row.
	require.Len(t, f.training.inactive, 1)
	assert.False(t, f.training.inactive[0].IsActive)
	assert.Equal(t, plan.ID, f.training.active.ID, "new plan is the single active one")
}

func TestGenerateTrainingPlanIncompleteProfile(t *testing.T) {
	f := defaultFixtures()
	f.profiles.profile = &domain.UserProfile{PrimaryFitnessGoal: "Build muscle"}
	svc := newPlanService(f)

	_, err := svc.GenerateTrainingPlan(context.Background(), primitive.NewObjectID())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{
		domain.FieldTrainingExperience,
		domain.FieldTrainingDaysPerWk,
	}, vErr.MissingFields)
	assert.Zero(t, f.gateway.weekCalls, "no model call on validation failure")
	assert.Empty(t, f.training.created)
}

func TestGenerateTrainingPlanNoProfile(t *testing.T) {
	f := defaultFixtures()
	f.profiles.profile = nil
	svc := newPlanService(f)

	_, err := svc.GenerateTrainingPlan(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGenerateTrainingPlanTimeoutLeavesStateUntouched(t *testing.T) {
	f := defaultFixtures()
	userID := primitive.NewObjectID()
	f.training.active = activePlanFixture(userID)
	f.gateway.weekErr = llm.ErrTimeout
	svc := newPlanService(f)

	_, err := svc.GenerateTrainingPlan(context.Background(), userID)

	assert.ErrorIs(t, err, llm.ErrTimeout)
	assert.Zero(t, f.training.deactivations, "previous plan must survive a failed generation")
	assert.True(t, f.training.active.IsActive)
	assert.Empty(t, f.training.created)
}

func TestGenerateTrainingPlanSaveFailureCarriesPlan(t *testing.T) {
	f := defaultFixtures()
	f.training.createErr = errors.New("write concern failed")
	svc := newPlanService(f)

	_, err := svc.GenerateTrainingPlan(context.Background(), primitive.NewObjectID())

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	require.NotNil(t, pErr.TrainingPlan, "generated content must not be discarded")
	assert.Equal(t, "Overhead Press", pErr.TrainingPlan.PlanData.Days[0].Exercises[0].Name)
}

func TestGenerateTrainingPlanRetirementFailureIsNonFatal(t *testing.T) {
	f := defaultFixtures()
	f.training.deactivateErr = errors.New("transient")
	svc := newPlanService(f)

	plan, err := svc.GenerateTrainingPlan(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, plan)
	require.Len(t, f.training.created, 1)
}

// --- nutrition ---

func TestGenerateNutritionPlan(t *testing.T) {
	f := defaultFixtures()
	f.weights.samples = []domain.WeightSample{
		{WeightKg: 81, MeasuredAt: time.Now().AddDate(0, 0, -10)},
		{WeightKg: 80, MeasuredAt: time.Now().AddDate(0, 0, -1)},
	}
	svc := newPlanService(f)

	plan, err := svc.GenerateNutritionPlan(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)

	assert.Equal(t, 2400, plan.DailyCalories)
	assert.Equal(t, 170.0, plan.DailyProteinG)
	assert.True(t, plan.IsActive)
	assert.Contains(t, f.gateway.lastIns.User, "80.0 kg", "latest weight feeds the prompt")
}

func TestGenerateNutritionPlanIncompleteProfile(t *testing.T) {
	f := defaultFixtures()
	f.profiles.profile = &domain.UserProfile{} // everything missing
	svc := newPlanService(f)

	_, err := svc.GenerateNutritionPlan(context.Background(), primitive.NewObjectID())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, domain.NutritionRequiredFields, vErr.MissingFields)
}

func TestGenerateNutritionPlanWeightHistoryFailureIsNonFatal(t *testing.T) {
	f := defaultFixtures()
	f.weights.err = errors.New("cursor timeout")
	svc := newPlanService(f)

	plan, err := svc.GenerateNutritionPlan(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, plan)
}

func TestGenerateNutritionPlanSaveFailureCarriesPlan(t *testing.T) {
	f := defaultFixtures()
	f.nutrition.createErr = errors.New("boom")
	svc := newPlanService(f)

	_, err := svc.GenerateNutritionPlan(context.Background(), primitive.NewObjectID())

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	require.NotNil(t, pErr.NutritionPlan)
	assert.Equal(t, 2400, pErr.NutritionPlan.DailyCalories)
}

// --- modification ---

func TestModifyTrainingPlanReplacesActive(t *testing.T) {
	f := defaultFixtures()
	userID := primitive.NewObjectID()
	previous := activePlanFixture(userID)
	f.training.active = previous
	svc := newPlanService(f)

	result, err := svc.ModifyTrainingPlan(context.Background(), userID, deloadSignal())
	require.NoError(t, err)

	assert.Equal(t, "Deload", result.Plan.PlanName)
	assert.True(t, result.Plan.IsActive)
	assert.NotEqual(t, previous.ID, result.Plan.ID)
	assert.Equal(t, 1, f.training.deletions, "modification deletes, it does not flag-flip")
	assert.Zero(t, f.training.deactivations)
	assert.Empty(t, f.training.inactive, "no history row on the modification path")

	// The retired plan was snapshotted before deletion.
	require.Len(t, f.archive.archived, 1)
	assert.Equal(t, previous.ID, f.archive.archived[0].ID)
	assert.Equal(t, f.archive.key, result.ArchiveKey)
}

func TestModifyTrainingPlanWithoutActivePlan(t *testing.T) {
	f := defaultFixtures()
	svc := newPlanService(f)

	_, err := svc.ModifyTrainingPlan(context.Background(), primitive.NewObjectID(), deloadSignal())
	assert.ErrorIs(t, err, ErrActivePlanNotFound)
	assert.Zero(t, f.gateway.weekCalls)
}

func TestModifyTrainingPlanRejectsIncompleteSignal(t *testing.T) {
	f := defaultFixtures()
	f.training.active = activePlanFixture(primitive.NewObjectID())
	svc := newPlanService(f)

	sig := domain.AnalysisSignal{Recommendation: domain.RecommendMaintain}
	_, err := svc.ModifyTrainingPlan(context.Background(), primitive.NewObjectID(), sig)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{
		domain.SignalFieldConfidence,
		domain.SignalFieldOverallScore,
		domain.SignalFieldFactors,
		domain.SignalFieldReasons,
		domain.SignalFieldWeekDateRange,
	}, vErr.MissingFields)
	assert.Zero(t, f.gateway.weekCalls, "no model call on validation failure")
	assert.Equal(t, 0, f.training.deletions)
}

func TestModifyTrainingPlanZeroScoresAreValid(t *testing.T) {
	f := defaultFixtures()
	userID := primitive.NewObjectID()
	f.training.active = activePlanFixture(userID)
	svc := newPlanService(f)

	sig := deloadSignal()
	sig.OverallScore = scorePtr(0)
	sig.Confidence = scorePtr(0)

	_, err := svc.ModifyTrainingPlan(context.Background(), userID, sig)
	require.NoError(t, err)
	assert.Equal(t, 1, f.gateway.weekCalls)
}

func TestModifyTrainingPlanUnknownCategory(t *testing.T) {
	f := defaultFixtures()
	f.training.active = activePlanFixture(primitive.NewObjectID())
	svc := newPlanService(f)

	sig := deloadSignal()
	sig.Recommendation = "escalate"
	_, err := svc.ModifyTrainingPlan(context.Background(), primitive.NewObjectID(), sig)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, f.gateway.weekCalls)
}

func TestModifyTrainingPlanPainRequiresAreaAndCause(t *testing.T) {
	f := defaultFixtures()
	f.training.active = activePlanFixture(primitive.NewObjectID())
	svc := newPlanService(f)

	sig := deloadSignal()
	sig.HasPain = true
	_, err := svc.ModifyTrainingPlan(context.Background(), primitive.NewObjectID(), sig)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"area", "cause"}, vErr.MissingFields)
}

func TestModifyTrainingPlanTimeoutKeepsCurrentPlan(t *testing.T) {
	f := defaultFixtures()
	userID := primitive.NewObjectID()
	f.training.active = activePlanFixture(userID)
	f.gateway.weekErr = llm.ErrTimeout
	svc := newPlanService(f)

	_, err := svc.ModifyTrainingPlan(context.Background(), userID, deloadSignal())

	assert.ErrorIs(t, err, llm.ErrTimeout)
	assert.Zero(t, f.training.deletions)
	assert.NotNil(t, f.training.active)
	assert.Empty(t, f.archive.archived, "nothing is archived when generation fails")
}

func TestModifyTrainingPlanArchiveFailureIsNonFatal(t *testing.T) {
	f := defaultFixtures()
	userID := primitive.NewObjectID()
	f.training.active = activePlanFixture(userID)
	f.archive.err = errors.New("bucket unreachable")
	svc := newPlanService(f)

	result, err := svc.ModifyTrainingPlan(context.Background(), userID, deloadSignal())
	require.NoError(t, err)
	assert.Empty(t, result.ArchiveKey)
	assert.Equal(t, 1, f.training.deletions)
}

func TestModifyTrainingPlanWithoutArchiveConfigured(t *testing.T) {
	f := defaultFixtures()
	userID := primitive.NewObjectID()
	f.training.active = activePlanFixture(userID)
	svc := NewPlanService(f.profiles, f.weights, f.training, f.nutrition,
		f.gateway, nil, logger.NewNop(), nil)

	result, err := svc.ModifyTrainingPlan(context.Background(), userID, deloadSignal())
	require.NoError(t, err)
	assert.Empty(t, result.ArchiveKey)
}

func TestModifyTrainingPlanSaveFailureCarriesPlan(t *testing.T) {
	f := defaultFixtures()
	userID := primitive.NewObjectID()
	f.training.active = activePlanFixture(userID)
	f.training.createErr = errors.New("boom")
	svc := newPlanService(f)

	_, err := svc.ModifyTrainingPlan(context.Background(), userID, deloadSignal())

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	require.NotNil(t, pErr.TrainingPlan)
	assert.Equal(t, "Deload", pErr.TrainingPlan.PlanName)
}

// --- reads ---

func TestActivePlanReads(t *testing.T) {
	f := defaultFixtures()
	svc := newPlanService(f)
	userID := primitive.NewObjectID()

	_, err := svc.ActiveTrainingPlan(context.Background(), userID)
	assert.ErrorIs(t, err, ErrActivePlanNotFound)
	_, err = svc.ActiveNutritionPlan(context.Background(), userID)
	assert.ErrorIs(t, err, ErrActivePlanNotFound)

	f.training.active = activePlanFixture(userID)
	plan, err := svc.ActiveTrainingPlan(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, plan.IsActive)
}

func TestTrainingPlanHistory(t *testing.T) {
	f := defaultFixtures()
	f.training.inactive = []domain.TrainingPlan{{PlanName: domain.InitialPlanLabel}}
	svc := newPlanService(f)

	history, err := svc.TrainingPlanHistory(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
