package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile field names used in required-field sets and in missing-field error
// responses. They mirror the column names clients already know.
const (
	FieldDateOfBirth        = "date_of_birth"
	FieldHeightCm           = "height_cm"
	FieldPrimaryFitnessGoal = "primary_fitness_goal"
	FieldTrainingExperience = "training_experience_years"
	FieldTrainingDaysPerWk  = "training_days_per_week"
)

// NutritionRequiredFields must be present on a profile before a nutrition
// plan can be generated.
var NutritionRequiredFields = []string{
	FieldPrimaryFitnessGoal,
	FieldHeightCm,
	FieldDateOfBirth,
}

// TrainingRequiredFields must be present on a profile before a training plan
// can be generated.
var TrainingRequiredFields = []string{
	FieldTrainingExperience,
	FieldPrimaryFitnessGoal,
	FieldTrainingDaysPerWk,
}

// UserProfile holds the questionnaire data a user filled in. The plan engine
// only ever reads it; writes happen through the profile endpoint.
type UserProfile struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`

	FullName    string     `bson:"fullName,omitempty" json:"full_name,omitempty"`
	DateOfBirth *time.Time `bson:"dateOfBirth,omitempty" json:"date_of_birth,omitempty"`
	HeightCm    *float64   `bson:"heightCm,omitempty" json:"height_cm,omitempty"`

	TrainingExperienceYears *int   `bson:"trainingExperienceYears,omitempty" json:"training_experience_years,omitempty"`
	CurrentTrainingSplit    string `bson:"currentTrainingSplit,omitempty" json:"current_training_split,omitempty"`
	TrainingDaysPerWeek     *int   `bson:"trainingDaysPerWeek,omitempty" json:"training_days_per_week,omitempty"`
	TrainingLocationType    string `bson:"trainingLocationType,omitempty" json:"training_location_type,omitempty"`

	DoesCardio             bool   `bson:"doesCardio" json:"does_cardio"`
	CardioType             string `bson:"cardioType,omitempty" json:"cardio_type,omitempty"`
	CardioFrequencyPerWeek *int   `bson:"cardioFrequencyPerWeek,omitempty" json:"cardio_frequency_per_week,omitempty"`

	PrimaryFitnessGoal string `bson:"primaryFitnessGoal,omitempty" json:"primary_fitness_goal,omitempty"`
	ShortTermGoal      string `bson:"shortTermGoal,omitempty" json:"short_term_goal,omitempty"`
	LongTermGoal       string `bson:"longTermGoal,omitempty" json:"long_term_goal,omitempty"`

	PreferredTrainingTime    string `bson:"preferredTrainingTime,omitempty" json:"preferred_training_time,omitempty"`
	PreferredWorkoutDuration *int   `bson:"preferredWorkoutDuration,omitempty" json:"preferred_workout_duration,omitempty"`
	WakeUpTime               string `bson:"wakeUpTime,omitempty" json:"wake_up_time,omitempty"`
	BedTime                  string `bson:"bedTime,omitempty" json:"bed_time,omitempty"`

	DietaryPreferences string   `bson:"dietaryPreferences,omitempty" json:"dietary_preferences,omitempty"`
	Allergies          []string `bson:"allergies,omitempty" json:"allergies,omitempty"`

	TargetWeightKg *float64 `bson:"targetWeightKg,omitempty" json:"target_weight_kg,omitempty"`

	// Free-text exercise preferences accumulated over time.
	UserWants  string `bson:"userWants,omitempty" json:"user_wants,omitempty"`
	UserAvoids string `bson:"userAvoids,omitempty" json:"user_avoids,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// MissingFields reports which of the requested fields are absent. A field is
// missing when it is nil or an empty string.
func (p *UserProfile) MissingFields(required []string) []string {
	var missing []string
	for _, field := range required {
		if !p.hasField(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

func (p *UserProfile) hasField(field string) bool {
	switch field {
	case FieldDateOfBirth:
		return p.DateOfBirth != nil
	case FieldHeightCm:
		return p.HeightCm != nil
	case FieldPrimaryFitnessGoal:
		return p.PrimaryFitnessGoal != ""
	case FieldTrainingExperience:
		return p.TrainingExperienceYears != nil
	case FieldTrainingDaysPerWk:
		return p.TrainingDaysPerWeek != nil
	default:
		return false
	}
}

// Age returns the user's age in whole years at the given time, decrementing
// when the birthday has not yet occurred this year. ok is false when the
// profile carries no date of birth.
func (p *UserProfile) Age(now time.Time) (age int, ok bool) {
	if p.DateOfBirth == nil {
		return 0, false
	}
	birth := *p.DateOfBirth
	age = now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, true
}

// ExperienceLevel bands training experience the way coaching guidance is
// written: at most one year is a beginner, up to three intermediate,
// everything beyond advanced.
func (p *UserProfile) ExperienceLevel() string {
	if p.TrainingExperienceYears == nil {
		return ""
	}
	switch years := *p.TrainingExperienceYears; {
	case years <= 1:
		return "Beginner"
	case years <= 3:
		return "Intermediate"
	default:
		return "Advanced"
	}
}
