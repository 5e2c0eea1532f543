package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InitialPlanLabel names the very first generated plan. Every later plan is
// labeled with the recommendation category that produced it.
const InitialPlanLabel = "Maintain"

// Structural limits every generated week must respect.
const (
	DaysPerWeek     = 7
	MinExercisesDay = 6
	MaxExercisesDay = 8
	MaxSets         = 3
	MaxReps         = 12
)

// TrainingPlan is the central mutable entity: a one-week structured schedule
// owned by a user. At most one plan per user is active at any time.
type TrainingPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	PlanName  string             `bson:"planName" json:"plan_name"`
	StartDate time.Time          `bson:"startDate" json:"start_date"`
	PlanData  WeekSchedule       `bson:"planData" json:"plan_data"`
	IsActive  bool               `bson:"isActive" json:"is_active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WeekSchedule is the structured content of a plan: exactly seven day
// entries.
type WeekSchedule struct {
	WeekNumber int       `bson:"weekNumber" json:"weekNumber"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Days       []PlanDay `bson:"days" json:"days"`
}

// PlanDay is one entry of the weekly schedule. Rest days carry an
// empty-but-present exercise list.
type PlanDay struct {
	DayNumber int            `bson:"dayNumber" json:"dayNumber"`
	DayName   string         `bson:"dayName" json:"dayName"`
	Notes     string         `bson:"notes" json:"notes"`
	Exercises []PlanExercise `bson:"exercises" json:"exercises"`
}

// IsRestDay reports whether the day carries no exercises.
func (d PlanDay) IsRestDay() bool { return len(d.Exercises) == 0 }

// PlanExercise is a single prescription within a training day.
type PlanExercise struct {
	Name  string `bson:"name" json:"name"`
	Sets  int    `bson:"sets" json:"sets"`
	Reps  string `bson:"reps" json:"reps"`
	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Validate checks the structural invariants of a generated week: exactly
// seven days numbered 1..7, and each exercise within the set cap.
func (w WeekSchedule) Validate() error {
	if len(w.Days) != DaysPerWeek {
		return fmt.Errorf("week must contain exactly %d days, got %d", DaysPerWeek, len(w.Days))
	}
	seen := make(map[int]bool, DaysPerWeek)
	for _, day := range w.Days {
		if day.DayNumber < 1 || day.DayNumber > DaysPerWeek {
			return fmt.Errorf("day number %d out of range 1-%d", day.DayNumber, DaysPerWeek)
		}
		if seen[day.DayNumber] {
			return fmt.Errorf("duplicate day number %d", day.DayNumber)
		}
		seen[day.DayNumber] = true
		if day.Exercises == nil {
			return fmt.Errorf("day %d: exercises list must be present (empty for rest days)", day.DayNumber)
		}
		for _, ex := range day.Exercises {
			if ex.Sets > MaxSets {
				return fmt.Errorf("day %d: %q exceeds %d sets", day.DayNumber, ex.Name, MaxSets)
			}
		}
	}
	return nil
}
