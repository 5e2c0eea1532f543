package service

import (
	"errors"
	"fmt"
	"strings"

	"pulsefit/coach-app/internal/domain"
)

var (
	ErrProfileNotFound    = errors.New("user profile not found")
	ErrActivePlanNotFound = errors.New("no active plan found")
)

// ValidationError rejects a request before any model call is made. When
// MissingFields is set the client is told exactly which profile or signal
// fields to supply.
type ValidationError struct {
	MissingFields []string
	Detail        string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("missing required fields: %s", strings.Join(e.MissingFields, ", "))
	}
	return e.Detail
}

// PersistenceError reports that a plan was generated but could not be saved.
// The generated content is carried along so the caller can still hand it to
// the client instead of discarding paid model output.
type PersistenceError struct {
	Op            string
	TrainingPlan  *domain.TrainingPlan
	NutritionPlan *domain.NutritionPlan
	Err           error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
