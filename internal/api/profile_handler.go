package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pulsefit/coach-app/internal/domain"
	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/service"
)

// ProfileHandler serves the questionnaire profile and weight history.
type ProfileHandler struct {
	profileService service.ProfileService
	log            *logger.Logger
}

func NewProfileHandler(profileService service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, log: log}
}

// GetProfile returns the caller's profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertProfile creates or replaces the caller's profile. The body uses the
// same field names MissingFields reports, so a client can round-trip a 400.
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	profile.UserID = userID

	saved, err := h.profileService.Upsert(c.Request.Context(), &profile)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

type addWeightRequest struct {
	WeightKg        float64    `json:"weight_kg" binding:"required,gt=0"`
	MeasurementDate *time.Time `json:"measurement_date"`
}

// AddWeightSample records a body-weight measurement.
func (h *ProfileHandler) AddWeightSample(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req addWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	sample := &domain.WeightSample{UserID: userID, WeightKg: req.WeightKg}
	if req.MeasurementDate != nil {
		sample.MeasuredAt = *req.MeasurementDate
	}

	saved, err := h.profileService.AddWeightSample(c.Request.Context(), sample)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// WeightHistory returns samples from the last `days` days (default 30).
func (h *ProfileHandler) WeightHistory(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &days); err != nil || days <= 0 {
			abortWithError(c, http.StatusBadRequest, "days must be a positive integer")
			return
		}
	}

	since := time.Now().AddDate(0, 0, -days)
	samples, err := h.profileService.WeightHistory(c.Request.Context(), userID, since)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	if samples == nil {
		samples = []domain.WeightSample{}
	}
	c.JSON(http.StatusOK, samples)
}
