package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pulsefit/coach-app/internal/domain"
	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/service"
	"pulsefit/coach-app/internal/storage"
)

// PlanHandler serves plan generation, weekly modification and plan reads.
type PlanHandler struct {
	planService service.PlanService
	archive     storage.PlanArchive
	log         *logger.Logger
}

// NewPlanHandler creates a new PlanHandler. archive may be nil when plan
// archiving is disabled.
func NewPlanHandler(planService service.PlanService, archive storage.PlanArchive, log *logger.Logger) *PlanHandler {
	return &PlanHandler{planService: planService, archive: archive, log: log}
}

// GenerateTrainingPlan creates a first training plan from the profile.
func (h *PlanHandler) GenerateTrainingPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plan, err := h.planService.GenerateTrainingPlan(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GenerateNutritionPlan creates daily macro targets from the profile and
// weight history.
func (h *PlanHandler) GenerateNutritionPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plan, err := h.planService.GenerateNutritionPlan(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

type modifyPlanResponse struct {
	Plan       *domain.TrainingPlan `json:"plan"`
	ArchiveKey string               `json:"archiveKey,omitempty"`
}

// ModifyTrainingPlan replaces the active plan based on the weekly analysis
// signal. The request body is the signal itself.
func (h *PlanHandler) ModifyTrainingPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var signal domain.AnalysisSignal
	if err := c.ShouldBindJSON(&signal); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if missing := signal.MissingFields(); len(missing) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":         "missing required fields: " + strings.Join(missing, ", "),
			"missingFields": missing,
		})
		return
	}

	result, err := h.planService.ModifyTrainingPlan(c.Request.Context(), userID, signal)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, modifyPlanResponse{Plan: result.Plan, ArchiveKey: result.ArchiveKey})
}

// ActiveTrainingPlan returns the caller's single active training plan.
func (h *PlanHandler) ActiveTrainingPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plan, err := h.planService.ActiveTrainingPlan(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ActiveNutritionPlan returns the caller's active nutrition plan.
func (h *PlanHandler) ActiveNutritionPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plan, err := h.planService.ActiveNutritionPlan(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// TrainingPlanHistory returns retired plans kept by the generation path,
// newest first.
func (h *PlanHandler) TrainingPlanHistory(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	history, err := h.planService.TrainingPlanHistory(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	if history == nil {
		history = []domain.TrainingPlan{}
	}
	c.JSON(http.StatusOK, history)
}

// ArchiveDownloadURL returns a presigned URL for an archived plan snapshot.
func (h *PlanHandler) ArchiveDownloadURL(c *gin.Context) {
	if h.archive == nil {
		abortWithError(c, http.StatusNotFound, "plan archiving is not enabled")
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	key := c.Query("key")
	// Keys are namespaced per user; only the owner may fetch a snapshot.
	expectedPrefix := fmt.Sprintf("plan-archive/%s/", userID.Hex())
	if key == "" || len(key) < len(expectedPrefix) || key[:len(expectedPrefix)] != expectedPrefix {
		abortWithError(c, http.StatusForbidden, "key does not belong to the authenticated user")
		return
	}

	url, err := h.archive.GeneratePresignedDownloadURL(c.Request.Context(), key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		h.log.Error("failed to presign archive download", "key", key, "error", err)
		abortWithError(c, http.StatusInternalServerError, "could not generate download URL")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
