package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulsefit/coach-app/internal/llm"
	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/service"
)

// handleServiceError maps the service and gateway error taxonomy onto HTTP
// responses. Clients can rely on the shape: every error body carries "error",
// and specific failures add structured fields next to it.
func handleServiceError(c *gin.Context, log *logger.Logger, err error) {
	var vErr *service.ValidationError
	var pErr *service.PersistenceError
	var genErr *llm.GenerationError
	var malErr *llm.MalformedError
	var runErr *llm.RunFailedError

	switch {
	case errors.As(err, &vErr):
		body := gin.H{"error": vErr.Error()}
		if len(vErr.MissingFields) > 0 {
			body["missingFields"] = vErr.MissingFields
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, body)

	case errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrActivePlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, llm.ErrTimeout):
		abortWithError(c, http.StatusGatewayTimeout, "plan generation timed out, please retry")

	case errors.As(err, &genErr):
		log.Error("upstream generation failure", "status", genErr.StatusCode, "error", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":          "plan generation failed upstream",
			"upstreamStatus": genErr.StatusCode,
			"upstreamBody":   genErr.Body,
		})

	case errors.As(err, &malErr):
		log.Error("malformed model response", "reason", malErr.Reason)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":       "model returned an unusable response",
			"rawResponse": malErr.Raw,
		})

	case errors.As(err, &runErr):
		log.Error("assistant run failed", "status", runErr.Status, "code", runErr.Code)
		detail := "assistant could not complete the conversation turn"
		if runErr.Message != "" {
			detail += ": " + runErr.Message
		}
		abortWithError(c, http.StatusBadGateway, detail)

	case errors.As(err, &pErr):
		// The generated content is returned so the client does not lose it
		// to a storage failure.
		log.Error("persistence failure after generation", "op", pErr.Op, "error", err)
		body := gin.H{"error": "plan was generated but could not be saved"}
		if pErr.TrainingPlan != nil {
			body["plan"] = pErr.TrainingPlan
		}
		if pErr.NutritionPlan != nil {
			body["plan"] = pErr.NutritionPlan
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)

	default:
		log.Error("unhandled service error", "error", err)
		abortWithError(c, http.StatusInternalServerError, "an unexpected error occurred")
	}
}
