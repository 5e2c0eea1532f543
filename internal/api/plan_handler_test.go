package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pulsefit/coach-app/internal/domain"
	"pulsefit/coach-app/internal/llm"
	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/service"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

// stubPlanService returns canned results per method.
type stubPlanService struct {
	plan      *domain.TrainingPlan
	nutrition *domain.NutritionPlan
	modify    *service.ModifyResult
	history   []domain.TrainingPlan
	err       error
}

func (s *stubPlanService) GenerateTrainingPlan(context.Context, primitive.ObjectID) (*domain.TrainingPlan, error) {
	return s.plan, s.err
}

func (s *stubPlanService) GenerateNutritionPlan(context.Context, primitive.ObjectID) (*domain.NutritionPlan, error) {
	return s.nutrition, s.err
}

func (s *stubPlanService) ModifyTrainingPlan(context.Context, primitive.ObjectID, domain.AnalysisSignal) (*service.ModifyResult, error) {
	return s.modify, s.err
}

func (s *stubPlanService) ActiveTrainingPlan(context.Context, primitive.ObjectID) (*domain.TrainingPlan, error) {
	return s.plan, s.err
}

func (s *stubPlanService) ActiveNutritionPlan(context.Context, primitive.ObjectID) (*domain.NutritionPlan, error) {
	return s.nutrition, s.err
}

func (s *stubPlanService) TrainingPlanHistory(context.Context, primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return s.history, s.err
}

func newPlanRouter(svc service.PlanService) *gin.Engine {
	router := gin.New()
	handler := NewPlanHandler(svc, nil, logger.NewNop())
	group := router.Group("/api/v1", AuthMiddleware(testSecret))
	group.POST("/plans/training/generate", handler.GenerateTrainingPlan)
	group.POST("/plans/training/modify", handler.ModifyTrainingPlan)
	group.GET("/plans/training/active", handler.ActiveTrainingPlan)
	group.POST("/plans/nutrition/generate", handler.GenerateNutritionPlan)
	return router
}

func bearerToken(t *testing.T, userID primitive.ObjectID) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, primitive.NewObjectID()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGenerateTrainingPlanEndpoint(t *testing.T) {
	svc := &stubPlanService{plan: &domain.TrainingPlan{PlanName: domain.InitialPlanLabel, IsActive: true}}
	rec := doRequest(t, newPlanRouter(svc), http.MethodPost, "/api/v1/plans/training/generate", nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Maintain", decodeBody(t, rec)["plan_name"])
}

func TestGenerateTrainingPlanRequiresAuth(t *testing.T) {
	router := newPlanRouter(&stubPlanService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/training/generate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidationErrorListsMissingFields(t *testing.T) {
	svc := &stubPlanService{err: &service.ValidationError{
		MissingFields: []string{domain.FieldDateOfBirth, domain.FieldHeightCm},
	}}
	rec := doRequest(t, newPlanRouter(svc), http.MethodPost, "/api/v1/plans/nutrition/generate", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.ElementsMatch(t, []interface{}{"date_of_birth", "height_cm"}, body["missingFields"])
}

func TestNotFoundMapping(t *testing.T) {
	svc := &stubPlanService{err: service.ErrActivePlanNotFound}
	rec := doRequest(t, newPlanRouter(svc), http.MethodGet, "/api/v1/plans/training/active", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTimeoutMapsToGatewayTimeout(t *testing.T) {
	svc := &stubPlanService{err: llm.ErrTimeout}
	rec := doRequest(t, newPlanRouter(svc), http.MethodPost, "/api/v1/plans/training/generate", nil)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestMalformedResponseEchoesRaw(t *testing.T) {
	svc := &stubPlanService{err: &llm.MalformedError{Raw: "gibberish from the model", Reason: "invalid JSON"}}
	rec := doRequest(t, newPlanRouter(svc), http.MethodPost, "/api/v1/plans/training/generate", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "gibberish from the model", decodeBody(t, rec)["rawResponse"])
}

func TestUpstreamFailureMapsToBadGateway(t *testing.T) {
	svc := &stubPlanService{err: &llm.GenerationError{StatusCode: 429, Body: "rate limited"}}
	rec := doRequest(t, newPlanRouter(svc), http.MethodPost, "/api/v1/plans/training/generate", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(429), body["upstreamStatus"])
	assert.Equal(t, "rate limited", body["upstreamBody"])
}

// modifySignalBody is a fully populated weekly analysis request body.
func modifySignalBody(recommendation string) map[string]interface{} {
	return map[string]interface{}{
		"recommendation": recommendation,
		"confidence":     0.9,
		"overallScore":   0.35,
		"factors": map[string]interface{}{
			"performance": 0.5, "recovery": 0.3, "adherence": 0.8, "lifestyle": 0.6,
		},
		"reasons":       []string{"recovery scores trending down"},
		"weekDateRange": "2024-04-22 to 2024-04-28",
	}
}

func TestPersistenceFailureReturnsGeneratedPlan(t *testing.T) {
	generated := &domain.TrainingPlan{PlanName: "Deload"}
	svc := &stubPlanService{err: &service.PersistenceError{
		Op: "save modified training plan", TrainingPlan: generated, Err: assert.AnError,
	}}
	rec := doRequest(t, newPlanRouter(svc), http.MethodPost, "/api/v1/plans/training/modify",
		modifySignalBody("deload"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	plan, ok := body["plan"].(map[string]interface{})
	require.True(t, ok, "generated plan must be echoed back")
	assert.Equal(t, "Deload", plan["plan_name"])
}

func TestModifyEnumeratesMissingSignalFields(t *testing.T) {
	svc := &stubPlanService{modify: &service.ModifyResult{Plan: &domain.TrainingPlan{}}}
	rec := doRequest(t, newPlanRouter(svc), http.MethodPost, "/api/v1/plans/training/modify",
		map[string]interface{}{"confidence": 0.5})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []interface{}{
		"recommendation", "overallScore", "factors", "reasons", "weekDateRange",
	}, decodeBody(t, rec)["missingFields"])
}

func TestModifyReturnsArchiveKey(t *testing.T) {
	svc := &stubPlanService{modify: &service.ModifyResult{
		Plan:       &domain.TrainingPlan{PlanName: "Increase", IsActive: true},
		ArchiveKey: "plan-archive/u/2024-05-01-x.json",
	}}
	rec := doRequest(t, newPlanRouter(svc), http.MethodPost, "/api/v1/plans/training/modify",
		modifySignalBody("increase"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "plan-archive/u/2024-05-01-x.json", body["archiveKey"])
}
