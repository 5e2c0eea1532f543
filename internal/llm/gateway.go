package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"pulsefit/coach-app/internal/domain"
	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/prompt"
)

// Generation bounds. Nutrition answers are a handful of labeled lines; plan
// generation returns a full week of JSON and gets double the time.
const (
	nutritionTemperature = 0.3
	nutritionMaxTokens   = 150
	trainingTemperature  = 0.7
)

// ChatClient is the slice of the OpenAI client the gateway needs. Satisfied
// by *openai.Client; tests substitute a fake.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Gateway turns composed instructions into validated domain values. All
// failures are classified into ErrTimeout, *GenerationError or
// *MalformedError.
type Gateway interface {
	GenerateWeekSchedule(ctx context.Context, ins prompt.Instructions) (domain.WeekSchedule, error)
	GenerateNutrition(ctx context.Context, ins prompt.Instructions) (NutritionTargets, error)
}

type openAIGateway struct {
	client           ChatClient
	model            string
	nutritionTimeout time.Duration
	trainingTimeout  time.Duration
	log              *logger.Logger
}

// NewGateway wires a chat client into the generation gateway.
func NewGateway(client ChatClient, model string, nutritionTimeout, trainingTimeout time.Duration, log *logger.Logger) Gateway {
	return &openAIGateway{
		client:           client,
		model:            model,
		nutritionTimeout: nutritionTimeout,
		trainingTimeout:  trainingTimeout,
		log:              log,
	}
}

// GenerateWeekSchedule requests a one-week plan and parses it strictly. Used
// by both first-time generation and weekly modification.
func (g *openAIGateway) GenerateWeekSchedule(ctx context.Context, ins prompt.Instructions) (domain.WeekSchedule, error) {
	raw, err := g.complete(ctx, ins, g.trainingTimeout, trainingTemperature, 0)
	if err != nil {
		return domain.WeekSchedule{}, err
	}
	week, err := ParseWeekSchedule(raw)
	if err != nil {
		g.log.Warn("model returned unusable week schedule", "error", err)
		return domain.WeekSchedule{}, err
	}
	return week, nil
}

// GenerateNutrition requests daily macro targets and parses the labeled
// lines.
func (g *openAIGateway) GenerateNutrition(ctx context.Context, ins prompt.Instructions) (NutritionTargets, error) {
	raw, err := g.complete(ctx, ins, g.nutritionTimeout, nutritionTemperature, nutritionMaxTokens)
	if err != nil {
		return NutritionTargets{}, err
	}
	targets, err := ParseNutritionTargets(raw)
	if err != nil {
		g.log.Warn("model returned unusable nutrition targets", "error", err)
		return NutritionTargets{}, err
	}
	return targets, nil
}

func (g *openAIGateway) complete(ctx context.Context, ins prompt.Instructions, timeout time.Duration, temperature float32, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: ins.System},
			{Role: openai.ChatMessageRoleUser, Content: ins.User},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &MalformedError{Reason: "response contained no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps transport failures onto the gateway's error taxonomy.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &GenerationError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}
	return &GenerationError{Err: err}
}
