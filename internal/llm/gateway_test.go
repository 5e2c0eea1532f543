package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/prompt"
)

type fakeChatClient struct {
	lastRequest openai.ChatCompletionRequest
	content     string
	err         error

	// block makes the fake honor context cancellation instead of answering.
	block bool
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastRequest = req
	if f.block {
		<-ctx.Done()
		return openai.ChatCompletionResponse{}, ctx.Err()
	}
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newTestGateway(client ChatClient) Gateway {
	return NewGateway(client, "gpt-4.1-mini", 60*time.Second, 120*time.Second, logger.NewNop())
}

func TestGenerateWeekScheduleParsesResponse(t *testing.T) {
	client := &fakeChatClient{content: validWeekJSON()}
	g := newTestGateway(client)

	week, err := g.GenerateWeekSchedule(context.Background(), prompt.Instructions{System: "s", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, 1, week.WeekNumber)

	assert.Equal(t, "gpt-4.1-mini", client.lastRequest.Model)
	require.Len(t, client.lastRequest.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, client.lastRequest.Messages[0].Role)
	assert.Equal(t, "s", client.lastRequest.Messages[0].Content)
	assert.Equal(t, "u", client.lastRequest.Messages[1].Content)
	assert.Zero(t, client.lastRequest.MaxTokens, "plan generation is not token-capped")
}

func TestGenerateNutritionRequestShape(t *testing.T) {
	client := &fakeChatClient{content: nutritionResponse}
	g := newTestGateway(client)

	targets, err := g.GenerateNutrition(context.Background(), prompt.Instructions{System: "s", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, 2450, targets.DailyCalories)

	assert.Equal(t, float32(0.3), client.lastRequest.Temperature)
	assert.Equal(t, 150, client.lastRequest.MaxTokens)
}

func TestGatewayClassifiesTimeout(t *testing.T) {
	g := NewGateway(&fakeChatClient{block: true}, "gpt-4.1-mini",
		10*time.Millisecond, 10*time.Millisecond, logger.NewNop())

	_, err := g.GenerateWeekSchedule(context.Background(), prompt.Instructions{})
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = g.GenerateNutrition(context.Background(), prompt.Instructions{})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGatewayClassifiesAPIError(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limited"}
	g := newTestGateway(&fakeChatClient{err: apiErr})

	_, err := g.GenerateWeekSchedule(context.Background(), prompt.Instructions{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, http.StatusTooManyRequests, genErr.StatusCode)
	assert.Equal(t, "rate limited", genErr.Body)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestGatewayClassifiesTransportError(t *testing.T) {
	g := newTestGateway(&fakeChatClient{err: errors.New("connection refused")})

	_, err := g.GenerateNutrition(context.Background(), prompt.Instructions{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Zero(t, genErr.StatusCode)
}

func TestGatewaySurfacesMalformedContent(t *testing.T) {
	g := newTestGateway(&fakeChatClient{content: "not json at all"})

	_, err := g.GenerateWeekSchedule(context.Background(), prompt.Instructions{})

	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "not json at all", malformed.Raw)
}
