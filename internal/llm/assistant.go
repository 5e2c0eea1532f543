package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"pulsefit/coach-app/internal/logger"
)

// AssistantClient is the slice of the OpenAI client the session bridge needs.
// Satisfied by *openai.Client.
type AssistantClient interface {
	CreateAssistant(ctx context.Context, request openai.AssistantRequest) (openai.Assistant, error)
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

// RunFailedError surfaces the assistant run's terminal failure state.
type RunFailedError struct {
	Status  openai.RunStatus
	Code    string
	Message string
}

func (e *RunFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("llm: assistant run ended %s: %s (%s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("llm: assistant run ended %s", e.Status)
}

/// SessionBridge drives assistant conversations: one persistent thread per
// user, one run per turn, answers read back from the thread.
type SessionBridge struct {
	client       AssistantClient
	model        string
	persona      string
	pollInterval time.Duration
	maxWait      time.Duration
	log          *logger.Logger

	mu          sync.Mutex
	assistantID string

	// sleep is swappable so polling tests run instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSessionBridge builds the bridge. assistantID may be empty, in which case
// an assistant is created lazily on first use and reused for the process
// lifetime.
func NewSessionBridge(client AssistantClient, assistantID, model, persona string, pollInterval, maxWait time.Duration, log *logger.Logger) *SessionBridge {
	return &SessionBridge{
		client:       client,
		model:        model,
		persona:      persona,
		pollInterval: pollInterval,
		maxWait:      maxWait,
		log:          log,
		assistantID:  assistantID,
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ChatTurn runs one conversation turn. An empty threadID starts a new thread;
// the (possibly new) thread ID is returned so the caller can persist it with
// the session. instructions are per-turn grounding appended to the assistant's
// persona.
func (b *SessionBridge) ChatTurn(ctx context.Context, threadID, message, instructions string) (reply, outThreadID string, err error) {
	assistantID, err := b.ensureAssistant(ctx)
	if err != nil {
		return "", "", err
	}

	if threadID == "" {
		thread, err := b.client.CreateThread(ctx, openai.ThreadRequest{})
		if err != nil {
			return "", "", fmt.Errorf("create thread: %w", err)
		}
		threadID = thread.ID
	}

	if _, err := b.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	}); err != nil {
		return "", threadID, fmt.Errorf("append message: %w", err)
	}

	run, err := b.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID:            assistantID,
		AdditionalInstructions: instructions,
	})
	if err != nil {
		return "", threadID, fmt.Errorf("start run: %w", err)
	}

	run, err = b.awaitRun(ctx, threadID, run)
	if err != nil {
		return "", threadID, err
	}

	reply, err = b.lastAssistantMessage(ctx, threadID)
	if err != nil {
		return "", threadID, err
	}
	return reply, threadID, nil
}

func (b *SessionBridge) ensureAssistant(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.assistantID != "" {
		return b.assistantID, nil
	}
	name := "Coaching Assistant"
	instructions := b.persona
	assistant, err := b.client.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        b.model,
		Name:         &name,
		Instructions: &instructions,
	})
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	b.assistantID = assistant.ID
	b.log.Info("created assistant", "assistantId", assistant.ID)
	return b.assistantID, nil
}

// awaitRun polls until the run leaves queued/in_progress or the wait budget
// is spent.
func (b *SessionBridge) awaitRun(ctx context.Context, threadID string, run openai.Run) (openai.Run, error) {
	deadline := time.Now().Add(b.maxWait)
	for run.Status == openai.RunStatusQueued || run.Status == openai.RunStatusInProgress {
		if time.Now().After(deadline) {
			return run, fmt.Errorf("assistant run %s: %w", run.ID, ErrTimeout)
		}
		if err := b.sleep(ctx, b.pollInterval); err != nil {
			return run, err
		}
		var err error
		run, err = b.client.RetrieveRun(ctx, threadID, run.ID)
		if err != nil {
			return run, fmt.Errorf("poll run: %w", err)
		}
	}
	if run.Status != openai.RunStatusCompleted {
		failure := &RunFailedError{Status: run.Status}
		if run.LastError != nil {
			failure.Code = string(run.LastError.Code)
			failure.Message = run.LastError.Message
		}
		return run, failure
	}
	return run, nil
}

func (b *SessionBridge) lastAssistantMessage(ctx context.Context, threadID string) (string, error) {
	limit := 1
	order := "desc"
	list, err := b.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}
	if len(list.Messages) == 0 || len(list.Messages[0].Content) == 0 {
		return "", &MalformedError{Reason: "assistant run completed without a message"}
	}
	text := list.Messages[0].Content[0].Text
	if text == nil {
		return "", &MalformedError{Reason: "assistant message carries no text content"}
	}
	return text.Value, nil
}
