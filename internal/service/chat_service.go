package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pulsefit/coach-app/internal/cache"
	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/prompt"
	"pulsefit/coach-app/internal/repository"
)

// ConversationBridge is the slice of the assistant bridge the chat service
// needs. Satisfied by *llm.SessionBridge.
type ConversationBridge interface {
	ChatTurn(ctx context.Context, threadID, message, instructions string) (reply, outThreadID string, err error)
}

// ChatService runs coaching conversations grounded in the user's profile and
// active plan.
type ChatService interface {
	// Chat runs one turn. An empty threadID starts a fresh conversation; the
	// returned thread ID must be sent back on the next turn to continue it.
	Chat(ctx context.Context, userID primitive.ObjectID, threadID, message string) (reply, outThreadID string, err error)
}

type chatService struct {
	profileRepo  repository.ProfileRepository
	trainingRepo repository.TrainingPlanRepository
	contexts     *cache.ContextCache
	bridge       ConversationBridge
	log          *logger.Logger
}

func NewChatService(
	profileRepo repository.ProfileRepository,
	trainingRepo repository.TrainingPlanRepository,
	contexts *cache.ContextCache,
	bridge ConversationBridge,
	log *logger.Logger,
) ChatService {
	return &chatService{
		profileRepo:  profileRepo,
		trainingRepo: trainingRepo,
		contexts:     contexts,
		bridge:       bridge,
		log:          log,
	}
}

func (s *chatService) Chat(ctx context.Context, userID primitive.ObjectID, threadID, message string) (string, string, error) {
	if message == "" {
		return "", "", &ValidationError{Detail: "message cannot be empty"}
	}

	snapshot, err := s.userContext(ctx, userID)
	if err != nil {
		return "", "", err
	}

	instructions := prompt.ComposeChatInstructions(snapshot.Profile, snapshot.ActivePlan)
	reply, outThreadID, err := s.bridge.ChatTurn(ctx, threadID, message, instructions)
	if err != nil {
		return "", outThreadID, err
	}
	return reply, outThreadID, nil
}

// userContext returns the cached profile and active plan, composing and
// caching them on a miss. A user without an active plan still gets a
// snapshot; a user without a profile does not.
func (s *chatService) userContext(ctx context.Context, userID primitive.ObjectID) (cache.Snapshot, error) {
	key := userID.Hex()
	if snapshot, ok := s.contexts.Get(key); ok {
		return snapshot, nil
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return cache.Snapshot{}, ErrProfileNotFound
		}
		return cache.Snapshot{}, err
	}

	snapshot := cache.Snapshot{Profile: profile}
	plan, err := s.trainingRepo.GetActiveByUser(ctx, userID)
	switch {
	case err == nil:
		snapshot.ActivePlan = plan
	case errors.Is(err, repository.ErrNotFound):
		// No plan yet; the assistant is told so.
	default:
		return cache.Snapshot{}, err
	}

	s.contexts.Put(key, snapshot)
	return snapshot, nil
}
