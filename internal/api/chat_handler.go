package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulsefit/coach-app/internal/logger"
	"pulsefit/coach-app/internal/service"
)

// ChatHandler serves the coaching assistant conversation endpoint.
type ChatHandler struct {
	chatService service.ChatService
	log         *logger.Logger
}

func NewChatHandler(chatService service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

type chatRequest struct {
	Message  string `json:"message" binding:"required"`
	ThreadID string `json:"threadId"`
}

type chatResponse struct {
	Reply    string `json:"reply"`
	ThreadID string `json:"threadId"`
}

// Chat runs one conversation turn. Omitting threadId starts a fresh
// conversation; the returned threadId continues it.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	reply, threadID, err := h.chatService.Chat(c.Request.Context(), userID, req.ThreadID, req.Message)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, chatResponse{Reply: reply, ThreadID: threadID})
}
