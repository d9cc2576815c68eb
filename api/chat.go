package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/flightbot/internal/chat"
	"github.com/Domenick1991/flightbot/internal/dialog"
	"github.com/gin-gonic/gin"
)

type ChatSender interface {
	Send(ctx context.Context, msg chat.Message) (dialog.Turn, error)
}

type ChatHandler struct {
	chat ChatSender
}

func NewChatHandler(sender ChatSender) *ChatHandler {
	return &ChatHandler{chat: sender}
}

func (h *ChatHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.message)
}

func (h *ChatHandler) message(c *gin.Context) {
	var msg chat.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	turn, err := h.chat.Send(c.Request.Context(), msg)
	if err != nil {
		abort(c, err, "Failed to process message")
		return
	}
	c.JSON(http.StatusOK, turn)
}
