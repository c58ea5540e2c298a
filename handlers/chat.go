package handlers

import (
	"net/http"

	"companionhub/middleware"
	"companionhub/services/chat"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	ChatService chat.ChatService
	Logger      *zap.Logger
}

func NewChatHandler(svc chat.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{ChatService: svc, Logger: logger}
}

// CreateOrGet handles POST /api/chat.
func (h *ChatHandler) CreateOrGet(c *gin.Context) {
	var in chat.CreateChatInput
	if err := utils.BindJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	conv, err := h.ChatService.CreateOrGet(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", conv)
}

// SendMessage handles POST /api/chat/messages.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var in chat.SendMessageInput
	if err := utils.BindJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	msg, err := h.ChatService.SendMessage(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Message sent", msg)
}

// ListMessages handles GET /api/chat/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	q, err := bindListQuery(c)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	page, err := h.ChatService.ListMessages(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), q.Page, q.Limit)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", page)
}
