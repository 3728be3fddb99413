package handlers

import (
	"net/http"

	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/services/chatbot"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	ChatService chatbot.ChatService
}

func NewChatHandler(svc chatbot.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: svc}
}

// ReplyHandler handles POST /api/chat. Authentication is optional.
func (h *ChatHandler) ReplyHandler(c *gin.Context) {
	var req models.ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.ChatService.Reply(c.Request.Context(), middleware.ActorFrom(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
