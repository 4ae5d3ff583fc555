package handler

import (
	"errors"
	"net/http"
	"qa-session-go/internal/repository"
	"qa-session-go/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultConversationLimit = 20

// ConversationHandler 处理历史会话的加载与列表请求。
type ConversationHandler struct {
	engine service.ChatEngine
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(engine service.ChatEngine) *ConversationHandler {
	return &ConversationHandler{engine: engine}
}

// LoadConversation 载入指定会话并切换到该会话所在的场景。
func (h *ConversationHandler) LoadConversation(c *gin.Context) {
	conv, err := h.engine.LoadConversation(c.Request.Context(), c.Param("chatId"))
	if err != nil {
		status, message := conversationErrorStatus(err)
		c.JSON(status, gin.H{"code": status, "message": message, "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": conv})
}

// ListConversations 列出某场景下最近的会话。
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	sceneID := c.Query("scene_id")
	if sceneID == "" {
		if sc, ok := h.engine.CurrentScene(); ok {
			sceneID = sc.ID
		}
	}
	if sceneID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "缺少 scene_id 参数", "data": nil})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultConversationLimit)))
	if err != nil || limit <= 0 {
		limit = defaultConversationLimit
	}

	list, err := h.engine.ListConversations(c.Request.Context(), sceneID, limit)
	if err != nil {
		status, message := conversationErrorStatus(err)
		c.JSON(status, gin.H{"code": status, "message": message, "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": list})
}

func conversationErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrConversationNotFound):
		return http.StatusNotFound, "会话不存在"
	case errors.Is(err, service.ErrLoaderUnavailable):
		return http.StatusServiceUnavailable, "未启用会话存储"
	default:
		return http.StatusInternalServerError, "Failed to retrieve conversation history"
	}
}
