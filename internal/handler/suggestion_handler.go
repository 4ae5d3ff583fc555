package handler

import (
	"net/http"
	"qa-session-go/internal/service"

	"github.com/gin-gonic/gin"
)

// SuggestionHandler 返回推荐问题列表。
type SuggestionHandler struct {
	engine service.ChatEngine
}

func NewSuggestionHandler(engine service.ChatEngine) *SuggestionHandler {
	return &SuggestionHandler{engine: engine}
}

func (h *SuggestionHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": h.engine.Suggestions(c.Request.Context())})
}
