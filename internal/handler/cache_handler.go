package handler

import (
	"net/http"
	"qa-session-go/internal/service"

	"github.com/gin-gonic/gin"
)

// CacheHandler 暴露问答缓存的查看与清空操作。
type CacheHandler struct {
	engine service.ChatEngine
}

func NewCacheHandler(engine service.ChatEngine) *CacheHandler {
	return &CacheHandler{engine: engine}
}

// Questions 按最近使用顺序返回已缓存的问题。
func (h *CacheHandler) Questions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": h.engine.CachedQuestions()})
}

func (h *CacheHandler) Clear(c *gin.Context) {
	h.engine.ClearCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}
