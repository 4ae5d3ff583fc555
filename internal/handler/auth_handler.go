// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"qa-session-go/pkg/log"
	"qa-session-go/pkg/token"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthHandler 为本地客户端签发访问令牌。
type AuthHandler struct {
	jwtManager *token.JWTManager
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(jwtManager *token.JWTManager) *AuthHandler {
	return &AuthHandler{jwtManager: jwtManager}
}

// IssueTokenRequest 定义了签发令牌的请求体，ClientID 为空时随机生成。
type IssueTokenRequest struct {
	ClientID string `json:"clientId"`
}

// IssueToken 处理签发令牌的请求。
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Warnf("IssueToken: Invalid request payload, error: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
			return
		}
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		clientID = "client-" + token.GenerateRandomString(8)
	}

	tok, err := h.jwtManager.GenerateToken(clientID)
	if err != nil {
		log.Errorf("IssueToken: 签发令牌失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "签发令牌失败", "data": nil})
		return
	}

	log.Infof("已为客户端 %s 签发令牌", clientID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"token":    tok,
			"clientId": clientID,
		},
	})
}
