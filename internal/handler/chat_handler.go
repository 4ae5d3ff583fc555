package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"qa-session-go/internal/model"
	"qa-session-go/internal/pipeline"
	"qa-session-go/internal/service"
	"qa-session-go/pkg/log"
	"qa-session-go/pkg/token"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

const stopTokenPrefix = "WSS_STOP_CMD_"

// ChatHandler 负责处理 WebSocket 聊天连接以及会话相关的 REST 请求。
type ChatHandler struct {
	engine        service.ChatEngine
	jwtManager    *token.JWTManager
	stopTokens    map[string]string // clientID -> 当前停止令牌
	stopTokenLock sync.Mutex
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(engine service.ChatEngine, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		engine:     engine,
		jwtManager: jwtManager,
		stopTokens: make(map[string]string),
	}
}

// SendMessageRequest 是发送消息的请求体，SceneID 为空时使用当前场景。
type SendMessageRequest struct {
	SceneID     string             `json:"scene_id"`
	Text        string             `json:"text"`
	Attachments []model.Attachment `json:"attachments"`
}

// SelectSceneRequest 是切换场景的请求体。
type SelectSceneRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name"`
}

// replyView 是返回给客户端的回答，失败时附带错误分类。
type replyView struct {
	*service.Reply
	ErrorKind string `json:"errorKind,omitempty"`
}

func newReplyView(r *service.Reply) replyView {
	v := replyView{Reply: r}
	if r.Err != nil {
		v.ErrorKind = r.Err.Kind.String()
	}
	return v
}

// GetWebsocketStopToken 为当前客户端签发一个可用于停止回答的令牌，同一客户端再次获取时旧令牌失效。
func (h *ChatHandler) GetWebsocketStopToken(c *gin.Context) {
	clientID := ""
	if claims, ok := c.MustGet("claims").(*token.CustomClaims); ok {
		clientID = claims.ClientID
	}
	cmdToken := stopTokenPrefix + token.GenerateRandomString(16)

	h.stopTokenLock.Lock()
	h.stopTokens[clientID] = cmdToken
	h.stopTokenLock.Unlock()
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"cmdToken": cmdToken}})
}

func (h *ChatHandler) validStopToken(clientID, tok string) bool {
	h.stopTokenLock.Lock()
	defer h.stopTokenLock.Unlock()
	want, ok := h.stopTokens[clientID]
	return ok && tok == want
}

// SendMessage 通过 REST 发送一条消息并同步返回回答。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
		return
	}
	sceneID, ok := h.resolveScene(req.SceneID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "请先选择场景", "data": nil})
		return
	}

	reply, err := h.engine.SendUserMessage(c.Request.Context(), sceneID, service.Input{Text: req.Text, Attachments: req.Attachments})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": describe(err), "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": newReplyView(reply)})
}

// GetMessages 返回当前场景的消息。
func (h *ChatHandler) GetMessages(c *gin.Context) {
	data := gin.H{
		"scene":    nil,
		"messages": h.engine.CurrentMessages(),
		"chatId":   h.engine.CurrentChatID(),
	}
	if sc, ok := h.engine.CurrentScene(); ok {
		data["scene"] = sc
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

// NewChat 清空当前场景的消息并开始新会话。
func (h *ChatHandler) NewChat(c *gin.Context) {
	h.engine.NewChat()
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}

// SelectScene 切换当前场景，不影响各场景已有的消息。
func (h *ChatHandler) SelectScene(c *gin.Context) {
	var req SelectSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "场景 id 不能为空", "data": nil})
		return
	}
	scene := model.Scene{ID: req.ID, Name: req.Name}
	h.engine.SelectScene(scene)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": scene})
}

func (h *ChatHandler) resolveScene(sceneID string) (string, bool) {
	if sceneID = strings.TrimSpace(sceneID); sceneID != "" {
		return sceneID, true
	}
	if sc, ok := h.engine.CurrentScene(); ok {
		return sc.ID, true
	}
	return "", false
}

// wsFrame 是客户端发送的 WebSocket 帧。
type wsFrame struct {
	Type        string             `json:"type"`
	SceneID     string             `json:"scene_id"`
	Text        string             `json:"text"`
	Attachments []model.Attachment `json:"attachments"`
	CmdToken    string             `json:"_internal_cmd_token"`
}

// wsSession 保存单个连接的写锁和进行中的请求。
type wsSession struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	wg       sync.WaitGroup
}

func (s *wsSession) writeJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("序列化 WebSocket 帧失败: %v", err)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warnf("写入 WebSocket 消息失败: %v", err)
	}
}

func (s *wsSession) track(id string, cancel context.CancelFunc) {
	s.mu.Lock()
	s.inflight[id] = cancel
	s.mu.Unlock()
}

func (s *wsSession) untrack(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

// stopAll 取消连接上所有进行中的请求，返回被取消的数量。
func (s *wsSession) stopAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.inflight)
	for id, cancel := range s.inflight {
		cancel()
		delete(s.inflight, id)
	}
	return n
}

// Handle 处理一个传入的 WebSocket 连接。
func (h *ChatHandler) Handle(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	sess := &wsSession{conn: conn, inflight: make(map[string]context.CancelFunc)}
	connCtx, cancelConn := context.WithCancel(context.Background())
	defer func() {
		cancelConn()
		sess.wg.Wait()
		conn.Close()
	}()

	log.Infof("WebSocket 连接已建立，客户端: %s", claims.ClientID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var frame wsFrame
		if len(message) > 0 && message[0] == '{' {
			if err := json.Unmarshal(message, &frame); err != nil {
				sess.writeJSON(gin.H{"type": "error", "message": "无法解析的消息格式"})
				continue
			}
		} else {
			// 非 JSON 消息：整条等于停止令牌时视为停止指令，否则作为问题文本
			raw := string(message)
			if strings.HasPrefix(raw, stopTokenPrefix) {
				frame = wsFrame{Type: "stop", CmdToken: raw}
			} else {
				frame = wsFrame{Type: "message", Text: raw}
			}
		}

		switch frame.Type {
		case "stop":
			if !h.validStopToken(claims.ClientID, frame.CmdToken) {
				sess.writeJSON(gin.H{"type": "error", "message": "无效的停止令牌"})
				continue
			}
			n := sess.stopAll()
			log.Infof("收到停止指令，已取消 %d 个进行中的请求", n)
			sess.writeJSON(gin.H{
				"type":      "stop",
				"message":   "响应已停止",
				"timestamp": time.Now().UnixMilli(),
			})
		case "message", "":
			h.dispatch(connCtx, sess, frame)
		default:
			sess.writeJSON(gin.H{"type": "error", "message": "不支持的消息类型: " + frame.Type})
		}
	}
}

// dispatch 在独立的 goroutine 中处理一条消息，使读循环能继续接收停止指令。
func (h *ChatHandler) dispatch(parent context.Context, sess *wsSession, frame wsFrame) {
	sceneID, ok := h.resolveScene(frame.SceneID)
	if !ok {
		sess.writeJSON(gin.H{"type": "error", "message": "请先选择场景"})
		return
	}

	requestID := uuid.NewString()
	ctx, cancel := context.WithCancel(parent)
	sess.track(requestID, cancel)
	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		defer cancel()
		defer sess.untrack(requestID)

		reply, err := h.engine.SendUserMessage(ctx, sceneID, service.Input{Text: frame.Text, Attachments: frame.Attachments})
		if err != nil {
			sess.writeJSON(gin.H{"type": "error", "request_id": requestID, "message": describe(err)})
			return
		}
		sess.writeJSON(gin.H{"type": "reply", "request_id": requestID, "scene_id": sceneID, "data": newReplyView(reply)})

		status := "finished"
		if reply.Err != nil && reply.Err.Kind == pipeline.KindCancelled {
			status = "cancelled"
		}
		sess.writeJSON(gin.H{
			"type":       "completion",
			"request_id": requestID,
			"status":     status,
			"message":    "响应已完成",
			"timestamp":  time.Now().UnixMilli(),
		})
	}()
}

func describe(err error) string {
	var pe *pipeline.Error
	if errors.As(err, &pe) {
		return pe.Kind.Describe()
	}
	return err.Error()
}
