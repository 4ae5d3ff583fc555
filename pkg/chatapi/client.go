// Package chatapi 提供远端问答服务的 HTTP 客户端。
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"qa-session-go/internal/config"
	"qa-session-go/internal/model"
	"qa-session-go/pkg/log"
	"time"
)

// ErrMalformedBody 表示收到了响应但响应体无法解析。
var ErrMalformedBody = errors.New("malformed response body")

// StatusError 表示远端返回了非 2xx 状态码。
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat api returned status %d: %s", e.Code, e.Body)
}

// ChatRequest 是发往问答接口的请求体。
type ChatRequest struct {
	Prompt      string             `json:"prompt"`
	SceneID     string             `json:"scene_id"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
}

// ChatResponse 是问答接口的响应体。
type ChatResponse struct {
	Response       string             `json:"response"`
	Sources        []model.SourceRef  `json:"sources,omitempty"`
	AttachmentData []model.Attachment `json:"attachment_data,omitempty"`
	ChatID         string             `json:"chat_id,omitempty"`
}

// Client 定义了远端问答服务的访问接口。
type Client interface {
	// Chat 发起一次问答请求，超时由 ctx 控制。
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Suggestions 返回推荐问题接口的原始响应体。
	Suggestions(ctx context.Context) ([]byte, error)
}

type httpClient struct {
	cfg    config.ChatConfig
	client *http.Client
}

// NewClient 根据配置创建远端问答客户端。
func NewClient(cfg config.ChatConfig) Client {
	return &httpClient{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *httpClient) Chat(ctx context.Context, chatReq ChatRequest) (*ChatResponse, error) {
	reqBytes, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.ChatPath, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return &chatResp, nil
}

func (c *httpClient) Suggestions(ctx context.Context) ([]byte, error) {
	if c.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+c.cfg.SuggestionsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestions request: %w", err)
	}
	c.authorize(req)
	return c.do(req)
}

func (c *httpClient) authorize(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}

// do 执行请求并返回 2xx 响应体。
func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", ErrMalformedBody, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("[ChatAPI] %s 返回非 2xx 状态码: %s", req.URL.Path, resp.Status)
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
