// Package pipeline 实现带超时、分类与线性退避重试的问答请求管道。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"qa-session-go/internal/model"
	"qa-session-go/pkg/chatapi"
	"qa-session-go/pkg/log"
	"strings"
	"time"
)

// Caller 是远端问答调用，chatapi.Client 满足该接口。
type Caller interface {
	Chat(ctx context.Context, req chatapi.ChatRequest) (*chatapi.ChatResponse, error)
}

// Config 控制每次尝试的超时与重试策略。
type Config struct {
	MaxRetries     int
	BackoffBase    time.Duration
	AttemptTimeout time.Duration
}

// Result 是一次成功调用的结果，Answer 已经过 Sanitize 处理。
type Result struct {
	Answer   string
	Response *chatapi.ChatResponse
	Attempts int
}

// Pipeline 驱动一次问答请求直到成功或进入终态失败。管道本身不修改消息与缓存。
type Pipeline struct {
	caller Caller
	cfg    Config
	sleep  func(ctx context.Context, d time.Duration) error
}

// New 创建请求管道。
func New(caller Caller, cfg Config) *Pipeline {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Pipeline{caller: caller, cfg: cfg, sleep: sleepContext}
}

// Run 发送 prompt，在 ctx 被取消时立即以 KindCancelled 结束。
// 第 n 次失败后若 n < MaxRetries，等待 BackoffBase*n 再重试。
func (p *Pipeline) Run(ctx context.Context, prompt, sceneID string, attachments []model.Attachment) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, &Error{Kind: KindValidation, Err: ErrEmptyPrompt}
	}
	req := chatapi.ChatRequest{Prompt: prompt, SceneID: sceneID, Attachments: attachments}

	var (
		lastErr  error
		lastKind Kind
	)
	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, terminal(ctx, attempt-1, err)
		}

		started := time.Now()
		answer, resp, err := p.attempt(ctx, req)
		if err == nil {
			if attempt > 1 {
				log.Infof("[Pipeline] 第 %d 次尝试成功, scene=%s", attempt, sceneID)
			}
			return &Result{Answer: answer, Response: resp, Attempts: attempt}, nil
		}
		if ctx.Err() != nil {
			return nil, terminal(ctx, attempt, err)
		}

		lastErr, lastKind = err, classify(err)
		log.Warnw("[Pipeline] 请求失败",
			"attempt", attempt,
			"maxRetries", p.cfg.MaxRetries,
			"kind", lastKind.String(),
			"latency", time.Since(started).String(),
			"error", err,
		)
		if attempt == p.cfg.MaxRetries {
			break
		}
		if err := p.sleep(ctx, p.cfg.BackoffBase*time.Duration(attempt)); err != nil {
			return nil, terminal(ctx, attempt, err)
		}
	}

	if lastKind == KindMalformedResponse {
		lastKind = KindServerError
	}
	log.Errorf("[Pipeline] 重试 %d 次后仍失败, kind=%s, error=%v", p.cfg.MaxRetries, lastKind, lastErr)
	return nil, &Error{Kind: lastKind, Attempts: p.cfg.MaxRetries, Err: lastErr}
}

// attempt 执行一次带独立超时的调用。
func (p *Pipeline) attempt(ctx context.Context, req chatapi.ChatRequest) (string, *chatapi.ChatResponse, error) {
	if p.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AttemptTimeout)
		defer cancel()
	}
	resp, err := p.caller.Chat(ctx, req)
	if err != nil {
		return "", nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Response) == "" {
		return "", resp, ErrMissingAnswer
	}
	answer := Sanitize(resp.Response)
	if answer == "" {
		return "", resp, fmt.Errorf("%w: only hidden reasoning present", ErrMissingAnswer)
	}
	return answer, resp, nil
}

// classify 对单次尝试的错误分类。
func classify(err error) Kind {
	if errors.Is(err, ErrMissingAnswer) {
		return KindMalformedResponse
	}
	if isTimeout(err) {
		return KindTimeout
	}
	var se *chatapi.StatusError
	if errors.As(err, &se) || errors.Is(err, chatapi.ErrMalformedBody) {
		return KindServerError
	}
	return KindNetworkUnavailable
}

// terminal 处理外部 ctx 结束的情况：主动取消为 KindCancelled，外部截止时间到达为 KindTimeout。
func terminal(ctx context.Context, attempts int, cause error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Attempts: attempts, Err: cause}
	}
	log.Infof("[Pipeline] 请求已取消, attempts=%d", attempts)
	return &Error{Kind: KindCancelled, Attempts: attempts, Err: cause}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
