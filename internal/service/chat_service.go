// Package service 包含了会话引擎的业务编排逻辑。
package service

import (
	"context"
	"errors"
	"qa-session-go/internal/cache"
	"qa-session-go/internal/model"
	"qa-session-go/internal/pipeline"
	"qa-session-go/internal/repository"
	"qa-session-go/internal/session"
	"qa-session-go/pkg/events"
	"qa-session-go/pkg/log"
	"strings"
	"time"
)

// ErrLoaderUnavailable 表示未配置会话加载协作方。
var ErrLoaderUnavailable = errors.New("conversation loader is not configured")

// ExchangeRecorder 接收每次问答结束后的事件。
type ExchangeRecorder interface {
	Record(ctx context.Context, ev events.Exchange) error
}

// AttachmentResolver 为回答中的附件补全下载地址。
type AttachmentResolver interface {
	Resolve(ctx context.Context, attachments []model.Attachment) []model.Attachment
}

// Input 是用户的一次输入。
type Input struct {
	Text        string             `json:"text"`
	Attachments []model.Attachment `json:"attachments"`
}

// Reply 是一次发送的结果。请求失败时 Err 非空，Message 为错误提示消息。
type Reply struct {
	Message   model.Message   `json:"message"`
	FromCache bool            `json:"fromCache"`
	Attempts  int             `json:"attempts"`
	ChatID    string          `json:"chatId,omitempty"`
	Err       *pipeline.Error `json:"-"`
}

// EngineOptions 是引擎的可选协作方。
type EngineOptions struct {
	// AttachmentPrompt 在只发送附件时作为问题发出
	AttachmentPrompt string
	Resolver         AttachmentResolver
	Recorder         ExchangeRecorder
	Suggestions      SuggestionService
}

// ChatEngine 定义了会话引擎对界面层暴露的操作。
type ChatEngine interface {
	SendUserMessage(ctx context.Context, sceneID string, in Input) (*Reply, error)
	SelectScene(scene model.Scene)
	CurrentScene() (model.Scene, bool)
	CurrentMessages() []model.Message
	CurrentChatID() string
	NewChat()
	LoadConversation(ctx context.Context, chatID string) (*model.LoadedConversation, error)
	ListConversations(ctx context.Context, sceneID string, limit int) ([]model.Conversation, error)
	CachedQuestions() []string
	ClearCache(ctx context.Context)
	Suggestions(ctx context.Context) []model.Suggestion
	// Close 等待已产生的问答事件投递完毕。
	Close()
}

type chatEngine struct {
	store    *session.Store
	qaCache  *cache.QACache
	pipeline *pipeline.Pipeline
	loader   repository.ConversationRepository
	opts     EngineOptions
	events   *exchangeQueue
}

// NewChatEngine 创建会话引擎。loader 为 nil 时不支持加载历史会话。
func NewChatEngine(store *session.Store, qaCache *cache.QACache, p *pipeline.Pipeline, loader repository.ConversationRepository, opts EngineOptions) ChatEngine {
	e := &chatEngine{
		store:    store,
		qaCache:  qaCache,
		pipeline: p,
		loader:   loader,
		opts:     opts,
	}
	if opts.Recorder != nil {
		e.events = newExchangeQueue(opts.Recorder, exchangeQueueSize)
	}
	return e
}

// SendUserMessage 记录用户消息，命中缓存时直接回答，否则通过请求管道获取回答。
// 任何被接受的输入都会得到一条配对的助手消息（回答或错误提示）。
func (e *chatEngine) SendUserMessage(ctx context.Context, sceneID string, in Input) (*Reply, error) {
	started := time.Now()
	text := strings.TrimSpace(in.Text)
	hasAttachments := len(in.Attachments) > 0
	if text == "" && !hasAttachments {
		return nil, &pipeline.Error{Kind: pipeline.KindValidation, Err: pipeline.ErrEmptyPrompt}
	}

	e.store.Append(sceneID, model.NewUserMessage(in.Text, in.Attachments))

	// 附件问题的回答依赖附件内容，不读写缓存
	if !hasAttachments {
		if answer, ok := e.qaCache.Lookup(ctx, in.Text); ok {
			log.Infof("[ChatEngine] 命中问答缓存, scene=%s", sceneID)
			msg := model.NewAssistantMessage(answer, nil, nil)
			e.store.Append(sceneID, msg)
			e.record(sceneID, in.Text, events.OutcomeCacheHit, 0, started)
			return &Reply{Message: msg, FromCache: true, ChatID: e.store.CurrentChatID()}, nil
		}
	}

	prompt := text
	if prompt == "" {
		prompt = e.opts.AttachmentPrompt
	}
	res, err := e.pipeline.Run(ctx, prompt, sceneID, in.Attachments)
	if err != nil {
		var pe *pipeline.Error
		if !errors.As(err, &pe) {
			pe = &pipeline.Error{Kind: pipeline.KindServerError, Err: err}
		}
		log.Warnf("[ChatEngine] 问答失败, scene=%s, kind=%s, attempts=%d", sceneID, pe.Kind, pe.Attempts)
		msg := model.NewAssistantError(pe.Kind.Describe())
		e.store.Append(sceneID, msg)
		e.record(sceneID, in.Text, pe.Kind.String(), pe.Attempts, started)
		return &Reply{Message: msg, Attempts: pe.Attempts, ChatID: e.store.CurrentChatID(), Err: pe}, nil
	}

	attachments := res.Response.AttachmentData
	if e.opts.Resolver != nil && len(attachments) > 0 {
		attachments = e.opts.Resolver.Resolve(ctx, attachments)
	}
	msg := model.NewAssistantMessage(res.Answer, attachments, res.Response.Sources)
	e.store.Append(sceneID, msg)
	if !hasAttachments {
		e.qaCache.Insert(ctx, in.Text, res.Answer)
	}
	if e.store.SetChatIDIfEmpty(res.Response.ChatID) {
		log.Infof("[ChatEngine] 记录新会话标识: %s", res.Response.ChatID)
	}
	e.record(sceneID, in.Text, events.OutcomeAnswered, res.Attempts, started)
	return &Reply{Message: msg, Attempts: res.Attempts, ChatID: e.store.CurrentChatID()}, nil
}

func (e *chatEngine) SelectScene(scene model.Scene) {
	e.store.SelectScene(scene)
}

func (e *chatEngine) CurrentScene() (model.Scene, bool) {
	return e.store.CurrentScene()
}

func (e *chatEngine) CurrentMessages() []model.Message {
	return e.store.CurrentMessages()
}

func (e *chatEngine) CurrentChatID() string {
	return e.store.CurrentChatID()
}

// NewChat 清空当前场景并开始新会话。
func (e *chatEngine) NewChat() {
	e.store.ClearCurrent()
}

// LoadConversation 载入已持久化的会话，替换其场景的消息并切换到该场景。
func (e *chatEngine) LoadConversation(ctx context.Context, chatID string) (*model.LoadedConversation, error) {
	if e.loader == nil {
		return nil, ErrLoaderUnavailable
	}
	conv, err := e.loader.FindByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	e.store.LoadExternal(conv.SceneID, conv.Messages, conv.ChatID)
	scene := model.Scene{ID: conv.SceneID}
	if cur, ok := e.store.CurrentScene(); ok && cur.ID == conv.SceneID {
		scene = cur
	}
	e.store.SelectScene(scene)
	log.Infof("[ChatEngine] 已加载会话 %s (scene=%s, %d 条消息)", conv.ChatID, conv.SceneID, len(conv.Messages))
	return conv, nil
}

func (e *chatEngine) ListConversations(ctx context.Context, sceneID string, limit int) ([]model.Conversation, error) {
	if e.loader == nil {
		return nil, ErrLoaderUnavailable
	}
	return e.loader.ListByScene(ctx, sceneID, limit)
}

func (e *chatEngine) CachedQuestions() []string {
	return e.qaCache.AllQuestions()
}

func (e *chatEngine) ClearCache(ctx context.Context) {
	e.qaCache.Clear(ctx)
	log.Info("[ChatEngine] 问答缓存已清空")
}

func (e *chatEngine) Suggestions(ctx context.Context) []model.Suggestion {
	if e.opts.Suggestions == nil {
		return []model.Suggestion{}
	}
	return e.opts.Suggestions.Suggestions(ctx)
}

func (e *chatEngine) Close() {
	if e.events != nil {
		e.events.close()
	}
}

// record 把问答事件放入后台队列，不阻塞回答。
func (e *chatEngine) record(sceneID, question, outcome string, attempts int, started time.Time) {
	if e.events == nil {
		return
	}
	e.events.push(events.Exchange{
		SceneID:   sceneID,
		ChatID:    e.store.CurrentChatID(),
		Question:  question,
		Outcome:   outcome,
		Attempts:  attempts,
		LatencyMs: time.Since(started).Milliseconds(),
		At:        time.Now(),
	})
}
