package repository

import (
	"context"
	"errors"
	"fmt"
	"qa-session-go/internal/model"

	"gorm.io/gorm"
)

// ErrConversationNotFound 表示指定的会话不存在。
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository 是会话加载协作方，按会话标识读取已持久化的会话。
type ConversationRepository interface {
	FindByChatID(ctx context.Context, chatID string) (*model.LoadedConversation, error)
	ListByScene(ctx context.Context, sceneID string, limit int) ([]model.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindByChatID 读取会话及其按顺序排列的全部消息。
func (r *conversationRepository) FindByChatID(ctx context.Context, chatID string) (*model.LoadedConversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find conversation %s: %w", chatID, err)
	}

	var records []model.ConversationMessage
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("seq ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load messages of conversation %s: %w", chatID, err)
	}

	messages := make([]model.Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, toMessage(rec))
	}
	return &model.LoadedConversation{ChatID: conv.ChatID, SceneID: conv.SceneID, Messages: messages}, nil
}

// ListByScene 按更新时间倒序列出场景下最近的会话。
func (r *conversationRepository) ListByScene(ctx context.Context, sceneID string, limit int) ([]model.Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	var convs []model.Conversation
	err := r.db.WithContext(ctx).
		Where("scene_id = ?", sceneID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations of scene %s: %w", sceneID, err)
	}
	return convs, nil
}

func toMessage(rec model.ConversationMessage) model.Message {
	msg := model.Message{
		ID:          fmt.Sprintf("%s-%d", rec.ChatID, rec.Seq),
		Content:     rec.Content,
		Sender:      rec.Sender,
		Attachments: rec.Attachments,
		Sources:     rec.Sources,
		CreatedAt:   rec.CreatedAt,
	}
	if msg.Attachments == nil {
		msg.Attachments = []model.Attachment{}
	}
	if msg.Sources == nil {
		msg.Sources = []model.SourceRef{}
	}
	return msg
}
