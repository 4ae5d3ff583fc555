package model

import "time"

// Conversation 是已持久化的一次会话，由会话加载协作方读取。
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"chatId"`
	SceneID   string    `gorm:"type:varchar(64);index;not null" json:"sceneId"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "chat_conversations"
}

// ConversationMessage 是会话中的一条持久化消息。
type ConversationMessage struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	ChatID      string       `gorm:"type:varchar(64);index;not null" json:"chatId"`
	Seq         int          `gorm:"not null" json:"seq"`
	Sender      Sender       `gorm:"type:varchar(16);not null" json:"sender"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Attachments []Attachment `gorm:"type:json;serializer:json" json:"attachments"`
	Sources     []SourceRef  `gorm:"type:json;serializer:json" json:"sources"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"createdAt"`
}

func (ConversationMessage) TableName() string {
	return "chat_messages"
}

// LoadedConversation 是会话加载协作方的返回结果。
type LoadedConversation struct {
	ChatID   string    `json:"chatId"`
	SceneID  string    `json:"sceneId"`
	Messages []Message `json:"messages"`
}
