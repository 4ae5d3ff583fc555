// Package model 包含了会话引擎使用的数据模型定义。
package model

import (
	"time"

	"github.com/google/uuid"
)

// Sender 标识消息的发送方。
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Attachment 是随消息携带的附件。
// ObjectKey 非空而 URL 为空时，由附件解析器补全下载地址。
type Attachment struct {
	Name      string `json:"name"`
	URL       string `json:"url,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	Size      int64  `json:"size,omitempty"`
	ObjectKey string `json:"object_key,omitempty"`
}

// SourceRef 指向回答所引用的知识来源。
type SourceRef struct {
	FileName string  `json:"file_name"`
	FileMD5  string  `json:"file_md5,omitempty"`
	ChunkID  int     `json:"chunk_id,omitempty"`
	Snippet  string  `json:"snippet,omitempty"`
	URL      string  `json:"url,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// Message 代表某个场景中的一条消息，追加后不再修改。
type Message struct {
	ID          string       `json:"id"`
	Content     string       `json:"content"`
	Sender      Sender       `json:"sender"`
	Attachments []Attachment `json:"attachments"`
	Sources     []SourceRef  `json:"sources"`
	// IsError 标记由失败请求生成的助手提示消息
	IsError   bool      `json:"is_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserMessage 创建一条用户消息。
func NewUserMessage(content string, attachments []Attachment) Message {
	return Message{
		ID:          uuid.NewString(),
		Content:     content,
		Sender:      SenderUser,
		Attachments: cloneAttachments(attachments),
		Sources:     []SourceRef{},
		CreatedAt:   time.Now(),
	}
}

// NewAssistantMessage 创建一条助手回答消息。
func NewAssistantMessage(content string, attachments []Attachment, sources []SourceRef) Message {
	return Message{
		ID:          uuid.NewString(),
		Content:     content,
		Sender:      SenderAssistant,
		Attachments: cloneAttachments(attachments),
		Sources:     append([]SourceRef{}, sources...),
		CreatedAt:   time.Now(),
	}
}

// NewAssistantError 创建一条展示给用户的错误提示消息。
func NewAssistantError(description string) Message {
	m := NewAssistantMessage(description, nil, nil)
	m.IsError = true
	return m
}

func cloneAttachments(in []Attachment) []Attachment {
	out := make([]Attachment, len(in))
	copy(out, in)
	return out
}

// Scene 是划分消息历史的会话场景。
type Scene struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}
