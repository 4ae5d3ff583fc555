// Package session 维护按场景划分的消息历史以及当前会话标识。
package session

import (
	"qa-session-go/internal/model"
	"sync"
)

// Store 是场景消息存储。未出现过的场景视为空序列，首次追加时创建。
type Store struct {
	mu            sync.Mutex
	scenes        map[string][]model.Message
	current       *model.Scene
	currentChatID string
}

// NewStore 创建一个空的场景消息存储。
func NewStore() *Store {
	return &Store{scenes: make(map[string][]model.Message)}
}

// SelectScene 设置当前场景，不改变任何历史。
func (s *Store) SelectScene(scene model.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := scene
	s.current = &sc
}

// CurrentScene 返回当前场景，未选择时 ok 为 false。
func (s *Store) CurrentScene() (model.Scene, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.Scene{}, false
	}
	return *s.current, true
}

// Append 向 sceneID 对应的序列末尾追加一条消息。
func (s *Store) Append(sceneID string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes[sceneID] = append(s.scenes[sceneID], msg)
}

// Messages 返回指定场景消息的副本。
func (s *Store) Messages(sceneID string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.scenes[sceneID])
}

// CurrentMessages 返回当前场景的消息副本，未选择场景时返回空序列。
func (s *Store) CurrentMessages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return []model.Message{}
	}
	return cloneMessages(s.scenes[s.current.ID])
}

// ClearCurrent 清空当前场景的消息并重置 currentChatID。
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.scenes[s.current.ID] = nil
	}
	s.currentChatID = ""
}

// LoadExternal 以外部加载的会话整体替换 sceneID 的消息序列，并设置 currentChatID。
func (s *Store) LoadExternal(sceneID string, messages []model.Message, chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes[sceneID] = cloneMessages(messages)
	s.currentChatID = chatID
}

// CurrentChatID 返回当前持久化会话的标识，未设置时为空串。
func (s *Store) CurrentChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChatID
}

// SetChatIDIfEmpty 仅在尚未设置会话标识时记录 chatID，返回是否写入。
func (s *Store) SetChatIDIfEmpty(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chatID == "" || s.currentChatID != "" {
		return false
	}
	s.currentChatID = chatID
	return true
}

func cloneMessages(in []model.Message) []model.Message {
	out := make([]model.Message, len(in))
	copy(out, in)
	return out
}
