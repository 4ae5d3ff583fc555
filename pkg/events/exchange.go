// Package events 定义引擎对外投递的问答事件。
package events

import "time"

// Outcome 取值
const (
	OutcomeAnswered = "answered"
	OutcomeCacheHit = "cache_hit"
)

// Exchange 描述一次已结束的问答交互，失败时 Outcome 为错误分类名。
type Exchange struct {
	SceneID   string    `json:"scene_id"`
	ChatID    string    `json:"chat_id,omitempty"`
	Question  string    `json:"question"`
	Outcome   string    `json:"outcome"`
	Attempts  int       `json:"attempts"`
	LatencyMs int64     `json:"latency_ms"`
	At        time.Time `json:"at"`
}
