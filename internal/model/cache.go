package model

// QACacheEntry 是问答缓存中的一项，Question 保留用户输入的原文。
type QACacheEntry struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp int64  `json:"timestamp"` // epoch 毫秒
}
