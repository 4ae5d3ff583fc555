package pipeline

import (
	"regexp"
	"strings"
)

// 回答中的隐藏推理片段标记
const (
	ReasoningStart = "<深度思考>"
	ReasoningEnd   = "</深度思考>"
)

var (
	reReasoning = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(ReasoningStart) + `.*?` + regexp.QuoteMeta(ReasoningEnd))
	reNewlines  = regexp.MustCompile(`\n{3,}`)
)

// Sanitize 删除全部隐藏推理片段，把 3 个及以上的连续换行压缩为 2 个，并去除首尾空白。
func Sanitize(answer string) string {
	s := reReasoning.ReplaceAllString(answer, "")
	s = reNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
