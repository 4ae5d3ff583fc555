// Package suggestion 合并本地与远端的推荐问题。
package suggestion

import "qa-session-go/internal/model"

// Merge 返回 local 后接 remote 的推荐列表。
// remote 中与已放入条目文本完全相同的项被跳过；此处按原文比较，不做归一化。
func Merge(local []model.Suggestion, remote []RemoteItem) []model.Suggestion {
	out := make([]model.Suggestion, 0, len(local)+len(remote))
	placed := make(map[string]struct{}, len(local)+len(remote))
	for _, s := range local {
		out = append(out, s)
		placed[s.Text] = struct{}{}
	}
	for _, item := range remote {
		s := item.Suggestion()
		if _, dup := placed[s.Text]; dup {
			continue
		}
		out = append(out, s)
		placed[s.Text] = struct{}{}
	}
	return out
}

// LocalFromTexts 把配置中的文本列表包装为本地推荐。
func LocalFromTexts(texts []string) []model.Suggestion {
	out := make([]model.Suggestion, 0, len(texts))
	for _, t := range texts {
		out = append(out, model.Suggestion{Text: t, Origin: model.OriginLocal})
	}
	return out
}
