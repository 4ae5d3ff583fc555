package service

import (
	"context"
	"qa-session-go/internal/model"
	"qa-session-go/internal/suggestion"
	"qa-session-go/pkg/log"
)

// SuggestionFetcher 返回远端推荐接口的原始响应体，chatapi.Client 满足该接口。
type SuggestionFetcher interface {
	Suggestions(ctx context.Context) ([]byte, error)
}

// SuggestionService 定义了推荐问题的获取接口。
type SuggestionService interface {
	// Suggestions 返回本地推荐在前、远端去重推荐在后的列表。远端不可用时只返回本地推荐。
	Suggestions(ctx context.Context) []model.Suggestion
}

type suggestionService struct {
	local   []model.Suggestion
	fetcher SuggestionFetcher
}

// NewSuggestionService 创建推荐服务，fetcher 为 nil 时只使用本地推荐。
func NewSuggestionService(localTexts []string, fetcher SuggestionFetcher) SuggestionService {
	return &suggestionService{
		local:   suggestion.LocalFromTexts(localTexts),
		fetcher: fetcher,
	}
}

func (s *suggestionService) Suggestions(ctx context.Context) []model.Suggestion {
	local := make([]model.Suggestion, len(s.local))
	copy(local, s.local)
	if s.fetcher == nil {
		return local
	}

	raw, err := s.fetcher.Suggestions(ctx)
	if err != nil {
		log.Warnf("[SuggestionService] 获取远端推荐失败，仅使用本地推荐: %v", err)
		return local
	}
	remote := suggestion.DecodeRemote(raw)
	merged := suggestion.Merge(local, remote)
	log.Infof("[SuggestionService] 本地推荐 %d 条，远端推荐 %d 条，合并后 %d 条", len(local), len(remote), len(merged))
	return merged
}
