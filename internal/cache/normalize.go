// Package cache 实现有界、按最近使用排序的问答缓存。
package cache

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var (
	// 中英文常见标点，归一化时整体剔除
	rePunct = regexp.MustCompile(`[，。！？；：、“”‘’（）《》【】…—,.!?;:"'()\[\]]+`)
	reSpace = regexp.MustCompile(`\s+`)
)

// Normalize 规范化问题文本，用于缓存等值比较：
// 去除首尾空白、大小写折叠、剔除标点、合并连续空白。
func Normalize(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	s = cases.Fold().String(s)
	s = rePunct.ReplaceAllString(s, "")
	s = reSpace.ReplaceAllString(s, " ")
	// 剔除标点后可能留下首尾空白
	return strings.TrimSpace(s)
}
