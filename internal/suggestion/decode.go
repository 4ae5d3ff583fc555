package suggestion

import (
	"bytes"
	"encoding/json"
	"qa-session-go/internal/model"
	"strings"
)

// RemoteItem 是远端推荐列表中的一项，可以是裸字符串或带 text 字段的对象。
type RemoteItem struct {
	Text string
}

// Suggestion 返回规范化后的推荐，来源一律标记为 remote。
func (r RemoteItem) Suggestion() model.Suggestion {
	return model.Suggestion{Text: r.Text, Origin: model.OriginRemote}
}

// UnmarshalJSON 接受 "text" 或 {"text": "..."} 两种形态。
func (r *RemoteItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.Text)
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Text = obj.Text
	return nil
}

// envelope 对应 {"status":"success","suggestions":[...]} 或 {"status":"success","data":[...]}
type envelope struct {
	Status      string            `json:"status"`
	Suggestions []json.RawMessage `json:"suggestions"`
	Data        []json.RawMessage `json:"data"`
}

// DecodeRemote 把远端推荐接口的响应体解码为推荐项，无法识别的形态视为没有远端推荐。
func DecodeRemote(raw []byte) []RemoteItem {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Status != "success" {
			return nil
		}
		if env.Suggestions != nil {
			items = env.Suggestions
		} else {
			items = env.Data
		}
	default:
		return nil
	}

	out := make([]RemoteItem, 0, len(items))
	for _, it := range items {
		var item RemoteItem
		if err := json.Unmarshal(it, &item); err != nil {
			continue
		}
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
