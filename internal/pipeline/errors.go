package pipeline

import (
	"errors"
	"fmt"
)

// Kind 是请求失败的分类。
type Kind int

const (
	KindValidation Kind = iota + 1
	KindCancelled
	KindTimeout
	KindNetworkUnavailable
	KindServerError
	// KindMalformedResponse 只在重试过程中出现，重试耗尽后上报为 KindServerError。
	KindMalformedResponse
)

var (
	// ErrEmptyPrompt 表示去除空白后的问题为空。
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrMissingAnswer 表示响应体合法但缺少回答内容。
	ErrMissingAnswer = errors.New("response has no answer")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCancelled:
		return "cancelled"
	case KindTimeout:
		return "timeout"
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindServerError:
		return "server_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Describe 返回展示给用户的错误描述。
func (k Kind) Describe() string {
	switch k {
	case KindValidation:
		return "请输入您的问题后再发送。"
	case KindCancelled:
		return "已停止本次回答。"
	case KindTimeout:
		return "请求超时，服务器响应时间过长，请稍后重试。"
	case KindNetworkUnavailable:
		return "网络连接失败，请检查网络后重试。"
	case KindServerError, KindMalformedResponse:
		return "服务暂时不可用，请稍后重试。"
	default:
		return "发生未知错误，请稍后重试。"
	}
}

// Error 是管道的终态失败。
type Error struct {
	Kind     Kind
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf 返回 err 链上 *Error 的分类，不存在时返回 0。
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
