package model

// Origin 标识推荐问题的来源。
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Suggestion 是一条推荐问题。
type Suggestion struct {
	Text   string `json:"text"`
	Origin Origin `json:"origin"`
}
