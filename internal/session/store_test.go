package session

import (
	"qa-session-go/internal/model"
	"testing"
)

func TestStore_CurrentMessagesWithoutScene(t *testing.T) {
	s := NewStore()
	s.Append("admission", model.NewUserMessage("hi", nil))

	got := s.CurrentMessages()
	if got == nil || len(got) != 0 {
		t.Errorf("CurrentMessages() = %v, want empty non-nil slice", got)
	}
}

func TestStore_AppendLazilyCreatesScene(t *testing.T) {
	s := NewStore()
	if n := len(s.Messages("unknown")); n != 0 {
		t.Fatalf("Messages(unknown) len = %d, want 0", n)
	}

	s.Append("admission", model.NewUserMessage("first", nil))
	s.Append("admission", model.NewAssistantMessage("second", nil, nil))
	s.Append("campus", model.NewUserMessage("other scene", nil))

	msgs := s.Messages("admission")
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Errorf("order = [%q %q], want [first second]", msgs[0].Content, msgs[1].Content)
	}
}

func TestStore_SelectSceneKeepsHistory(t *testing.T) {
	s := NewStore()
	s.Append("a", model.NewUserMessage("in a", nil))
	s.Append("b", model.NewUserMessage("in b", nil))

	s.SelectScene(model.Scene{ID: "a"})
	if got := s.CurrentMessages(); len(got) != 1 || got[0].Content != "in a" {
		t.Errorf("scene a messages = %v", got)
	}
	s.SelectScene(model.Scene{ID: "b"})
	s.SelectScene(model.Scene{ID: "a"})
	if got := s.CurrentMessages(); len(got) != 1 {
		t.Errorf("switching scenes altered history: %v", got)
	}
	if sc, ok := s.CurrentScene(); !ok || sc.ID != "a" {
		t.Errorf("CurrentScene() = %v, %v", sc, ok)
	}
}

func TestStore_ClearCurrent(t *testing.T) {
	s := NewStore()
	s.SelectScene(model.Scene{ID: "a"})
	s.Append("a", model.NewUserMessage("x", nil))
	s.Append("b", model.NewUserMessage("y", nil))
	s.SetChatIDIfEmpty("chat-1")

	s.ClearCurrent()

	if n := len(s.CurrentMessages()); n != 0 {
		t.Errorf("current scene len = %d, want 0", n)
	}
	if n := len(s.Messages("b")); n != 1 {
		t.Errorf("other scene len = %d, want 1", n)
	}
	if id := s.CurrentChatID(); id != "" {
		t.Errorf("CurrentChatID() = %q, want empty", id)
	}
}

func TestStore_LoadExternalReplaces(t *testing.T) {
	s := NewStore()
	s.Append("a", model.NewUserMessage("old", nil))

	loaded := []model.Message{
		model.NewUserMessage("q", nil),
		model.NewAssistantMessage("a", nil, nil),
	}
	s.LoadExternal("a", loaded, "chat-9")
	loaded[0].Content = "mutated by caller"

	msgs := s.Messages("a")
	if len(msgs) != 2 || msgs[0].Content != "q" {
		t.Errorf("Messages(a) = %v", msgs)
	}
	if id := s.CurrentChatID(); id != "chat-9" {
		t.Errorf("CurrentChatID() = %q, want chat-9", id)
	}
}

func TestStore_SetChatIDIfEmpty(t *testing.T) {
	s := NewStore()
	if s.SetChatIDIfEmpty("") {
		t.Error("empty chat id must not be recorded")
	}
	if !s.SetChatIDIfEmpty("c1") {
		t.Error("first chat id should be recorded")
	}
	if s.SetChatIDIfEmpty("c2") {
		t.Error("second chat id should be ignored")
	}
	if id := s.CurrentChatID(); id != "c1" {
		t.Errorf("CurrentChatID() = %q, want c1", id)
	}
}
