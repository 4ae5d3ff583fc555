package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"qa-session-go/internal/config"
	"testing"
	"time"
)

func newTestClient(url string) Client {
	return NewClient(config.ChatConfig{
		BaseURL:         url,
		APIKey:          "secret",
		ChatPath:        "/chat",
		SuggestionsPath: "/suggestions",
		AttemptTimeout:  2 * time.Second,
	})
}

func TestChat_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Prompt != "学费多少" || req.SceneID != "admission" {
			t.Errorf("request = %+v", req)
		}
		w.Write([]byte(`{"response":"五千元","chat_id":"c-1","sources":[{"file_name":"招生简章.pdf"}]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Chat(context.Background(), ChatRequest{Prompt: "学费多少", SceneID: "admission"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Response != "五千元" || resp.ChatID != "c-1" {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].FileName != "招生简章.pdf" {
		t.Errorf("Sources = %+v", resp.Sources)
	}
}

func TestChat_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), ChatRequest{Prompt: "q"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Chat() error = %v, want *StatusError", err)
	}
	if se.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d", se.Code)
	}
}

func TestChat_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), ChatRequest{Prompt: "q"})
	if !errors.Is(err, ErrMalformedBody) {
		t.Errorf("Chat() error = %v, want ErrMalformedBody", err)
	}
}

func TestChat_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(srv.URL).Chat(ctx, ChatRequest{Prompt: "q"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Chat() error = %v, want deadline exceeded", err)
	}
}

func TestSuggestions_ReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/suggestions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":["a"]}`))
	}))
	defer srv.Close()

	body, err := newTestClient(srv.URL).Suggestions(context.Background())
	if err != nil {
		t.Fatalf("Suggestions() error = %v", err)
	}
	if string(body) != `{"status":"success","data":["a"]}` {
		t.Errorf("body = %s", body)
	}
}
