package suggestion

import (
	"reflect"
	"testing"
)

func texts(items []RemoteItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestDecodeRemote(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"suggestions envelope", `{"status":"success","suggestions":["a","b"]}`, []string{"a", "b"}},
		{"data envelope", `{"status":"success","data":["c"]}`, []string{"c"}},
		{"bare array", `["x","y"]`, []string{"x", "y"}},
		{"object items", `[{"text":"o1","origin":"local"},"s2"]`, []string{"o1", "s2"}},
		{"failed status", `{"status":"error","suggestions":["a"]}`, []string{}},
		{"missing status", `{"suggestions":["a"]}`, []string{}},
		{"unknown shape", `{"status":"success","items":["a"]}`, []string{}},
		{"scalar", `42`, []string{}},
		{"empty", ``, []string{}},
		{"invalid json", `[not json`, []string{}},
		{"skips unusable items", `["", {"title":"no text"}, 3, "ok"]`, []string{"ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(DecodeRemote([]byte(tt.body)))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeRemote(%s) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestRemoteItemForcesRemoteOrigin(t *testing.T) {
	items := DecodeRemote([]byte(`[{"text":"A","origin":"local"}]`))
	if len(items) != 1 {
		t.Fatalf("len = %d", len(items))
	}
	if s := items[0].Suggestion(); s.Origin != "remote" {
		t.Errorf("Origin = %q, want remote", s.Origin)
	}
}
