package suggestion

import (
	"qa-session-go/internal/model"
	"reflect"
	"testing"
)

func local(texts ...string) []model.Suggestion { return LocalFromTexts(texts) }

func remote(texts ...string) []RemoteItem {
	out := make([]RemoteItem, len(texts))
	for i, t := range texts {
		out[i] = RemoteItem{Text: t}
	}
	return out
}

func TestMerge_DropsDuplicateOfLocal(t *testing.T) {
	got := Merge(local("A"), remote("A", "B"))
	want := []model.Suggestion{
		{Text: "A", Origin: model.OriginLocal},
		{Text: "B", Origin: model.OriginRemote},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		local  []model.Suggestion
		remote []RemoteItem
		want   []string
	}{
		{"both empty", nil, nil, []string{}},
		{"local only", local("x", "y"), nil, []string{"x", "y"}},
		{"remote only", nil, remote("r1", "r2"), []string{"r1", "r2"}},
		{"remote internal duplicates", local("x"), remote("r", "r", "x"), []string{"x", "r"}},
		{"raw text comparison", local("学费多少？"), remote("学费多少", "学费多少？"), []string{"学费多少？", "学费多少"}},
		{"local duplicates kept", local("x", "x"), remote("x"), []string{"x", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(tt.local, tt.remote)
			got := make([]string, len(merged))
			for i, s := range merged {
				got[i] = s.Text
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() texts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_LocalPrefixPreserved(t *testing.T) {
	l := []model.Suggestion{
		{Text: "one", Origin: model.OriginLocal},
		{Text: "two", Origin: model.OriginLocal},
	}
	merged := Merge(l, remote("two", "three", "one"))
	if len(merged) < len(l) {
		t.Fatalf("len(merged) = %d < len(local) = %d", len(merged), len(l))
	}
	if !reflect.DeepEqual(merged[:len(l)], l) {
		t.Errorf("local prefix = %v, want %v", merged[:len(l)], l)
	}
	for _, s := range merged[len(l):] {
		if s.Origin != model.OriginRemote {
			t.Errorf("suffix item %q origin = %s", s.Text, s.Origin)
		}
	}
}
