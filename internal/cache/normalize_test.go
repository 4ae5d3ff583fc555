package cache

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n ", ""},
		{"trim", "  北京第二外国语学院有哪些专业  ", "北京第二外国语学院有哪些专业"},
		{"chinese punctuation", "北京第二外国语学院有哪些专业？", "北京第二外国语学院有哪些专业"},
		{"latin punctuation", "What majors, exactly?!", "what majors exactly"},
		{"case fold", "GPA Requirement", "gpa requirement"},
		{"collapse spaces", "how   do\t\tI apply", "how do i apply"},
		{"brackets and quotes", "【招生】“本科”（2024）", "招生本科2024"},
		{"trailing punctuation leaves no space", "hello ?", "hello"},
		{"punctuation only", "？？？", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	pairs := [][2]string{
		{"北京第二外国语学院有哪些专业？", "北京第二外国语学院有哪些专业"},
		{"  Hello World!  ", "hello   world"},
		{"学费多少，住宿呢？", "学费多少住宿呢"},
	}
	for _, p := range pairs {
		if Normalize(p[0]) != Normalize(p[1]) {
			t.Errorf("Normalize(%q) != Normalize(%q)", p[0], p[1])
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"What, IS this?", "北京 二外 ！", "", "a  b  c"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
