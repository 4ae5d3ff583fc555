package pipeline

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"reasoning then answer", "<深度思考>internal notes</深度思考>\n\n\n\nFinal answer.", "Final answer."},
		{"plain", "  答案  ", "答案"},
		{"multiple blocks", "A<深度思考>x</深度思考>B<深度思考>y</深度思考>C", "ABC"},
		{"multiline block", "<深度思考>line1\nline2\n</深度思考>答案", "答案"},
		{"non greedy", "<深度思考>1</深度思考>keep<深度思考>2</深度思考>", "keep"},
		{"two newlines kept", "a\n\nb", "a\n\nb"},
		{"many newlines collapsed", "a\n\n\n\n\nb\n\n\nc", "a\n\nb\n\nc"},
		{"unterminated marker kept", "<深度思考>dangling", "<深度思考>dangling"},
		{"only reasoning", "<深度思考>x</深度思考>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
