package streaming

import (
	"strings"
	"testing"
)

func TestWordSmootherReleasesAtWordBoundaries(t *testing.T) {
	ws := NewWordSmoother()

	if got := ws.Feed("Hel"); got != "" {
		t.Errorf("partial word released: %q", got)
	}
	if got := ws.Feed("lo wor"); got != "Hello " {
		t.Errorf("Feed = %q, want %q", got, "Hello ")
	}
	if got := ws.Feed("ld"); got != "" {
		t.Errorf("partial word released: %q", got)
	}
	if got := ws.Flush(); got != "world" {
		t.Errorf("Flush = %q, want %q", got, "world")
	}
}

func TestWordSmootherPreservesContent(t *testing.T) {
	tests := []struct {
		name   string
		deltas []string
	}{
		{"single chars", []string{"a", "b", " ", "c", "d"}},
		{"whole sentence at once", []string{"The quick brown fox jumps over the lazy dog."}},
		{"mixed whitespace", []string{"line one\nline", " two\ttabbed end"}},
		{"empty deltas", []string{"", "word", "", " next", ""}},
		{"trailing whitespace", []string{"ends with space "}},
		{"only whitespace", []string{"   ", "\n\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWordSmoother()
			var released strings.Builder
			for _, d := range tt.deltas {
				released.WriteString(ws.Feed(d))
			}
			released.WriteString(ws.Flush())

			want := strings.Join(tt.deltas, "")
			if released.String() != want {
				t.Errorf("released %q, want %q", released.String(), want)
			}
		})
	}
}

func TestWordSmootherFlushResets(t *testing.T) {
	ws := NewWordSmoother()
	ws.Feed("partial")
	ws.Flush()

	if got := ws.Flush(); got != "" {
		t.Errorf("second Flush = %q, want empty", got)
	}
}
