package lorem

import (
	"context"
	"strings"
	"testing"

	domainllm "fundscope/internal/domain/services/llm"
)

func TestSupportsModel(t *testing.T) {
	p := NewProvider()

	tests := []struct {
		model string
		want  bool
	}{
		{"lorem-fast", true},
		{"lorem-slow", true},
		{"lorem-test", true},
		{"claude-sonnet-4-5-20250929", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := p.SupportsModel(tt.model); got != tt.want {
			t.Errorf("SupportsModel(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestStreamResponse(t *testing.T) {
	p := NewProvider()

	events, err := p.StreamResponse(context.Background(), &domainllm.GenerateRequest{
		Model:     "lorem-test",
		MaxTokens: 20,
		Messages: []domainllm.Message{
			{Role: "user", Parts: nil},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	var text strings.Builder
	var metadata *domainllm.StreamMetadata
	for event := range events {
		switch {
		case event.Error != nil:
			t.Fatalf("unexpected stream error: %v", event.Error)
		case event.TextDelta != nil:
			if metadata != nil {
				t.Fatal("delta received after terminal metadata")
			}
			text.WriteString(*event.TextDelta)
		case event.Metadata != nil:
			metadata = event.Metadata
		}
	}

	if metadata == nil {
		t.Fatal("stream ended without terminal metadata")
	}
	if strings.TrimSpace(text.String()) == "" {
		t.Error("stream produced no text")
	}
	if metadata.StopReason != "end_turn" {
		t.Errorf("StopReason = %q, want end_turn", metadata.StopReason)
	}
	if metadata.OutputTokens <= 0 {
		t.Errorf("OutputTokens = %d, want > 0", metadata.OutputTokens)
	}
	if mock, ok := metadata.ResponseMetadata["mock"].(bool); !ok || !mock {
		t.Errorf("ResponseMetadata = %+v, want mock:true", metadata.ResponseMetadata)
	}
}

func TestStreamResponseRejectsForeignModel(t *testing.T) {
	p := NewProvider()

	if _, err := p.StreamResponse(context.Background(), &domainllm.GenerateRequest{Model: "gpt-4"}); err == nil {
		t.Error("foreign model should be rejected")
	}
}
