package prompts

import (
	"strings"
	"testing"

	chatModels "fundscope/internal/domain/models/chat"
)

func userMessage(text string) *chatModels.Message {
	return &chatModels.Message{
		ID:    "msg-1",
		Role:  chatModels.RoleUser,
		Parts: []chatModels.Part{chatModels.TextPart(text)},
	}
}

func TestKeywordEnhancementExactMatch(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantEnhanced bool
	}{
		{"program trigger", "Analyze this program", true},
		{"bias trigger", "Identify potential biases", true},
		{"landscape trigger", "Map the funding landscape", true},
		{"counterpoint trigger", "What could go wrong?", true},
		{"summary trigger", "Summarize the key points", true},
		{"wrong case", "analyze this program", false},
		{"leading words", "Please Analyze this program", false},
		{"trailing words", "Analyze this program today", false},
		{"unrelated text", "Tell me about their budget", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := userMessage(tt.text)
			result := ProcessMessageForKeywordEnhancement(msg)

			if result.WasEnhanced != tt.wantEnhanced {
				t.Fatalf("WasEnhanced = %v, want %v", result.WasEnhanced, tt.wantEnhanced)
			}

			if !tt.wantEnhanced {
				if result.Enhanced != msg {
					t.Error("non-matching message should pass through as-is")
				}
				return
			}

			if result.Enhanced.Text() == tt.text {
				t.Error("enhanced message should carry the expanded prompt, not the trigger phrase")
			}
			if result.Enhanced.ID != msg.ID || result.Enhanced.Role != msg.Role {
				t.Error("enhancement must preserve message identity")
			}
		})
	}
}

func TestKeywordEnhancementPreservesOriginal(t *testing.T) {
	msg := userMessage("Analyze this program")
	result := ProcessMessageForKeywordEnhancement(msg)

	if result.Original != msg {
		t.Fatal("Original must be the caller's message")
	}
	if got := result.Original.Text(); got != "Analyze this program" {
		t.Errorf("original text mutated: %q", got)
	}
	if !result.WasEnhanced {
		t.Fatal("expected enhancement")
	}
}

func TestKeywordEnhancementJoinsParts(t *testing.T) {
	// Text() joins text parts with spaces and trims, so a split trigger
	// still matches
	msg := &chatModels.Message{
		ID:   "msg-2",
		Role: chatModels.RoleUser,
		Parts: []chatModels.Part{
			chatModels.TextPart("Analyze this"),
			chatModels.TextPart("program"),
		},
	}

	result := ProcessMessageForKeywordEnhancement(msg)
	if !result.WasEnhanced {
		t.Error("split trigger phrase should still match after joining parts")
	}
}

func TestTriggerPhrasesComplete(t *testing.T) {
	phrases := TriggerPhrases()
	if len(phrases) != 5 {
		t.Fatalf("len = %d, want 5", len(phrases))
	}
	for _, phrase := range phrases {
		body := triggerPhrases[phrase]
		if strings.TrimSpace(body) == "" {
			t.Errorf("trigger %q has empty body", phrase)
		}
	}
}
