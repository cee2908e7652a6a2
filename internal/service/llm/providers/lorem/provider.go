package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	domainllm "fundscope/internal/domain/services/llm"
)

// Provider is a mock text-generation provider that produces lorem ipsum.
// Used for development and tests without requiring real API keys.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-test"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// getStreamDelay returns the delay between words based on the model name.
// - lorem-slow: 2 words/second (500ms per word)
// - lorem-fast: 30 words/second (33ms per word)
// - lorem-test: no delay, for unit tests
// - default: 10 words/second
func getStreamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond // 2 words/second
	}
	if strings.Contains(model, "fast") {
		return 33 * time.Millisecond // 30 words/second
	}
	if strings.Contains(model, "test") {
		return 0
	}
	return 100 * time.Millisecond // default: 10 words/second
}

// StreamResponse generates a streaming lorem ipsum response.
// Speed varies based on model name (lorem-slow, lorem-fast, lorem-test).
func (p *Provider) StreamResponse(ctx context.Context, req *domainllm.GenerateRequest) (<-chan domainllm.StreamEvent, error) {
	// Validate model
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}

	// Create buffered channel
	eventChan := make(chan domainllm.StreamEvent, 10)

	// Start streaming goroutine
	go func() {
		defer close(eventChan)

		text := p.generateTextWords(maxTokens)
		words := strings.Fields(text)
		delay := getStreamDelay(req.Model)

		wordsSent := 0
		for _, word := range words {
			select {
			case <-ctx.Done():
				eventChan <- domainllm.StreamEvent{Error: ctx.Err()}
				return
			default:
			}

			delta := word + " "
			eventChan <- domainllm.StreamEvent{TextDelta: &delta}

			if delay > 0 {
				time.Sleep(delay)
			}
			wordsSent++
		}

		// Send final metadata
		eventChan <- domainllm.StreamEvent{
			Metadata: &domainllm.StreamMetadata{
				Model:        req.Model,
				InputTokens:  p.estimateTokens(req.Messages),
				OutputTokens: wordsSent,
				StopReason:   "end_turn",
				ResponseMetadata: map[string]interface{}{
					"mock":     true,
					"provider": "lorem",
				},
			},
		}
	}()

	return eventChan, nil
}

// generateTextWords generates lorem ipsum text with approximately targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		// Generate sentence with 5-15 words
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")

		wordCount += len(strings.Fields(sentence))

		// Add paragraph break every ~50 words
		if wordCount%50 == 0 {
			sb.WriteString("\n\n")
		}
	}

	return strings.TrimSpace(sb.String())
}

// estimateTokens estimates the token count for a list of messages.
// Uses word count as a rough approximation.
func (p *Provider) estimateTokens(messages []domainllm.Message) int {
	totalWords := 0
	for i := range messages {
		totalWords += len(strings.Fields(messages[i].Text()))
	}
	return totalWords
}
