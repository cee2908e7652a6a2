package streaming

import "strings"

// WordSmoother rebuffers provider deltas so text is released to clients
// word-by-word instead of at whatever granularity the provider chose.
// Content is never altered: concatenating everything released (plus the
// final Flush) always equals the concatenated input.
type WordSmoother struct {
	buf strings.Builder
}

// NewWordSmoother creates an empty smoother.
func NewWordSmoother() *WordSmoother {
	return &WordSmoother{}
}

// Feed appends a delta and returns the text that can be released now:
// everything up to and including the last whitespace boundary. Text
// after the boundary stays buffered until the word completes.
func (ws *WordSmoother) Feed(delta string) string {
	ws.buf.WriteString(delta)

	buffered := ws.buf.String()
	boundary := strings.LastIndexAny(buffered, " \t\n")
	if boundary < 0 {
		return ""
	}

	release := buffered[:boundary+1]
	remainder := buffered[boundary+1:]

	ws.buf.Reset()
	ws.buf.WriteString(remainder)

	return release
}

// Flush returns any buffered partial word and resets the smoother.
// Called once when the provider stream ends.
func (ws *WordSmoother) Flush() string {
	remainder := ws.buf.String()
	ws.buf.Reset()
	return remainder
}
