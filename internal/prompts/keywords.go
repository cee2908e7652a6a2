package prompts

import (
	chatModels "fundscope/internal/domain/models/chat"
)

// EnhancementResult reports the outcome of keyword enhancement. Original
// is always the caller's message, untouched; Enhanced is what should be
// sent to the model.
type EnhancementResult struct {
	Original    *chatModels.Message
	Enhanced    *chatModels.Message
	WasEnhanced bool
}

// triggerPhrases maps UI shortcut phrases to the full prompt bodies sent
// to the model in their place. Matching is exact and case-sensitive:
// these are fixed buttons in the client, not natural-language intent
// detection.
var triggerPhrases = map[string]string{
	"Analyze this program": `Walk through this organization's program model end to end: the population served, the intervention, the delivery mechanism, staffing and cost structure, and the outcomes evidence. For each element, state what the documents show, how strong that evidence is, and what a diligent funder should still ask. Finish with the three findings most material to a funding decision.`,

	"Identify potential biases": `Examine the documents and my framing of this organization for biases that could distort a funding decision: founder-halo effects, cherry-picked outcomes, survivorship bias in testimonials, unrepresentative pilots, and metrics chosen to flatter. For each bias, name the evidence, the likely direction of the distortion, and one concrete question that would test it.`,

	"Map the funding landscape": `Map the field this organization operates in: the closest comparable organizations, the niche this one claims, the major funders already active, and the gaps in the field. Distinguish the organization's own claims about its positioning from independently verifiable facts, and tell me where the documents leave the landscape unclear.`,

	"What could go wrong?": `Take the strongest skeptical position the documents permit. Where is the evidence thinnest, which risks does the organization underplay, what would an informed critic say, and what would have to be true for a grant to this organization to fail? Anchor every counterpoint in the documents or a specific, material gap in them.`,

	"Summarize the key points": `Summarize this organization for a funding decision: mission, programs, scale, budget and funding mix, leadership, track record, and plans. Lead with what matters most, flag contradictions between documents, and close with the open questions the documents leave unanswered.`,
}

// ProcessMessageForKeywordEnhancement checks whether the message's text
// exactly matches a trigger phrase and, if so, returns an enhanced copy
// whose parts are replaced with the full prompt body. The original
// message is returned unmodified either way; callers persist the
// original and send the enhanced one to the model.
func ProcessMessageForKeywordEnhancement(msg *chatModels.Message) EnhancementResult {
	text := msg.Text()

	body, ok := triggerPhrases[text]
	if !ok {
		return EnhancementResult{
			Original:    msg,
			Enhanced:    msg,
			WasEnhanced: false,
		}
	}

	enhanced := *msg
	enhanced.Parts = []chatModels.Part{chatModels.TextPart(body)}

	return EnhancementResult{
		Original:    msg,
		Enhanced:    &enhanced,
		WasEnhanced: true,
	}
}

// TriggerPhrases returns the configured shortcut phrases. Exposed for
// clients that render the shortcuts.
func TriggerPhrases() []string {
	phrases := make([]string, 0, len(triggerPhrases))
	for p := range triggerPhrases {
		phrases = append(phrases, p)
	}
	return phrases
}
