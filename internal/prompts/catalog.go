package prompts

import (
	"fmt"

	"fundscope/internal/config"
)

// Built-in analysis types. The set is closed; anything else must come
// from the custom template registry.
const (
	AnalysisProgram      = "program-analysis"
	AnalysisBias         = "bias-analysis"
	AnalysisLandscape    = "landscape-analysis"
	AnalysisCounterpoint = "counterpoints"
	AnalysisSummary      = "summary"
)

// promptPair holds the two framing variants for one analysis type.
type promptPair struct {
	first        string
	continuation string
}

// Catalog resolves (analysis type, is-first-message) to a system prompt.
// It is constructed from injected configuration so deployments and tests
// can extend the built-in set with custom templates.
type Catalog struct {
	builtin map[string]promptPair
	custom  map[string]config.AnalysisTemplate
}

// NewCatalog builds a catalog from the built-in analysis types plus the
// given custom templates. A custom template whose analysis type collides
// with a built-in type is ignored; built-ins win.
func NewCatalog(templates []config.AnalysisTemplate) *Catalog {
	c := &Catalog{
		builtin: builtinPrompts(),
		custom:  make(map[string]config.AnalysisTemplate),
	}

	for _, t := range templates {
		if _, exists := c.builtin[t.AnalysisType]; exists {
			continue
		}
		c.custom[t.AnalysisType] = t
	}

	return c
}

// SystemPrompt returns the system prompt for the analysis type. First
// turns get the full framing prompt; later turns get the continuation
// variant. Custom templates only define a first-turn prompt, so their
// continuation turns use the generic continuation prompt.
func (c *Catalog) SystemPrompt(analysisType string, isFirst bool) (string, error) {
	if pair, ok := c.builtin[analysisType]; ok {
		if isFirst {
			return pair.first, nil
		}
		return pair.continuation, nil
	}

	if t, ok := c.custom[analysisType]; ok {
		if isFirst {
			return t.Prompt, nil
		}
		return genericContinuation, nil
	}

	return "", fmt.Errorf("unrecognized analysis type %q", analysisType)
}

// BuiltinTypes returns the closed set of built-in analysis types.
func (c *Catalog) BuiltinTypes() []string {
	types := make([]string, 0, len(c.builtin))
	for t := range c.builtin {
		types = append(types, t)
	}
	return types
}

const genericContinuation = `Continue the analysis conversation. Stay grounded in the subject's documents and context already provided. Answer the funder's follow-up questions directly, cite which document supports each claim, and say plainly when the documents do not contain an answer.`

func builtinPrompts() map[string]promptPair {
	return map[string]promptPair{
		AnalysisProgram: {
			first: `You are an analyst helping a philanthropic funder evaluate a grantee's programs. Using the subject's documents provided in the conversation, assess the program model: who it serves, the theory of change, delivery approach, staffing, and evidence of outcomes. Separate what the documents demonstrate from what they merely assert. Flag missing information a diligent funder would ask for. Be specific and cite the source document for every material claim.`,
			continuation: `Continue the program analysis. Build on your earlier assessment, stay grounded in the subject's documents, and cite sources for new claims. If the funder asks about something the documents do not cover, say so rather than speculating.`,
		},
		AnalysisBias: {
			first: `You are an analyst helping a philanthropic funder surface potential biases in their evaluation of a grantee. Review the subject's documents and the funder's framing for founder-halo effects, selection bias in reported outcomes, survivorship bias in case studies, geographic or demographic blind spots, and metrics chosen to flatter. For each bias you identify, explain the evidence, its likely direction, and a concrete question the funder could ask to test it.`,
			continuation: `Continue the bias analysis. Keep examining the documents and the funder's questions for unexamined assumptions, and keep recommendations concrete and testable.`,
		},
		AnalysisLandscape: {
			first: `You are an analyst helping a philanthropic funder understand the field a grantee operates in. From the subject's documents, map the landscape: comparable organizations, the niche this subject occupies, major funders active in the space, and where the field is over- or under-supplied. Distinguish claims made by the subject about its own positioning from independently verifiable facts, and note where the documents leave the landscape unclear.`,
			continuation: `Continue the landscape analysis. Deepen the comparative picture as the funder asks follow-ups, staying grounded in the documents and explicit about the limits of what they show.`,
		},
		AnalysisCounterpoint: {
			first: `You are an analyst helping a philanthropic funder stress-test the case for a grant. Take the strongest skeptical position the subject's documents permit: where is the evidence thinnest, which risks are underplayed, what would a critic of this organization say, and what would have to be true for this grant to fail? Be rigorous, not contrarian; every counterpoint must be anchored in something in the documents or a specific, material absence from them.`,
			continuation: `Continue the counterpoint analysis. Keep pressure-testing the funder's thinking with document-grounded skepticism, and acknowledge when a concern has been adequately answered.`,
		},
		AnalysisSummary: {
			first: `You are an analyst helping a philanthropic funder get oriented on a grantee. Summarize the subject from its documents: mission, programs, scale, budget and funding mix, leadership, track record, and stated plans. Lead with what matters most for a funding decision. Keep the summary faithful to the documents, note contradictions between them, and list the most important open questions the documents leave unanswered.`,
			continuation: `Continue helping the funder with this summary conversation. Answer follow-ups from the documents already provided, and keep answers concise and decision-oriented.`,
		},
	}
}
