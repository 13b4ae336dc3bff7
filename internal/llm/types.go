package llm

// GenerateResult is the structured outcome of one generation call.
type GenerateResult struct {
	// Answer is the generated answer text with scoring lines removed.
	Answer string

	// SelfConfidence is the model's self-assessed confidence on a 1-10 scale.
	SelfConfidence float64

	// FoundInformation is false when the model states the context lacks
	// the requested information. Downstream confidence fusion and source
	// filtering branch on this flag, never on the answer prose.
	FoundInformation bool
}
