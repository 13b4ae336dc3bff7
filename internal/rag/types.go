package rag

// AskRequest is a question against one tenant's corpus.
type AskRequest struct {
	Tenant   string `json:"tenant"`
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// Candidate is a stored segment scored against a question. Similarity is
// the raw vector score; Rerank adds content boosts and drives ordering
// and citation filtering.
type Candidate struct {
	ID         string
	Source     string
	Page       int
	Seq        int
	Text       string
	Similarity float64
	Rerank     float64
}

// Citation points a reader at one supporting segment.
type Citation struct {
	Source    string  `json:"source"`
	Page      int     `json:"page"`
	Relevance float64 `json:"relevance"`
}

// AnswerResult is the outcome of one Ask call.
type AnswerResult struct {
	Answer              string     `json:"answer"`
	Confidence          float64    `json:"confidence"`
	ConfidenceLabel     string     `json:"confidence_label"`
	RetrievalConfidence float64    `json:"retrieval_confidence"`
	Intent              string     `json:"intent"`
	FoundInformation    bool       `json:"found_information"`
	Citations           []Citation `json:"citations"`
}

const (
	// defaultK and maxK bound how many segments back an answer.
	defaultK = 5
	maxK     = 20

	highConfidenceFloor   = 0.70
	mediumConfidenceFloor = 0.30

	// negativeAnswerFloor rewards a correct "no information" answer;
	// low retrieval similarity would otherwise suppress it.
	negativeAnswerFloor = 0.85

	maxSources   = 3
	minRelevance = 0.50
)

// noInformationAnswer is what the engine reports when retrieval comes
// back empty. It matches the phrasing the generation prompt requires.
const noInformationAnswer = "The provided documents do not contain information on this question."

func confidenceLabel(confidence float64) string {
	switch {
	case confidence >= highConfidenceFloor:
		return "High"
	case confidence >= mediumConfidenceFloor:
		return "Medium"
	default:
		return "Low"
	}
}
