package ingest

// Segment is one unit of ingestible text with its provenance.
type Segment struct {
	Source string
	Page   int
	Seq    int
	Text   string
}

// Result reports the outcome of one Ingest call. IDs holds the assigned
// record ids for stored segments, in input order.
type Result struct {
	Stored int      `json:"stored"`
	Failed int      `json:"failed"`
	IDs    []string `json:"ids"`
}

// attemptState tracks a batch through its retry lifecycle.
type attemptState int

const (
	statePending attemptState = iota
	stateAttempting
	stateSucceeded
	stateRetryScheduled
	stateFailed
)

func (s attemptState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateAttempting:
		return "attempting"
	case stateSucceeded:
		return "succeeded"
	case stateRetryScheduled:
		return "retry_scheduled"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
