package rag

const (
	retrievalWeight = 0.6
	modelWeight     = 0.4
)

// retrievalConfidence is the mean raw similarity of the selected
// candidates, 0 when nothing was selected.
func retrievalConfidence(candidates []Candidate) float64 {
	if len(candidates) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candidates {
		sum += c.Similarity
	}
	return clampUnit(sum / float64(len(candidates)))
}

// fuseConfidence combines retrieval confidence with the model's 1-10
// self-assessment. A negative answer (foundInformation false) is floored
// at negativeAnswerFloor: correctly identifying an absence of
// information is rewarded, and low retrieval similarity must not
// suppress it.
func fuseConfidence(retrieval, selfConfidence float64, foundInformation bool) float64 {
	final := clampUnit(retrievalWeight*retrieval + modelWeight*(selfConfidence/10))
	if !foundInformation && final < negativeAnswerFloor {
		final = negativeAnswerFloor
	}
	return final
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
