package rag

import "sort"

// filterSources selects the citations worth showing. A negative answer
// gets none: a correct "no information" result must never display
// misleading sources. Otherwise candidates must clear an adaptive
// threshold relative to the best rerank score, and at most maxSources
// survive, ordered by relevance.
func filterSources(candidates []Candidate, foundInformation bool) []Citation {
	if !foundInformation || len(candidates) == 0 {
		return []Citation{}
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rerank > ranked[j].Rerank
	})

	threshold := 0.70 * ranked[0].Rerank
	if threshold < minRelevance {
		threshold = minRelevance
	}

	citations := make([]Citation, 0, maxSources)
	for _, c := range ranked {
		if c.Rerank < threshold {
			continue
		}
		citations = append(citations, Citation{
			Source:    c.Source,
			Page:      c.Page,
			Relevance: c.Rerank,
		})
		if len(citations) == maxSources {
			break
		}
	}
	return citations
}
