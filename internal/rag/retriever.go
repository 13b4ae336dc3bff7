package rag

import (
	"context"
	"sort"

	"corpusqa/internal/query"
	"corpusqa/internal/tenant"
)

// Searcher is the slice of the tenant manager the retriever needs.
type Searcher interface {
	Query(ctx context.Context, h *tenant.Handle, embedding []float32, k int) ([]tenant.Scored, error)
}

// retrieve runs an oversampled similarity search, reranks with content
// boosts, drops table-of-contents segments, and truncates to k. For
// comparative questions the selected set is forced to span at least two
// sources whenever the tenant has them.
func retrieve(ctx context.Context, store Searcher, h *tenant.Handle, embedding []float32, intent query.Intent, k int) ([]Candidate, error) {
	oversample := k * 3
	if intent == query.Comparative {
		oversample = k * 4
	}

	scored, err := store.Query(ctx, h, embedding, oversample)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(scored))
	for _, s := range scored {
		if isTableOfContents(s.Text) {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:         s.ID,
			Source:     s.Source,
			Page:       s.Page,
			Seq:        s.Seq,
			Text:       s.Text,
			Similarity: s.Similarity,
			Rerank:     rerankScore(s.Similarity, s.Text),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Rerank > candidates[j].Rerank
	})

	if intent == query.Comparative {
		candidates = diversify(candidates, k)
	}
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// diversify reorders candidates so the top k span at least two sources
// when two or more sources are present, trading strict rank order for
// coverage. Candidates must already be sorted by rerank score.
func diversify(candidates []Candidate, k int) []Candidate {
	if len(candidates) <= 1 || k < 2 {
		return candidates
	}

	selected := candidates
	if len(selected) > k {
		selected = selected[:k]
	}

	sources := make(map[string]struct{})
	for _, c := range selected {
		sources[c.Source] = struct{}{}
	}
	if len(sources) >= 2 {
		return candidates
	}

	// All selected candidates share one source. Pull in the best
	// candidate from any other source, replacing the weakest selection.
	only := selected[0].Source
	for i := len(selected); i < len(candidates); i++ {
		if candidates[i].Source == only {
			continue
		}
		result := make([]Candidate, len(candidates))
		copy(result, candidates)
		alternate := result[i]
		copy(result[len(selected):i+1], result[len(selected)-1:i])
		result[len(selected)-1] = alternate
		return result
	}

	// Only one source exists in the tenant.
	return candidates
}
