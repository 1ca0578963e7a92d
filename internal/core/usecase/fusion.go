package usecase

import (
	"sort"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

// fuseEvidence merges vector hits and graph facts into one ranked evidence
// set. Scores are normalized onto [0,1] per source (vector similarity is
// clamped; graph facts decay as 1/(1+hops)). A graph fact sharing a source
// chunk with a vector hit is folded into it, keeping the higher of the two
// scores and both origins in provenance. The sort is stable, so ties keep
// the original per-source rank (vector list first, then graph list).
func fuseEvidence(hits []domain.VectorHit, facts []domain.GraphFact, limit int) []domain.RetrievalResult {
	results := make([]domain.RetrievalResult, 0, len(hits)+len(facts))
	byChunkRef := make(map[string]int, len(hits))

	for _, hit := range hits {
		results = append(results, domain.RetrievalResult{
			Origins:  []domain.RetrievalOrigin{domain.OriginVector},
			Score:    clampUnit(hit.Score),
			Text:     hit.Text,
			ChunkRef: hit.ChunkRef,
			Filename: hit.Filename,
		})
		byChunkRef[hit.ChunkRef] = len(results) - 1
	}

	for i := range facts {
		fact := facts[i]
		score := hopScore(fact.Hops)

		if idx, ok := sharedChunk(byChunkRef, fact.SourceChunks); ok {
			merged := &results[idx]
			merged.Origins = append(merged.Origins, domain.OriginGraph)
			merged.Triple = &facts[i].Triple
			if score > merged.Score {
				merged.Score = score
			}
			continue
		}

		results = append(results, domain.RetrievalResult{
			Origins: []domain.RetrievalOrigin{domain.OriginGraph},
			Score:   score,
			Triple:  &facts[i].Triple,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// hopScore maps hop distance onto (0,1]: seeds' direct relations score 0.5,
// decaying with distance.
func hopScore(hops int) float64 {
	if hops < 0 {
		hops = 0
	}
	return 1.0 / float64(1+hops)
}

func sharedChunk(byChunkRef map[string]int, sourceChunks []string) (int, bool) {
	for _, ref := range sourceChunks {
		if idx, ok := byChunkRef[ref]; ok {
			return idx, true
		}
	}
	return 0, false
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
