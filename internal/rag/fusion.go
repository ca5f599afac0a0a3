package rag

import (
	"sort"
)

const (
	// RRFConstant is the k in the reciprocal rank formula 1 / (k + rank).
	// 60 is the standard value.
	RRFConstant = 60

	// DefaultBM25Weight gives keyword search 40% of the fused score,
	// vector search the remaining 60%.
	DefaultBM25Weight = 0.4
)

// fusedChunk accumulates per-source ranks for one chunk during fusion.
type fusedChunk struct {
	chunk      ScoredChunk
	rrfScore   float64
	vectorSim  float32
	hasVector  bool
	bm25Rank   int
	vectorRank int
}

// FuseRRF combines keyword and vector results with Reciprocal Rank
// Fusion: score(d) = Σ w_i / (k + rank_i). Chunks are deduplicated by
// id. The returned Similarity keeps the true vector similarity when
// the chunk appeared in vector results, otherwise the RRF score scaled
// against the best fused score.
func FuseRRF(keywordResults []KeywordResult, vectorResults []ScoredChunk, bm25Weight float64, topN int) []ScoredChunk {
	if bm25Weight < 0 {
		bm25Weight = 0
	}
	if bm25Weight > 1 {
		bm25Weight = 1
	}
	vectorWeight := 1.0 - bm25Weight

	fused := make(map[string]*fusedChunk)

	for i, r := range keywordResults {
		rank := i + 1
		fused[r.Chunk.ID] = &fusedChunk{
			chunk:    ScoredChunk{Chunk: r.Chunk},
			rrfScore: bm25Weight / float64(RRFConstant+rank),
			bm25Rank: rank,
		}
	}

	for i, r := range vectorResults {
		rank := i + 1
		score := vectorWeight / float64(RRFConstant+rank)

		if existing, ok := fused[r.Chunk.ID]; ok {
			existing.rrfScore += score
			existing.vectorSim = r.Similarity
			existing.hasVector = true
			existing.vectorRank = rank
			existing.chunk = r
		} else {
			fused[r.Chunk.ID] = &fusedChunk{
				chunk:      r,
				rrfScore:   score,
				vectorSim:  r.Similarity,
				hasVector:  true,
				vectorRank: rank,
			}
		}
	}

	ordered := make([]*fusedChunk, 0, len(fused))
	for _, f := range fused {
		ordered = append(ordered, f)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].rrfScore > ordered[j].rrfScore
	})

	if topN > 0 && len(ordered) > topN {
		ordered = ordered[:topN]
	}

	var maxScore float64
	if len(ordered) > 0 {
		maxScore = ordered[0].rrfScore
	}

	results := make([]ScoredChunk, len(ordered))
	for i, f := range ordered {
		sim := f.vectorSim
		if !f.hasVector && maxScore > 0 {
			sim = float32(f.rrfScore / maxScore)
		}
		results[i] = ScoredChunk{Chunk: f.chunk.Chunk, Similarity: sim}
	}
	return results
}
