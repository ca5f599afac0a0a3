package rag

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chunk"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
)

// HybridSearcher fuses BM25 keyword search with vector search. When
// the owner's keyword index is empty the behavior degrades to
// vector-only search; when the vector store is unavailable it degrades
// to keyword-only.
type HybridSearcher struct {
	store   *VectorStore
	keyword *KeywordIndex
	logger  *logger.Logger
}

// NewHybridSearcher creates a hybrid searcher. Either component may be
// nil; the other is then used alone.
func NewHybridSearcher(store *VectorStore, keyword *KeywordIndex, log *logger.Logger) *HybridSearcher {
	return &HybridSearcher{
		store:   store,
		keyword: keyword,
		logger:  log.WithModule("rag"),
	}
}

// Replace swaps the owner's chunks in both the vector store and the
// keyword index. Returns the number of chunks stored in the vector store.
func (h *HybridSearcher) Replace(ctx context.Context, owner uuid.UUID, chunks []chunk.Chunk) (int, error) {
	if h == nil {
		return 0, nil
	}

	stored, err := h.store.ReplaceAll(ctx, owner, chunks)
	if err != nil {
		return 0, err
	}

	if h.keyword != nil {
		if kerr := h.keyword.Replace(owner, chunks); kerr != nil {
			// Keyword search is an enhancement; vector search still works.
			h.logger.WithError(kerr).WithField("owner", owner.String()).Warn("Keyword index rebuild failed")
		}
	}
	return stored, nil
}

// Delete removes the owner from both indexes.
func (h *HybridSearcher) Delete(ctx context.Context, owner uuid.UUID) (int64, error) {
	if h == nil {
		return 0, nil
	}
	if h.keyword != nil {
		h.keyword.Delete(owner)
	}
	return h.store.DeleteAll(ctx, owner)
}

// Search runs keyword and vector search in parallel and fuses the
// results with RRF.
func (h *HybridSearcher) Search(ctx context.Context, query string, owner uuid.UUID, topN int) ([]ScoredChunk, error) {
	if h == nil {
		return nil, nil
	}
	if topN <= 0 {
		topN = DefaultSearchResults
	}

	// Over-fetch so fusion has enough candidates from each source.
	fetchN := topN * 3

	var (
		keywordResults []KeywordResult
		vectorResults  []ScoredChunk
		keywordErr     error
		vectorErr      error
		wg             sync.WaitGroup
	)

	if h.keyword != nil && h.keyword.Count(owner) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keywordResults, keywordErr = h.keyword.Search(owner, query, fetchN)
		}()
	}

	if h.store != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vectorResults, vectorErr = h.store.Search(ctx, query, owner, fetchN)
		}()
	}

	wg.Wait()

	if keywordErr != nil {
		h.logger.WithError(keywordErr).Warn("BM25 search failed")
	}
	if vectorErr != nil {
		h.logger.WithError(vectorErr).Warn("Vector search failed")
	}
	if vectorErr != nil && keywordErr != nil {
		return nil, vectorErr
	}

	if len(keywordResults) == 0 {
		if len(vectorResults) > topN {
			vectorResults = vectorResults[:topN]
		}
		return vectorResults, nil
	}

	if len(vectorResults) == 0 {
		results := make([]ScoredChunk, 0, min(len(keywordResults), topN))
		for _, r := range keywordResults {
			if len(results) >= topN {
				break
			}
			results = append(results, ScoredChunk{
				Chunk:      r.Chunk,
				Similarity: rankConfidence(r.Rank),
			})
		}
		return results, nil
	}

	fused := FuseRRF(keywordResults, vectorResults, DefaultBM25Weight, topN)

	h.logger.WithFields(map[string]any{
		"keyword_count": len(keywordResults),
		"vector_count":  len(vectorResults),
		"fused_count":   len(fused),
	}).Debug("Hybrid search completed")

	return fused, nil
}

// Store returns the underlying vector store.
func (h *HybridSearcher) Store() *VectorStore {
	if h == nil {
		return nil
	}
	return h.store
}

// rankConfidence converts a BM25 rank into a confidence in (0, 1).
// BM25 scores are unbounded and query dependent, so rank position is
// the only meaningful proxy: rank 1 maps to 0.95, rank 10 to 0.67.
func rankConfidence(rank int) float32 {
	if rank <= 0 {
		return 0
	}
	return float32(1.0 / (1.0 + 0.05*float64(rank)))
}
