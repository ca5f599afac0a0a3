package rag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/crawlab-team/bm25"
	"github.com/google/uuid"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chunk"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
)

// KeywordIndex provides per-owner BM25 keyword search over chunk
// content. Each owner gets an independent index that is rebuilt
// whenever the owner's chunks are replaced.
type KeywordIndex struct {
	owners map[uuid.UUID]*ownerIndex
	logger *logger.Logger
	mu     sync.RWMutex
}

// ownerIndex holds one owner's BM25 model and the chunks behind it.
type ownerIndex struct {
	okapi  *bm25.BM25Okapi
	chunks []chunk.Chunk
}

// KeywordResult is a BM25 hit with its score and 1-indexed rank.
type KeywordResult struct {
	Chunk chunk.Chunk
	Score float64
	Rank  int
}

// NewKeywordIndex creates an empty keyword index.
func NewKeywordIndex(log *logger.Logger) *KeywordIndex {
	return &KeywordIndex{
		owners: make(map[uuid.UUID]*ownerIndex),
		logger: log.WithModule("rag"),
	}
}

// Replace rebuilds the owner's index from the given chunks. BM25 needs
// the whole corpus for IDF, so incremental updates are not supported.
func (idx *KeywordIndex) Replace(owner uuid.UUID, chunks []chunk.Chunk) error {
	if idx == nil {
		return nil
	}

	kept := make([]chunk.Chunk, 0, len(chunks))
	corpus := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		kept = append(kept, c)
		corpus = append(corpus, c.Content)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(corpus) == 0 {
		delete(idx.owners, owner)
		return nil
	}

	// k1=1.5, b=0.75 are the standard BM25 parameters.
	okapi, err := bm25.NewBM25Okapi(corpus, tokenizeKorean, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("build BM25 index: %w", err)
	}

	idx.owners[owner] = &ownerIndex{okapi: okapi, chunks: kept}
	idx.logger.WithFields(map[string]any{
		"owner": owner.String(),
		"docs":  len(corpus),
	}).Info("BM25 index rebuilt")
	return nil
}

// Delete drops the owner's index.
func (idx *KeywordIndex) Delete(owner uuid.UUID) {
	if idx == nil {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.owners, owner)
}

// Search runs BM25 scoring for the owner and returns every matched
// document sorted by score descending. Matched documents can score
// negative on tiny corpora where common terms carry negative IDF, so
// only exact zero (no term overlap) is filtered out.
func (idx *KeywordIndex) Search(owner uuid.UUID, query string, topN int) ([]KeywordResult, error) {
	if idx == nil || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	oi, ok := idx.owners[owner]
	if !ok {
		return nil, nil
	}

	tokens := tokenizeKorean(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores, err := oi.okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring: %w", err)
	}

	results := make([]KeywordResult, 0, len(scores))
	for i, score := range scores {
		if score == 0 {
			continue
		}
		results = append(results, KeywordResult{Chunk: oi.chunks[i], Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// Count returns the number of indexed chunks for the owner.
func (idx *KeywordIndex) Count(owner uuid.UUID) int {
	if idx == nil {
		return 0
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if oi, ok := idx.owners[owner]; ok {
		return len(oi.chunks)
	}
	return 0
}

// tokenizeKorean tokenizes mixed Korean/English text: lowercase, split
// words on non-alphanumerics, and emit overlapping bigrams for CJK
// runs since Korean compounds carry no spaces between meaningful
// units. Single characters are emitted only for isolated CJK runes;
// inside a run they would be so frequent that their IDF drowns out the
// discriminating bigrams.
func tokenizeKorean(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var word strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case isCJK(r):
			if word.Len() > 0 {
				tokens = append(tokens, word.String())
				word.Reset()
			}
			prevCJK := i > 0 && isCJK(runes[i-1])
			nextCJK := i+1 < len(runes) && isCJK(runes[i+1])
			switch {
			case nextCJK:
				tokens = append(tokens, string(r)+string(runes[i+1]))
			case !prevCJK:
				tokens = append(tokens, string(r))
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			if word.Len() > 0 {
				tokens = append(tokens, word.String())
				word.Reset()
			}
		}
	}
	if word.Len() > 0 {
		tokens = append(tokens, word.String())
	}
	return tokens
}

// isCJK reports whether the rune belongs to a script written without
// word spacing between units.
func isCJK(r rune) bool {
	return unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r)
}
