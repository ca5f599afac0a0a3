// Package match provides fuzzy string matching for Korean course names.
// Abbreviations like "데베실" keep the initial consonant of each syllable
// while dropping the rest, so choseong overlap is the dominant signal;
// n-gram overlap and length ratio catch near-literal partial matches.
package match

import (
	"sort"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/hangul"
)

// Signal weights. Choseong matching dominates; the rest are tie-breakers.
const (
	weightInitial = 0.6
	weightBigram  = 0.15
	weightTrigram = 0.15
	weightLength  = 0.1

	// Bonus applied when both initial sequences have the same length.
	sameLengthBonus  = 1.0
	diffLengthBonus  = 0.8
	exactInitialsMul = 1.5
)

// Match pairs a candidate string with its similarity score.
type Match struct {
	Candidate string
	Score     float64
}

// CalculateSimilarity returns a blended similarity score in [0, 1].
func CalculateSimilarity(query, target string) float64 {
	initialSim := initialSimilarity(query, target)
	if initialSim == 1.0 {
		initialSim *= exactInitialsMul
	}

	score := weightInitial*initialSim +
		weightBigram*ngramSimilarity(query, target, 2) +
		weightTrigram*ngramSimilarity(query, target, 3) +
		weightLength*lengthRatio(query, target)

	return min(1.0, score)
}

// FindBestMatches scores query against every candidate and returns the
// topK matches sorted by score descending. topK <= 0 returns all matches.
func FindBestMatches(query string, candidates []string, topK int) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, Match{Candidate: c, Score: CalculateSimilarity(query, c)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// initialSimilarity compares choseong sequences: shared unique symbols over
// the longer sequence, weighted up when the sequences have equal length.
func initialSimilarity(query, target string) float64 {
	queryInitials := []rune(hangul.Initials(query))
	targetInitials := []rune(hangul.Initials(target))

	maxLen := max(len(queryInitials), len(targetInitials))
	if maxLen == 0 {
		return 0
	}

	bonus := diffLengthBonus
	if len(queryInitials) == len(targetInitials) {
		bonus = sameLengthBonus
	}

	seen := make(map[rune]bool, len(queryInitials))
	for _, r := range queryInitials {
		seen[r] = true
	}
	shared := make(map[rune]bool)
	for _, r := range targetInitials {
		if seen[r] {
			shared[r] = true
		}
	}

	return float64(len(shared)) / float64(maxLen) * bonus
}

// ngramSimilarity is the shared-unique-window ratio for windows of size n.
// Strings shorter than the window yield 0.
func ngramSimilarity(query, target string, n int) float64 {
	queryGrams := ngrams(query, n)
	targetGrams := ngrams(target, n)
	if len(queryGrams) == 0 || len(targetGrams) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(queryGrams))
	for _, g := range queryGrams {
		seen[g] = true
	}
	shared := make(map[string]bool)
	for _, g := range targetGrams {
		if seen[g] {
			shared[g] = true
		}
	}

	return float64(len(shared)) / float64(max(len(queryGrams), len(targetGrams)))
}

func ngrams(text string, n int) []string {
	runes := []rune(text)
	if len(runes) < n {
		return nil
	}
	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

func lengthRatio(query, target string) float64 {
	qLen := len([]rune(query))
	tLen := len([]rune(target))
	maxLen := max(qLen, tLen)
	if maxLen == 0 {
		return 0
	}
	return float64(min(qLen, tLen)) / float64(maxLen)
}
