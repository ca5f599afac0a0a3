// Package resolver maps free-form user messages onto enrolled course
// titles. Stage one is deterministic fuzzy matching over choseong and
// n-grams, stage two queries the abbreviation index semantically, and
// stage three asks the LLM, validating its answer against the actual
// titles so a hallucinated name can never leak through.
package resolver

import (
	"context"
	"strings"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/genai"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/lms"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/match"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/rag"
)

// MatchThreshold is the minimum fuzzy score for a stage-one match.
const MatchThreshold = 0.15

// NameSimilarityThreshold is the minimum embedding similarity for an
// abbreviation-index match to count.
const NameSimilarityThreshold = 0.6

// NameSearcher looks up semantically similar course names in the
// abbreviation index.
type NameSearcher interface {
	Search(ctx context.Context, query string, topN int) ([]rag.CourseNameMatch, error)
}

// llmOutcome tags how the LLM's answer was interpreted.
type llmOutcome int

const (
	outcomeMatched llmOutcome = iota
	outcomeNone
	outcomeUnparseable
)

// CourseResolver resolves course names from chat messages.
type CourseResolver struct {
	generator genai.Generator
	names     NameSearcher
	logger    *logger.Logger
}

// New creates a resolver. generator and names may be nil, dropping the
// LLM and semantic stages respectively.
func New(generator genai.Generator, names NameSearcher, log *logger.Logger) *CourseResolver {
	return &CourseResolver{
		generator: generator,
		names:     names,
		logger:    log.WithModule("resolver"),
	}
}

// Resolve returns the full enrolled title the message refers to, or
// ok=false when the message is not about a specific course. Resolution
// failures are never fatal: any stage error degrades to no match.
func (r *CourseResolver) Resolve(ctx context.Context, message string, courses []lms.CourseRef) (string, bool) {
	if r == nil || strings.TrimSpace(message) == "" || len(courses) == 0 {
		return "", false
	}

	if title, ok := r.resolveFuzzy(message, courses); ok {
		return title, true
	}
	if title, ok := r.resolveNames(ctx, message, courses); ok {
		return title, true
	}
	return r.resolveLLM(ctx, message, courses)
}

// resolveFuzzy matches the message against stripped titles.
func (r *CourseResolver) resolveFuzzy(message string, courses []lms.CourseRef) (string, bool) {
	candidates := make([]string, len(courses))
	for i, c := range courses {
		candidates[i] = stripTitle(c.Title)
	}

	matches := match.FindBestMatches(message, candidates, 1)
	if len(matches) == 0 || matches[0].Score <= MatchThreshold {
		return "", false
	}

	for _, c := range courses {
		if stripTitle(c.Title) == matches[0].Candidate {
			r.logger.WithFields(map[string]any{
				"course": c.Title,
				"score":  matches[0].Score,
			}).Debug("Course resolved by fuzzy match")
			return c.Title, true
		}
	}
	return "", false
}

// resolveNames queries the abbreviation index. The index spans every
// student, so a hit only counts when it maps back into the user's own
// enrollments.
func (r *CourseResolver) resolveNames(ctx context.Context, message string, courses []lms.CourseRef) (string, bool) {
	if r.names == nil {
		return "", false
	}

	matches, err := r.names.Search(ctx, message, 1)
	if err != nil {
		r.logger.WithError(err).Warn("Course name index search failed")
		return "", false
	}
	if len(matches) == 0 || matches[0].Similarity < NameSimilarityThreshold {
		return "", false
	}

	matched := stripTitle(matches[0].OriginalName)
	for _, c := range courses {
		if stripTitle(c.Title) == matched {
			r.logger.WithFields(map[string]any{
				"course":     c.Title,
				"similarity": matches[0].Similarity,
			}).Debug("Course resolved by name index")
			return c.Title, true
		}
	}
	return "", false
}

// resolveLLM asks the generator to name the course, then validates the
// answer. An unparseable answer falls through to a containment check
// over the message itself.
func (r *CourseResolver) resolveLLM(ctx context.Context, message string, courses []lms.CourseRef) (string, bool) {
	outcome := outcomeUnparseable

	if r.generator != nil && r.generator.IsEnabled() {
		lines := make([]string, len(courses))
		for i, c := range courses {
			lines[i] = stripTitle(c.Title) + " (교수: " + c.Professor + ")"
		}

		result, err := r.generator.Generate(ctx, genai.CourseResolverPrompt(message, lines))
		if err != nil {
			r.logger.WithError(err).Warn("LLM course resolution failed")
		} else {
			var title string
			title, outcome = r.interpretAnswer(result.Text, courses)
			if outcome == outcomeMatched {
				return title, true
			}
			if outcome == outcomeNone {
				return "", false
			}
		}
	}

	// The LLM was unavailable or answered something that maps to no
	// title. Fall back to literal containment against the message.
	for _, c := range courses {
		stripped := stripTitle(c.Title)
		if stripped != "" && strings.Contains(message, stripped) {
			return c.Title, true
		}
	}
	return "", false
}

// interpretAnswer validates the LLM's answer against enrolled titles.
// The answer is accepted only when it and a stripped title contain one
// another as prefix in either direction.
func (r *CourseResolver) interpretAnswer(answer string, courses []lms.CourseRef) (string, llmOutcome) {
	answer = strings.TrimSpace(answer)
	answer = strings.Trim(answer, `"'`)

	if answer == "" {
		return "", outcomeUnparseable
	}
	if strings.Contains(answer, "없음") {
		return "", outcomeNone
	}

	for _, c := range courses {
		stripped := stripTitle(c.Title)
		if stripped == "" {
			continue
		}
		if strings.HasPrefix(stripped, answer) || strings.HasPrefix(answer, stripped) {
			r.logger.WithField("course", c.Title).Debug("Course resolved by LLM")
			return c.Title, outcomeMatched
		}
	}
	return "", outcomeUnparseable
}

// stripTitle cuts a title at its first parenthesis and trims the rest.
// "자료구조 (00분반)" becomes "자료구조".
func stripTitle(title string) string {
	before, _, _ := strings.Cut(title, "(")
	return strings.TrimSpace(before)
}
