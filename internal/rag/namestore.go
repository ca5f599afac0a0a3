package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/etl"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
)

// CourseNameCollectionName is the chromem collection holding course
// name abbreviation documents.
const CourseNameCollectionName = "course_names"

// CourseNameMatch is a semantic match against the abbreviation index.
type CourseNameMatch struct {
	OriginalName   string
	NormalizedName string
	ShortNames     []string
	Similarity     float32
}

// CourseNameStore indexes course titles together with their generated
// abbreviations so queries like "데베실 과제" can be mapped back to
// "데이터베이스실습". Documents are keyed on the original title, so
// re-upserting after a refresh overwrites rather than duplicates.
type CourseNameStore struct {
	collection *chromem.Collection
	logger     *logger.Logger
	mu         sync.RWMutex
}

// NewCourseNameStore opens (or creates) the course name collection on
// an existing chromem database.
func NewCourseNameStore(db *chromem.DB, embeddingFunc chromem.EmbeddingFunc, log *logger.Logger) (*CourseNameStore, error) {
	if db == nil {
		return nil, fmt.Errorf("chromem database required")
	}

	collection, err := db.GetOrCreateCollection(CourseNameCollectionName, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("get/create course name collection: %w", err)
	}

	return &CourseNameStore{
		collection: collection,
		logger:     log.WithModule("rag"),
	}, nil
}

// Upsert indexes each course title with its normalized form and
// generated short names. A title that fails to embed is skipped.
func (s *CourseNameStore) Upsert(ctx context.Context, courses []string) error {
	if s == nil || s.collection == nil || len(courses) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]chromem.Document, 0, len(courses))
	for _, original := range courses {
		original = strings.TrimSpace(original)
		if original == "" {
			continue
		}

		normalized, shortNames := etl.NormalizeCourseName(original)

		content := normalized
		if shortNames != "" {
			content = normalized + "/" + shortNames
		}

		docs = append(docs, chromem.Document{
			ID:      uuid.NewSHA1(uuid.NameSpaceDNS, []byte("kangnam.course."+original)).String(),
			Content: content,
			Metadata: map[string]string{
				"original_name":   original,
				"normalized_name": normalized,
				"short_names":     shortNames,
			},
		})
	}
	if len(docs) == 0 {
		return nil
	}

	if err := s.collection.AddDocuments(ctx, docs, embedConcurrency); err != nil {
		return fmt.Errorf("upsert course names: %w", err)
	}

	s.logger.WithField("courses", len(docs)).Info("Course name index updated")
	return nil
}

// Search returns the course names most similar to the query.
func (s *CourseNameStore) Search(ctx context.Context, query string, topN int) ([]CourseNameMatch, error) {
	if s == nil || s.collection == nil || strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if topN <= 0 {
		topN = 3
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nResults := min(topN, s.collection.Count())
	if nResults <= 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, query, nResults, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query course names: %w", err)
	}

	matches := make([]CourseNameMatch, 0, len(results))
	for _, r := range results {
		m := CourseNameMatch{
			OriginalName:   r.Metadata["original_name"],
			NormalizedName: r.Metadata["normalized_name"],
			Similarity:     r.Similarity,
		}
		if sn := r.Metadata["short_names"]; sn != "" {
			m.ShortNames = strings.Split(sn, "/")
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Count returns the number of indexed course names.
func (s *CourseNameStore) Count() int {
	if s == nil || s.collection == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count()
}
