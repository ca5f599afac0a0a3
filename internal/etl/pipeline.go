package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chunk"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/lms"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/sliceutil"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/storage"
)

// Pipeline stages, reported through the status callback in order.
const (
	StageScraping    = "scraping"
	StageProcessing  = "processing"
	StageVectorizing = "vectorizing"
	StageStoring     = "storing"
	StageCompleted   = "completed"
	StageFailed      = "failed"
)

// Status is one progress update during a refresh.
type Status struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`
}

// StatusFunc receives progress updates. May be nil.
type StatusFunc func(Status)

// Scraper fetches the student's courses from the LMS.
type Scraper interface {
	ScrapeAll(ctx context.Context, username, password string) (lms.UserContext, []lms.RawCourse, error)
}

// ChunkIndexer replaces an owner's chunks in the retrieval indexes.
type ChunkIndexer interface {
	Replace(ctx context.Context, owner uuid.UUID, chunks []chunk.Chunk) (int, error)
}

// NameIndexer upserts course titles into the abbreviation index.
type NameIndexer interface {
	Upsert(ctx context.Context, courses []string) error
}

// RefreshResult summarizes one completed refresh.
type RefreshResult struct {
	StudentID string `json:"student_id"`
	Courses   int    `json:"courses"`
	Chunks    int    `json:"chunks"`
	Stored    int    `json:"stored"`
	FromCache bool   `json:"from_cache"`
}

// snapshot is the raw scrape payload cached between refreshes.
type snapshot struct {
	User    lms.UserContext `json:"user"`
	Courses []lms.RawCourse `json:"courses"`
}

// Pipeline drives the scrape, preprocess, chunk, and index steps of a
// refresh. Concurrent refreshes for the same student collapse into one
// run through singleflight.
type Pipeline struct {
	scraper Scraper
	store   *storage.DB
	indexer ChunkIndexer
	names   NameIndexer
	logger  *logger.Logger
	group   singleflight.Group
}

// NewPipeline wires the refresh pipeline. names may be nil.
func NewPipeline(scraper Scraper, store *storage.DB, indexer ChunkIndexer, names NameIndexer, log *logger.Logger) *Pipeline {
	return &Pipeline{
		scraper: scraper,
		store:   store,
		indexer: indexer,
		names:   names,
		logger:  log.WithModule("etl"),
	}
}

// Refresh runs the full pipeline for one student: scrape (or reuse the
// cached snapshot), preprocess, chunk, and replace the student's
// retrieval indexes. Concurrent calls for the same student share one
// execution and its result.
func (p *Pipeline) Refresh(ctx context.Context, studentID, password string, status StatusFunc) (*RefreshResult, error) {
	v, err, shared := p.group.Do(studentID, func() (any, error) {
		return p.refresh(ctx, studentID, password, status)
	})
	if err != nil {
		report(status, Status{Stage: StageFailed, Percent: 0, Message: err.Error()})
		return nil, err
	}
	result := v.(*RefreshResult)
	if shared {
		p.logger.WithUser(studentID).Debug("Refresh deduplicated onto in-flight run")
	}
	return result, nil
}

func (p *Pipeline) refresh(ctx context.Context, studentID, password string, status StatusFunc) (*RefreshResult, error) {
	log := p.logger.WithUser(studentID)

	report(status, Status{Stage: StageScraping, Percent: 10, Message: "강의 정보를 수집하고 있습니다."})

	snap, fromCache, err := p.loadOrScrape(ctx, studentID, password)
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]any{
		"courses":    len(snap.Courses),
		"from_cache": fromCache,
	}).Info("Scrape data ready")

	report(status, Status{Stage: StageProcessing, Percent: 40, Message: "수집한 데이터를 정리하고 있습니다."})

	courses := PreprocessAll(snap.Courses)
	owner := chunk.OwnerKey(studentID)
	chunks := GenerateAll(owner, courses)

	report(status, Status{Stage: StageVectorizing, Percent: 70, Message: "강의 정보를 임베딩하고 있습니다."})

	stored, err := p.indexer.Replace(ctx, owner, chunks)
	if err != nil {
		return nil, fmt.Errorf("replace chunks: %w", err)
	}

	report(status, Status{Stage: StageStoring, Percent: 90, Message: "검색 인덱스를 갱신하고 있습니다."})

	if p.names != nil {
		titles := make([]string, 0, len(courses))
		for _, c := range courses {
			if strings.TrimSpace(c.Title) != "" {
				titles = append(titles, c.Title)
			}
		}
		// Retake sections can repeat a title across semesters.
		titles = sliceutil.Deduplicate(titles, func(t string) string { return t })
		if err := p.names.Upsert(ctx, titles); err != nil {
			// Abbreviation lookup degrades, retrieval still works.
			log.WithError(err).Warn("Course name index update failed")
		}
	}

	report(status, Status{Stage: StageCompleted, Percent: 100, Message: "완료되었습니다."})

	result := &RefreshResult{
		StudentID: studentID,
		Courses:   len(courses),
		Chunks:    len(chunks),
		Stored:    stored,
		FromCache: fromCache,
	}
	log.WithFields(map[string]any{
		"chunks": result.Chunks,
		"stored": result.Stored,
	}).Info("Refresh completed")
	return result, nil
}

// loadOrScrape returns the cached snapshot when fresh, otherwise logs
// in and scrapes the LMS, caching the result and the user profile.
func (p *Pipeline) loadOrScrape(ctx context.Context, studentID, password string) (*snapshot, bool, error) {
	if payload, err := p.store.GetScrapeSnapshot(ctx, studentID); err == nil {
		var snap snapshot
		if err := json.Unmarshal(payload, &snap); err == nil {
			return &snap, true, nil
		}
		p.logger.WithUser(studentID).Warn("Cached snapshot is corrupt, rescraping")
	}

	user, rawCourses, err := p.scraper.ScrapeAll(ctx, studentID, password)
	if err != nil {
		return nil, false, err
	}

	snap := &snapshot{User: user, Courses: rawCourses}
	if payload, err := json.Marshal(snap); err == nil {
		if err := p.store.SaveScrapeSnapshot(ctx, studentID, payload); err != nil {
			p.logger.WithError(err).WithUser(studentID).Warn("Snapshot cache write failed")
		}
	}
	p.saveProfile(ctx, studentID, user)

	return snap, false, nil
}

func (p *Pipeline) saveProfile(ctx context.Context, studentID string, user lms.UserContext) {
	coursesJSON, err := json.Marshal(user.Courses)
	if err != nil {
		return
	}
	profile := &storage.UserProfile{
		StudentID:   studentID,
		Name:        user.Name,
		Department:  user.Department,
		CoursesJSON: string(coursesJSON),
	}
	if err := p.store.SaveUserProfile(ctx, profile); err != nil {
		p.logger.WithError(err).WithUser(studentID).Warn("User profile save failed")
	}
}

// UserContext loads the cached user profile for chat requests.
func (p *Pipeline) UserContext(ctx context.Context, studentID string) (lms.UserContext, error) {
	profile, err := p.store.GetUserProfile(ctx, studentID)
	if err != nil {
		return lms.UserContext{}, err
	}

	user := lms.UserContext{
		Username:   profile.StudentID,
		Name:       profile.Name,
		Department: profile.Department,
	}
	if profile.CoursesJSON != "" {
		if err := json.Unmarshal([]byte(profile.CoursesJSON), &user.Courses); err != nil {
			return lms.UserContext{}, fmt.Errorf("decode cached courses: %w", err)
		}
	}
	return user, nil
}

func report(fn StatusFunc, s Status) {
	if fn != nil {
		fn(s)
	}
}
