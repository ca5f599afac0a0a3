// Package chunk defines the retrieval unit produced by the ETL pipeline
// and stored in the vector database.
package chunk

import "github.com/google/uuid"

// Type classifies what a chunk describes.
type Type string

const (
	TypeCourseInfo        Type = "course_info"
	TypeWeekInfo          Type = "week_info"
	TypeActivity          Type = "activity"
	TypeAssignment        Type = "assignment"
	TypeNotice            Type = "notice"
	TypeVideoLecture      Type = "video_lecture"
	TypeAttendanceSummary Type = "attendance_summary"
	TypeContent           Type = "content"
)

// Chunk is one embeddable unit of course knowledge. Content is the
// factual text that gets embedded; Value is the conversational phrasing
// surfaced in prompt context. Metadata is flat string pairs, matching
// what the vector store can filter on.
type Chunk struct {
	ID       string            `json:"id"`
	Course   string            `json:"course"`
	Week     string            `json:"week,omitempty"`
	Type     Type              `json:"chunk_type"`
	Content  string            `json:"content"`
	Value    string            `json:"value,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// EmbeddingText returns the text submitted to the embedding model.
// Content is canonical for every chunk type.
func (c Chunk) EmbeddingText() string { return c.Content }

// PromptText returns the phrasing used when the chunk is injected into
// an LLM prompt, preferring the conversational form.
func (c Chunk) PromptText() string {
	if c.Value != "" {
		return c.Value
	}
	return c.Content
}

// OwnerKey derives the stable per-student namespace key. The same
// student id always maps to the same owner, so re-runs replace rather
// than duplicate.
func OwnerKey(studentID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte("kangnam.student."+studentID))
}

// NewID derives a stable chunk id from the owner key and the chunk's
// identifying fields, so re-running the pipeline over unchanged data
// yields the same ids.
func NewID(owner uuid.UUID, course, week string, chunkType Type, content string) string {
	return uuid.NewSHA1(owner, []byte(string(chunkType)+"|"+course+"|"+week+"|"+content)).String()
}
