package etl

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chunk"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/lms"
)

var testOwner = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("kangnam.student.test"))

func chunksOfType(chunks []chunk.Chunk, t chunk.Type) []chunk.Chunk {
	var out []chunk.Chunk
	for _, c := range chunks {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func TestGenerateCourseInfo(t *testing.T) {
	t.Parallel()

	course := lms.Course{Title: "운영체제", Professor: "홍길동", Description: "OS 기초"}
	chunks := Generate(testOwner, course)

	info := chunksOfType(chunks, chunk.TypeCourseInfo)
	require.Len(t, info, 1)
	assert.Equal(t, "기본정보", info[0].Week)
	assert.Equal(t, "과목명: 운영체제\n교수: 홍길동\n설명: OS 기초", info[0].Content)
}

func TestGenerateActivityChunkSkipsBlankActivities(t *testing.T) {
	t.Parallel()

	course := lms.Course{
		Title: "운영체제",
		Weeks: []lms.Week{
			{Title: "1주차", Ordinal: 1, Activities: []string{"A", "", "  ", "B"}},
		},
	}
	chunks := Generate(testOwner, course)

	acts := chunksOfType(chunks, chunk.TypeActivity)
	require.Len(t, acts, 1)
	assert.Equal(t, "1주차 수업 활동은 A, B입니다.", acts[0].Content)
}

func TestGenerateNoActivityChunkWhenAllBlank(t *testing.T) {
	t.Parallel()

	course := lms.Course{
		Title: "운영체제",
		Weeks: []lms.Week{{Title: "1주차", Ordinal: 1, Activities: []string{"", "  "}}},
	}
	chunks := Generate(testOwner, course)

	assert.Empty(t, chunksOfType(chunks, chunk.TypeActivity))
}

func TestGenerateAssignmentTitlePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		activities []string
		want       string
	}{
		{
			name:       "keyword activity preferred",
			activities: []string{"강의 영상", "중간 리포트 제출"},
			want:       "중간 리포트 제출",
		},
		{
			name:       "first non-blank fallback",
			activities: []string{"", "강의 영상", "실습 자료"},
			want:       "강의 영상",
		},
		{
			name:       "week title fallback",
			activities: nil,
			want:       "4주차",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			week := lms.Week{
				Title:      "4주차",
				Ordinal:    4,
				Activities: tt.activities,
				Assignment: &lms.AssignmentStatus{Submitted: "제출 안 함", Deadline: "2025-04-10 23:59"},
			}
			chunks := Generate(testOwner, lms.Course{Title: "운영체제", Weeks: []lms.Week{week}})

			assigns := chunksOfType(chunks, chunk.TypeAssignment)
			require.Len(t, assigns, 1)
			assert.Equal(t, tt.want, assigns[0].Metadata["assignment_title"])
		})
	}
}

func TestGenerateAssignmentStatusTemplates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      *lms.AssignmentStatus
		wantContent string
		wantValue   string
	}{
		{
			name:        "not submitted",
			status:      &lms.AssignmentStatus{Submitted: "제출 안 함", Deadline: "2025-04-10 23:59"},
			wantContent: "'과제 제출' 과제가 아직 제출되지 않았습니다. 마감일은 2025-04-10 23:59까지입니다.",
			wantValue:   "잊지 말고 제출해주세요",
		},
		{
			name:        "submitted",
			status:      &lms.AssignmentStatus{Submitted: "제출 완료", Deadline: "2025-04-10 23:59"},
			wantContent: "'과제 제출' 과제는 '제출 완료' 상태이며, 마감일은 2025-04-10 23:59였습니다.",
			wantValue:   "잘 하셨습니다",
		},
		{
			name:        "scrape error",
			status:      &lms.AssignmentStatus{Status: "error", Message: "테이블 없음"},
			wantContent: "'과제 제출' 과제 정보를 가져오는 중 오류가 발생했습니다: 테이블 없음",
			wantValue:   "활동 내용을 참고해주세요",
		},
		{
			name:        "other status",
			status:      &lms.AssignmentStatus{Submitted: "채점 완료", Deadline: "2025-04-10 23:59"},
			wantContent: "'과제 제출' 과제는 '채점 완료' 상태입니다. 마감일은 2025-04-10 23:59였습니다.",
			wantValue:   "'채점 완료' 상태이며",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			week := lms.Week{
				Title:      "4주차",
				Ordinal:    4,
				Activities: []string{"과제 제출"},
				Assignment: tt.status,
			}
			chunks := Generate(testOwner, lms.Course{Title: "운영체제", Weeks: []lms.Week{week}})

			assigns := chunksOfType(chunks, chunk.TypeAssignment)
			require.Len(t, assigns, 1)
			assert.Equal(t, tt.wantContent, assigns[0].Content)
			assert.Contains(t, assigns[0].Value, tt.wantValue)
		})
	}
}

func TestGenerateVideoDedupeByTitle(t *testing.T) {
	t.Parallel()

	course := lms.Course{
		Title: "운영체제",
		Videos: []lms.Video{
			{Title: "1차시", Period: "2025-03-04 ~ 2025-03-18", StartDate: "2025-03-04", EndDate: "2025-03-18"},
			{Title: "1차시", Period: "2025-03-05 ~ 2025-03-19"},
			{Title: "2차시", Period: "2025-03-11 ~ 2025-03-25"},
		},
	}
	chunks := Generate(testOwner, course)

	videos := chunksOfType(chunks, chunk.TypeVideoLecture)
	require.Len(t, videos, 2)
	assert.Contains(t, videos[0].Content, "1차시")
	assert.Contains(t, videos[1].Content, "2차시")
}

func TestGenerateVideoMissingDates(t *testing.T) {
	t.Parallel()

	course := lms.Course{
		Title:  "운영체제",
		Videos: []lms.Video{{Title: "1차시"}},
	}
	chunks := Generate(testOwner, course)

	videos := chunksOfType(chunks, chunk.TypeVideoLecture)
	require.Len(t, videos, 1)
	assert.Contains(t, videos[0].Content, "기간 정보 없음")
	assert.Contains(t, videos[0].Value, "정보 없음부터 정보 없음까지")
	assert.Equal(t, "정보 없음", videos[0].Metadata["late_date"])
}

func TestGenerateAttendanceTemplates(t *testing.T) {
	t.Parallel()

	course := lms.Course{
		Title: "운영체제",
		Attendance: []lms.RawAttendance{
			{Week: 1, Status: "출석"},
			{Week: 2, Status: "결석"},
			{Week: 3, Status: "-"},
		},
	}
	chunks := Generate(testOwner, course)

	atts := chunksOfType(chunks, chunk.TypeAttendanceSummary)
	require.Len(t, atts, 3)
	assert.Equal(t, "운영체제 강의의 1주차 출석 상태는 '출석'입니다.", atts[0].Value)
	assert.Contains(t, atts[1].Value, "결석 기록이 있습니다")
	assert.Contains(t, atts[2].Value, "아직 업데이트되지 않았거나 수업 전입니다")
}

func TestGenerateNeverEmitsEmptyContent(t *testing.T) {
	t.Parallel()

	course := lms.Course{
		Title: "운영체제",
		Weeks: []lms.Week{
			{Title: "1주차", Ordinal: 1},
			{Title: "2주차", Ordinal: 2, Activities: []string{" "}},
		},
		Notices: []lms.RawNotice{{Title: "공지", Link: "/n"}},
	}
	chunks := Generate(testOwner, course)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c.Content))
	}
}

func TestGenerateStableIDs(t *testing.T) {
	t.Parallel()

	course := lms.Course{
		Title:   "운영체제",
		Weeks:   []lms.Week{{Title: "1주차", Ordinal: 1, Activities: []string{"강의"}}},
		Notices: []lms.RawNotice{{Title: "공지"}},
	}

	first := Generate(testOwner, course)
	second := Generate(testOwner, course)
	require.Equal(t, first, second)

	seen := make(map[string]struct{})
	for _, c := range first {
		assert.NotEmpty(t, c.ID)
		_, dup := seen[c.ID]
		assert.False(t, dup, "duplicate chunk id %s", c.ID)
		seen[c.ID] = struct{}{}
	}
}
