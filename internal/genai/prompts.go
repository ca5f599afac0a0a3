package genai

import (
	"fmt"
	"strings"
	"time"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chunk"
)

// CourseResolverPrompt asks the model to map a free-form question onto
// one of the user's enrolled courses. The model must answer with the
// exact course name or "없음".
func CourseResolverPrompt(query string, courses []string) string {
	var b strings.Builder
	b.WriteString("당신은 강남대학교 학생의 질문에서 과목명을 찾아주는 도우미입니다.\n\n")
	b.WriteString("사용자가 수강 중인 과목 목록:\n")
	for _, c := range courses {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("\n사용자 질문: \"")
	b.WriteString(query)
	b.WriteString("\"\n\n")
	b.WriteString("위 질문이 특정 과목에 대한 것이라면 해당 과목의 정확한 이름만 답하세요.\n")
	b.WriteString("다음과 같은 경우를 모두 고려하세요:\n")
	b.WriteString("1. 과목명이 그대로 언급된 경우\n")
	b.WriteString("2. 과목명의 줄임말이 사용된 경우 (예: 데이터베이스실습 -> 데베실)\n")
	b.WriteString("3. 과목명의 일부만 언급된 경우\n")
	b.WriteString("4. 영어 약어가 사용된 경우 (예: 인공지능 -> AI)\n")
	b.WriteString("5. 초성만 사용된 경우\n\n")
	b.WriteString("특정 과목에 대한 질문이 아니거나 목록에 없는 과목이라면 \"없음\"이라고만 답하세요.\n")
	b.WriteString("답변은 과목명 또는 \"없음\"만 출력하세요. 다른 설명은 하지 마세요.")
	return b.String()
}

// QueryOptimizerPrompt asks the model to produce a short search query
// suited for vector retrieval.
func QueryOptimizerPrompt(course, message string) string {
	return fmt.Sprintf(`사용자의 질문을 강의 자료 검색에 적합한 짧은 검색어로 바꿔주세요.

과목명: %s
사용자 질문: %s

검색어는 과목명과 핵심 키워드만 포함하세요.
예시: "AIoT소프트웨어 다음주 과제"

검색어만 출력하세요.`, course, message)
}

// PersonalSystemPrompt returns the system prompt for questions answered
// from the student's own course data.
func PersonalSystemPrompt(now time.Time) string {
	weekStart, weekEnd := currentWeekRange(now)
	return fmt.Sprintf(`당신은 강남대학교 학생을 위한 학습 도우미입니다.
제공된 강의 정보를 바탕으로 학생의 질문에 답변하세요.

규칙:
1. 제공된 정보 안에서만 답변하세요.
2. 정보에 없는 내용은 모른다고 솔직하게 답하세요.
3. 과제 마감일이나 일정은 날짜를 명확하게 알려주세요.
4. 친절하고 간결하게 답변하세요.

현재 시간 정보:
- 오늘 날짜: %s
- 이번주 기간: %s ~ %s
- 현재 시각: %s`,
		now.Format("2006-01-02"),
		weekStart.Format("2006-01-02"),
		weekEnd.Format("2006-01-02"),
		now.Format("15:04"))
}

// CommonSystemPrompt returns the system prompt for department and
// academic policy questions.
const CommonSystemPrompt = `당신은 강남대학교 소프트웨어응용학부 학사 정보 챗봇입니다.
다음 주제에 대해 정확하고 공식적인 어조로 답변하세요:
- 학사 제도
- 졸업 요건
- 수강신청 방법
- 학과 공지사항
- 교수 정보
- 시설 정보

확실하지 않은 정보는 교학팀에 문의하도록 안내하세요.`

// GeneralSystemPrompt returns the system prompt for small talk and
// everything outside the academic domain.
const GeneralSystemPrompt = `당신은 강남대학교 학생들과 대화하는 친근한 챗봇입니다.
학업 외의 기타 잡담에도 편하게 응답하세요.
답변은 친근하고 짧게 하세요.`

// FormatContext renders retrieved chunks into the Korean context block
// appended to the personal prompt. Chunks whose date falls in the
// current week are marked.
func FormatContext(chunks []chunk.Chunk, now time.Time) string {
	if len(chunks) == 0 {
		return ""
	}
	weekStart, weekEnd := currentWeekRange(now)

	var b strings.Builder
	b.WriteString("다음은 관련된 강의 정보입니다:\n\n")
	for _, c := range chunks {
		b.WriteString(fmt.Sprintf("강좌: %s\n", c.Course))
		if c.Week != "" {
			b.WriteString(fmt.Sprintf("주차: %s\n", c.Week))
		}
		b.WriteString(fmt.Sprintf("내용: %s\n", c.PromptText()))

		if date := c.Metadata["date"]; date != "" {
			b.WriteString(fmt.Sprintf("날짜: %s\n", date))
			if d, err := time.Parse("2006-01-02", date); err == nil {
				if !d.Before(weekStart) && !d.After(weekEnd) {
					b.WriteString("※ 이번주 해당\n")
				}
			}
		}
		if due := firstNonEmpty(c.Metadata["due_date"], c.Metadata["deadline"]); due != "" {
			b.WriteString(fmt.Sprintf("제출기한: %s\n", due))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// currentWeekRange returns the Monday and Sunday of the week containing t.
func currentWeekRange(t time.Time) (time.Time, time.Time) {
	day := truncateToDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
