package chat

// greetingResponses are canned replies for the most common message
// class, ordered longest-keyword-first so the most specific greeting
// wins. Matching is case-insensitive substring.
var greetingResponses = []struct {
	Keyword  string
	Response string
}{
	{"안녕하세요", "안녕하세요! 강남대학교 챗봇입니다. 무엇을 도와드릴까요?"},
	{"안녕", "안녕하세요! 강남대학교 챗봇입니다. 수업, 과제, 일정 등에 대해 물어보세요."},
	{"반가워", "반갑습니다! 강남대학교 학생을 위한 AI 챗봇입니다."},
	{"hello", "안녕하세요! 강남대학교 AI 챗봇입니다. 어떤 도움이 필요하신가요?"},
	{"hi", "안녕하세요! 영어보다는 한국어로 질문해주시면 더 정확한 답변을 드릴 수 있어요."},
}

// schoolKeywords route department and academic policy questions to the
// common flow.
var schoolKeywords = []string{
	"강남대", "교학팀", "교수", "강의실", "시설",
	"도서관", "졸업", "학점", "수강신청", "장학금",
}

// courseKeywords mark a message as being about coursework, which pulls
// a resolved course into the personal flow.
var courseKeywords = []string{
	"과제", "시험", "수업", "강의", "교재",
	"프로젝트", "일정", "퀴즈", "발표", "점수", "성적",
}

// noPersonalDataResponse is returned when the personal flow has
// nothing retrieved to answer from.
const noPersonalDataResponse = "죄송합니다. 질문과 관련된 개인 정보를 찾을 수 없습니다. 다른 질문을 해보시겠어요?"

// errorResponse is the generic reply for any generation failure. The
// underlying error is never shown to the user.
const errorResponse = "죄송합니다. 요청을 처리하는 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
