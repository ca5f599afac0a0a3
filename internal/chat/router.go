package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chunk"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/genai"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/lms"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/rag"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/stringutil"
)

// SearchLimit is how many chunks retrieval feeds into the prompt.
const SearchLimit = 5

// Searcher retrieves per-student lecture chunks for a query.
type Searcher interface {
	Search(ctx context.Context, query string, owner uuid.UUID, topN int) ([]rag.ScoredChunk, error)
}

// Resolver maps a free-form message to one of the user's course titles.
type Resolver interface {
	Resolve(ctx context.Context, message string, courses []lms.CourseRef) (string, bool)
}

// Router runs a chat message through the staged flow: greeting check,
// course resolution, retrieval, flow decision and response generation.
type Router struct {
	generator genai.Generator
	searcher  Searcher
	resolver  Resolver
	logger    *logger.Logger
	now       func() time.Time
}

// NewRouter builds a Router. generator may be nil to run without an
// LLM, in which case generated flows return an error response.
func NewRouter(generator genai.Generator, searcher Searcher, resolver Resolver, log *logger.Logger) *Router {
	return &Router{
		generator: generator,
		searcher:  searcher,
		resolver:  resolver,
		logger:    log.WithModule("chat"),
		now:       time.Now,
	}
}

// Handle answers one chat message for the given user session.
// It never returns an error: failures surface as an error-flow Reply.
func (r *Router) Handle(ctx context.Context, message string, user lms.UserContext) Reply {
	state := newState(strings.TrimSpace(message), user)

	state = r.greetingCheck(state)
	if state.done {
		r.logger.WithFields(map[string]any{"flow": state.flow}).Debug("greeting short-circuit")
		return state.reply()
	}

	r.logger.WithFields(map[string]any{"message": stringutil.Truncate(state.message, 80)}).Debug("chat message received")

	state = r.resolveCourse(ctx, state)
	state = r.search(ctx, state)
	state = r.decideFlow(state)

	state, err := r.respond(ctx, state)
	if err != nil {
		// The raw error stays in the logs; users get the generic apology.
		r.logger.WithError(err).Error("chat response failed")
		return Reply{
			Response:    errorResponse,
			CurrentFlow: FlowError,
		}
	}
	return state.reply()
}

// greetingCheck short-circuits greetings to a canned response so they
// never touch retrieval or the LLM.
func (r *Router) greetingCheck(state State) State {
	lowered := strings.ToLower(state.message)
	for _, g := range greetingResponses {
		if strings.Contains(lowered, strings.ToLower(g.Keyword)) {
			return state.withReply(g.Response, FlowGeneral)
		}
	}
	return state
}

func (r *Router) resolveCourse(ctx context.Context, state State) State {
	if r.resolver == nil || len(state.user.Courses) == 0 {
		return state
	}
	course, ok := r.resolver.Resolve(ctx, state.message, state.user.Courses)
	if !ok {
		return state
	}
	r.logger.WithFields(map[string]any{"course": course}).Debug("course resolved")
	return state.withCourse(course)
}

// search retrieves the owner's chunks. With a resolved course the
// query goes through the LLM optimizer; otherwise the raw message is
// the query. When a course was named but nothing is indexed for it,
// the personal flow is forced with a minimal synthesized context so
// the answer still acknowledges the course.
func (r *Router) search(ctx context.Context, state State) State {
	if r.searcher == nil {
		return state
	}

	query := state.message
	if state.course != "" {
		var usage *genai.TokenUsage
		query, usage = r.optimizeQuery(ctx, state)
		if usage != nil {
			state = state.addUsage(*usage)
		}
	}
	owner := chunk.OwnerKey(state.user.Username)

	chunks, err := r.searcher.Search(ctx, query, owner, SearchLimit)
	if err != nil {
		r.logger.WithError(err).Warn("chunk search failed")
		chunks = nil
	}

	if len(chunks) == 0 {
		if state.course == "" {
			return state
		}
		synthesized := fmt.Sprintf(
			"사용자가 '%s' 과목에 대해 질문했습니다. 이 과목에 대한 정보가 데이터베이스에 충분하지 않지만, 최대한 도움을 주세요.",
			state.course)
		return state.withSearch(nil, synthesized, true)
	}

	plain := make([]chunk.Chunk, len(chunks))
	for i, sc := range chunks {
		plain[i] = sc.Chunk
	}
	return state.withSearch(chunks, genai.FormatContext(plain, r.now()), false)
}

// optimizeQuery asks the LLM to rewrite the message into a retrieval
// query. Any failure falls back to the course title.
func (r *Router) optimizeQuery(ctx context.Context, state State) (string, *genai.TokenUsage) {
	if r.generator == nil || !r.generator.IsEnabled() {
		return state.course, nil
	}
	res, err := r.generator.Generate(ctx, genai.QueryOptimizerPrompt(state.course, state.message))
	if err != nil {
		r.logger.WithError(err).Warn("query optimization failed")
		return state.course, nil
	}
	query := strings.Trim(strings.TrimSpace(res.Text), `"'`)
	if query == "" {
		return state.course, &res.Usage
	}
	return query, &res.Usage
}

// decideFlow picks the response path. Course questions about a known
// course go personal, academic policy questions go common, and a
// substantial retrieved context keeps the message personal even
// without a course keyword.
func (r *Router) decideFlow(state State) State {
	if state.course != "" && (containsAny(state.message, courseKeywords) || state.forcePersonal) {
		return state.withFlow(FlowPersonal)
	}
	if containsAny(state.message, schoolKeywords) {
		return state.withFlow(FlowCommon)
	}
	if utf8.RuneCountInString(state.contextStr) > 50 {
		return state.withFlow(FlowPersonal)
	}
	return state.withFlow(FlowGeneral)
}

func (r *Router) respond(ctx context.Context, state State) (State, error) {
	if state.flow == FlowPersonal && state.contextStr == "" {
		return state.withReply(noPersonalDataResponse, FlowPersonal), nil
	}

	prompt := r.buildPrompt(state)
	if r.generator == nil || !r.generator.IsEnabled() {
		return state, fmt.Errorf("no generator configured")
	}
	res, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return state, err
	}
	return state.addUsage(res.Usage).withReply(res.Text, state.flow), nil
}

func (r *Router) buildPrompt(state State) string {
	coursesText := formatCourses(state.user.Courses)

	var b strings.Builder
	switch state.flow {
	case FlowPersonal:
		b.WriteString(genai.PersonalSystemPrompt(r.now()))
		b.WriteString("\n\n")
		b.WriteString(state.contextStr)
	case FlowCommon:
		b.WriteString(genai.CommonSystemPrompt)
	default:
		b.WriteString(genai.GeneralSystemPrompt)
	}
	if coursesText != "" {
		b.WriteString("\n\n")
		b.WriteString(coursesText)
	}
	b.WriteString("\n\n사용자 메시지: ")
	b.WriteString(state.message)
	return b.String()
}

func formatCourses(courses []lms.CourseRef) string {
	if len(courses) == 0 {
		return ""
	}
	parts := make([]string, 0, len(courses))
	for _, c := range courses {
		prof := c.Professor
		if prof == "" {
			prof = "N/A"
		}
		parts = append(parts, fmt.Sprintf("%s (교수: %s)", c.Title, prof))
	}
	return "현재 수강 중인 과목 목록: " + strings.Join(parts, ", ")
}

func containsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}
