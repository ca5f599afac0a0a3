package chat

import (
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/genai"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/lms"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/rag"
)

// Flow names which response path handled the message.
type Flow string

const (
	FlowPersonal Flow = "personal"
	FlowCommon   Flow = "common"
	FlowGeneral  Flow = "general"
	FlowError    Flow = "error"
)

// State carries a message through the router's stages. All transitions
// return a new value, so no stage can observe a half-applied update.
type State struct {
	message       string
	user          lms.UserContext
	flow          Flow
	response      string
	chunks        []rag.ScoredChunk
	usage         *genai.TokenUsage
	contextStr    string
	course        string
	forcePersonal bool
	done          bool
}

func newState(message string, user lms.UserContext) State {
	return State{message: message, user: user}
}

// withReply finishes the state with a final response.
func (s State) withReply(response string, flow Flow) State {
	s.response = response
	s.flow = flow
	s.done = true
	return s
}

// withCourse records the resolved course title.
func (s State) withCourse(course string) State {
	s.course = course
	return s
}

// withSearch records the retrieval outcome.
func (s State) withSearch(chunks []rag.ScoredChunk, contextStr string, forcePersonal bool) State {
	s.chunks = chunks
	s.contextStr = contextStr
	s.forcePersonal = forcePersonal
	return s
}

// withFlow records the decided flow without finishing.
func (s State) withFlow(flow Flow) State {
	s.flow = flow
	return s
}

// addUsage accumulates token accounting across the turn's LLM calls,
// so the reply reports the optimizer call too.
func (s State) addUsage(usage genai.TokenUsage) State {
	total := genai.TokenUsage{}
	if s.usage != nil {
		total = *s.usage
	}
	total.Add(usage)
	s.usage = &total
	return s
}

// Reply is the router's output.
type Reply struct {
	Response     string            `json:"response"`
	CurrentFlow  Flow              `json:"current_flow"`
	Chunks       []rag.ScoredChunk `json:"rag_chunks"`
	Usage        *genai.TokenUsage `json:"token_usage,omitempty"`
	EstimatedUSD *float64          `json:"estimated_cost_usd,omitempty"`
}

func (s State) reply() Reply {
	r := Reply{
		Response:    s.response,
		CurrentFlow: s.flow,
		Chunks:      s.chunks,
		Usage:       s.usage,
	}
	if s.usage != nil {
		cost := s.usage.EstimatedCostUSD()
		r.EstimatedUSD = &cost
	}
	return r
}
