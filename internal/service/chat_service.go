package service

import (
	"context"
	"strings"
	"time"

	"finance-chatbot-be/internal/pkg/logger"
	"finance-chatbot-be/internal/repository/memory"
	"finance-chatbot-be/pkg/events"
	"finance-chatbot-be/pkg/flow"
	"finance-chatbot-be/pkg/llm"
	"finance-chatbot-be/pkg/nlu"
	"finance-chatbot-be/pkg/rag/prompt"
	"finance-chatbot-be/pkg/rag/ranker"
	"finance-chatbot-be/pkg/store"
)

// ApologyReply is returned whenever the upstream LLM is unavailable, errors
// out, or the daily call budget is spent.
const ApologyReply = "Sorry, I'm having trouble right now. Please try again."

type IChatService interface {
	// Chat processes one user turn and returns the assistant reply. It never
	// surfaces internal errors to the caller; degraded branches answer with
	// corpus content or the apology line.
	Chat(ctx context.Context, userID, message string) string
}

type chatService struct {
	log       logger.ILogger
	sessions  memory.ISessionRepository
	ranker    *ranker.Ranker
	prompts   *prompt.Builder
	flows     *flow.Engine
	llm       llm.LLMProvider
	publisher *events.Publisher
	usage     *events.UsageTracker
	rankerCfg ranker.Config
	llmTemp   float64
	llmTokens int
}

func NewChatService(
	log logger.ILogger,
	sessions memory.ISessionRepository,
	rk *ranker.Ranker,
	prompts *prompt.Builder,
	flows *flow.Engine,
	llmProvider llm.LLMProvider,
	publisher *events.Publisher,
	usage *events.UsageTracker,
	rankerCfg ranker.Config,
	llmTemp float64,
	llmTokens int,
) IChatService {
	return &chatService{
		log:       log,
		sessions:  sessions,
		ranker:    rk,
		prompts:   prompts,
		flows:     flows,
		llm:       llmProvider,
		publisher: publisher,
		usage:     usage,
		rankerCfg: rankerCfg,
		llmTemp:   llmTemp,
		llmTokens: llmTokens,
	}
}

func (s *chatService) Chat(ctx context.Context, userID, message string) string {
	var reply string
	var branch string
	var category string
	var degraded bool

	s.sessions.Update(userID, func(session *store.Session) {
		reply, branch, category, degraded = s.handleTurn(ctx, session, message)
		session.AppendHistory(message, reply, session.Facts.Topic)
	})

	if err := s.publisher.PublishTurn(events.ChatTurnEvent{
		UserID:     userID,
		Branch:     branch,
		Category:   category,
		Degraded:   degraded,
		OccurredAt: time.Now(),
	}); err != nil {
		s.log.Warn("ChatService", "failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}
	return reply
}

// handleTurn runs the per-turn decision ladder: active flow first, then flow
// start keywords, then corpus auto-answer, then the LLM with retrieved
// context. The session is mutated in place under the repository lock.
func (s *chatService) handleTurn(ctx context.Context, session *store.Session, message string) (reply, branch, category string, degraded bool) {
	fromPostCalc := false
	if session.ActiveFlow != nil {
		result := s.flows.Advance(session, message)
		if result.Handled {
			return result.Reply, events.BranchFlow, "", false
		}
		// Post-calc fallthrough: the flow ended and the turn continues as a
		// normal question. The knowledge base gets first claim on it; a
		// restart happens only when nothing else answers.
		fromPostCalc = true
	}

	if !fromPostCalc && s.flows.ShouldStart(message) {
		return s.flows.Start(session), events.BranchFlow, "", false
	}

	signals := nlu.Extract(message, session.Facts)
	session.MergeFacts(store.Facts{
		Nationality: signals.Nationality,
		Product:     signals.Product,
		SubProduct:  signals.SubProduct,
		Topic:       signals.Topic,
	})

	best, degradedRank := s.ranker.BestMatch(ctx, message, session.Facts, s.rankerCfg.AutoAnswerThreshold)
	if best != nil {
		session.Facts.Topic = best.Entry.Category
		answer := best.Entry.Response.Materialize(session.ApplicantFacts())
		return answer, events.BranchAutoAnswer, best.Entry.Category, degradedRank
	}

	if fromPostCalc && s.flows.WantsRestart(message) {
		return s.flows.Start(session), events.BranchFlow, "", degradedRank
	}

	snippets, _ := s.ranker.TopK(ctx, message, session.Facts, s.rankerCfg.TopK, s.rankerCfg.ContextThreshold)
	if len(snippets) > 0 {
		session.Facts.Topic = snippets[0].Entry.Category
		category = snippets[0].Entry.Category
	}

	if !s.usage.Allow() {
		s.log.Warn("ChatService", "daily LLM call cap reached", map[string]interface{}{"cap": s.usage.Cap()})
		return s.capFallback(session, snippets, degradedRank)
	}

	promptText := s.prompts.Build(session, snippets, message)
	answer, err := s.llm.Generate(ctx, promptText,
		llm.WithTemperature(s.llmTemp),
		llm.WithMaxTokens(s.llmTokens),
	)
	if err != nil {
		s.log.Error("ChatService", "LLM generation failed", map[string]interface{}{"error": err.Error()})
		return s.capFallback(session, snippets, degradedRank)
	}
	// An empty completion is as useless as an error.
	if strings.TrimSpace(answer) == "" {
		s.log.Warn("ChatService", "LLM returned an empty reply", nil)
		return s.capFallback(session, snippets, degradedRank)
	}
	return answer, events.BranchLLM, category, degradedRank
}

// capFallback answers from the best retrieved snippet when the LLM cannot be
// called, or apologizes when there is nothing to answer from.
func (s *chatService) capFallback(session *store.Session, snippets []ranker.Scored, degraded bool) (string, string, string, bool) {
	if len(snippets) > 0 {
		top := snippets[0]
		return top.Entry.Response.Materialize(session.ApplicantFacts()), events.BranchFallback, top.Entry.Category, degraded
	}
	return ApologyReply, events.BranchFallback, "", degraded
}
