package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"civilprep_backend/pkg/cache"
	"civilprep_backend/pkg/logger"
	"civilprep_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	chatHistoryTurns       = 10
	defaultQuestionCount   = 5
	DefaultSuggestionTTL   = 30 * time.Minute
	suggestionCacheKeyTmpl = "ai:suggestions:%d"
)

const systemPrompt = "You are an experienced mentor for the UPSC Civil Services Examination. " +
	"Answer precisely and stay within the exam syllabus (GS papers, CSAT, essay, optional subject, interview). " +
	"Politely decline requests unrelated to exam preparation."

// ChatCompleter chat completion 提供方，AIService 实现该接口
type ChatCompleter interface {
	Chat(ctx context.Context, messages []AIChatMessage) (string, error)
	ChatStream(ctx context.Context, messages []AIChatMessage) (<-chan string, <-chan error)
}

// GeneratorService 基于大模型的建议、练习题、作文评分、聊天与笔记。
// 模型失败或输出不合格时返回兜底内容，调用方不会收到错误
type GeneratorService struct {
	AI            ChatCompleter
	Analytics     *AnalyticsService
	AIRepo        *repository.AIRepository
	Cache         cache.Store
	SuggestionTTL time.Duration
	validate      *validator.Validate
}

func NewGeneratorService(
	ai ChatCompleter,
	analytics *AnalyticsService,
	aiRepo *repository.AIRepository,
	store cache.Store,
	suggestionTTL time.Duration,
) *GeneratorService {
	if suggestionTTL <= 0 {
		suggestionTTL = DefaultSuggestionTTL
	}
	return &GeneratorService{
		AI:            ai,
		Analytics:     analytics,
		AIRepo:        aiRepo,
		Cache:         store,
		SuggestionTTL: suggestionTTL,
		validate:      validator.New(),
	}
}

// ExtractJSON 去掉代码块标记，截取第一个 { 到最后一个 } 之间的内容
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if nl := strings.Index(text, "\n"); nl >= 0 {
			text = text[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func (s *GeneratorService) decode(raw string, out interface{}) error {
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), out); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidAIResponse, err)
	}
	if err := s.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidAIResponse, err)
	}
	return nil
}

// complete 单轮结构化生成：调用模型并解码到 out
func (s *GeneratorService) complete(ctx context.Context, prompt string, out interface{}) (string, error) {
	raw, err := s.AI.Chat(ctx, []AIChatMessage{
		{Role: "system", Content: systemPrompt + " Respond with a single JSON object and nothing else."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return raw, s.decode(raw, out)
}

// record 写审计记录并计数。写库失败只记日志
func (s *GeneratorService) record(ctx context.Context, userID uint, kind model.AIInteractionKind, prompt, response string, payload interface{}, fallback bool, genErr error) {
	outcome := "ok"
	switch {
	case fallback:
		outcome = "fallback"
		logger.Log.Warn("AI generator fell back to static payload",
			zap.String("kind", string(kind)),
			zap.Uint("userID", userID),
			zap.Error(genErr))
	case errors.Is(genErr, context.Canceled), errors.Is(genErr, context.DeadlineExceeded):
		outcome = "canceled"
	}
	monitoring.AIRequests.WithLabelValues(string(kind), outcome).Inc()

	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}

	interaction := &model.AIInteraction{
		UserID:   userID,
		Kind:     kind,
		Prompt:   prompt,
		Response: response,
		Payload:  data,
		Fallback: fallback,
	}
	if err := s.AIRepo.CreateInteraction(context.WithoutCancel(ctx), interaction); err != nil {
		logger.Log.Error("Failed to persist AI interaction",
			zap.String("kind", string(kind)),
			zap.Uint("userID", userID),
			zap.Error(err))
	}
}

// Suggestions 按用户缓存；refresh 为 true 时跳过缓存。兜底结果不缓存
func (s *GeneratorService) Suggestions(ctx context.Context, userID uint, refresh bool) *StudySuggestions {
	key := fmt.Sprintf(suggestionCacheKeyTmpl, userID)
	if !refresh && s.Cache != nil {
		var cached StudySuggestions
		hit, err := s.Cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			logger.Log.Warn("Suggestion cache read failed", zap.Error(err))
			monitoring.CacheLookups.WithLabelValues("error").Inc()
		case hit:
			monitoring.CacheLookups.WithLabelValues("hit").Inc()
			cached.Cached = true
			return &cached
		default:
			monitoring.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	var (
		out    StudySuggestions
		prompt string
		raw    string
	)
	metrics, err := s.Analytics.GetMetrics(ctx, userID)
	if err == nil {
		prompt = suggestionPrompt(metrics)
		raw, err = s.complete(ctx, prompt, &out)
	}
	if err != nil {
		out = fallbackSuggestions()
	}
	s.record(ctx, userID, model.AIKindSuggestion, prompt, raw, out, out.Fallback, err)

	if !out.Fallback && s.Cache != nil {
		if err := s.Cache.Set(ctx, key, out, s.SuggestionTTL); err != nil {
			logger.Log.Warn("Suggestion cache write failed", zap.Error(err))
		}
	}
	return &out
}

func suggestionPrompt(m model.Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate metrics (0-100 unless noted): syllabus completion %.1f, accuracy %.1f, speed %.1f, "+
		"consistency %.1f, mood %.1f, mock test average %.1f, mock trend %.2f points per test, optional %.1f, "+
		"current affairs %.1f, essay %.1f, hours in the last 7 days %.1f.\n",
		m.Completion, m.Accuracy, m.Speed, m.Consistency, m.Mood, m.TestAverage, m.TestTrend,
		m.Optional, m.CurrentAffairs, m.Essay, m.WeeklyHours)
	for _, sub := range m.Subjects {
		fmt.Fprintf(&b, "- %s: %.1f%% complete, %d revisions\n", sub.Subject, sub.Completion, sub.Revisions)
	}
	b.WriteString(`Give 3 to 6 concrete study suggestions for the coming week. JSON shape: ` +
		`{"summary": string, "suggestions": [{"title": string, "detail": string, "priority": "high"|"medium"|"low", ` +
		`"subject": string, "estimated_minutes": number}]}`)
	return b.String()
}

func (s *GeneratorService) GenerateQuestions(ctx context.Context, userID uint, req *QuestionRequest) *PracticeQuestionSet {
	count := req.Count
	if count <= 0 {
		count = defaultQuestionCount
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	prompt := fmt.Sprintf("Write %d %s-difficulty UPSC prelims style multiple-choice questions on %q. "+
		`JSON shape: {"subject": string, "questions": [{"question": string, "options": [4 strings], `+
		`"correct_index": 0-3, "explanation": string, "difficulty": "easy"|"medium"|"hard"}]}`,
		count, difficulty, req.Subject)

	var out PracticeQuestionSet
	raw, err := s.complete(ctx, prompt, &out)
	if err != nil {
		out = fallbackQuestions(req.Subject, count)
	}
	s.record(ctx, userID, model.AIKindQuestions, prompt, raw, out, out.Fallback, err)
	return &out
}

// EvaluateEssay 评分结果同时写入 essay_evaluations
func (s *GeneratorService) EvaluateEssay(ctx context.Context, userID uint, req *EssayRequest) *EssayScore {
	words := len(strings.Fields(req.Content))
	prompt := fmt.Sprintf("Evaluate this UPSC mains essay out of 125 marks. Topic: %q.\n\nEssay:\n%s\n\n"+
		`JSON shape: {"overall_score": 0-125, "dimensions": {"structure": 0-10, "content": 0-10, "language": 0-10, `+
		`"examples": 0-10, "conclusion": 0-10}, "strengths": [string], "improvements": [string], "feedback": string}`,
		req.Topic, req.Content)

	var out EssayScore
	raw, err := s.complete(ctx, prompt, &out)
	if err != nil {
		out = fallbackEssayScore(words)
	}
	out.WordCount = words
	s.record(ctx, userID, model.AIKindEssayEvaluation, prompt, raw, out, out.Fallback, err)

	scores, _ := json.Marshal(out.Dimensions)
	evaluation := &model.EssayEvaluation{
		UserID:       userID,
		Topic:        req.Topic,
		Content:      req.Content,
		OverallScore: out.OverallScore,
		Scores:       scores,
		Feedback:     out.Feedback,
		Fallback:     out.Fallback,
	}
	if err := s.AIRepo.CreateEvaluation(context.WithoutCancel(ctx), evaluation); err != nil {
		logger.Log.Error("Failed to persist essay evaluation", zap.Uint("userID", userID), zap.Error(err))
	}
	return &out
}

func (s *GeneratorService) ListEvaluations(ctx context.Context, userID uint, limit int) ([]model.EssayEvaluation, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.AIRepo.ListEvaluations(ctx, userID, limit)
}

// chatMessages 系统提示 + 最近 10 轮对话 + 当前问题
func (s *GeneratorService) chatMessages(ctx context.Context, userID uint, message string) []AIChatMessage {
	messages := []AIChatMessage{{Role: "system", Content: systemPrompt}}

	history, err := s.AIRepo.ChatHistory(ctx, userID, chatHistoryTurns)
	if err != nil {
		logger.Log.Warn("Failed to load chat history", zap.Uint("userID", userID), zap.Error(err))
	}
	for _, h := range history {
		if h.Fallback {
			continue
		}
		messages = append(messages,
			AIChatMessage{Role: "user", Content: h.Prompt},
			AIChatMessage{Role: "assistant", Content: h.Response},
		)
	}
	return append(messages, AIChatMessage{Role: "user", Content: message})
}

func (s *GeneratorService) Chat(ctx context.Context, userID uint, message string) *ChatReply {
	reply, err := s.AI.Chat(ctx, s.chatMessages(ctx, userID, message))
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("%w: empty reply", util.ErrInvalidAIResponse)
	}

	out := ChatReply{Reply: reply}
	if err != nil {
		out = ChatReply{Reply: fallbackChatReply, Fallback: true}
	}
	s.record(ctx, userID, model.AIKindChat, message, out.Reply, nil, out.Fallback, err)
	return &out
}

// StreamChat 逐段转发模型输出；模型在输出任何内容之前失败时发送兜底回复。
// 返回的通道在结束时关闭，完整回复写入聊天历史
func (s *GeneratorService) StreamChat(ctx context.Context, userID uint, message string) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		send := func(chunk string) bool {
			select {
			case out <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		chunks, errs := s.AI.ChatStream(ctx, s.chatMessages(ctx, userID, message))
		var full strings.Builder
		for chunk := range chunks {
			full.WriteString(chunk)
			if !send(chunk) {
				// 客户端断开，保存已生成的部分回复
				s.record(ctx, userID, model.AIKindChat, message, full.String(), nil, false, ctx.Err())
				return
			}
		}

		err := <-errs
		fallback := false
		if err != nil {
			if full.Len() == 0 {
				fallback = true
				full.WriteString(fallbackChatReply)
				if !send(fallbackChatReply) {
					s.record(ctx, userID, model.AIKindChat, message, full.String(), nil, true, err)
					return
				}
			} else {
				logger.Log.Warn("Chat stream ended with error", zap.Uint("userID", userID), zap.Error(err))
			}
		}
		s.record(ctx, userID, model.AIKindChat, message, full.String(), nil, fallback, err)
	}()

	return out
}

func (s *GeneratorService) ChatHistory(ctx context.Context, userID uint, limit int) ([]model.AIInteraction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.AIRepo.ChatHistory(ctx, userID, limit)
}

func (s *GeneratorService) GenerateNotes(ctx context.Context, userID uint, req *NotesRequest) *RevisionNotes {
	prompt := fmt.Sprintf("Write concise revision notes on %q", req.Topic)
	if req.Subject != "" {
		prompt += fmt.Sprintf(" for %s", req.Subject)
	}
	prompt += `. JSON shape: {"topic": string, "summary": string, "key_points": [at least 3 strings], "keywords": [string]}`

	var out RevisionNotes
	raw, err := s.complete(ctx, prompt, &out)
	if err != nil {
		out = fallbackNotes(req.Topic)
	}
	s.record(ctx, userID, model.AIKindNotes, prompt, raw, out, out.Fallback, err)
	return &out
}
