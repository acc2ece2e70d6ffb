package service

import (
	"context"
	"fmt"
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"qbank_backend/pkg/logger"
	"qbank_backend/pkg/monitoring"
	"qbank_backend/pkg/tracing"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GenerateQuizReq 组卷参数，CountPerGroup / DurationMinutes 为空时取配置默认值
type GenerateQuizReq struct {
	GroupIDs        []string
	CountPerGroup   *int
	DurationMinutes *int
	Mode            model.GroupingMode
}

func groupField(mode model.GroupingMode) string {
	if mode == model.GroupBySystem {
		return "systemIds"
	}
	return "subjectIds"
}

// normalizeGroupIDs 去除首尾空白并去重，保持请求顺序
func normalizeGroupIDs(mode model.GroupingMode, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, util.Validationf("%s must be a non-empty array", groupField(mode))
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, util.Validationf("%s must not contain empty ids", groupField(mode))
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// Generate 按科目或系统分组随机抽题并创建测验。
// 每组抽取 min(countPerGroup, 组内题数) 道，无放回。
// 空组跳过，全部为空时返回 NotFound；strict_subject_groups 开启时科目模式下任一空组即失败
func (s *QuizService) Generate(ctx context.Context, caller Caller, req GenerateQuizReq) (quiz *model.Quiz, err error) {
	ctx, span := tracing.StartSpan(ctx, "QuizService.Generate",
		attribute.String("quiz.mode", string(req.Mode)),
		attribute.Int("quiz.groups", len(req.GroupIDs)))
	defer func() { tracing.EndSpan(span, err) }()

	if !req.Mode.Valid() {
		return nil, util.Validationf("invalid grouping mode %q", req.Mode)
	}
	groupIDs, err := normalizeGroupIDs(req.Mode, req.GroupIDs)
	if err != nil {
		return nil, err
	}

	cfg := s.settings()
	count := cfg.DefaultQuestionsPerGroup
	if req.CountPerGroup != nil {
		count = *req.CountPerGroup
	}
	if count <= 0 {
		return nil, util.Validationf("questions per %s must be a positive integer", req.Mode)
	}
	duration := cfg.DefaultDurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	if duration <= 0 {
		return nil, util.Validationf("durationMinutes must be a positive integer")
	}

	var entries []model.QuizEntry
	for _, groupID := range groupIDs {
		ids, err := s.Questions.ListIDsByGroup(ctx, req.Mode, groupID)
		if err != nil {
			return nil, fmt.Errorf("list questions of %s %s: %w", req.Mode, groupID, err)
		}
		if len(ids) == 0 {
			if req.Mode == model.GroupBySubject && cfg.StrictSubjectGroups {
				return nil, util.NotFoundf("No questions found for subject %s", groupID)
			}
			logger.Log.Debug("Group has no questions, skipped",
				zap.String("mode", string(req.Mode)),
				zap.String("groupId", groupID))
			continue
		}
		for _, questionID := range s.sample(ids, count) {
			entries = append(entries, model.QuizEntry{QuestionID: questionID})
		}
	}
	if len(entries) == 0 {
		return nil, util.NotFoundf("No questions found for the selected %ss", req.Mode)
	}

	quiz = &model.Quiz{
		UserID:            caller.UserID,
		Mode:              req.Mode,
		GroupIDs:          groupIDs,
		Entries:           entries,
		NumberOfQuestions: len(entries),
		DurationMinutes:   duration,
		StartedAt:         s.now(),
	}
	if err := s.Quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	monitoring.QuizzesGenerated.WithLabelValues(string(req.Mode)).Inc()
	logger.Log.Info("Quiz generated",
		zap.String("quizId", quiz.ID),
		zap.Uint("userId", caller.UserID),
		zap.String("mode", string(req.Mode)),
		zap.Int("questions", quiz.NumberOfQuestions))
	return quiz, nil
}

// sample 部分 Fisher-Yates 洗牌，均匀地无放回抽取 min(k, len(ids)) 个
func (s *QuizService) sample(ids []string, k int) []string {
	pool := append([]string(nil), ids...)
	if k > len(pool) {
		k = len(pool)
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
