package service

import (
	"context"
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"qbank_backend/pkg/logger"
	"qbank_backend/pkg/monitoring"
	"qbank_backend/pkg/tracing"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	protocolBulk        = "bulk"
	protocolIncremental = "incremental"
)

type SubmittedAnswer struct {
	QuestionID     string  `json:"questionId"`
	SelectedAnswer *string `json:"selectedAnswer"`
}

type AnswerInput struct {
	SelectedAnswerID string  `json:"selectedAnswerId"`
	SelectedAnswer   *string `json:"selectedAnswer"`
}

// QuestionResult 单题判分结果，包含标准答案与解析
type QuestionResult struct {
	QuestionID           string             `json:"questionId"`
	QuestionCode         string             `json:"questionCode"`
	Question             string             `json:"question"`
	QuestionType         model.QuestionType `json:"questionType"`
	SelectedAnswer       *string            `json:"selectedAnswer"`
	IsCorrect            bool               `json:"isCorrect"`
	CorrectAnswer        string             `json:"correctAnswer"`
	CorrectReasonDetails string             `json:"correctReasonDetails"`
	CorrectReasonImage   *model.Image       `json:"correctReasonImage,omitempty"`
}

type SubmitResult struct {
	QuizID  string           `json:"quizId"`
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Results []QuestionResult `json:"result"`
}

func questionResult(q *model.Question, entry model.QuizEntry) QuestionResult {
	canonical, _ := CanonicalAnswer(q)
	return QuestionResult{
		QuestionID:           q.ID,
		QuestionCode:         q.QuestionCode,
		Question:             q.Body,
		QuestionType:         q.QuestionType,
		SelectedAnswer:       entry.SelectedAnswer,
		IsCorrect:            entry.IsCorrect != nil && *entry.IsCorrect,
		CorrectAnswer:        canonical,
		CorrectReasonDetails: q.CorrectReasonDetails,
		CorrectReasonImage:   q.CorrectReasonImage,
	}
}

func buildSubmitResult(quiz *model.Quiz, questions map[string]*model.Question) *SubmitResult {
	result := &SubmitResult{
		QuizID:  quiz.ID,
		Score:   quiz.Score,
		Total:   quiz.NumberOfQuestions,
		Results: make([]QuestionResult, 0, len(quiz.Entries)),
	}
	for _, entry := range quiz.Entries {
		if q, ok := questions[entry.QuestionID]; ok {
			result.Results = append(result.Results, questionResult(q, entry))
		}
	}
	return result
}

func findSubmitted(answers []SubmittedAnswer, questionID string) *string {
	for _, a := range answers {
		if strings.TrimSpace(a.QuestionID) == questionID {
			return a.SelectedAnswer
		}
	}
	return nil
}

// Submit 一次性交卷：判定全部题目、计分并封存。
// 允许重复提交，后一次的作答与分数覆盖前一次
func (s *QuizService) Submit(ctx context.Context, quizID string, answers []SubmittedAnswer) (result *SubmitResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "QuizService.Submit",
		attribute.String("quiz.id", quizID),
		attribute.Int("quiz.answers", len(answers)))
	defer func() { tracing.EndSpan(span, err) }()

	if answers == nil {
		return nil, util.Validationf("answers must be an array")
	}

	current, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionMap(ctx, current.QuestionIDs())
	if err != nil {
		return nil, err
	}

	quiz, err := s.mutate(ctx, quizID, func(quiz *model.Quiz) error {
		for i := range quiz.Entries {
			entry := &quiz.Entries[i]
			selected := util.NullIfBlank(findSubmitted(answers, entry.QuestionID))
			correct := EvaluateAnswer(questions[entry.QuestionID], selected)
			entry.SelectedAnswer = selected
			entry.IsCorrect = &correct
		}
		endedAt := s.now()
		quiz.Score = quiz.CorrectCount()
		quiz.EndedAt = &endedAt
		quiz.IsSubmitted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ObserveFinalized(protocolBulk, quiz.Score, quiz.NumberOfQuestions)
	logger.Log.Info("Quiz submitted",
		zap.String("quizId", quiz.ID),
		zap.Int("score", quiz.Score),
		zap.Int("total", quiz.NumberOfQuestions))
	return buildSubmitResult(quiz, questions), nil
}

// AnswerOne 逐题作答，已交卷的测验不再接受作答
func (s *QuizService) AnswerOne(ctx context.Context, quizID, questionID string, in AnswerInput) (result *QuestionResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "QuizService.AnswerOne",
		attribute.String("quiz.id", quizID),
		attribute.String("quiz.question_id", questionID))
	defer func() { tracing.EndSpan(span, err) }()

	current, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if current.IsSubmitted {
		return nil, util.ErrQuizAlreadySubmitted
	}
	if current.Entry(questionID) == nil {
		return nil, util.ErrQuestionNotInQuiz
	}

	questions, err := s.questionMap(ctx, []string{questionID})
	if err != nil {
		return nil, err
	}
	q, ok := questions[questionID]
	if !ok {
		return nil, util.ErrQuestionNotFound
	}

	selected, err := ResolveSelection(q, in.SelectedAnswerID, in.SelectedAnswer)
	if err != nil {
		return nil, err
	}
	correct := EvaluateAnswer(q, selected)

	quiz, err := s.mutate(ctx, quizID, func(quiz *model.Quiz) error {
		if quiz.IsSubmitted {
			return util.ErrQuizAlreadySubmitted
		}
		entry := quiz.Entry(questionID)
		if entry == nil {
			return util.ErrQuestionNotInQuiz
		}
		entry.SelectedAnswer = selected
		entry.IsCorrect = &correct
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := questionResult(q, *quiz.Entry(questionID))
	return &res, nil
}

// Finish 汇总逐题作答结果并封存测验，重复调用返回冲突且不修改分数与结束时间
func (s *QuizService) Finish(ctx context.Context, quizID string) (result *SubmitResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "QuizService.Finish", attribute.String("quiz.id", quizID))
	defer func() { tracing.EndSpan(span, err) }()

	current, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if current.IsSubmitted {
		return nil, util.ErrQuizAlreadySubmitted
	}
	questions, err := s.questionMap(ctx, current.QuestionIDs())
	if err != nil {
		return nil, err
	}

	quiz, err := s.mutate(ctx, quizID, func(quiz *model.Quiz) error {
		if quiz.IsSubmitted {
			return util.ErrQuizAlreadySubmitted
		}
		endedAt := s.now()
		quiz.Score = quiz.CorrectCount()
		quiz.EndedAt = &endedAt
		quiz.IsSubmitted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ObserveFinalized(protocolIncremental, quiz.Score, quiz.NumberOfQuestions)
	logger.Log.Info("Quiz finished",
		zap.String("quizId", quiz.ID),
		zap.Int("score", quiz.Score),
		zap.Int("total", quiz.NumberOfQuestions))
	return buildSubmitResult(quiz, questions), nil
}
