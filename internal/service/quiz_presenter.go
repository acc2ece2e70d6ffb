package service

import (
	"context"
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"qbank_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type OptionView struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Image     *model.Image `json:"image,omitempty"`
	IsCorrect *bool        `json:"isCorrect,omitempty"`
}

type QuestionView struct {
	ID                   string             `json:"id"`
	QuestionCode         string             `json:"questionId"`
	Question             string             `json:"question"`
	QuestionType         model.QuestionType `json:"questionType"`
	Subject              string             `json:"subject"`
	System               string             `json:"system,omitempty"`
	SubSystem            string             `json:"subSystem,omitempty"`
	QuestionImages       []model.Image      `json:"questionImages"`
	Answers              []OptionView       `json:"answers"`
	SelectedAnswer       *string            `json:"selectedAnswer"`
	IsCorrect            *bool              `json:"isCorrect"`
	Revealed             bool               `json:"revealed"`
	CorrectReasonDetails string             `json:"correctReasonDetails,omitempty"`
	CorrectReasonImage   *model.Image       `json:"correctReasonImage,omitempty"`
}

type QuizView struct {
	ID                string             `json:"id"`
	UserID            uint               `json:"userId"`
	Mode              model.GroupingMode `json:"mode"`
	GroupIDs          []string           `json:"subjects"`
	NumberOfQuestions int                `json:"numberOfQuestions"`
	DurationMinutes   int                `json:"durationMinutes"`
	StartedAt         time.Time          `json:"startedAt"`
	EndedAt           *time.Time         `json:"endedAt"`
	Score             int                `json:"score"`
	IsSubmitted       bool               `json:"isSubmitted"`
	Questions         []QuestionView     `json:"questions"`
}

// Present 组装测验展示视图。已删除的题目不出现在视图中。
// 选项正误与解析仅对已作答、已交卷或管理员请求 reveal 的题目展示
func (s *QuizService) Present(ctx context.Context, caller Caller, quizID string, reveal bool) (view *QuizView, err error) {
	ctx, span := tracing.StartSpan(ctx, "QuizService.Present",
		attribute.String("quiz.id", quizID),
		attribute.Bool("quiz.reveal", reveal))
	defer func() { tracing.EndSpan(span, err) }()

	if reveal && !caller.IsAdmin() {
		return nil, util.ErrPermissionDenied
	}

	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionMap(ctx, quiz.QuestionIDs())
	if err != nil {
		return nil, err
	}

	view = &QuizView{
		ID:                quiz.ID,
		UserID:            quiz.UserID,
		Mode:              quiz.Mode,
		GroupIDs:          quiz.GroupIDs,
		NumberOfQuestions: quiz.NumberOfQuestions,
		DurationMinutes:   quiz.DurationMinutes,
		StartedAt:         quiz.StartedAt,
		EndedAt:           quiz.EndedAt,
		Score:             quiz.Score,
		IsSubmitted:       quiz.IsSubmitted,
		Questions:         make([]QuestionView, 0, len(quiz.Entries)),
	}
	for _, entry := range quiz.Entries {
		q, ok := questions[entry.QuestionID]
		if !ok {
			continue
		}
		revealed := reveal || quiz.IsSubmitted || entry.IsCorrect != nil
		view.Questions = append(view.Questions, presentQuestion(q, entry, revealed))
	}
	return view, nil
}

func presentQuestion(q *model.Question, entry model.QuizEntry, revealed bool) QuestionView {
	qv := QuestionView{
		ID:             q.ID,
		QuestionCode:   q.QuestionCode,
		Question:       q.Body,
		QuestionType:   q.QuestionType,
		QuestionImages: q.Images,
		SelectedAnswer: entry.SelectedAnswer,
		IsCorrect:      entry.IsCorrect,
		Revealed:       revealed,
	}
	if qv.QuestionImages == nil {
		qv.QuestionImages = []model.Image{}
	}
	if q.Subject != nil {
		qv.Subject = q.Subject.Subject
	}
	if q.System != nil {
		qv.System = q.System.SystemName
	}
	if q.SubSystem != nil {
		qv.SubSystem = q.SubSystem.Name
	}

	qv.Answers = []OptionView{}
	// 简答题的选项即标准答案，揭晓前不下发
	if revealed || q.QuestionType.HasChoices() {
		for _, opt := range q.Answers {
			ov := OptionView{ID: opt.ID, Text: opt.Text, Image: opt.Image}
			if revealed {
				correct := opt.IsCorrect
				ov.IsCorrect = &correct
			}
			qv.Answers = append(qv.Answers, ov)
		}
	}

	if revealed {
		qv.CorrectReasonDetails = q.CorrectReasonDetails
		qv.CorrectReasonImage = q.CorrectReasonImage
	}
	return qv
}
