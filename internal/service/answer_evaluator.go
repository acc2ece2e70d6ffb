package service

import (
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"strings"
)

// correctOption 选择题中标记为正确的选项
func correctOption(q *model.Question) *model.AnswerOption {
	for i := range q.Answers {
		if q.Answers[i].IsCorrect {
			return &q.Answers[i]
		}
	}
	return nil
}

// CanonicalAnswer 返回题目的标准答案文本。
// 单选与判断题取正确选项，简答题取第一个选项
func CanonicalAnswer(q *model.Question) (string, bool) {
	if q == nil {
		return "", false
	}
	switch q.QuestionType {
	case model.QuestionShortAnswer:
		if len(q.Answers) == 0 {
			return "", false
		}
		return strings.TrimSpace(q.Answers[0].Text), true
	default:
		opt := correctOption(q)
		if opt == nil {
			return "", false
		}
		return strings.TrimSpace(opt.Text), true
	}
}

// EvaluateAnswer 判定作答是否正确。
// 单选 / 判断：去除首尾空白后区分大小写精确匹配；
// 简答：去除首尾空白后不区分大小写匹配；未作答一律判错
func EvaluateAnswer(q *model.Question, submitted *string) bool {
	if q == nil || submitted == nil {
		return false
	}
	answer := strings.TrimSpace(*submitted)
	if answer == "" {
		return false
	}

	expected, ok := CanonicalAnswer(q)
	if !ok {
		return false
	}

	if q.QuestionType == model.QuestionShortAnswer {
		return strings.EqualFold(answer, expected)
	}
	return answer == expected
}

// ResolveSelection 将逐题作答的输入转换为答案文本，优先使用选项ID
func ResolveSelection(q *model.Question, optionID string, text *string) (*string, error) {
	if optionID = strings.TrimSpace(optionID); optionID != "" {
		for _, opt := range q.Answers {
			if opt.ID == optionID {
				selected := strings.TrimSpace(opt.Text)
				return &selected, nil
			}
		}
		return nil, util.Validationf("Unknown answer option %s", optionID)
	}

	selected := util.NullIfBlank(text)
	if selected == nil {
		return nil, util.Validationf("selectedAnswerId or selectedAnswer is required")
	}
	return selected, nil
}
