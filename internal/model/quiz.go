package model

import (
	"time"

	"gorm.io/datatypes"
)

// GroupingMode 组卷时的抽样单位
type GroupingMode string

const (
	GroupBySubject GroupingMode = "subject"
	GroupBySystem  GroupingMode = "system"
)

func (m GroupingMode) Valid() bool {
	return m == GroupBySubject || m == GroupBySystem
}

// Quiz 一次测验记录。IsSubmitted 置为 true 之后只允许封存它的那条提交流程再写入
// swagger:model Quiz
type Quiz struct {
	UUIDBase
	UserID            uint                        `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Mode              GroupingMode                `gorm:"size:20;not null" json:"mode"`
	GroupIDs          datatypes.JSONSlice[string] `gorm:"type:json" json:"subjects"`
	Entries           []QuizEntry                 `gorm:"foreignKey:QuizID" json:"questions"`
	NumberOfQuestions int                         `gorm:"not null" json:"numberOfQuestions"`
	DurationMinutes   int                         `gorm:"default:10" json:"durationMinutes"`
	StartedAt         time.Time                   `json:"startedAt"`
	EndedAt           *time.Time                  `json:"endedAt"`
	Score             int                         `gorm:"default:0" json:"score"`
	IsSubmitted       bool                        `gorm:"default:false;index" json:"isSubmitted"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Entry 按题目ID查找测验中的作答记录
func (q *Quiz) Entry(questionID string) *QuizEntry {
	for i := range q.Entries {
		if q.Entries[i].QuestionID == questionID {
			return &q.Entries[i]
		}
	}
	return nil
}

// QuestionIDs 按出题顺序返回题目ID
func (q *Quiz) QuestionIDs() []string {
	ids := make([]string, 0, len(q.Entries))
	for _, e := range q.Entries {
		ids = append(ids, e.QuestionID)
	}
	return ids
}

// CorrectCount 统计已判定为正确的作答数
func (q *Quiz) CorrectCount() int {
	n := 0
	for _, e := range q.Entries {
		if e.IsCorrect != nil && *e.IsCorrect {
			n++
		}
	}
	return n
}

// QuizEntry 测验中的单题作答。IsCorrect 为 nil 表示尚未作答
type QuizEntry struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"-"`
	QuizID         string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_quiz_entry_question" json:"-"`
	QuestionID     string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_quiz_entry_question" json:"question"`
	Position       int     `gorm:"not null" json:"position"`
	SelectedAnswer *string `gorm:"type:text" json:"selectedAnswer"`
	IsCorrect      *bool   `json:"isCorrect"`
}

func (QuizEntry) TableName() string {
	return "quiz_entries"
}
