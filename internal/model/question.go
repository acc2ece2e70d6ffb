package model

import (
	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionTrueFalse   QuestionType = "TrueFalse"
	QuestionShortAnswer QuestionType = "ShortAnswer"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionTrueFalse, QuestionShortAnswer:
		return true
	}
	return false
}

// HasChoices 选择类题目（单选 / 判断）
func (t QuestionType) HasChoices() bool {
	return t == QuestionMCQ || t == QuestionTrueFalse
}

// Image 对象存储中的图片，PublicID 为删除时使用的对象键
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type AnswerOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
	Image     *Image `json:"image,omitempty"`
}

// Question 题目。分组路径二选一：仅 system，或 system + subSystem（HasSubSystem = true）
// swagger:model Question
type Question struct {
	UUIDBase
	QuestionCode         string                            `gorm:"size:100;uniqueIndex;not null" json:"questionId"`
	SubjectID            string                            `gorm:"index;type:varchar(36);not null" json:"subjectId"`
	Subject              *Subject                          `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	SystemID             *string                           `gorm:"index;type:varchar(36)" json:"systemId"`
	System               *System                           `gorm:"foreignKey:SystemID" json:"system,omitempty"`
	SubSystemID          *string                           `gorm:"index;type:varchar(36)" json:"subSystemId"`
	SubSystem            *SubSystem                        `gorm:"foreignKey:SubSystemID" json:"subSystem,omitempty"`
	Body                 string                            `gorm:"column:question;type:text;not null" json:"question"`
	Images               datatypes.JSONSlice[Image]        `gorm:"type:json" json:"questionImages"`
	QuestionType         QuestionType                      `gorm:"size:20;not null" json:"questionType"`
	Answers              datatypes.JSONSlice[AnswerOption] `gorm:"type:json" json:"answers"`
	CorrectReasonDetails string                            `gorm:"type:text" json:"correctReasonDetails"`
	CorrectReasonImage   *Image                            `gorm:"serializer:json;type:json" json:"correctReasonImage,omitempty"`
	HasSubSystem         bool                              `gorm:"default:false" json:"hasSubSystem"`
}

func (Question) TableName() string {
	return "questions"
}

// StoredImages 返回题目引用的全部图片，删除题目时一并清理
func (q *Question) StoredImages() []Image {
	images := make([]Image, 0, len(q.Images)+len(q.Answers)+1)
	images = append(images, q.Images...)
	for _, a := range q.Answers {
		if a.Image != nil {
			images = append(images, *a.Image)
		}
	}
	if q.CorrectReasonImage != nil {
		images = append(images, *q.CorrectReasonImage)
	}
	return images
}
