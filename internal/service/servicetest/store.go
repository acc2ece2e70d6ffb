// Package servicetest 提供服务层测试使用的内存实现
package servicetest

import (
	"context"
	"qbank_backend/internal/model"
	"sync"

	"gorm.io/gorm"
)

// QuizStore 内存版测验存储，读写均返回副本
type QuizStore struct {
	mu      sync.Mutex
	quizzes map[string]*model.Quiz
	order   []string
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]*model.Quiz)}
}

func cloneQuiz(q *model.Quiz) *model.Quiz {
	c := *q
	c.GroupIDs = append([]string(nil), q.GroupIDs...)
	if q.EndedAt != nil {
		t := *q.EndedAt
		c.EndedAt = &t
	}
	c.Entries = make([]model.QuizEntry, len(q.Entries))
	for i, e := range q.Entries {
		if e.SelectedAnswer != nil {
			s := *e.SelectedAnswer
			e.SelectedAnswer = &s
		}
		if e.IsCorrect != nil {
			b := *e.IsCorrect
			e.IsCorrect = &b
		}
		c.Entries[i] = e
	}
	return &c
}

func (s *QuizStore) Create(ctx context.Context, quiz *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quiz.ID == "" {
		quiz.ID = model.GenerateUUID()
	}
	for i := range quiz.Entries {
		quiz.Entries[i].QuizID = quiz.ID
		quiz.Entries[i].Position = i
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	s.order = append(s.order, quiz.ID)
	return nil
}

func (s *QuizStore) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneQuiz(q), nil
}

func (s *QuizStore) List(ctx context.Context) ([]model.Quiz, error) {
	return s.filter(func(*model.Quiz) bool { return true }), nil
}

func (s *QuizStore) ListByUser(ctx context.Context, userID uint) ([]model.Quiz, error) {
	return s.filter(func(q *model.Quiz) bool { return q.UserID == userID }), nil
}

func (s *QuizStore) filter(keep func(*model.Quiz) bool) []model.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Quiz{}
	for i := len(s.order) - 1; i >= 0; i-- {
		q, ok := s.quizzes[s.order[i]]
		if ok && keep(q) {
			out = append(out, *cloneQuiz(q))
		}
	}
	return out
}

// Mutate 与数据库实现一致：fn 出错时不落盘
func (s *QuizStore) Mutate(ctx context.Context, id string, fn func(quiz *model.Quiz) error) (*model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	working := cloneQuiz(q)
	if err := fn(working); err != nil {
		return nil, err
	}
	s.quizzes[id] = cloneQuiz(working)
	return working, nil
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.quizzes, id)
	return nil
}

func (s *QuizStore) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.quizzes))
	s.quizzes = make(map[string]*model.Quiz)
	s.order = nil
	return n, nil
}

// Questions 内存题库
type Questions struct {
	mu    sync.Mutex
	items []model.Question
}

func NewQuestions(items ...model.Question) *Questions {
	return &Questions{items: items}
}

func (r *Questions) Add(items ...model.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

// Remove 模拟题目被删除
func (r *Questions) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return
		}
	}
}

func (r *Questions) ListIDsByGroup(ctx context.Context, mode model.GroupingMode, groupID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for _, q := range r.items {
		switch mode {
		case model.GroupBySubject:
			if q.SubjectID == groupID {
				ids = append(ids, q.ID)
			}
		case model.GroupBySystem:
			if q.SystemID != nil && *q.SystemID == groupID {
				ids = append(ids, q.ID)
			}
		}
	}
	return ids, nil
}

func (r *Questions) FindByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for _, q := range r.items {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

// MCQ 构造一道单选题，correct 为正确选项文本
func MCQ(id, subjectID string, systemID *string, correct string, others ...string) model.Question {
	q := model.Question{
		QuestionCode: "Q-" + id,
		SubjectID:    subjectID,
		SystemID:     systemID,
		Body:         "question " + id,
		QuestionType: model.QuestionMCQ,
	}
	q.ID = id
	q.Answers = append(q.Answers, model.AnswerOption{ID: id + "-a", Text: correct, IsCorrect: true})
	for i, text := range others {
		q.Answers = append(q.Answers, model.AnswerOption{ID: id + "-" + string(rune('b'+i)), Text: text})
	}
	q.CorrectReasonDetails = "because " + correct
	return q
}

// ShortAnswer 构造一道简答题
func ShortAnswer(id, subjectID, answer string) model.Question {
	q := model.Question{
		QuestionCode: "Q-" + id,
		SubjectID:    subjectID,
		Body:         "question " + id,
		QuestionType: model.QuestionShortAnswer,
	}
	q.ID = id
	q.Answers = append(q.Answers, model.AnswerOption{ID: id + "-a", Text: answer, IsCorrect: true})
	return q
}
