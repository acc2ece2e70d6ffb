package repository

import (
	"context"
	"errors"
	"qbank_backend/internal/model"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestQuizRepository(t *testing.T) *QuizRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 内存库按连接隔离，固定单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&model.Quiz{}, &model.QuizEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewQuizRepository(db)
}

func createTestQuiz(t *testing.T, r *QuizRepository, userID uint, questionIDs ...string) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		UserID:            userID,
		Mode:              model.GroupBySubject,
		GroupIDs:          []string{"S1"},
		NumberOfQuestions: len(questionIDs),
		DurationMinutes:   10,
		StartedAt:         time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	for _, id := range questionIDs {
		quiz.Entries = append(quiz.Entries, model.QuizEntry{QuestionID: id})
	}
	if err := r.Create(context.Background(), quiz); err != nil {
		t.Fatalf("createTestQuiz: %v", err)
	}
	return quiz
}

func mustFindQuiz(t *testing.T, r *QuizRepository, id string) *model.Quiz {
	t.Helper()
	quiz, err := r.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByID(%s): %v", id, err)
	}
	return quiz
}

func TestQuizCreateKeepsEntryOrder(t *testing.T) {
	r := newTestQuizRepository(t)
	created := createTestQuiz(t, r, 7, "q3", "q1", "q2")

	got := mustFindQuiz(t, r, created.ID)
	ids := got.QuestionIDs()
	if len(ids) != 3 || ids[0] != "q3" || ids[1] != "q1" || ids[2] != "q2" {
		t.Fatalf("question order = %v", ids)
	}
	for i, e := range got.Entries {
		if e.Position != i || e.QuizID != created.ID {
			t.Errorf("entry %d = position %d quiz %s", i, e.Position, e.QuizID)
		}
		if e.SelectedAnswer != nil || e.IsCorrect != nil {
			t.Errorf("entry %d should start unanswered", i)
		}
	}
}

func TestQuizMutatePersistsChanges(t *testing.T) {
	r := newTestQuizRepository(t)
	ctx := context.Background()
	created := createTestQuiz(t, r, 7, "q1", "q2")

	ended := time.Date(2024, 5, 1, 9, 45, 0, 0, time.UTC)
	answer, correct := "x", true
	_, err := r.Mutate(ctx, created.ID, func(q *model.Quiz) error {
		q.Entries[1].SelectedAnswer = &answer
		q.Entries[1].IsCorrect = &correct
		q.Score = 1
		q.IsSubmitted = true
		q.EndedAt = &ended
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	got := mustFindQuiz(t, r, created.ID)
	if got.Score != 1 || !got.IsSubmitted || got.EndedAt == nil {
		t.Fatalf("quiz = score %d submitted %v endedAt %v", got.Score, got.IsSubmitted, got.EndedAt)
	}
	if got.Entries[0].SelectedAnswer != nil || got.Entries[0].IsCorrect != nil {
		t.Error("untouched entry was written")
	}
	e1 := got.Entries[1]
	if e1.SelectedAnswer == nil || *e1.SelectedAnswer != "x" || e1.IsCorrect == nil || !*e1.IsCorrect {
		t.Fatalf("entry 1 = %v/%v", e1.SelectedAnswer, e1.IsCorrect)
	}

	// 清空作答也要写回
	incorrect := false
	_, err = r.Mutate(ctx, created.ID, func(q *model.Quiz) error {
		q.Entries[1].SelectedAnswer = nil
		q.Entries[1].IsCorrect = &incorrect
		q.Score = 0
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate reset: %v", err)
	}
	got = mustFindQuiz(t, r, created.ID)
	e1 = got.Entries[1]
	if got.Score != 0 || e1.SelectedAnswer != nil || e1.IsCorrect == nil || *e1.IsCorrect {
		t.Fatalf("after reset score %d entry %v/%v", got.Score, e1.SelectedAnswer, e1.IsCorrect)
	}
	if !got.IsSubmitted {
		t.Error("submitted flag lost")
	}
}

func TestQuizMutateRollsBackOnError(t *testing.T) {
	r := newTestQuizRepository(t)
	ctx := context.Background()
	created := createTestQuiz(t, r, 7, "q1")

	boom := errors.New("boom")
	answer := "y"
	_, err := r.Mutate(ctx, created.ID, func(q *model.Quiz) error {
		q.Entries[0].SelectedAnswer = &answer
		q.Score = 5
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	got := mustFindQuiz(t, r, created.ID)
	if got.Score != 0 || got.Entries[0].SelectedAnswer != nil {
		t.Fatalf("rolled back mutation persisted: score %d answer %v", got.Score, got.Entries[0].SelectedAnswer)
	}

	if _, err := r.Mutate(ctx, "missing", func(*model.Quiz) error { return nil }); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing quiz: expected record not found, got %v", err)
	}
}

func TestQuizMutateSerializesWriters(t *testing.T) {
	r := newTestQuizRepository(t)
	ctx := context.Background()
	created := createTestQuiz(t, r, 7, "q1")

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Mutate(ctx, created.ID, func(q *model.Quiz) error {
				q.Score++
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Mutate: %v", err)
		}
	}

	if got := mustFindQuiz(t, r, created.ID); got.Score != writers {
		t.Fatalf("score = %d, want %d", got.Score, writers)
	}
}

func TestQuizDeleteRemovesEntries(t *testing.T) {
	r := newTestQuizRepository(t)
	ctx := context.Background()
	first := createTestQuiz(t, r, 7, "q1", "q2")
	createTestQuiz(t, r, 8, "q1")

	if err := r.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var left int64
	if err := r.DB.Model(&model.QuizEntry{}).Where("quiz_id = ?", first.ID).Count(&left).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if left != 0 {
		t.Errorf("entries left = %d", left)
	}
	if err := r.Delete(ctx, first.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second delete: expected record not found, got %v", err)
	}

	mine, err := r.ListByUser(ctx, 8)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListByUser = %d, %v", len(mine), err)
	}

	n, err := r.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteAll removed %d quizzes, want 1", n)
	}
	all, _ := r.List(ctx)
	if len(all) != 0 {
		t.Errorf("quizzes left = %d", len(all))
	}
}
