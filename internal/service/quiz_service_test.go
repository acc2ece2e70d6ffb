package service

import (
	"context"
	"errors"
	"qbank_backend/internal/config"
	"qbank_backend/internal/model"
	"qbank_backend/internal/service/servicetest"
	"qbank_backend/internal/util"
	"testing"
	"time"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newTestQuizService(t *testing.T, questions ...model.Question) (*QuizService, *servicetest.QuizStore, *servicetest.Questions) {
	t.Helper()
	store := servicetest.NewQuizStore()
	source := servicetest.NewQuestions(questions...)
	svc := NewQuizService(store, source, config.QuizConfig{
		DefaultDurationMinutes:   10,
		DefaultQuestionsPerGroup: 2,
	})
	svc.now = func() time.Time { return testNow }
	return svc, store, source
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func mustGenerate(t *testing.T, svc *QuizService, caller Caller, req GenerateQuizReq) *model.Quiz {
	t.Helper()
	quiz, err := svc.Generate(context.Background(), caller, req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return quiz
}

func TestDeleteQuizOwnership(t *testing.T) {
	svc, store, _ := newTestQuizService(t, servicetest.MCQ("q1", "S1", nil, "A", "B"))
	ctx := context.Background()
	owner := Caller{UserID: 7, Role: model.RoleUser}

	quiz := mustGenerate(t, svc, owner, GenerateQuizReq{GroupIDs: []string{"S1"}, Mode: model.GroupBySubject})

	err := svc.Delete(ctx, Caller{UserID: 8, Role: model.RoleUser}, quiz.ID)
	if !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("expected forbidden for another user, got %v", err)
	}
	if err := svc.Delete(ctx, owner, quiz.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := store.FindByID(ctx, quiz.ID); err == nil {
		t.Fatal("quiz still present after delete")
	}
	if err := svc.Delete(ctx, owner, quiz.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestAdminDeletesAnyQuiz(t *testing.T) {
	svc, _, _ := newTestQuizService(t, servicetest.MCQ("q1", "S1", nil, "A", "B"))
	ctx := context.Background()

	quiz := mustGenerate(t, svc, Caller{UserID: 7}, GenerateQuizReq{GroupIDs: []string{"S1"}, Mode: model.GroupBySubject})
	mustGenerate(t, svc, Caller{UserID: 9}, GenerateQuizReq{GroupIDs: []string{"S1"}, Mode: model.GroupBySubject})

	admin := Caller{UserID: 1, Role: model.Admin}
	if err := svc.Delete(ctx, admin, quiz.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	n, err := svc.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 remaining quiz deleted, got %d", n)
	}
}

func TestListMine(t *testing.T) {
	svc, _, _ := newTestQuizService(t, servicetest.MCQ("q1", "S1", nil, "A", "B"))
	ctx := context.Background()

	mustGenerate(t, svc, Caller{UserID: 7}, GenerateQuizReq{GroupIDs: []string{"S1"}, Mode: model.GroupBySubject})
	mustGenerate(t, svc, Caller{UserID: 7}, GenerateQuizReq{GroupIDs: []string{"S1"}, Mode: model.GroupBySubject})
	mustGenerate(t, svc, Caller{UserID: 8}, GenerateQuizReq{GroupIDs: []string{"S1"}, Mode: model.GroupBySubject})

	mine, err := svc.ListMine(ctx, Caller{UserID: 7})
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 quizzes, got %d", len(mine))
	}

	if _, err := svc.ListMine(ctx, Caller{}); !errors.Is(err, util.ErrForbidden) {
		t.Errorf("expected forbidden for anonymous caller, got %v", err)
	}
}
