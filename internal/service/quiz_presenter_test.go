package service

import (
	"context"
	"errors"
	"qbank_backend/internal/model"
	"qbank_backend/internal/service/servicetest"
	"qbank_backend/internal/util"
	"testing"
)

func viewOf(t *testing.T, view *QuizView, id string) QuestionView {
	t.Helper()
	for _, q := range view.Questions {
		if q.ID == id {
			return q
		}
	}
	t.Fatalf("question %s missing from view", id)
	return QuestionView{}
}

func TestPresentHidesUnansweredCorrectness(t *testing.T) {
	svc, _, quiz := finalizerFixture(t)
	ctx := context.Background()
	student := Caller{UserID: 5, Role: model.RoleUser}

	view, err := svc.Present(ctx, student, quiz.ID, false)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(view.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(view.Questions))
	}

	q1 := viewOf(t, view, "q1")
	if q1.Revealed || q1.IsCorrect != nil || q1.CorrectReasonDetails != "" {
		t.Errorf("unanswered question leaked its result: %+v", q1)
	}
	if len(q1.Answers) != 3 {
		t.Fatalf("choice options should be listed, got %d", len(q1.Answers))
	}
	for _, opt := range q1.Answers {
		if opt.IsCorrect != nil {
			t.Errorf("option %s exposes correctness before answering", opt.ID)
		}
	}

	if q3 := viewOf(t, view, "q3"); len(q3.Answers) != 0 {
		t.Errorf("short answer options must stay hidden, got %+v", q3.Answers)
	}

	if _, err := svc.AnswerOne(ctx, quiz.ID, "q1", AnswerInput{SelectedAnswer: strPtr("A")}); err != nil {
		t.Fatalf("AnswerOne: %v", err)
	}
	view, err = svc.Present(ctx, student, quiz.ID, false)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	q1 = viewOf(t, view, "q1")
	if !q1.Revealed || q1.IsCorrect == nil || *q1.IsCorrect {
		t.Errorf("answered question should reveal an incorrect result: %+v", q1)
	}
	if q1.CorrectReasonDetails == "" || q1.Answers[0].IsCorrect == nil || !*q1.Answers[0].IsCorrect {
		t.Errorf("answered question should expose explanation and options: %+v", q1)
	}
	if viewOf(t, view, "q2").Revealed {
		t.Error("q2 is still unanswered")
	}
}

func TestPresentSubmittedQuizRevealsAll(t *testing.T) {
	svc, _, quiz := finalizerFixture(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, quiz.ID, []SubmittedAnswer{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	view, err := svc.Present(ctx, Caller{}, quiz.ID, false)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if !view.IsSubmitted || view.EndedAt == nil {
		t.Errorf("view should reflect the sealed quiz: %+v", view)
	}
	for _, q := range view.Questions {
		if !q.Revealed {
			t.Errorf("question %s hidden after submit", q.ID)
		}
	}
	if q3 := viewOf(t, view, "q3"); len(q3.Answers) != 1 || q3.Answers[0].Text != "Paris" {
		t.Errorf("short answer should reveal the expected answer, got %+v", q3.Answers)
	}
}

func TestPresentRevealRequiresAdmin(t *testing.T) {
	svc, _, quiz := finalizerFixture(t)
	ctx := context.Background()

	if _, err := svc.Present(ctx, Caller{UserID: 5, Role: model.RoleUser}, quiz.ID, true); !errors.Is(err, util.ErrForbidden) {
		t.Errorf("non-admin reveal: expected forbidden, got %v", err)
	}

	view, err := svc.Present(ctx, Caller{UserID: 1, Role: model.Admin}, quiz.ID, true)
	if err != nil {
		t.Fatalf("admin Present: %v", err)
	}
	for _, q := range view.Questions {
		if !q.Revealed {
			t.Errorf("admin reveal left %s hidden", q.ID)
		}
	}
}

func TestPresentDropsDeletedQuestions(t *testing.T) {
	svc, _, source := newTestQuizService(t,
		servicetest.MCQ("q1", "S1", nil, "B", "A"),
		servicetest.MCQ("q2", "S1", nil, "B", "A"),
	)
	ctx := context.Background()
	quiz := mustGenerate(t, svc, Caller{UserID: 5}, GenerateQuizReq{GroupIDs: []string{"S1"}, Mode: model.GroupBySubject})

	source.Remove("q2")

	view, err := svc.Present(ctx, Caller{UserID: 5}, quiz.ID, false)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(view.Questions) != 1 || view.Questions[0].ID != "q1" {
		t.Errorf("deleted question should be omitted, got %+v", view.Questions)
	}
	if view.NumberOfQuestions != 2 {
		t.Errorf("numberOfQuestions is fixed at generation, got %d", view.NumberOfQuestions)
	}

	if _, err := svc.Present(ctx, Caller{}, "missing", false); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("unknown quiz: got %v", err)
	}
}
