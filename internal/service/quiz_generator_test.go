package service

import (
	"errors"
	"qbank_backend/internal/config"
	"qbank_backend/internal/model"
	"qbank_backend/internal/service/servicetest"
	"qbank_backend/internal/util"
	"testing"
)

func TestGenerateSamplesEachGroup(t *testing.T) {
	svc, _, _ := newTestQuizService(t,
		servicetest.MCQ("a1", "S1", nil, "A", "B"),
		servicetest.MCQ("a2", "S1", nil, "A", "B"),
		servicetest.MCQ("a3", "S1", nil, "A", "B"),
		servicetest.MCQ("b1", "S2", nil, "A", "B"),
	)

	quiz := mustGenerate(t, svc, Caller{UserID: 3}, GenerateQuizReq{
		GroupIDs:      []string{"S1", "S2"},
		CountPerGroup: intPtr(2),
		Mode:          model.GroupBySubject,
	})

	// S1 取 min(2,3)=2，S2 取 min(2,1)=1
	if quiz.NumberOfQuestions != 3 || len(quiz.Entries) != 3 {
		t.Fatalf("expected 3 questions, got %d (%d entries)", quiz.NumberOfQuestions, len(quiz.Entries))
	}

	seen := map[string]bool{}
	fromS1 := 0
	for i, e := range quiz.Entries {
		if seen[e.QuestionID] {
			t.Errorf("question %s sampled twice", e.QuestionID)
		}
		seen[e.QuestionID] = true
		if e.QuestionID[0] == 'a' {
			fromS1++
			if i >= 2 {
				t.Errorf("entries must follow group order, got %s at %d", e.QuestionID, i)
			}
		}
		if e.SelectedAnswer != nil || e.IsCorrect != nil {
			t.Errorf("new entry %s should be unanswered", e.QuestionID)
		}
	}
	if fromS1 != 2 || !seen["b1"] {
		t.Errorf("unexpected sample %v", seen)
	}

	if quiz.UserID != 3 || quiz.Score != 0 || quiz.IsSubmitted || quiz.EndedAt != nil {
		t.Errorf("unexpected initial quiz state %+v", quiz)
	}
	if !quiz.StartedAt.Equal(testNow) {
		t.Errorf("startedAt = %v, want %v", quiz.StartedAt, testNow)
	}
	if quiz.DurationMinutes != 10 {
		t.Errorf("expected default duration 10, got %d", quiz.DurationMinutes)
	}
	if len(quiz.GroupIDs) != 2 || quiz.GroupIDs[0] != "S1" {
		t.Errorf("group ids not recorded: %v", quiz.GroupIDs)
	}
}

func TestGenerateUsesConfiguredDefaults(t *testing.T) {
	svc, _, _ := newTestQuizService(t,
		servicetest.MCQ("a1", "S1", nil, "A", "B"),
		servicetest.MCQ("a2", "S1", nil, "A", "B"),
		servicetest.MCQ("a3", "S1", nil, "A", "B"),
	)
	svc.ApplyConfig(config.QuizConfig{DefaultDurationMinutes: 25, DefaultQuestionsPerGroup: 1})

	quiz := mustGenerate(t, svc, Caller{UserID: 1}, GenerateQuizReq{GroupIDs: []string{"S1"}, Mode: model.GroupBySubject})
	if quiz.NumberOfQuestions != 1 {
		t.Errorf("expected 1 question, got %d", quiz.NumberOfQuestions)
	}
	if quiz.DurationMinutes != 25 {
		t.Errorf("expected duration 25, got %d", quiz.DurationMinutes)
	}

	quiz = mustGenerate(t, svc, Caller{UserID: 1}, GenerateQuizReq{
		GroupIDs:        []string{"S1"},
		CountPerGroup:   intPtr(5),
		DurationMinutes: intPtr(45),
		Mode:            model.GroupBySubject,
	})
	if quiz.NumberOfQuestions != 3 || quiz.DurationMinutes != 45 {
		t.Errorf("explicit values ignored: %d questions, %d minutes", quiz.NumberOfQuestions, quiz.DurationMinutes)
	}
}

func TestGenerateBySystem(t *testing.T) {
	sys1, sys2 := "SYS1", "SYS2"
	svc, _, _ := newTestQuizService(t,
		servicetest.MCQ("a1", "S1", &sys1, "A", "B"),
		servicetest.MCQ("a2", "S1", &sys2, "A", "B"),
		servicetest.MCQ("a3", "S1", nil, "A", "B"),
	)

	quiz := mustGenerate(t, svc, Caller{UserID: 1}, GenerateQuizReq{
		GroupIDs:      []string{"SYS1"},
		CountPerGroup: intPtr(10),
		Mode:          model.GroupBySystem,
	})
	if len(quiz.Entries) != 1 || quiz.Entries[0].QuestionID != "a1" {
		t.Errorf("expected only a1, got %v", quiz.QuestionIDs())
	}
	if quiz.Mode != model.GroupBySystem {
		t.Errorf("mode = %s", quiz.Mode)
	}
}

func TestGenerateDeduplicatesGroups(t *testing.T) {
	svc, _, _ := newTestQuizService(t,
		servicetest.MCQ("a1", "S1", nil, "A", "B"),
		servicetest.MCQ("a2", "S1", nil, "A", "B"),
	)

	quiz := mustGenerate(t, svc, Caller{UserID: 1}, GenerateQuizReq{
		GroupIDs:      []string{"S1", " S1 "},
		CountPerGroup: intPtr(2),
		Mode:          model.GroupBySubject,
	})
	if quiz.NumberOfQuestions != 2 {
		t.Errorf("duplicate group sampled again: %v", quiz.QuestionIDs())
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	svc, store, _ := newTestQuizService(t, servicetest.MCQ("a1", "S1", nil, "A", "B"))

	cases := []struct {
		name string
		req  GenerateQuizReq
	}{
		{"no groups", GenerateQuizReq{Mode: model.GroupBySubject}},
		{"empty groups", GenerateQuizReq{GroupIDs: []string{}, Mode: model.GroupBySystem}},
		{"blank group", GenerateQuizReq{GroupIDs: []string{"S1", "  "}, Mode: model.GroupBySubject}},
		{"zero count", GenerateQuizReq{GroupIDs: []string{"S1"}, CountPerGroup: intPtr(0), Mode: model.GroupBySubject}},
		{"negative count", GenerateQuizReq{GroupIDs: []string{"S1"}, CountPerGroup: intPtr(-1), Mode: model.GroupBySubject}},
		{"zero duration", GenerateQuizReq{GroupIDs: []string{"S1"}, DurationMinutes: intPtr(0), Mode: model.GroupBySubject}},
		{"unknown mode", GenerateQuizReq{GroupIDs: []string{"S1"}, Mode: "topic"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Generate(t.Context(), Caller{UserID: 1}, tc.req)
			if !errors.Is(err, util.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	all, _ := store.List(t.Context())
	if len(all) != 0 {
		t.Errorf("rejected requests must not create quizzes, found %d", len(all))
	}
}

func TestGenerateEmptyGroups(t *testing.T) {
	svc, _, _ := newTestQuizService(t, servicetest.MCQ("a1", "S1", nil, "A", "B"))

	quiz := mustGenerate(t, svc, Caller{UserID: 1}, GenerateQuizReq{
		GroupIDs: []string{"EMPTY", "S1"},
		Mode:     model.GroupBySubject,
	})
	if quiz.NumberOfQuestions != 1 {
		t.Errorf("expected empty group to be skipped, got %v", quiz.QuestionIDs())
	}

	_, err := svc.Generate(t.Context(), Caller{UserID: 1}, GenerateQuizReq{
		GroupIDs: []string{"EMPTY", "NOPE"},
		Mode:     model.GroupBySubject,
	})
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected not found when every group is empty, got %v", err)
	}

	svc.ApplyConfig(config.QuizConfig{DefaultDurationMinutes: 10, DefaultQuestionsPerGroup: 2, StrictSubjectGroups: true})
	_, err = svc.Generate(t.Context(), Caller{UserID: 1}, GenerateQuizReq{
		GroupIDs: []string{"EMPTY", "S1"},
		Mode:     model.GroupBySubject,
	})
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("strict subject groups: expected not found, got %v", err)
	}
}

func TestSampleIsWithoutReplacement(t *testing.T) {
	svc, _, _ := newTestQuizService(t)
	ids := []string{"1", "2", "3", "4", "5"}

	for i := 0; i < 50; i++ {
		got := svc.sample(ids, 3)
		if len(got) != 3 {
			t.Fatalf("expected 3 ids, got %d", len(got))
		}
		seen := map[string]bool{}
		for _, id := range got {
			if seen[id] {
				t.Fatalf("duplicate id in sample %v", got)
			}
			seen[id] = true
		}
	}
	if ids[0] != "1" || ids[4] != "5" {
		t.Errorf("sample must not reorder its input: %v", ids)
	}
	if got := svc.sample(ids, 9); len(got) != 5 {
		t.Errorf("oversized sample should return the whole pool, got %d", len(got))
	}
}
