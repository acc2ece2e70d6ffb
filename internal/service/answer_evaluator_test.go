package service

import (
	"errors"
	"qbank_backend/internal/model"
	"qbank_backend/internal/service/servicetest"
	"qbank_backend/internal/util"
	"testing"
)

func TestEvaluateAnswer(t *testing.T) {
	mcq := servicetest.MCQ("m", "S1", nil, "B", "A", "C")
	short := servicetest.ShortAnswer("s", "S1", "Paris")
	noCorrect := servicetest.MCQ("n", "S1", nil, "X")
	noCorrect.Answers[0].IsCorrect = false

	cases := []struct {
		name     string
		q        *model.Question
		answer   *string
		expected bool
	}{
		{"mcq exact", &mcq, strPtr("B"), true},
		{"mcq trimmed", &mcq, strPtr("  B "), true},
		{"mcq case sensitive", &mcq, strPtr("b"), false},
		{"mcq wrong option", &mcq, strPtr("A"), false},
		{"mcq unanswered", &mcq, nil, false},
		{"mcq blank", &mcq, strPtr("   "), false},
		{"short exact", &short, strPtr("Paris"), true},
		{"short case insensitive", &short, strPtr("paris"), true},
		{"short trimmed", &short, strPtr(" Paris "), true},
		{"short misspelled", &short, strPtr("parris"), false},
		{"no correct option", &noCorrect, strPtr("X"), false},
		{"missing question", nil, strPtr("B"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EvaluateAnswer(tc.q, tc.answer); got != tc.expected {
				t.Errorf("EvaluateAnswer = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestCanonicalAnswer(t *testing.T) {
	mcq := servicetest.MCQ("m", "S1", nil, " B ", "A")
	if got, ok := CanonicalAnswer(&mcq); !ok || got != "B" {
		t.Errorf("mcq canonical = %q, %v", got, ok)
	}

	short := servicetest.ShortAnswer("s", "S1", "Paris")
	if got, ok := CanonicalAnswer(&short); !ok || got != "Paris" {
		t.Errorf("short canonical = %q, %v", got, ok)
	}

	empty := model.Question{QuestionType: model.QuestionShortAnswer}
	if _, ok := CanonicalAnswer(&empty); ok {
		t.Error("short answer without options has no canonical answer")
	}
}

func TestResolveSelection(t *testing.T) {
	q := servicetest.MCQ("m", "S1", nil, "B", "A")

	got, err := ResolveSelection(&q, "m-a", nil)
	if err != nil || got == nil || *got != "B" {
		t.Fatalf("resolve by option id = %v, %v", got, err)
	}

	// 选项ID优先于文本
	got, err = ResolveSelection(&q, "m-b", strPtr("B"))
	if err != nil || *got != "A" {
		t.Fatalf("option id should win over text, got %v, %v", got, err)
	}

	got, err = ResolveSelection(&q, "", strPtr("  A "))
	if err != nil || *got != "A" {
		t.Fatalf("resolve by text = %v, %v", got, err)
	}

	if _, err := ResolveSelection(&q, "m-z", nil); !errors.Is(err, util.ErrValidation) {
		t.Errorf("unknown option: expected validation error, got %v", err)
	}
	if _, err := ResolveSelection(&q, "", strPtr(" ")); !errors.Is(err, util.ErrValidation) {
		t.Errorf("blank answer: expected validation error, got %v", err)
	}
}
