package service

import (
	"context"
	"errors"
	"mime/multipart"
	"qbank_backend/internal/config"
	"qbank_backend/internal/model"
	"qbank_backend/internal/service/servicetest"
	"qbank_backend/internal/util"
	"testing"
)

func TestValidateAnswers(t *testing.T) {
	cases := []struct {
		name    string
		qt      model.QuestionType
		answers []AnswerOptionInput
		ok      bool
	}{
		{"mcq one correct", model.QuestionMCQ, []AnswerOptionInput{{Text: "A", IsCorrect: true}, {Text: "B"}}, true},
		{"mcq two correct", model.QuestionMCQ, []AnswerOptionInput{{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}}, false},
		{"mcq none correct", model.QuestionMCQ, []AnswerOptionInput{{Text: "A"}, {Text: "B"}}, false},
		{"true false", model.QuestionTrueFalse, []AnswerOptionInput{{Text: "True"}, {Text: "False", IsCorrect: true}}, true},
		{"short answer", model.QuestionShortAnswer, []AnswerOptionInput{{Text: "Paris"}}, true},
		{"no answers", model.QuestionShortAnswer, nil, false},
		{"blank text", model.QuestionMCQ, []AnswerOptionInput{{Text: " ", IsCorrect: true}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateAnswers(tc.qt, tc.answers)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, util.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCheckUploadLimits(t *testing.T) {
	in := &QuestionInput{QuestionImages: make([]*multipart.FileHeader, util.MaxQuestionImages)}
	if err := checkUploadLimits(in); err != nil {
		t.Errorf("limit itself should pass: %v", err)
	}
	in.QuestionImages = append(in.QuestionImages, &multipart.FileHeader{})
	if err := checkUploadLimits(in); !errors.Is(err, util.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	in = &QuestionInput{AnswerImages: make([]*multipart.FileHeader, util.MaxAnswerImages+1)}
	if err := checkUploadLimits(in); !errors.Is(err, util.ErrValidation) {
		t.Errorf("expected validation error for answer images, got %v", err)
	}
}

func TestBlankID(t *testing.T) {
	for _, id := range []string{"", "  ", "null", "undefined"} {
		if !blankID(id) {
			t.Errorf("%q should be blank", id)
		}
	}
	if blankID("sys-1") {
		t.Error("real id reported blank")
	}
}

func TestOrphanedImages(t *testing.T) {
	before := []model.Image{{PublicID: "a"}, {PublicID: "b"}, {PublicID: "c"}}
	after := []model.Image{{PublicID: "b"}, {PublicID: "d"}}

	got := orphanedImages(before, after)
	if len(got) != 2 || got[0].PublicID != "a" || got[1].PublicID != "c" {
		t.Errorf("orphaned = %v", got)
	}
}

func TestCountCacheDisabledWithoutRedis(t *testing.T) {
	svc := NewCountService(nil, nil, config.QuizConfig{CountCacheSeconds: 60})
	calls := 0
	load := func() (int, error) {
		calls++
		return 7, nil
	}

	for i := 0; i < 2; i++ {
		v, err := cached(context.Background(), svc, "qbank:count:test", load)
		if err != nil || v != 7 {
			t.Fatalf("cached = %d, %v", v, err)
		}
	}
	if calls != 2 {
		t.Errorf("without redis every call should load, got %d loads", calls)
	}

	// 未配置 Redis 时失效操作为空操作
	svc.Invalidate(context.Background())
}

// recordingImages 记录被删除的图片，本组用例不上传文件
type recordingImages struct {
	deleted []model.Image
}

func (r *recordingImages) UploadImage(ctx context.Context, fh *multipart.FileHeader) (model.Image, error) {
	return model.Image{}, errors.New("unexpected upload")
}

func (r *recordingImages) DeleteImages(ctx context.Context, images []model.Image) {
	r.deleted = append(r.deleted, images...)
}

func newTestQuestionService(t *testing.T) (*QuestionService, *servicetest.Questions, *recordingImages) {
	t.Helper()
	f := newCatalogFixture(t)
	questions := servicetest.NewQuestions()
	images := &recordingImages{}
	return NewQuestionService(questions, f.subjectSvc, f.systemSvc, images, nil), questions, images
}

func questionInput(code, subjectID, systemID, subSystemID string) QuestionInput {
	return QuestionInput{
		QuestionCode: code,
		SubjectID:    subjectID,
		SystemID:     systemID,
		SubSystemID:  subSystemID,
		Question:     "Which option is correct?",
		QuestionType: model.QuestionMCQ,
		Answers: []AnswerOptionInput{
			{Text: "A", IsCorrect: true},
			{Text: "B"},
		},
	}
}

func TestCreateQuestionGrouping(t *testing.T) {
	svc, _, _ := newTestQuestionService(t)
	ctx := context.Background()

	cases := []struct {
		name         string
		in           QuestionInput
		err          error
		hasSubSystem bool
	}{
		{"no subsystem", questionInput("G-1", "S1", "SYS1", ""), nil, false},
		{"null subsystem", questionInput("G-2", "S1", "SYS1", "null"), nil, false},
		{"matching subsystem", questionInput("G-3", "S1", "SYS1", "SUB1"), nil, true},
		{"subsystem of another system", questionInput("G-4", "S1", "SYS2", "SUB1"), util.ErrValidation, false},
		{"system of another subject", questionInput("G-5", "S1", "SYS3", ""), util.ErrValidation, false},
		{"unknown system", questionInput("G-6", "S1", "nope", ""), util.ErrInvalidSystem, false},
		{"unknown subsystem", questionInput("G-7", "S1", "SYS1", "nope"), util.ErrSubSystemNotFound, false},
		{"unknown subject", questionInput("G-8", "nope", "SYS1", ""), util.ErrSubjectNotFound, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := svc.Create(ctx, tc.in)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if q.HasSubSystem != tc.hasSubSystem {
				t.Errorf("hasSubSystem = %v, want %v", q.HasSubSystem, tc.hasSubSystem)
			}
			if tc.hasSubSystem && (q.SubSystemID == nil || *q.SubSystemID != tc.in.SubSystemID) {
				t.Errorf("subSystemId = %v, want %s", q.SubSystemID, tc.in.SubSystemID)
			}
			if !tc.hasSubSystem && q.SubSystemID != nil {
				t.Errorf("subSystemId = %s, want nil", *q.SubSystemID)
			}
			if q.SystemID == nil || *q.SystemID != tc.in.SystemID {
				t.Errorf("systemId = %v, want %s", q.SystemID, tc.in.SystemID)
			}
		})
	}
}

func TestQuestionCodeIsUnique(t *testing.T) {
	svc, _, _ := newTestQuestionService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, questionInput("DUP-1", "S1", "SYS1", ""))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, questionInput(" DUP-1 ", "S1", "SYS2", "")); !errors.Is(err, util.ErrQuestionCodeExists) {
		t.Fatalf("duplicate code: expected conflict, got %v", err)
	}
	if !errors.Is(util.ErrQuestionCodeExists, util.ErrConflict) {
		t.Fatal("question code exists should be a conflict")
	}

	second, err := svc.Create(ctx, questionInput("DUP-2", "S1", "SYS2", ""))
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if _, err := svc.Update(ctx, second.ID, QuestionInput{QuestionCode: "DUP-1"}); !errors.Is(err, util.ErrConflict) {
		t.Fatalf("renaming onto a taken code: expected conflict, got %v", err)
	}
	if _, err := svc.Update(ctx, first.ID, QuestionInput{QuestionCode: "DUP-1", Question: "Reworded"}); err != nil {
		t.Fatalf("keeping own code: %v", err)
	}
}

func TestUpdateQuestionRegroups(t *testing.T) {
	svc, questions, images := newTestQuestionService(t)
	ctx := context.Background()

	q, err := svc.Create(ctx, questionInput("R-1", "S1", "SYS1", "SUB1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !q.HasSubSystem {
		t.Fatal("expected subsystem on create")
	}

	if _, err := svc.Update(ctx, q.ID, QuestionInput{SystemID: "SYS2", SubSystemID: "SUB1"}); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("subsystem of another system: expected validation error, got %v", err)
	}
	stored, _ := questions.FindByID(ctx, q.ID)
	if stored.SystemID == nil || *stored.SystemID != "SYS1" || !stored.HasSubSystem {
		t.Fatal("rejected update changed the stored question")
	}

	updated, err := svc.Update(ctx, q.ID, QuestionInput{SystemID: "SYS2"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if *updated.SystemID != "SYS2" || updated.HasSubSystem || updated.SubSystemID != nil {
		t.Errorf("after regroup system=%s hasSubSystem=%v", *updated.SystemID, updated.HasSubSystem)
	}
	if len(images.deleted) != 0 {
		t.Errorf("no images should be deleted, got %v", images.deleted)
	}
}
