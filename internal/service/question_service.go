package service

import (
	"context"
	"errors"
	"mime/multipart"
	"qbank_backend/internal/model"
	"qbank_backend/internal/repository"
	"qbank_backend/internal/util"
	"qbank_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImageStore 题目图片的上传与删除
type ImageStore interface {
	UploadImage(ctx context.Context, fh *multipart.FileHeader) (model.Image, error)
	DeleteImages(ctx context.Context, images []model.Image)
}

type QuestionService struct {
	Repo       QuestionStore
	SubjectSvc *SubjectService
	SystemSvc  *SystemService
	Images     ImageStore
	Counts     *CountService
}

func NewQuestionService(repo QuestionStore, subjectSvc *SubjectService, systemSvc *SystemService, images ImageStore, counts *CountService) *QuestionService {
	return &QuestionService{
		Repo:       repo,
		SubjectSvc: subjectSvc,
		SystemSvc:  systemSvc,
		Images:     images,
		Counts:     counts,
	}
}

type AnswerOptionInput struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	IsCorrect bool         `json:"isCorrect"`
	Image     *model.Image `json:"image"`
}

// QuestionInput 由 multipart 表单解析而来。
// 更新时 ExistingQuestionImages 为空表示保留原有图片，KeepCorrectReasonImage=false 表示移除解析图片
type QuestionInput struct {
	QuestionCode         string
	SubjectID            string
	SystemID             string
	SubSystemID          string
	Question             string
	QuestionType         model.QuestionType
	Answers              []AnswerOptionInput
	CorrectReasonDetails string

	QuestionImages     []*multipart.FileHeader
	AnswerImages       []*multipart.FileHeader
	CorrectReasonImage *multipart.FileHeader

	ExistingQuestionImages *[]model.Image
	KeepCorrectReasonImage *bool
}

func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	q, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionService) List(ctx context.Context, filter repository.QuestionFilter) ([]model.Question, error) {
	return s.Repo.List(ctx, filter)
}

func checkUploadLimits(in *QuestionInput) error {
	if len(in.QuestionImages) > util.MaxQuestionImages {
		return util.Validationf("At most %d question images are allowed", util.MaxQuestionImages)
	}
	if len(in.AnswerImages) > util.MaxAnswerImages {
		return util.Validationf("At most %d answer images are allowed", util.MaxAnswerImages)
	}
	return nil
}

// validateAnswers 选择题恰好一个正确选项，简答题第一个选项为标准答案
func validateAnswers(qt model.QuestionType, answers []AnswerOptionInput) error {
	if len(answers) == 0 {
		return util.Validationf("At least one answer is required")
	}
	for i, a := range answers {
		if strings.TrimSpace(a.Text) == "" {
			return util.Validationf("Answer %d has no text", i+1)
		}
	}
	if qt.HasChoices() {
		correct := 0
		for _, a := range answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return util.Validationf("%s questions need exactly one correct answer, got %d", qt, correct)
		}
	}
	return nil
}

func blankID(id string) bool {
	id = strings.TrimSpace(id)
	return id == "" || id == "null" || id == "undefined"
}

// resolveGrouping 校验科目 / 系统 / 子系统的归属关系并写入题目
func (s *QuestionService) resolveGrouping(ctx context.Context, q *model.Question, in *QuestionInput) error {
	subject, err := s.SubjectSvc.Get(ctx, in.SubjectID)
	if err != nil {
		return err
	}
	system, err := s.SystemSvc.Get(ctx, in.SystemID)
	if errors.Is(err, util.ErrSystemNotFound) {
		return util.ErrInvalidSystem
	}
	if err != nil {
		return err
	}
	if system.SubjectID != subject.ID {
		return util.Validationf("System %s does not belong to subject %s", system.ID, subject.ID)
	}

	q.SubjectID = subject.ID
	q.SystemID = &system.ID
	q.SubSystemID = nil
	q.HasSubSystem = false
	if !blankID(in.SubSystemID) {
		sub, err := s.SystemSvc.GetSubSystem(ctx, in.SubSystemID)
		if err != nil {
			return err
		}
		if sub.SystemID != system.ID {
			return util.Validationf("Subsystem %s does not belong to system %s", sub.ID, system.ID)
		}
		q.SubSystemID = &sub.ID
		q.HasSubSystem = true
	}
	return nil
}

func (s *QuestionService) ensureCodeFree(ctx context.Context, code, selfID string) error {
	existing, err := s.Repo.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return util.ErrQuestionCodeExists
	}
	return nil
}

// uploadSet 记录本次请求上传的图片，失败时统一回收
type uploadSet struct {
	store    ImageStore
	uploaded []model.Image
}

func (u *uploadSet) upload(ctx context.Context, fh *multipart.FileHeader) (model.Image, error) {
	img, err := u.store.UploadImage(ctx, fh)
	if err != nil {
		return model.Image{}, err
	}
	u.uploaded = append(u.uploaded, img)
	return img, nil
}

func (u *uploadSet) rollback(ctx context.Context) {
	if len(u.uploaded) > 0 {
		u.store.DeleteImages(ctx, u.uploaded)
	}
}

// buildAnswers 生成选项，上传的选项图片按下标对应；allowed 为可沿用的已有图片
func (s *QuestionService) buildAnswers(ctx context.Context, up *uploadSet, in *QuestionInput, allowed map[string]bool) ([]model.AnswerOption, error) {
	answers := make([]model.AnswerOption, len(in.Answers))
	for i, a := range in.Answers {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			id = model.GenerateUUID()
		}
		answers[i] = model.AnswerOption{
			ID:        id,
			Text:      strings.TrimSpace(a.Text),
			IsCorrect: a.IsCorrect,
		}
		if a.Image != nil && allowed[a.Image.PublicID] {
			img := *a.Image
			answers[i].Image = &img
		}
	}
	for i, fh := range in.AnswerImages {
		if i >= len(answers) {
			break
		}
		img, err := up.upload(ctx, fh)
		if err != nil {
			return nil, err
		}
		answers[i].Image = &img
	}
	return answers, nil
}

func (s *QuestionService) Create(ctx context.Context, in QuestionInput) (q *model.Question, err error) {
	in.QuestionCode = strings.TrimSpace(in.QuestionCode)
	in.Question = strings.TrimSpace(in.Question)
	if in.QuestionCode == "" || in.SubjectID == "" || blankID(in.SystemID) || in.Question == "" || in.QuestionType == "" {
		return nil, util.Validationf("Missing required fields")
	}
	if !in.QuestionType.Valid() {
		return nil, util.Validationf("Invalid question type %q", in.QuestionType)
	}
	if err := validateAnswers(in.QuestionType, in.Answers); err != nil {
		return nil, err
	}
	if err := checkUploadLimits(&in); err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, in.QuestionCode, ""); err != nil {
		return nil, err
	}

	q = &model.Question{
		QuestionCode:         in.QuestionCode,
		Body:                 in.Question,
		QuestionType:         in.QuestionType,
		CorrectReasonDetails: in.CorrectReasonDetails,
	}
	if err := s.resolveGrouping(ctx, q, &in); err != nil {
		return nil, err
	}

	up := &uploadSet{store: s.Images}
	defer func() {
		if err != nil {
			up.rollback(ctx)
		}
	}()

	q.Images = make([]model.Image, 0, len(in.QuestionImages))
	for _, fh := range in.QuestionImages {
		img, err := up.upload(ctx, fh)
		if err != nil {
			return nil, err
		}
		q.Images = append(q.Images, img)
	}
	if q.Answers, err = s.buildAnswers(ctx, up, &in, nil); err != nil {
		return nil, err
	}
	if in.CorrectReasonImage != nil {
		img, err := up.upload(ctx, in.CorrectReasonImage)
		if err != nil {
			return nil, err
		}
		q.CorrectReasonImage = &img
	}

	if err = s.Repo.Create(ctx, q); err != nil {
		return nil, err
	}
	s.Counts.Invalidate(ctx)
	logger.Log.Info("Question created", zap.String("questionId", q.ID), zap.String("code", q.QuestionCode))
	return q, nil
}

// Update 未提供的文本字段保持不变；被替换或移除的图片在保存成功后删除
func (s *QuestionService) Update(ctx context.Context, id string, in QuestionInput) (q *model.Question, err error) {
	q, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := q.StoredImages()
	allowed := make(map[string]bool, len(previous))
	for _, img := range previous {
		allowed[img.PublicID] = true
	}

	if code := strings.TrimSpace(in.QuestionCode); code != "" && code != q.QuestionCode {
		if err := s.ensureCodeFree(ctx, code, q.ID); err != nil {
			return nil, err
		}
		q.QuestionCode = code
	}
	if body := strings.TrimSpace(in.Question); body != "" {
		q.Body = body
	}
	if in.QuestionType != "" {
		if !in.QuestionType.Valid() {
			return nil, util.Validationf("Invalid question type %q", in.QuestionType)
		}
		q.QuestionType = in.QuestionType
	}
	if in.CorrectReasonDetails != "" {
		q.CorrectReasonDetails = in.CorrectReasonDetails
	}
	if err := checkUploadLimits(&in); err != nil {
		return nil, err
	}

	if in.SubjectID == "" {
		in.SubjectID = q.SubjectID
	}
	if blankID(in.SystemID) && q.SystemID != nil {
		in.SystemID = *q.SystemID
	}
	if err := s.resolveGrouping(ctx, q, &in); err != nil {
		return nil, err
	}

	up := &uploadSet{store: s.Images}
	defer func() {
		if err != nil {
			up.rollback(ctx)
		}
	}()

	if in.Answers != nil {
		if err := validateAnswers(q.QuestionType, in.Answers); err != nil {
			return nil, err
		}
		if q.Answers, err = s.buildAnswers(ctx, up, &in, allowed); err != nil {
			return nil, err
		}
	} else if err := validateAnswers(q.QuestionType, optionInputs(q.Answers)); err != nil {
		return nil, err
	}

	if in.ExistingQuestionImages != nil {
		kept := make([]model.Image, 0, len(*in.ExistingQuestionImages))
		for _, img := range *in.ExistingQuestionImages {
			if allowed[img.PublicID] {
				kept = append(kept, img)
			}
		}
		q.Images = kept
	}
	if len(q.Images)+len(in.QuestionImages) > util.MaxQuestionImages {
		return nil, util.Validationf("At most %d question images are allowed", util.MaxQuestionImages)
	}
	for _, fh := range in.QuestionImages {
		img, err := up.upload(ctx, fh)
		if err != nil {
			return nil, err
		}
		q.Images = append(q.Images, img)
	}

	if in.KeepCorrectReasonImage != nil && !*in.KeepCorrectReasonImage {
		q.CorrectReasonImage = nil
	}
	if in.CorrectReasonImage != nil {
		img, err := up.upload(ctx, in.CorrectReasonImage)
		if err != nil {
			return nil, err
		}
		q.CorrectReasonImage = &img
	}

	q.Subject, q.System, q.SubSystem = nil, nil, nil
	if err = s.Repo.Update(ctx, q); err != nil {
		return nil, err
	}
	up.uploaded = nil

	s.Images.DeleteImages(ctx, orphanedImages(previous, q.StoredImages()))
	s.Counts.Invalidate(ctx)
	return s.Get(ctx, q.ID)
}

func optionInputs(options []model.AnswerOption) []AnswerOptionInput {
	inputs := make([]AnswerOptionInput, len(options))
	for i, o := range options {
		inputs[i] = AnswerOptionInput{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect, Image: o.Image}
	}
	return inputs
}

// orphanedImages 更新前引用、更新后不再引用的图片
func orphanedImages(before, after []model.Image) []model.Image {
	still := make(map[string]bool, len(after))
	for _, img := range after {
		still[img.PublicID] = true
	}
	var orphaned []model.Image
	for _, img := range before {
		if !still[img.PublicID] {
			orphaned = append(orphaned, img)
		}
	}
	return orphaned
}

// Delete 删除题目及其全部图片
func (s *QuestionService) Delete(ctx context.Context, id string) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.Repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrQuestionNotFound
	}
	if err != nil {
		return err
	}

	s.Images.DeleteImages(ctx, q.StoredImages())
	s.Counts.Invalidate(ctx)
	logger.Log.Info("Question deleted", zap.String("questionId", id))
	return nil
}
