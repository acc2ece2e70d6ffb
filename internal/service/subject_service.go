package service

import (
	"context"
	"errors"
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type SubjectService struct {
	Repo   SubjectStore
	Counts *CountService
}

func NewSubjectService(repo SubjectStore, counts *CountService) *SubjectService {
	return &SubjectService{Repo: repo, Counts: counts}
}

type SubjectReq struct {
	Subject string `json:"subject" binding:"required"`
}

func (s *SubjectService) Get(ctx context.Context, id string) (*model.Subject, error) {
	subject, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubjectNotFound
	}
	return subject, err
}

// ensureUnique 科目名称不区分大小写唯一
func (s *SubjectService) ensureUnique(ctx context.Context, name, selfID string) error {
	existing, err := s.Repo.FindByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return util.ErrSubjectExists
	}
	return nil
}

func (s *SubjectService) Create(ctx context.Context, req SubjectReq) (*model.Subject, error) {
	name := strings.TrimSpace(req.Subject)
	if name == "" {
		return nil, util.Validationf("Subject name is required")
	}
	if err := s.ensureUnique(ctx, name, ""); err != nil {
		return nil, err
	}

	subject := &model.Subject{Subject: name}
	if err := s.Repo.Create(ctx, subject); err != nil {
		return nil, err
	}
	s.Counts.Invalidate(ctx)
	return subject, nil
}

func (s *SubjectService) List(ctx context.Context) ([]model.Subject, error) {
	return s.Repo.List(ctx)
}

func (s *SubjectService) Update(ctx context.Context, id string, req SubjectReq) (*model.Subject, error) {
	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Subject)
	if name == "" {
		return nil, util.Validationf("Subject name is required")
	}
	if err := s.ensureUnique(ctx, name, subject.ID); err != nil {
		return nil, err
	}

	subject.Subject = name
	if err := s.Repo.Update(ctx, subject); err != nil {
		return nil, err
	}
	s.Counts.Invalidate(ctx)
	return subject, nil
}

func (s *SubjectService) Delete(ctx context.Context, id string) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrSubjectNotFound
	}
	if err != nil {
		return err
	}
	s.Counts.Invalidate(ctx)
	return nil
}
