package service

import (
	"context"
	"errors"
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type SystemService struct {
	Repo       SystemStore
	SubRepo    SubSystemStore
	SubjectSvc *SubjectService
	Counts     *CountService
}

func NewSystemService(repo SystemStore, subRepo SubSystemStore, subjectSvc *SubjectService, counts *CountService) *SystemService {
	return &SystemService{Repo: repo, SubRepo: subRepo, SubjectSvc: subjectSvc, Counts: counts}
}

type SystemReq struct {
	SubjectID         string `json:"subjectId" binding:"required"`
	SystemName        string `json:"systemName" binding:"required"`
	SystemDescription string `json:"systemDescription"`
}

type SubSystemReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SystemID    string `json:"systemId" binding:"required"`
}

func (s *SystemService) Get(ctx context.Context, id string) (*model.System, error) {
	system, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSystemNotFound
	}
	return system, err
}

func (s *SystemService) Create(ctx context.Context, req SystemReq) (*model.System, error) {
	name := strings.TrimSpace(req.SystemName)
	if name == "" {
		return nil, util.Validationf("System name is required")
	}
	subject, err := s.SubjectSvc.Get(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}

	system := &model.System{
		SubjectID:         subject.ID,
		SystemName:        name,
		SystemDescription: req.SystemDescription,
	}
	if err := s.Repo.Create(ctx, system); err != nil {
		return nil, err
	}
	system.Subject = subject
	s.Counts.Invalidate(ctx)
	return system, nil
}

func (s *SystemService) List(ctx context.Context) ([]model.System, error) {
	return s.Repo.List(ctx)
}

// ListBySubject 科目不存在时返回 NotFound
func (s *SystemService) ListBySubject(ctx context.Context, subjectID string) ([]model.System, error) {
	if _, err := s.SubjectSvc.Get(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.Repo.ListBySubject(ctx, subjectID)
}

func (s *SystemService) Update(ctx context.Context, id string, req SystemReq) (*model.System, error) {
	system, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.SystemName); name != "" {
		system.SystemName = name
	}
	system.SystemDescription = req.SystemDescription
	if req.SubjectID != "" && req.SubjectID != system.SubjectID {
		subject, err := s.SubjectSvc.Get(ctx, req.SubjectID)
		if err != nil {
			return nil, err
		}
		system.SubjectID = subject.ID
		system.Subject = subject
	}

	if err := s.Repo.Update(ctx, system); err != nil {
		return nil, err
	}
	s.Counts.Invalidate(ctx)
	return system, nil
}

func (s *SystemService) Delete(ctx context.Context, id string) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrSystemNotFound
	}
	if err != nil {
		return err
	}
	s.Counts.Invalidate(ctx)
	return nil
}

func (s *SystemService) GetSubSystem(ctx context.Context, id string) (*model.SubSystem, error) {
	sub, err := s.SubRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubSystemNotFound
	}
	return sub, err
}

// parentSystem 子系统的父系统必须存在，科目随父系统确定
func (s *SystemService) parentSystem(ctx context.Context, systemID string) (*model.System, error) {
	system, err := s.Get(ctx, systemID)
	if errors.Is(err, util.ErrSystemNotFound) {
		return nil, util.ErrInvalidSystem
	}
	return system, err
}

func (s *SystemService) CreateSubSystem(ctx context.Context, req SubSystemReq) (*model.SubSystem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, util.Validationf("Name is required")
	}
	system, err := s.parentSystem(ctx, req.SystemID)
	if err != nil {
		return nil, err
	}

	sub := &model.SubSystem{
		Name:        name,
		Description: req.Description,
		SubjectID:   system.SubjectID,
		SystemID:    system.ID,
	}
	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	sub.System = system
	sub.Subject = system.Subject
	return sub, nil
}

func (s *SystemService) ListSubSystems(ctx context.Context) ([]model.SubSystem, error) {
	return s.SubRepo.List(ctx)
}

// ListSubSystemsBySystem 没有子系统时返回 NotFound
func (s *SystemService) ListSubSystemsBySystem(ctx context.Context, systemID string) ([]model.SubSystem, error) {
	subs, err := s.SubRepo.ListBySystem(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, util.NotFoundf("No subsystems found for this system")
	}
	return subs, nil
}

func (s *SystemService) UpdateSubSystem(ctx context.Context, id string, req SubSystemReq) (*model.SubSystem, error) {
	sub, err := s.GetSubSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		sub.Name = name
	}
	sub.Description = req.Description
	if req.SystemID != "" && req.SystemID != sub.SystemID {
		system, err := s.parentSystem(ctx, req.SystemID)
		if err != nil {
			return nil, err
		}
		sub.SystemID = system.ID
		sub.SubjectID = system.SubjectID
		sub.System = system
		sub.Subject = system.Subject
	}

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SystemService) DeleteSubSystem(ctx context.Context, id string) error {
	err := s.SubRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrSubSystemNotFound
	}
	return err
}
