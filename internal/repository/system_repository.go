package repository

import (
	"context"
	"qbank_backend/internal/model"

	"gorm.io/gorm"
)

type SystemRepository struct {
	DB *gorm.DB
}

func NewSystemRepository(db *gorm.DB) *SystemRepository {
	return &SystemRepository{DB: db}
}

func (r *SystemRepository) Create(ctx context.Context, system *model.System) error {
	return r.DB.WithContext(ctx).Omit("Subject").Create(system).Error
}

func (r *SystemRepository) FindByID(ctx context.Context, id string) (*model.System, error) {
	var system model.System
	err := r.DB.WithContext(ctx).Preload("Subject").First(&system, "id = ?", id).Error
	return &system, err
}

func (r *SystemRepository) List(ctx context.Context) ([]model.System, error) {
	var systems []model.System
	err := r.DB.WithContext(ctx).Preload("Subject").Order("system_name ASC").Find(&systems).Error
	return systems, err
}

func (r *SystemRepository) ListBySubject(ctx context.Context, subjectID string) ([]model.System, error) {
	var systems []model.System
	err := r.DB.WithContext(ctx).
		Preload("Subject").
		Where("subject_id = ?", subjectID).
		Order("system_name ASC").
		Find(&systems).Error
	return systems, err
}

func (r *SystemRepository) Update(ctx context.Context, system *model.System) error {
	return r.DB.WithContext(ctx).Omit("Subject").Save(system).Error
}

func (r *SystemRepository) Delete(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Unscoped().Delete(&model.System{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type SubSystemRepository struct {
	DB *gorm.DB
}

func NewSubSystemRepository(db *gorm.DB) *SubSystemRepository {
	return &SubSystemRepository{DB: db}
}

func (r *SubSystemRepository) Create(ctx context.Context, sub *model.SubSystem) error {
	return r.DB.WithContext(ctx).Omit("Subject", "System").Create(sub).Error
}

func (r *SubSystemRepository) FindByID(ctx context.Context, id string) (*model.SubSystem, error) {
	var sub model.SubSystem
	err := r.DB.WithContext(ctx).
		Preload("Subject").
		Preload("System").
		First(&sub, "id = ?", id).Error
	return &sub, err
}

func (r *SubSystemRepository) List(ctx context.Context) ([]model.SubSystem, error) {
	var subs []model.SubSystem
	err := r.DB.WithContext(ctx).
		Preload("Subject").
		Preload("System").
		Order("name ASC").
		Find(&subs).Error
	return subs, err
}

func (r *SubSystemRepository) ListBySystem(ctx context.Context, systemID string) ([]model.SubSystem, error) {
	var subs []model.SubSystem
	err := r.DB.WithContext(ctx).
		Preload("Subject").
		Preload("System").
		Where("system_id = ?", systemID).
		Order("name ASC").
		Find(&subs).Error
	return subs, err
}

func (r *SubSystemRepository) Update(ctx context.Context, sub *model.SubSystem) error {
	return r.DB.WithContext(ctx).Omit("Subject", "System").Save(sub).Error
}

func (r *SubSystemRepository) Delete(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Unscoped().Delete(&model.SubSystem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
