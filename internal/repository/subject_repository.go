package repository

import (
	"context"
	"qbank_backend/internal/model"

	"gorm.io/gorm"
)

type SubjectRepository struct {
	DB *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: db}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	return r.DB.WithContext(ctx).Create(subject).Error
}

func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.DB.WithContext(ctx).First(&subject, "id = ?", id).Error
	return &subject, err
}

// FindByName 名称比较不区分大小写
func (r *SubjectRepository) FindByName(ctx context.Context, name string) (*model.Subject, error) {
	var subject model.Subject
	err := r.DB.WithContext(ctx).
		Where("LOWER(subject) = LOWER(?)", name).
		First(&subject).Error
	return &subject, err
}

func (r *SubjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.DB.WithContext(ctx).Order("subject ASC").Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) Update(ctx context.Context, subject *model.Subject) error {
	return r.DB.WithContext(ctx).Save(subject).Error
}

func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Unscoped().Delete(&model.Subject{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
