package repository

import (
	"context"
	"fmt"
	"qbank_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("Subject").
		Preload("System").
		Preload("SubSystem")
}

func (r *QuestionRepository) Create(ctx context.Context, question *model.Question) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(question).Error
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.withRefs(ctx).First(&question, "id = ?", id).Error
	return &question, err
}

func (r *QuestionRepository) FindByCode(ctx context.Context, code string) (*model.Question, error) {
	var question model.Question
	err := r.DB.WithContext(ctx).Where("question_code = ?", code).First(&question).Error
	return &question, err
}

// QuestionFilter 题目列表的可选过滤条件
type QuestionFilter struct {
	SubjectID   string
	SystemID    string
	SubSystemID string
}

func (r *QuestionRepository) List(ctx context.Context, filter QuestionFilter) ([]model.Question, error) {
	query := r.withRefs(ctx)
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.SystemID != "" {
		query = query.Where("system_id = ?", filter.SystemID)
	}
	if filter.SubSystemID != "" {
		query = query.Where("sub_system_id = ?", filter.SubSystemID)
	}

	var questions []model.Question
	err := query.Order("created_at DESC").Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) Update(ctx context.Context, question *model.Question) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(question).Error
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Unscoped().Delete(&model.Question{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func groupColumn(mode model.GroupingMode) (string, error) {
	switch mode {
	case model.GroupBySubject:
		return "subject_id", nil
	case model.GroupBySystem:
		return "system_id", nil
	}
	return "", fmt.Errorf("unknown grouping mode %q", mode)
}

// ListIDsByGroup 返回某个科目或系统下全部题目的ID，供组卷抽样
func (r *QuestionRepository) ListIDsByGroup(ctx context.Context, mode model.GroupingMode, groupID string) ([]string, error) {
	column, err := groupColumn(mode)
	if err != nil {
		return nil, err
	}

	var ids []string
	err = r.DB.WithContext(ctx).
		Model(&model.Question{}).
		Where(column+" = ?", groupID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// FindByIDs 批量加载题目，不存在的ID直接忽略
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []model.Question
	err := r.withRefs(ctx).Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

type SubjectCount struct {
	ID            string `json:"id"`
	Subject       string `json:"subject"`
	QuestionCount int64  `json:"questionCount"`
}

type SystemCount struct {
	ID            string  `json:"id"`
	SystemName    string  `json:"systemName"`
	Subject       *string `json:"subject"`
	QuestionCount int64   `json:"questionCount"`
}

// CountBySubject 每个科目下的题目数量，没有题目的科目计为 0
func (r *QuestionRepository) CountBySubject(ctx context.Context) ([]SubjectCount, error) {
	var rows []SubjectCount
	err := r.DB.WithContext(ctx).
		Table("subjects s").
		Select("s.id, s.subject, COUNT(q.id) AS question_count").
		Joins("LEFT JOIN questions q ON q.subject_id = s.id AND q.deleted_at IS NULL").
		Where("s.deleted_at IS NULL").
		Group("s.id, s.subject").
		Order("s.subject ASC").
		Scan(&rows).Error
	return rows, err
}

// CountBySystem 每个系统下的题目数量；subjectIDs 非空时只统计这些科目下的系统
func (r *QuestionRepository) CountBySystem(ctx context.Context, subjectIDs []string) ([]SystemCount, error) {
	query := r.DB.WithContext(ctx).
		Table("systems sy").
		Select("sy.id, sy.system_name, su.subject AS subject, COUNT(q.id) AS question_count").
		Joins("LEFT JOIN subjects su ON su.id = sy.subject_id").
		Joins("LEFT JOIN questions q ON q.system_id = sy.id AND q.deleted_at IS NULL").
		Where("sy.deleted_at IS NULL")
	if len(subjectIDs) > 0 {
		query = query.Where("sy.subject_id IN ?", subjectIDs)
	}

	var rows []SystemCount
	err := query.
		Group("sy.id, sy.system_name, su.subject").
		Order("sy.system_name ASC").
		Scan(&rows).Error
	return rows, err
}
