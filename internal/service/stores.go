package service

import (
	"context"
	"qbank_backend/internal/model"
	"qbank_backend/internal/repository"
)

// 以下接口由 repository 包中的 gorm 实现满足，测试使用 servicetest 的内存实现

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ListExcept(ctx context.Context, excludeID uint) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) error
}

type SubjectStore interface {
	Create(ctx context.Context, subject *model.Subject) error
	FindByID(ctx context.Context, id string) (*model.Subject, error)
	// FindByName 名称比较不区分大小写
	FindByName(ctx context.Context, name string) (*model.Subject, error)
	List(ctx context.Context) ([]model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, id string) error
}

type SystemStore interface {
	Create(ctx context.Context, system *model.System) error
	FindByID(ctx context.Context, id string) (*model.System, error)
	List(ctx context.Context) ([]model.System, error)
	ListBySubject(ctx context.Context, subjectID string) ([]model.System, error)
	Update(ctx context.Context, system *model.System) error
	Delete(ctx context.Context, id string) error
}

type SubSystemStore interface {
	Create(ctx context.Context, sub *model.SubSystem) error
	FindByID(ctx context.Context, id string) (*model.SubSystem, error)
	List(ctx context.Context) ([]model.SubSystem, error)
	ListBySystem(ctx context.Context, systemID string) ([]model.SubSystem, error)
	Update(ctx context.Context, sub *model.SubSystem) error
	Delete(ctx context.Context, id string) error
}

// QuestionStore 题目维护所需的持久化能力
type QuestionStore interface {
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id string) (*model.Question, error)
	FindByCode(ctx context.Context, code string) (*model.Question, error)
	List(ctx context.Context, filter repository.QuestionFilter) ([]model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id string) error
}

var (
	_ UserStore      = (*repository.UserRepository)(nil)
	_ SubjectStore   = (*repository.SubjectRepository)(nil)
	_ SystemStore    = (*repository.SystemRepository)(nil)
	_ SubSystemStore = (*repository.SubSystemRepository)(nil)
	_ QuestionStore  = (*repository.QuestionRepository)(nil)
	_ QuizStore      = (*repository.QuizRepository)(nil)
	_ QuestionSource = (*repository.QuestionRepository)(nil)
)
