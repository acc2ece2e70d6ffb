package servicetest

import (
	"context"
	"qbank_backend/internal/model"
	"qbank_backend/internal/repository"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// table 以字符串主键保存记录，读写均为值拷贝
type table[T any] struct {
	mu   sync.Mutex
	rows []T
	id   func(*T) *string
}

func (t *table[T]) insert(row *T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id := t.id(row); *id == "" {
		*id = model.GenerateUUID()
	}
	t.rows = append(t.rows, *row)
}

func (t *table[T]) find(match func(*T) bool) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if match(&t.rows[i]) {
			row := t.rows[i]
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (t *table[T]) byID(id string) (*T, error) {
	return t.find(func(row *T) bool { return *t.id(row) == id })
}

func (t *table[T]) filter(keep func(*T) bool) []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []T{}
	for i := range t.rows {
		if keep(&t.rows[i]) {
			out = append(out, t.rows[i])
		}
	}
	return out
}

func (t *table[T]) save(row *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if *t.id(&t.rows[i]) == *t.id(row) {
			t.rows[i] = *row
			return nil
		}
	}
	t.rows = append(t.rows, *row)
	return nil
}

func (t *table[T]) remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if *t.id(&t.rows[i]) == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func all[T any](*T) bool { return true }

// Subjects 内存科目表
type Subjects struct{ t table[model.Subject] }

func NewSubjects(items ...model.Subject) *Subjects {
	s := &Subjects{t: table[model.Subject]{id: func(r *model.Subject) *string { return &r.ID }}}
	for i := range items {
		s.t.insert(&items[i])
	}
	return s
}

func (s *Subjects) Create(ctx context.Context, subject *model.Subject) error {
	s.t.insert(subject)
	return nil
}

func (s *Subjects) FindByID(ctx context.Context, id string) (*model.Subject, error) {
	return s.t.byID(id)
}

func (s *Subjects) FindByName(ctx context.Context, name string) (*model.Subject, error) {
	return s.t.find(func(r *model.Subject) bool { return strings.EqualFold(r.Subject, name) })
}

func (s *Subjects) List(ctx context.Context) ([]model.Subject, error) {
	return s.t.filter(all[model.Subject]), nil
}

func (s *Subjects) Update(ctx context.Context, subject *model.Subject) error {
	return s.t.save(subject)
}

func (s *Subjects) Delete(ctx context.Context, id string) error {
	return s.t.remove(id)
}

// Systems 内存系统表
type Systems struct{ t table[model.System] }

func NewSystems(items ...model.System) *Systems {
	s := &Systems{t: table[model.System]{id: func(r *model.System) *string { return &r.ID }}}
	for i := range items {
		s.t.insert(&items[i])
	}
	return s
}

func (s *Systems) Create(ctx context.Context, system *model.System) error {
	s.t.insert(system)
	return nil
}

func (s *Systems) FindByID(ctx context.Context, id string) (*model.System, error) {
	return s.t.byID(id)
}

func (s *Systems) List(ctx context.Context) ([]model.System, error) {
	return s.t.filter(all[model.System]), nil
}

func (s *Systems) ListBySubject(ctx context.Context, subjectID string) ([]model.System, error) {
	return s.t.filter(func(r *model.System) bool { return r.SubjectID == subjectID }), nil
}

func (s *Systems) Update(ctx context.Context, system *model.System) error {
	return s.t.save(system)
}

func (s *Systems) Delete(ctx context.Context, id string) error {
	return s.t.remove(id)
}

// SubSystems 内存子系统表
type SubSystems struct{ t table[model.SubSystem] }

func NewSubSystems(items ...model.SubSystem) *SubSystems {
	s := &SubSystems{t: table[model.SubSystem]{id: func(r *model.SubSystem) *string { return &r.ID }}}
	for i := range items {
		s.t.insert(&items[i])
	}
	return s
}

func (s *SubSystems) Create(ctx context.Context, sub *model.SubSystem) error {
	s.t.insert(sub)
	return nil
}

func (s *SubSystems) FindByID(ctx context.Context, id string) (*model.SubSystem, error) {
	return s.t.byID(id)
}

func (s *SubSystems) List(ctx context.Context) ([]model.SubSystem, error) {
	return s.t.filter(all[model.SubSystem]), nil
}

func (s *SubSystems) ListBySystem(ctx context.Context, systemID string) ([]model.SubSystem, error) {
	return s.t.filter(func(r *model.SubSystem) bool { return r.SystemID == systemID }), nil
}

func (s *SubSystems) Update(ctx context.Context, sub *model.SubSystem) error {
	return s.t.save(sub)
}

func (s *SubSystems) Delete(ctx context.Context, id string) error {
	return s.t.remove(id)
}

// Users 内存用户表，ID 自增
type Users struct {
	mu     sync.Mutex
	rows   []model.User
	nextID uint
}

func NewUsers(items ...model.User) *Users {
	u := &Users{}
	for i := range items {
		u.Create(context.Background(), &items[i])
	}
	return u
}

func (u *Users) Create(ctx context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if user.ID == 0 {
		u.nextID++
		user.ID = u.nextID
	} else if user.ID > u.nextID {
		u.nextID = user.ID
	}
	u.rows = append(u.rows, *user)
	return nil
}

func (u *Users) find(match func(*model.User) bool) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.rows {
		if match(&u.rows[i]) {
			user := u.rows[i]
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *Users) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return u.find(func(r *model.User) bool { return r.ID == id })
}

func (u *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.find(func(r *model.User) bool { return r.Email == email })
}

func (u *Users) ListExcept(ctx context.Context, excludeID uint) ([]model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := []model.User{}
	for _, r := range u.rows {
		if r.ID != excludeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (u *Users) Update(ctx context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.rows {
		if u.rows[i].ID == user.ID {
			u.rows[i] = *user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (u *Users) Delete(ctx context.Context, id uint) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.rows {
		if u.rows[i].ID == id {
			u.rows = append(u.rows[:i], u.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// 以下方法让 Questions 同时充当题目维护所用的存储

func (r *Questions) Create(ctx context.Context, question *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if question.ID == "" {
		question.ID = model.GenerateUUID()
	}
	r.items = append(r.items, *question)
	return nil
}

func (r *Questions) find(match func(*model.Question) bool) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if match(&r.items[i]) {
			q := r.items[i]
			return &q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Questions) FindByID(ctx context.Context, id string) (*model.Question, error) {
	return r.find(func(q *model.Question) bool { return q.ID == id })
}

func (r *Questions) FindByCode(ctx context.Context, code string) (*model.Question, error) {
	return r.find(func(q *model.Question) bool { return q.QuestionCode == code })
}

func (r *Questions) List(ctx context.Context, filter repository.QuestionFilter) ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Question{}
	for _, q := range r.items {
		if filter.SubjectID != "" && q.SubjectID != filter.SubjectID {
			continue
		}
		if filter.SystemID != "" && (q.SystemID == nil || *q.SystemID != filter.SystemID) {
			continue
		}
		if filter.SubSystemID != "" && (q.SubSystemID == nil || *q.SubSystemID != filter.SubSystemID) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *Questions) Update(ctx context.Context, question *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == question.ID {
			r.items[i] = *question
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *Questions) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
