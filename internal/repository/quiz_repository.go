package repository

import (
	"context"
	"qbank_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func orderedEntries(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create 测验与作答条目在同一事务内写入
func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries := quiz.Entries
		if err := tx.Omit("Entries").Create(quiz).Error; err != nil {
			return err
		}
		for i := range entries {
			entries[i].QuizID = quiz.ID
			entries[i].Position = i
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}
		quiz.Entries = entries
		return nil
	})
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Entries", orderedEntries).
		First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *QuizRepository) List(ctx context.Context) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Entries", orderedEntries).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListByUser(ctx context.Context, userID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Entries", orderedEntries).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

// Mutate 在事务中以 SELECT ... FOR UPDATE 锁定测验行，加载作答后交给 fn 修改，
// 只写回发生变化的条目与测验字段。fn 返回错误时整个事务回滚
func (r *QuizRepository) Mutate(ctx context.Context, id string, fn func(quiz *model.Quiz) error) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&quiz, "id = ?", id).Error; err != nil {
			return err
		}
		if err := orderedEntries(tx.Where("quiz_id = ?", id)).Find(&quiz.Entries).Error; err != nil {
			return err
		}

		before := quiz
		before.Entries = append([]model.QuizEntry(nil), quiz.Entries...)

		if err := fn(&quiz); err != nil {
			return err
		}

		for i := range quiz.Entries {
			e := &quiz.Entries[i]
			if i < len(before.Entries) && sameEntryState(before.Entries[i], *e) {
				continue
			}
			if err := tx.Model(&model.QuizEntry{}).
				Where("id = ?", e.ID).
				Updates(map[string]interface{}{
					"selected_answer": e.SelectedAnswer,
					"is_correct":      e.IsCorrect,
				}).Error; err != nil {
				return err
			}
		}

		if before.Score == quiz.Score && before.IsSubmitted == quiz.IsSubmitted && sameTime(before.EndedAt, quiz.EndedAt) {
			return nil
		}
		return tx.Model(&model.Quiz{}).
			Where("id = ?", quiz.ID).
			Updates(map[string]interface{}{
				"score":        quiz.Score,
				"ended_at":     quiz.EndedAt,
				"is_submitted": quiz.IsSubmitted,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func sameEntryState(a, b model.QuizEntry) bool {
	return equalPtr(a.SelectedAnswer, b.SelectedAnswer) && equalPtr(a.IsCorrect, b.IsCorrect)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().Delete(&model.Quiz{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("quiz_id = ?", id).Delete(&model.QuizEntry{}).Error
	})
}

// DeleteAll 删除全部测验，返回删除的测验数量
func (r *QuizRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&model.QuizEntry{}).Error; err != nil {
			return err
		}
		result := all.Unscoped().Delete(&model.Quiz{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
