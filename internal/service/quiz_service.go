package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"qbank_backend/internal/config"
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"qbank_backend/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizStore 测验记录的持久化能力
type QuizStore interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	// FindByID 返回测验及按出题顺序排列的作答条目
	FindByID(ctx context.Context, id string) (*model.Quiz, error)
	List(ctx context.Context) ([]model.Quiz, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Quiz, error)
	// Mutate 对单个测验串行化写入：加锁读取、fn 修改、写回
	Mutate(ctx context.Context, id string, fn func(quiz *model.Quiz) error) (*model.Quiz, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// QuestionSource 组卷与判分所需的题目查询能力
type QuestionSource interface {
	ListIDsByGroup(ctx context.Context, mode model.GroupingMode, groupID string) ([]string, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Question, error)
}

type QuizService struct {
	Quizzes   QuizStore
	Questions QuestionSource

	mu  sync.RWMutex
	cfg config.QuizConfig

	rngMu sync.Mutex
	rng   *rand.Rand

	now func() time.Time
}

func NewQuizService(quizzes QuizStore, questions QuestionSource, cfg config.QuizConfig) *QuizService {
	return &QuizService{
		Quizzes:   quizzes,
		Questions: questions,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// ApplyConfig 配置热加载时替换组卷默认值
func (s *QuizService) ApplyConfig(cfg config.QuizConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	logger.Log.Info("Quiz settings updated",
		zap.Int("defaultDurationMinutes", cfg.DefaultDurationMinutes),
		zap.Int("defaultQuestionsPerGroup", cfg.DefaultQuestionsPerGroup),
		zap.Bool("strictSubjectGroups", cfg.StrictSubjectGroups))
}

func (s *QuizService) settings() config.QuizConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *QuizService) loadQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz %s: %w", id, err)
	}
	return quiz, nil
}

func (s *QuizService) mutate(ctx context.Context, id string, fn func(quiz *model.Quiz) error) (*model.Quiz, error) {
	quiz, err := s.Quizzes.Mutate(ctx, id, fn)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	return quiz, err
}

// questionMap 批量解析题目，已删除的题目不在结果中
func (s *QuizService) questionMap(ctx context.Context, ids []string) (map[string]*model.Question, error) {
	questions, err := s.Questions.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve quiz questions: %w", err)
	}
	byID := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	return byID, nil
}

func (s *QuizService) List(ctx context.Context) ([]model.Quiz, error) {
	return s.Quizzes.List(ctx)
}

func (s *QuizService) ListMine(ctx context.Context, caller Caller) ([]model.Quiz, error) {
	if caller.Anonymous() {
		return nil, util.ErrPermissionDenied
	}
	return s.Quizzes.ListByUser(ctx, caller.UserID)
}

// Delete 仅测验所有者或管理员可删除
func (s *QuizService) Delete(ctx context.Context, caller Caller, id string) error {
	quiz, err := s.loadQuiz(ctx, id)
	if err != nil {
		return err
	}
	if !caller.CanAccess(quiz.UserID) {
		return util.ErrPermissionDenied
	}

	err = s.Quizzes.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrQuizNotFound
	}
	if err != nil {
		return err
	}
	logger.Log.Info("Quiz deleted", zap.String("quizId", id), zap.Uint("by", caller.UserID))
	return nil
}

func (s *QuizService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.Quizzes.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	logger.Log.Warn("All quizzes deleted", zap.Int64("count", n))
	return n, nil
}
