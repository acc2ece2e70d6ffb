package service

import (
	"context"
	"encoding/json"
	"qbank_backend/internal/config"
	"qbank_backend/internal/model"
	"qbank_backend/internal/repository"
	"qbank_backend/pkg/logger"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const countKeyPrefix = "qbank:count:"

// CountService 按科目 / 系统统计题目数量，配置了 Redis 时缓存结果
type CountService struct {
	Repo  *repository.QuestionRepository
	Redis *redis.Client

	ttl atomic.Int64
}

func NewCountService(repo *repository.QuestionRepository, rdb *redis.Client, cfg config.QuizConfig) *CountService {
	s := &CountService{Repo: repo, Redis: rdb}
	s.ApplyConfig(cfg)
	return s
}

func (s *CountService) ApplyConfig(cfg config.QuizConfig) {
	s.ttl.Store(int64(time.Duration(cfg.CountCacheSeconds) * time.Second))
}

func (s *CountService) cacheEnabled() bool {
	return s != nil && s.Redis != nil && s.ttl.Load() > 0
}

// cached 先读缓存，未命中时调用 load 并回写。缓存故障不影响查询
func cached[T any](ctx context.Context, s *CountService, key string, load func() (T, error)) (T, error) {
	if s.cacheEnabled() {
		raw, err := s.Redis.Get(ctx, key).Bytes()
		if err == nil {
			var v T
			if json.Unmarshal(raw, &v) == nil {
				return v, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("Count cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if s.cacheEnabled() {
		if raw, err := json.Marshal(v); err == nil {
			if err := s.Redis.Set(ctx, key, raw, time.Duration(s.ttl.Load())).Err(); err != nil {
				logger.Log.Warn("Count cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return v, nil
}

func (s *CountService) BySubject(ctx context.Context) ([]repository.SubjectCount, error) {
	return cached(ctx, s, countKeyPrefix+"subject", func() ([]repository.SubjectCount, error) {
		return s.Repo.CountBySubject(ctx)
	})
}

func (s *CountService) BySystem(ctx context.Context) ([]repository.SystemCount, error) {
	return cached(ctx, s, countKeyPrefix+"system", func() ([]repository.SystemCount, error) {
		return s.Repo.CountBySystem(ctx, nil)
	})
}

// SystemsBySubjects 统计给定科目下各系统的题目数量
func (s *CountService) SystemsBySubjects(ctx context.Context, subjectIDs []string) ([]repository.SystemCount, error) {
	ids, err := normalizeGroupIDs(model.GroupBySubject, subjectIDs)
	if err != nil {
		return nil, err
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	key := countKeyPrefix + "systems:" + strings.Join(sorted, ",")
	return cached(ctx, s, key, func() ([]repository.SystemCount, error) {
		return s.Repo.CountBySystem(ctx, sorted)
	})
}

// Invalidate 题库内容变更后清除全部计数缓存
func (s *CountService) Invalidate(ctx context.Context) {
	if s == nil || s.Redis == nil {
		return
	}
	iter := s.Redis.Scan(ctx, 0, countKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("Count cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("Count cache invalidation failed", zap.Error(err))
	}
}
