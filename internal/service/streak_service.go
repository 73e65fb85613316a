package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vibeit_backend/internal/config"
	"vibeit_backend/internal/model"
	"vibeit_backend/internal/streak"
	"vibeit_backend/pkg/logger"
	"vibeit_backend/pkg/monitoring"
	"vibeit_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// StreakService 学习连续天数与里程碑
type StreakService struct {
	ProgressRepo  ProgressStore
	MilestoneRepo MilestoneStore
	Cache         StreakCache // 可为 nil
	Now           func() time.Time

	mu       sync.RWMutex
	location *time.Location
	cacheTTL time.Duration
}

func NewStreakService(progressRepo ProgressStore, milestoneRepo MilestoneStore, cache StreakCache, cfg config.StreakConfig) *StreakService {
	s := &StreakService{
		ProgressRepo:  progressRepo,
		MilestoneRepo: milestoneRepo,
		Cache:         cache,
		Now:           time.Now,
	}
	s.UpdateSettings(cfg)
	return s
}

// StreakResult 计算结果以及本次新解锁的里程碑
type StreakResult struct {
	Streak        streak.LearningStreak `json:"streak"`
	NewMilestones []streak.Milestone    `json:"newMilestones"`
}

// MilestoneRecord 已解锁里程碑的历史记录
type MilestoneRecord struct {
	streak.Milestone
	AchievedAt time.Time `json:"achievedAt"`
}

// UpdateSettings 配置热更新时调用
func (s *StreakService) UpdateSettings(cfg config.StreakConfig) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	s.mu.Lock()
	s.location = loc
	s.cacheTTL = cfg.CacheTTL()
	s.mu.Unlock()
}

func (s *StreakService) settings() (*time.Location, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location, s.cacheTTL
}

// GetLearningStreak 计算用户的学习连续天数，并持久化新达成的里程碑
func (s *StreakService) GetLearningStreak(ctx context.Context, userID uint) (*StreakResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "StreakService.GetLearningStreak")
	defer span.End()

	loc, ttl := s.settings()
	now := s.Now().In(loc)
	today := streak.DayOf(now)

	current, err := s.computeStreak(ctx, userID, now, today, ttl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	unlocked, err := s.recordUnlocks(ctx, userID, current.Milestones, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("streak.current", current.CurrentStreak),
		attribute.Int("streak.longest", current.LongestStreak),
		attribute.Int("streak.unlocked", len(unlocked)),
	)

	return &StreakResult{Streak: *current, NewMilestones: unlocked}, nil
}

// computeStreak 优先读取缓存。缓存版本在计算前读取，
// 若计算期间进度发生变化，写入的结果版本已过期，不会再被命中。
func (s *StreakService) computeStreak(ctx context.Context, userID uint, now time.Time, today streak.Day, ttl time.Duration) (*streak.LearningStreak, error) {
	var version int64
	cacheable := false
	if s.Cache != nil {
		cached, v, ok, err := s.Cache.Get(ctx, userID, today)
		switch {
		case err != nil:
			monitoring.StreakCacheLookups.WithLabelValues("error").Inc()
			logger.Log.Warn("Streak cache read failed", zap.Uint("userID", userID), zap.Error(err))
		case ok:
			monitoring.StreakCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			monitoring.StreakCacheLookups.WithLabelValues("miss").Inc()
			version = v
			cacheable = true
		}
	}

	result, err := s.calculate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if cacheable && ttl > 0 {
		if err := s.Cache.Set(ctx, userID, today, version, result, ttl); err != nil {
			logger.Log.Warn("Streak cache write failed", zap.Uint("userID", userID), zap.Error(err))
		}
	}
	return result, nil
}

func (s *StreakService) calculate(ctx context.Context, userID uint, now time.Time) (*streak.LearningStreak, error) {
	progress, err := s.ProgressRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	records := make([]streak.ProgressRecord, 0, len(progress))
	for i := range progress {
		records = append(records, progress[i].ToRecord())
	}
	result := streak.Calculate(records, now)
	return &result, nil
}

// PeekLearningStreak 只计算不记录解锁，供管理员查看学员数据
func (s *StreakService) PeekLearningStreak(ctx context.Context, userID uint) (*streak.LearningStreak, error) {
	loc, _ := s.settings()
	return s.calculate(ctx, userID, s.Now().In(loc))
}

// recordUnlocks 与已持久化的里程碑比较，写入新达成的部分
func (s *StreakService) recordUnlocks(ctx context.Context, userID uint, current []streak.Milestone, now time.Time) ([]streak.Milestone, error) {
	stored, err := s.MilestoneRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load milestones: %w", err)
	}

	previous := make([]streak.Milestone, 0, len(stored))
	for _, m := range stored {
		previous = append(previous, streak.Milestone{ID: m.MilestoneID, Achieved: true})
	}

	unlocked := streak.CheckNewMilestones(previous, current)
	if len(unlocked) == 0 {
		return []streak.Milestone{}, nil
	}

	rows := make([]model.UserMilestone, 0, len(unlocked))
	for _, m := range unlocked {
		rows = append(rows, model.UserMilestone{
			UserID:      userID,
			MilestoneID: m.ID,
			Type:        string(m.Type),
			AchievedAt:  now,
		})
	}
	if err := s.MilestoneRepo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("save milestones: %w", err)
	}

	for _, m := range unlocked {
		monitoring.MilestoneUnlocks.WithLabelValues(string(m.Type)).Inc()
		logger.Log.Info("Milestone unlocked",
			zap.Uint("userID", userID),
			zap.String("milestone", m.ID),
		)
	}
	return unlocked, nil
}

// GetMilestoneHistory 返回用户已解锁的里程碑，按达成时间排序
func (s *StreakService) GetMilestoneHistory(ctx context.Context, userID uint) ([]MilestoneRecord, error) {
	stored, err := s.MilestoneRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]streak.Milestone)
	for _, m := range streak.Catalog() {
		byID[m.ID] = m
	}

	history := make([]MilestoneRecord, 0, len(stored))
	for _, row := range stored {
		m, ok := byID[row.MilestoneID]
		if !ok {
			// 目录中已移除的里程碑不再展示
			continue
		}
		m.Achieved = true
		history = append(history, MilestoneRecord{Milestone: m, AchievedAt: row.AchievedAt})
	}
	return history, nil
}

// InvalidateCache 进度变化后清除缓存
func (s *StreakService) InvalidateCache(ctx context.Context, userID uint) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, userID); err != nil {
		logger.Log.Warn("Streak cache invalidate failed", zap.Uint("userID", userID), zap.Error(err))
	}
}
