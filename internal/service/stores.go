package service

import (
	"context"
	"time"

	"vibeit_backend/internal/model"
	"vibeit_backend/internal/streak"
)

// 服务依赖的存储接口，由 repository 包实现

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, userID uint) error
}

type CourseStore interface {
	FindPublished(ctx context.Context) ([]model.Course, error)
	FindByID(ctx context.Context, id string) (*model.Course, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Course, error)
}

type ProgressStore interface {
	FindByUserID(ctx context.Context, userID uint) ([]model.CourseProgress, error)
	// UpdateCourseProgress 以行锁串行化同一课程进度的读改写
	UpdateCourseProgress(ctx context.Context, userID uint, courseID string, fn func(*model.CourseProgress) (bool, error)) (*model.CourseProgress, error)
}

type MilestoneStore interface {
	FindByUserID(ctx context.Context, userID uint) ([]model.UserMilestone, error)
	CreateBatch(ctx context.Context, milestones []model.UserMilestone) error
}

type StreakCache interface {
	// Get 返回缓存结果以及当前缓存版本；版本在 Invalidate 时递增
	Get(ctx context.Context, userID uint, day streak.Day) (*streak.LearningStreak, int64, bool, error)
	// Set 写入以 version 标记的结果，版本落后的结果不会被 Get 命中
	Set(ctx context.Context, userID uint, day streak.Day, version int64, s *streak.LearningStreak, ttl time.Duration) error
	Invalidate(ctx context.Context, userID uint) error
}
