package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vibeit_backend/internal/model"
	"vibeit_backend/internal/streak"
	"vibeit_backend/internal/util"
	"vibeit_backend/pkg/logger"
	"vibeit_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StreakInvalidator 进度变化时通知清除连续天数缓存
type StreakInvalidator interface {
	InvalidateCache(ctx context.Context, userID uint)
}

type ProgressService struct {
	CourseRepo   CourseStore
	ProgressRepo ProgressStore
	Streaks      StreakInvalidator
	Now          func() time.Time
}

func NewProgressService(courseRepo CourseStore, progressRepo ProgressStore, streaks StreakInvalidator) *ProgressService {
	return &ProgressService{
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		Streaks:      streaks,
		Now:          time.Now,
	}
}

// CourseProgressView 课程进度概览
type CourseProgressView struct {
	CourseID         string     `json:"courseId"`
	Title            string     `json:"title"`
	CompletedLessons []string   `json:"completedLessons"`
	TotalLessons     int        `json:"totalLessons"`
	Percent          int        `json:"percent"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

func newProgressView(p *model.CourseProgress, course *model.Course) CourseProgressView {
	view := CourseProgressView{
		CourseID:         p.CourseID,
		CompletedLessons: p.CompletedLessons,
		CompletedAt:      p.CompletedAt,
	}
	if view.CompletedLessons == nil {
		view.CompletedLessons = []string{}
	}
	if course != nil {
		view.Title = course.Title
		view.TotalLessons = course.LessonCount
		view.Percent = streak.CourseProgress(streak.DistinctLessons(p.CompletedLessons), course.LessonCount)
	}
	return view
}

func (s *ProgressService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.CourseRepo.FindPublished(ctx)
}

// ListProgress 用户所有课程的进度
func (s *ProgressService) ListProgress(ctx context.Context, userID uint) ([]CourseProgressView, error) {
	progress, err := s.ProgressRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(progress))
	for _, p := range progress {
		ids = append(ids, p.CourseID)
	}
	courses, err := s.CourseRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Course, len(courses))
	for i := range courses {
		byID[courses[i].ID] = &courses[i]
	}

	views := make([]CourseProgressView, 0, len(progress))
	for i := range progress {
		views = append(views, newProgressView(&progress[i], byID[progress[i].CourseID]))
	}
	return views, nil
}

// CompleteLesson 标记课时完成；全部课时完成时记录课程完成时间
func (s *ProgressService) CompleteLesson(ctx context.Context, userID uint, courseID, lessonID string) (*CourseProgressView, error) {
	course, err := s.CourseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	changed := false
	progress, err := s.ProgressRepo.UpdateCourseProgress(ctx, userID, courseID, func(p *model.CourseProgress) (bool, error) {
		if p.HasLesson(lessonID) {
			return false, nil
		}

		completed := streak.DistinctLessons(p.CompletedLessons)
		if course.LessonCount > 0 && completed >= course.LessonCount {
			return false, util.ErrLessonOutOfRange
		}

		p.CompletedLessons = append(p.CompletedLessons, lessonID)
		if course.LessonCount > 0 && completed+1 >= course.LessonCount && p.CompletedAt == nil {
			now := s.Now()
			p.CompletedAt = &now
		}
		changed = true
		return true, nil
	})
	if err != nil {
		if errors.Is(err, util.ErrLessonOutOfRange) {
			return nil, err
		}
		return nil, fmt.Errorf("save progress: %w", err)
	}

	if !changed {
		view := newProgressView(progress, course)
		return &view, nil
	}

	monitoring.LessonCompletions.Inc()
	logger.Log.Debug("Lesson completed",
		zap.Uint("userID", userID),
		zap.String("courseID", courseID),
		zap.String("lessonID", lessonID),
	)

	if s.Streaks != nil {
		s.Streaks.InvalidateCache(ctx, userID)
	}

	view := newProgressView(progress, course)
	return &view, nil
}
