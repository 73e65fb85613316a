package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"vibeit_backend/internal/config"
	"vibeit_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceNow = time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)

func lessonIDs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("lesson-%d", i+1)
	}
	return out
}

func newStreakServiceForTest(progress *fakeProgressStore, milestones *fakeMilestoneStore, cache StreakCache) *StreakService {
	s := NewStreakService(progress, milestones, cache, config.StreakConfig{Location: time.UTC, CacheTTLSeconds: 60})
	s.Now = fixedClock(serviceNow)
	return s
}

func TestGetLearningStreakNoProgress(t *testing.T) {
	s := newStreakServiceForTest(&fakeProgressStore{}, &fakeMilestoneStore{}, nil)

	result, err := s.GetLearningStreak(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Streak.CurrentStreak)
	assert.Nil(t, result.Streak.LastActivityDate)
	assert.Len(t, result.Streak.Milestones, 14)
	assert.NotNil(t, result.NewMilestones)
	assert.Empty(t, result.NewMilestones)
}

func TestGetLearningStreakPersistsNewMilestonesOnce(t *testing.T) {
	progress := &fakeProgressStore{records: []model.CourseProgress{
		{UserID: 7, CourseID: "a", CompletedLessons: lessonIDs(6)},
		{UserID: 7, CourseID: "b", CompletedLessons: lessonIDs(3)},
		{UserID: 7, CourseID: "c", CompletedLessons: lessonIDs(1)},
		{UserID: 8, CourseID: "a", CompletedLessons: lessonIDs(50)},
	}}
	milestones := &fakeMilestoneStore{}
	s := newStreakServiceForTest(progress, milestones, nil)

	first, err := s.GetLearningStreak(context.Background(), 7)
	require.NoError(t, err)

	ids := make([]string, 0, len(first.NewMilestones))
	for _, m := range first.NewMilestones {
		ids = append(ids, m.ID)
	}
	// 10 节课、3 门课程、5 小时
	assert.Equal(t, []string{"lessons-10", "courses-3", "study-5"}, ids)
	require.Len(t, milestones.rows, 3)
	assert.Equal(t, serviceNow, milestones.rows[0].AchievedAt)
	assert.Equal(t, "lessons", milestones.rows[0].Type)

	second, err := s.GetLearningStreak(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, second.NewMilestones)
	assert.Len(t, milestones.rows, 3)
}

func TestGetLearningStreakUsesConfiguredTimezone(t *testing.T) {
	// UTC 6 月 2 日 20:00 在 UTC+8 是 6 月 3 日
	completed := time.Date(2024, time.June, 2, 20, 0, 0, 0, time.UTC)
	progress := &fakeProgressStore{records: []model.CourseProgress{
		{UserID: 1, CourseID: "a", CompletedLessons: lessonIDs(2), CompletedAt: &completed},
	}}
	s := newStreakServiceForTest(progress, &fakeMilestoneStore{}, nil)
	s.UpdateSettings(config.StreakConfig{Location: time.FixedZone("UTC+8", 8*3600)})

	result, err := s.GetLearningStreak(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, result.Streak.LastActivityDate)
	assert.Equal(t, "2024-06-03", result.Streak.LastActivityDate.String())
}

func TestGetLearningStreakCaching(t *testing.T) {
	progress := &fakeProgressStore{records: []model.CourseProgress{
		{UserID: 1, CourseID: "a", CompletedLessons: lessonIDs(2)},
	}}
	cache := newFakeStreakCache()
	s := newStreakServiceForTest(progress, &fakeMilestoneStore{}, cache)

	_, err := s.GetLearningStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// 命中缓存时不再读取进度
	progress.err = errors.New("db down")
	result, err := s.GetLearningStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak.CurrentStreak)
	assert.Equal(t, 1, cache.sets)

	// 跨天后缓存失效
	s.Now = fixedClock(serviceNow.AddDate(0, 0, 1))
	_, err = s.GetLearningStreak(context.Background(), 1)
	assert.ErrorContains(t, err, "load progress")
}

func TestGetLearningStreakDoesNotCacheResultRacingInvalidation(t *testing.T) {
	progress := &fakeProgressStore{records: []model.CourseProgress{
		{UserID: 1, CourseID: "a", CompletedLessons: lessonIDs(1)},
	}}
	cache := newFakeStreakCache()
	s := newStreakServiceForTest(progress, &fakeMilestoneStore{}, cache)

	// 计算期间完成了新的课时
	progress.onFind = func() {
		progress.onFind = nil
		s.InvalidateCache(context.Background(), 1)
	}

	_, err := s.GetLearningStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.finds)

	_, err = s.GetLearningStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.finds, "result computed before the invalidation must not be served")

	_, err = s.GetLearningStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.finds)
}

func TestInvalidateCacheForcesRecompute(t *testing.T) {
	progress := &fakeProgressStore{records: []model.CourseProgress{
		{UserID: 1, CourseID: "a", CompletedLessons: lessonIDs(1)},
	}}
	cache := newFakeStreakCache()
	s := newStreakServiceForTest(progress, &fakeMilestoneStore{}, cache)
	ctx := context.Background()

	_, err := s.GetLearningStreak(ctx, 1)
	require.NoError(t, err)
	s.InvalidateCache(ctx, 1)
	_, err = s.GetLearningStreak(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, progress.finds)
	assert.Equal(t, []uint{1}, cache.invalidated)
}

func TestPeekLearningStreakDoesNotRecordUnlocks(t *testing.T) {
	progress := &fakeProgressStore{records: []model.CourseProgress{
		{UserID: 3, CourseID: "a", CompletedLessons: lessonIDs(10)},
	}}
	milestones := &fakeMilestoneStore{}
	s := newStreakServiceForTest(progress, milestones, nil)

	result, err := s.PeekLearningStreak(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Empty(t, milestones.rows)

	first, err := s.GetLearningStreak(context.Background(), 3)
	require.NoError(t, err)
	assert.NotEmpty(t, first.NewMilestones)
}

func TestGetLearningStreakCacheErrorFallsBack(t *testing.T) {
	progress := &fakeProgressStore{records: []model.CourseProgress{
		{UserID: 1, CourseID: "a", CompletedLessons: lessonIDs(1)},
	}}
	cache := newFakeStreakCache()
	cache.getErr = errors.New("redis unavailable")
	s := newStreakServiceForTest(progress, &fakeMilestoneStore{}, cache)

	result, err := s.GetLearningStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak.CurrentStreak)
}

func TestGetLearningStreakMilestoneStoreError(t *testing.T) {
	s := newStreakServiceForTest(&fakeProgressStore{}, &fakeMilestoneStore{err: errors.New("boom")}, nil)

	_, err := s.GetLearningStreak(context.Background(), 1)
	assert.ErrorContains(t, err, "load milestones")
}

func TestGetMilestoneHistory(t *testing.T) {
	achieved := serviceNow.Add(-time.Hour)
	milestones := &fakeMilestoneStore{rows: []model.UserMilestone{
		{UserID: 1, MilestoneID: "streak-3", Type: "streak", AchievedAt: achieved},
		{UserID: 1, MilestoneID: "retired-badge", Type: "streak", AchievedAt: achieved},
		{UserID: 2, MilestoneID: "lessons-10", Type: "lessons", AchievedAt: achieved},
	}}
	s := newStreakServiceForTest(&fakeProgressStore{}, milestones, nil)

	history, err := s.GetMilestoneHistory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "streak-3", history[0].ID)
	assert.Equal(t, "Getting Started", history[0].Title)
	assert.True(t, history[0].Achieved)
	assert.Equal(t, achieved, history[0].AchievedAt)
}

func TestInvalidateCacheWithoutCache(t *testing.T) {
	s := newStreakServiceForTest(&fakeProgressStore{}, &fakeMilestoneStore{}, nil)
	assert.NotPanics(t, func() { s.InvalidateCache(context.Background(), 1) })
}
