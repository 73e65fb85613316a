package service

import (
	"context"
	"sync"
	"time"

	"vibeit_backend/internal/model"
	"vibeit_backend/internal/streak"

	"gorm.io/gorm"
)

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.nextID
	f.nextID++
	u := *user
	f.users[user.ID] = &u
	return nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.LastLogin = time.Now()
	}
	return nil
}

type fakeCourseStore struct {
	courses []model.Course
}

func (f *fakeCourseStore) FindPublished(context.Context) ([]model.Course, error) {
	var out []model.Course
	for _, c := range f.courses {
		if c.Published {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseStore) FindByID(_ context.Context, id string) (*model.Course, error) {
	for i := range f.courses {
		if f.courses[i].ID == id {
			c := f.courses[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCourseStore) FindByIDs(_ context.Context, ids []string) ([]model.Course, error) {
	var out []model.Course
	for _, id := range ids {
		for _, c := range f.courses {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type fakeProgressStore struct {
	mu      sync.Mutex
	records []model.CourseProgress
	err     error
	saves   int
	finds   int
	onFind  func()
}

func (f *fakeProgressStore) FindByUserID(_ context.Context, userID uint) ([]model.CourseProgress, error) {
	if f.onFind != nil {
		f.onFind()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.err != nil {
		return nil, f.err
	}
	var out []model.CourseProgress
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// UpdateCourseProgress 持有 mu 期间完成读改写，对应数据库中的行锁
func (f *fakeProgressStore) UpdateCourseProgress(_ context.Context, userID uint, courseID string, fn func(*model.CourseProgress) (bool, error)) (*model.CourseProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := -1
	current := model.CourseProgress{UserID: userID, CourseID: courseID}
	for i := range f.records {
		if f.records[i].UserID == userID && f.records[i].CourseID == courseID {
			idx = i
			current = f.records[i]
			current.CompletedLessons = append([]string(nil), f.records[i].CompletedLessons...)
			break
		}
	}

	changed, err := fn(&current)
	if err != nil {
		return nil, err
	}
	if changed {
		f.saves++
		if idx < 0 {
			_ = current.BeforeCreate(nil)
			f.records = append(f.records, current)
		} else {
			f.records[idx] = current
		}
	}

	out := current
	out.CompletedLessons = append([]string(nil), current.CompletedLessons...)
	return &out, nil
}

type fakeMilestoneStore struct {
	mu   sync.Mutex
	rows []model.UserMilestone
	err  error
}

func (f *fakeMilestoneStore) FindByUserID(_ context.Context, userID uint) ([]model.UserMilestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.UserMilestone
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMilestoneStore) CreateBatch(_ context.Context, rows []model.UserMilestone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rows...)
	return nil
}

type fakeStreakCache struct {
	mu          sync.Mutex
	versions    map[uint]int64
	entries     map[cacheKey]cacheEntry
	getErr      error
	sets        int
	invalidated []uint
}

type cacheKey struct {
	userID uint
	day    streak.Day
}

type cacheEntry struct {
	version int64
	streak  streak.LearningStreak
}

func newFakeStreakCache() *fakeStreakCache {
	return &fakeStreakCache{versions: map[uint]int64{}, entries: map[cacheKey]cacheEntry{}}
}

func (f *fakeStreakCache) Get(_ context.Context, userID uint, day streak.Day) (*streak.LearningStreak, int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, 0, false, f.getErr
	}
	version := f.versions[userID]
	e, ok := f.entries[cacheKey{userID, day}]
	if !ok || e.version != version {
		return nil, version, false, nil
	}
	s := e.streak
	return &s, version, true, nil
}

func (f *fakeStreakCache) Set(_ context.Context, userID uint, day streak.Day, version int64, s *streak.LearningStreak, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.entries[cacheKey{userID, day}] = cacheEntry{version: version, streak: *s}
	return nil
}

func (f *fakeStreakCache) Invalidate(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, userID)
	f.versions[userID]++
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
