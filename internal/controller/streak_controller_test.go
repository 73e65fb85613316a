package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vibeit_backend/internal/config"
	"vibeit_backend/internal/middleware"
	"vibeit_backend/internal/model"
	"vibeit_backend/internal/service"
	"vibeit_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProgressStore struct {
	records []model.CourseProgress
	err     error
}

func (s *stubProgressStore) FindByUserID(_ context.Context, userID uint) ([]model.CourseProgress, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []model.CourseProgress
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubProgressStore) UpdateCourseProgress(context.Context, uint, string, func(*model.CourseProgress) (bool, error)) (*model.CourseProgress, error) {
	return nil, errors.New("read only")
}

type stubMilestoneStore struct {
	rows []model.UserMilestone
}

func (s *stubMilestoneStore) FindByUserID(_ context.Context, userID uint) ([]model.UserMilestone, error) {
	var out []model.UserMilestone
	for _, r := range s.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubMilestoneStore) CreateBatch(_ context.Context, rows []model.UserMilestone) error {
	s.rows = append(s.rows, rows...)
	return nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newStreakRouter(progress *stubProgressStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewStreakService(progress, &stubMilestoneStore{}, nil, config.StreakConfig{Location: time.UTC})
	svc.Now = func() time.Time { return time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC) }
	c := NewStreakController(svc)

	r := gin.New()
	withUser := func(ctx *gin.Context) {
		util.SetUserInContext(ctx, &util.Claims{UserID: 1, Role: model.Student})
	}
	r.GET("/api/streak", withUser, c.GetLearningStreak)
	r.GET("/api/streak/milestones", withUser, c.GetMilestoneHistory)
	r.GET("/api/streak/anonymous", c.GetLearningStreak)
	r.GET("/api/milestones/catalog", c.GetCatalog)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetLearningStreakEndpoint(t *testing.T) {
	lessons := make([]string, 10)
	for i := range lessons {
		lessons[i] = string(rune('a' + i))
	}
	r := newStreakRouter(&stubProgressStore{records: []model.CourseProgress{
		{UserID: 1, CourseID: "js", CompletedLessons: lessons},
	}})

	w := get(r, "/api/streak")
	require.Equal(t, http.StatusOK, w.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	var result struct {
		Streak struct {
			CurrentStreak    int    `json:"currentStreak"`
			LastActivityDate string `json:"lastActivityDate"`
			Milestones       []struct {
				ID       string `json:"id"`
				Achieved bool   `json:"achieved"`
			} `json:"milestones"`
		} `json:"streak"`
		NewMilestones []struct {
			ID string `json:"id"`
		} `json:"newMilestones"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &result))

	assert.Equal(t, 1, result.Streak.CurrentStreak)
	assert.Equal(t, "2024-06-03", result.Streak.LastActivityDate)
	assert.Len(t, result.Streak.Milestones, 14)
	require.Len(t, result.NewMilestones, 2)
	assert.Equal(t, "lessons-10", result.NewMilestones[0].ID)
	assert.Equal(t, "study-5", result.NewMilestones[1].ID)

	w = get(r, "/api/streak/milestones")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	var history []map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Data, &history))
	assert.Len(t, history, 2)
}

func TestGetLearningStreakRequiresUser(t *testing.T) {
	r := newStreakRouter(&stubProgressStore{})

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/streak/anonymous").Code)
}

func TestGetLearningStreakInternalError(t *testing.T) {
	r := newStreakRouter(&stubProgressStore{err: errors.New("db down")})

	w := get(r, "/api/streak")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestGetCatalogEndpoint(t *testing.T) {
	r := newStreakRouter(&stubProgressStore{})

	w := get(r, "/api/milestones/catalog")
	require.Equal(t, http.StatusOK, w.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	var catalog []map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Data, &catalog))
	assert.Len(t, catalog, 14)
	assert.Equal(t, "streak-3", catalog[0]["id"])
}

func TestGetUserStreakRequiresAdmin(t *testing.T) {
	lessons := []string{"a", "b"}
	milestones := &stubMilestoneStore{}
	gin.SetMode(gin.TestMode)
	svc := service.NewStreakService(&stubProgressStore{records: []model.CourseProgress{
		{UserID: 4, CourseID: "js", CompletedLessons: lessons},
	}}, milestones, nil, config.StreakConfig{Location: time.UTC})
	svc.Now = func() time.Time { return time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC) }
	c := NewStreakController(svc)

	r := gin.New()
	r.GET("/users/:id/streak", func(ctx *gin.Context) {
		util.SetUserInContext(ctx, &util.Claims{UserID: 1, Role: model.UserRole(ctx.GetHeader("X-Role"))})
	}, middleware.RoleMiddleware(model.Admin), c.GetUserStreak)

	call := func(role model.UserRole, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Role", string(role))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, call(model.Student, "/users/4/streak").Code)
	assert.Equal(t, http.StatusBadRequest, call(model.Admin, "/users/abc/streak").Code)

	w := call(model.Admin, "/users/4/streak")
	require.Equal(t, http.StatusOK, w.Code)
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	var result struct {
		CurrentStreak int `json:"currentStreak"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Empty(t, milestones.rows)
}
