package controller

import (
	"errors"
	"net/http"

	"vibeit_backend/internal/service"
	"vibeit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *ProgressController) ListCourses(ctx *gin.Context) {
	courses, err := c.ProgressService.ListCourses(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// ListProgress godoc
// @Summary 获取学习进度
// @Description 获取当前用户所有课程的完成进度
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) ListProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.ListProgress(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CompleteLesson godoc
// @Summary 完成课时
// @Description 标记课时为已完成，全部完成时记录课程完成时间
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Param lessonId path string true "课时ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "课程不存在"
// @Failure 409 {object} util.Response "课时已全部完成"
// @Router /api/progress/{courseId}/lessons/{lessonId}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := ctx.Param("courseId")
	lessonID := ctx.Param("lessonId")
	if courseID == "" || lessonID == "" {
		util.BadRequest(ctx, "courseId and lessonId are required")
		return
	}

	view, err := c.ProgressService.CompleteLesson(ctx.Request.Context(), user.UserID, courseID, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrLessonOutOfRange):
			util.Error(ctx, http.StatusConflict, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}
