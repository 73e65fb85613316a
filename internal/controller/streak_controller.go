package controller

import (
	"strconv"

	"vibeit_backend/internal/service"
	"vibeit_backend/internal/streak"
	"vibeit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StreakController struct {
	StreakService *service.StreakService
}

func NewStreakController(streakService *service.StreakService) *StreakController {
	return &StreakController{StreakService: streakService}
}

// GetLearningStreak godoc
// @Summary 学习连续天数
// @Description 返回当前/最长连续学习天数、里程碑以及本次新解锁的里程碑
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.StreakResult}
// @Router /api/streak [get]
func (c *StreakController) GetLearningStreak(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.StreakService.GetLearningStreak(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetMilestoneHistory godoc
// @Summary 已解锁的里程碑
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/streak/milestones [get]
func (c *StreakController) GetMilestoneHistory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	history, err := c.StreakService.GetMilestoneHistory(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// GetUserStreak godoc
// @Summary 查看学员的学习连续天数（管理员）
// @Description 只读计算，不会记录该学员的里程碑解锁
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=streak.LearningStreak}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/admin/users/{id}/streak [get]
func (c *StreakController) GetUserStreak(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	result, err := c.StreakService.PeekLearningStreak(ctx.Request.Context(), uint(userID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetCatalog godoc
// @Summary 里程碑目录
// @Tags 成就系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/milestones/catalog [get]
func (c *StreakController) GetCatalog(ctx *gin.Context) {
	util.Success(ctx, streak.Catalog())
}
