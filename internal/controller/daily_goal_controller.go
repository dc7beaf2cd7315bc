package controller

import (
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DailyGoalController struct {
	GoalService *service.DailyGoalService
}

func NewDailyGoalController(goalService *service.DailyGoalService) *DailyGoalController {
	return &DailyGoalController{GoalService: goalService}
}

// @Summary 记录每日学习
// @Tags 每日目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goal body service.DailyGoalRequest true "学习记录"
// @Success 201 {object} util.Response{data=model.DailyGoal}
// @Router /api/goals [post]
func (c *DailyGoalController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.DailyGoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, goal)
}

// @Summary 每日学习记录列表
// @Tags 每日目标
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD，缺省返回全部"
// @Success 200 {object} util.Response{data=[]model.DailyGoal}
// @Router /api/goals [get]
func (c *DailyGoalController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	goals, err := c.GoalService.List(ctx.Request.Context(), userID, ctx.Query("date"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, goals)
}

func (c *DailyGoalController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req service.DailyGoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.Update(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

func (c *DailyGoalController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.GoalService.Delete(ctx.Request.Context(), userID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// @Summary 最近 N 天学习汇总
// @Tags 每日目标
// @Produce json
// @Security BearerAuth
// @Param days query int false "天数，默认 7"
// @Success 200 {object} util.Response{data=model.GoalSummary}
// @Router /api/goals/summary [get]
func (c *DailyGoalController) Summary(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	days := util.QueryInt(ctx.Query("days"), service.DefaultSummaryDays)
	summary, err := c.GoalService.Summary(ctx.Request.Context(), userID, days)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}
