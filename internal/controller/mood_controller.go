package controller

import (
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MoodController struct {
	MoodService *service.MoodService
}

func NewMoodController(moodService *service.MoodService) *MoodController {
	return &MoodController{MoodService: moodService}
}

// @Summary 记录心情
// @Description 每天一条，重复提交覆盖。mood 取值 excellent, good, neutral, tired, stressed, anxious
// @Tags 心情
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mood body service.MoodRequest true "心情"
// @Success 200 {object} util.Response{data=model.MoodEntry}
// @Failure 400 {object} util.Response
// @Router /api/moods [post]
func (c *MoodController) Upsert(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.MoodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	entry, err := c.MoodService.Upsert(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, entry)
}

func (c *MoodController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	entries, err := c.MoodService.List(ctx.Request.Context(), userID, ctx.Query("from"), ctx.Query("to"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

func (c *MoodController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	date := ctx.Param("date")
	if err := c.MoodService.Delete(ctx.Request.Context(), userID, date); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"date": date})
}
