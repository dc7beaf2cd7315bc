package controller

import (
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ProgressController 时事与作文进度
type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 时事进度
// @Tags 时事与作文
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.ProgressView}
// @Router /api/current-affairs [get]
func (c *ProgressController) GetCurrentAffairs(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	view, err := c.ProgressService.GetCurrentAffairs(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 更新时事进度
// @Tags 时事与作文
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param progress body service.CurrentAffairsRequest true "完成数"
// @Success 200 {object} util.Response{data=model.ProgressView}
// @Router /api/current-affairs [put]
func (c *ProgressController) UpdateCurrentAffairs(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CurrentAffairsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.ProgressService.UpdateCurrentAffairs(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

func (c *ProgressController) GetEssay(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	view, err := c.ProgressService.GetEssay(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

func (c *ProgressController) UpdateEssay(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.EssayProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.ProgressService.UpdateEssay(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
