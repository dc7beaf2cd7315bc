package controller

import (
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// OptionalController 选修科目章节
type OptionalController struct {
	OptionalService *service.OptionalService
}

func NewOptionalController(optionalService *service.OptionalService) *OptionalController {
	return &OptionalController{OptionalService: optionalService}
}

// @Summary 选修章节列表
// @Description 首次访问时写入 PSIR 默认章节
// @Tags 选修
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.OptionalOverview}
// @Router /api/optional/sections [get]
func (c *OptionalController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	overview, err := c.OptionalService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

func (c *OptionalController) Upsert(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.OptionalSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.OptionalService.Upsert(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

func (c *OptionalController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req service.UpdateSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.OptionalService.Update(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

func (c *OptionalController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.OptionalService.Delete(ctx.Request.Context(), userID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}
