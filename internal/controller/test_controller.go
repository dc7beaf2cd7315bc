package controller

import (
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TestController 模考成绩
type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// @Summary 录入模考成绩
// @Description 得分允许大于总分
// @Tags 模考
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param test body service.TestRecordRequest true "成绩"
// @Success 201 {object} util.Response{data=model.TestRecord}
// @Router /api/tests [post]
func (c *TestController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.TestRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.TestService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, record)
}

// @Summary 模考成绩列表
// @Tags 模考
// @Produce json
// @Security BearerAuth
// @Param type query string false "prelims 或 mains"
// @Success 200 {object} util.Response{data=[]model.TestRecord}
// @Router /api/tests [get]
func (c *TestController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	records, err := c.TestService.List(ctx.Request.Context(), userID, ctx.Query("type"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

func (c *TestController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req service.TestRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.TestService.Update(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

func (c *TestController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.TestService.Delete(ctx.Request.Context(), userID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// @Summary 模考统计
// @Tags 模考
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TestTypeStats}
// @Router /api/tests/stats [get]
func (c *TestController) Stats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	stats, err := c.TestService.Stats(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
