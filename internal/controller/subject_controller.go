package controller

import (
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SubjectController 科目进度
type SubjectController struct {
	SubjectService *service.SubjectService
}

func NewSubjectController(subjectService *service.SubjectService) *SubjectController {
	return &SubjectController{SubjectService: subjectService}
}

// @Summary 科目列表
// @Tags 科目
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.SubjectProgress}
// @Router /api/subjects [get]
func (c *SubjectController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	subjects, err := c.SubjectService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// @Summary 新建科目
// @Tags 科目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject body service.CreateSubjectRequest true "科目"
// @Success 201 {object} util.Response{data=model.SubjectProgress}
// @Failure 409 {object} util.Response
// @Router /api/subjects [post]
func (c *SubjectController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.SubjectService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// @Summary 更新科目单个字段
// @Description field 只能是 total_lectures, completed_lectures, total_dpps, completed_dpps, revision_count, category
// @Tags 科目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateFieldRequest true "字段与新值"
// @Success 200 {object} util.Response{data=model.SubjectProgress}
// @Failure 400 {object} util.Response
// @Router /api/subjects [put]
func (c *SubjectController) UpdateField(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.UpdateFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.SubjectService.UpdateField(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// @Summary 删除科目
// @Tags 科目
// @Security BearerAuth
// @Param id path int true "科目ID"
// @Success 200 {object} util.Response
// @Router /api/subjects/{id} [delete]
func (c *SubjectController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.SubjectService.Delete(ctx.Request.Context(), userID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}
