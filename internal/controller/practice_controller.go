package controller

import (
	"bytes"
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// PracticeController 练习作答与计时学习
type PracticeController struct {
	PracticeService *service.PracticeService
}

func NewPracticeController(practiceService *service.PracticeService) *PracticeController {
	return &PracticeController{PracticeService: practiceService}
}

// decodeAttempts 接受单个对象、对象数组或 {"attempts": [...]}。
// 对象是否为批量格式只看顶层是否有 attempts 键
func decodeAttempts(body []byte) (*service.AttemptBatchRequest, error) {
	var batch service.AttemptBatchRequest
	trimmed := bytes.TrimSpace(body)

	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &batch.Attempts); err != nil {
			return nil, err
		}
	} else {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, err
		}

		if _, ok := fields["attempts"]; ok {
			if err := json.Unmarshal(trimmed, &batch); err != nil {
				return nil, err
			}
		} else {
			var single service.AttemptRequest
			if err := json.Unmarshal(trimmed, &single); err != nil {
				return nil, err
			}
			batch.Attempts = []service.AttemptRequest{single}
		}
	}

	if err := binding.Validator.ValidateStruct(&batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// @Summary 记录练习作答
// @Description 支持单条或批量提交
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attempts body service.AttemptBatchRequest true "作答记录"
// @Success 201 {object} util.Response{data=[]model.QuestionAttempt}
// @Router /api/practice/attempts [post]
func (c *PracticeController) RecordAttempts(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	body, err := ctx.GetRawData()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	batch, err := decodeAttempts(body)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempts, err := c.PracticeService.RecordAttempts(ctx.Request.Context(), userID, batch.Attempts)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, attempts)
}

func (c *PracticeController) RecentAttempts(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit := util.QueryInt(ctx.Query("limit"), service.DefaultAttemptLimit)
	attempts, err := c.PracticeService.RecentAttempts(ctx.Request.Context(), userID, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// @Summary 开始计时学习
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response{data=model.StudySession}
// @Router /api/sessions/start [post]
func (c *PracticeController) StartSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.StartSessionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	session, err := c.PracticeService.StartSession(ctx.Request.Context(), userID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// @Summary 结束计时学习
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=model.StudySession}
// @Router /api/sessions/{id}/end [post]
func (c *PracticeController) EndSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req service.EndSessionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	session, err := c.PracticeService.EndSession(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

func (c *PracticeController) ListSessions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit := util.QueryInt(ctx.Query("limit"), service.DefaultSessionLimit)
	sessions, err := c.PracticeService.ListSessions(ctx.Request.Context(), userID, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}
