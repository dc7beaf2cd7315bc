package controller

import (
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AIController 大模型生成接口。模型不可用时返回 fallback=true 的兜底内容，HTTP 状态仍为 200
type AIController struct {
	GeneratorService *service.GeneratorService
}

func NewAIController(generatorService *service.GeneratorService) *AIController {
	return &AIController{GeneratorService: generatorService}
}

// @Summary 学习建议
// @Description 基于聚合指标生成，按用户缓存 30 分钟
// @Tags AI
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "跳过缓存"
// @Success 200 {object} util.Response{data=service.StudySuggestions}
// @Router /api/ai/suggestions [get]
func (c *AIController) Suggestions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	refresh := ctx.Query("refresh") == "true" || ctx.Query("refresh") == "1"
	util.Success(ctx, c.GeneratorService.Suggestions(ctx.Request.Context(), userID, refresh))
}

// @Summary 生成练习题
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.QuestionRequest true "科目、数量、难度"
// @Success 200 {object} util.Response{data=service.PracticeQuestionSet}
// @Router /api/ai/questions [post]
func (c *AIController) Questions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, c.GeneratorService.GenerateQuestions(ctx.Request.Context(), userID, &req))
}

// @Summary 作文评分
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.EssayRequest true "题目与正文"
// @Success 200 {object} util.Response{data=service.EssayScore}
// @Router /api/ai/essay/evaluate [post]
func (c *AIController) EvaluateEssay(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.EssayRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, c.GeneratorService.EvaluateEssay(ctx.Request.Context(), userID, &req))
}

func (c *AIController) ListEvaluations(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	evaluations, err := c.GeneratorService.ListEvaluations(ctx.Request.Context(), userID, util.QueryInt(ctx.Query("limit"), 20))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, evaluations)
}

// @Summary 备考问答
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ChatRequest true "问题"
// @Success 200 {object} util.Response{data=service.ChatReply}
// @Router /api/ai/chat [post]
func (c *AIController) Chat(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, c.GeneratorService.Chat(ctx.Request.Context(), userID, req.Message))
}

// ChatStream 以 SSE 推送回复片段，最后发送 end 事件
// @Summary 备考问答（流式）
// @Tags AI
// @Accept json
// @Produce text/event-stream
// @Security BearerAuth
// @Param request body service.ChatRequest true "问题"
// @Router /api/ai/chat/stream [post]
func (c *AIController) ChatStream(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stream := c.GeneratorService.StreamChat(ctx.Request.Context(), userID, req.Message)

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	for content := range stream {
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}

func (c *AIController) ChatHistory(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	history, err := c.GeneratorService.ChatHistory(ctx.Request.Context(), userID, util.QueryInt(ctx.Query("limit"), 50))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// @Summary 复习笔记
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.NotesRequest true "主题"
// @Success 200 {object} util.Response{data=service.RevisionNotes}
// @Router /api/ai/notes [post]
func (c *AIController) Notes(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.NotesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, c.GeneratorService.GenerateNotes(ctx.Request.Context(), userID, &req))
}
