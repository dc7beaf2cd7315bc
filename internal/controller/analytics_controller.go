package controller

import (
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary 备考就绪度
// @Description 由完成度、正确率、速度、稳定性、心情等指标加权得到，范围 0-100
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Readiness}
// @Router /api/analytics/readiness [get]
func (c *AnalyticsController) GetReadiness(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	readiness, err := c.AnalyticsService.GetReadiness(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, readiness)
}

// @Summary 排名预测
// @Description 相同数据与 seed 得到相同结果；不传 seed 时由指标推导。数据读取失败时返回 fallback=true 的固定结果
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param seed query int false "随机种子"
// @Success 200 {object} util.Response{data=model.Prediction}
// @Router /api/analytics/prediction [get]
func (c *AnalyticsController) GetPrediction(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var seed *int64
	if raw := ctx.Query("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			util.BadRequest(ctx, "seed must be an integer")
			return
		}
		seed = &v
	}

	util.Success(ctx, c.AnalyticsService.GetPrediction(ctx.Request.Context(), userID, seed))
}

// @Summary 预测历史
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param limit query int false "条数，默认 30"
// @Success 200 {object} util.Response{data=[]model.PredictionSnapshot}
// @Router /api/analytics/history [get]
func (c *AnalyticsController) GetHistory(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit := util.QueryInt(ctx.Query("limit"), service.DefaultHistoryLimit)
	history, err := c.AnalyticsService.History(ctx.Request.Context(), userID, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
