package controller

import (
	"civilprep_backend/internal/service"
	"civilprep_backend/internal/util"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// @Summary 下载进度报表
// @Tags 报表
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Router /api/reports/progress.xlsx [get]
func (c *ReportController) Download(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	f, err := c.ReportService.Build(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("progress-%s.xlsx", time.Now().Format("20060102"))
	ctx.Header("Content-Type", util.MimeXLSX)
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if _, err := f.WriteTo(ctx.Writer); err != nil {
		util.LogInternalError(ctx, err)
	}
}

// @Summary 导出进度报表到对象存储
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response{data=service.ReportExport}
// @Router /api/reports/progress [post]
func (c *ReportController) Export(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	export, err := c.ReportService.ExportProgress(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, export)
}
