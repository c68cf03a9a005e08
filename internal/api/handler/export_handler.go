package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crop-calendar/internal/dto"
	"crop-calendar/internal/service"
	"crop-calendar/pkg/response"
)

const codeExportEmpty = 20301

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	logger    *zap.Logger
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{exportSvc: exportSvc, logger: logger}
}

// ExportExcel 导出作物计划为 Excel，查询参数与列表接口一致
// GET /api/v1/export/crop-schedules.xlsx
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	var req dto.CropScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportExcel(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeXLSX)
}

// ExportICS 导出作物计划为 iCalendar 全天事件
// GET /api/v1/export/crop-schedules.ics
func (h *ExportHandler) ExportICS(c *gin.Context) {
	var req dto.CropScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeICS)
}

// sendFile 设置下载响应头并写出文件内容
func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if handleCommonError(c, h.logger, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrExportEmpty):
		response.NotFound(c, codeExportEmpty, "没有可导出的作物计划")
	case errors.Is(err, service.ErrExportGenerateFail):
		internalError(c, h.logger, err)
	default:
		internalError(c, h.logger, err)
	}
}
