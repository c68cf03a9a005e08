package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crop-calendar/internal/calendar"
	"crop-calendar/internal/dto"
	"crop-calendar/internal/service"
	"crop-calendar/pkg/response"
)

// 作物计划模块错误码
const (
	codeCropScheduleNotFound = 20001
	codeCropScheduleBlank    = 20002
	codeFieldRefNotFound     = 20003
)

// CropScheduleHandler 作物计划模块 HTTP 处理器
type CropScheduleHandler struct {
	scheduleSvc service.CropScheduleService
	logger      *zap.Logger
}

// NewCropScheduleHandler 创建 CropScheduleHandler
func NewCropScheduleHandler(scheduleSvc service.CropScheduleService, logger *zap.Logger) *CropScheduleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CropScheduleHandler{scheduleSvc: scheduleSvc, logger: logger}
}

// ListSchedules 获取作物计划列表（季节过滤 + 排序）
// GET /api/v1/crop-schedules?season=&field_id=&month=&sort=&order=
func (h *CropScheduleHandler) ListSchedules(c *gin.Context) {
	var req dto.CropScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	list, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleCropScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list, "total": len(list)})
}

// GetCalendar 月视图
// GET /api/v1/crop-schedules/calendar?month=YYYY-MM&field_id=
func (h *CropScheduleHandler) GetCalendar(c *gin.Context) {
	var req dto.CropScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	view, err := h.scheduleSvc.MonthView(c.Request.Context(), req.Month, req.FieldID)
	if err != nil {
		h.handleCropScheduleError(c, err)
		return
	}

	response.OK(c, view)
}

// GetSchedule 获取单条计划
// GET /api/v1/crop-schedules/:id
func (h *CropScheduleHandler) GetSchedule(c *gin.Context) {
	id, ok := MustGetID(c, "id", "计划")
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleCropScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// CreateSchedule 新建计划
// POST /api/v1/crop-schedules
func (h *CropScheduleHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateCropScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	schedule, err := h.scheduleSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleCropScheduleError(c, err)
		return
	}

	response.Created(c, schedule)
}

// UpdateSchedule 局部更新计划
// PUT /api/v1/crop-schedules/:id
func (h *CropScheduleHandler) UpdateSchedule(c *gin.Context) {
	id, ok := MustGetID(c, "id", "计划")
	if !ok {
		return
	}

	var req dto.UpdateCropScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	schedule, err := h.scheduleSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleCropScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// RescheduleSchedule 改期：拖放与表单编辑共用
// PUT /api/v1/crop-schedules/:id/reschedule
func (h *CropScheduleHandler) RescheduleSchedule(c *gin.Context) {
	id, ok := MustGetID(c, "id", "计划")
	if !ok {
		return
	}

	var req dto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.Reschedule(c.Request.Context(), id, &req)
	if err != nil {
		h.handleCropScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteSchedule 删除计划（确认交由调用方完成）
// DELETE /api/v1/crop-schedules/:id
func (h *CropScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, ok := MustGetID(c, "id", "计划")
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleCropScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleCropScheduleError 统一处理作物计划模块业务错误
func (h *CropScheduleHandler) handleCropScheduleError(c *gin.Context, err error) {
	if handleCommonError(c, h.logger, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCropScheduleNotFound):
		response.NotFound(c, codeCropScheduleNotFound, "作物计划不存在")
	case errors.Is(err, service.ErrFieldNotFound):
		response.NotFound(c, codeFieldRefNotFound, "田块不存在")
	case errors.Is(err, calendar.ErrBlankCell):
		response.BadRequest(c, codeCropScheduleBlank, "不能放置到空白格")
	default:
		internalError(c, h.logger, err)
	}
}
