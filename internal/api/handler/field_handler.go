package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crop-calendar/internal/dto"
	"crop-calendar/internal/service"
	"crop-calendar/pkg/response"
)

const codeFieldNotFound = 20101

// FieldHandler 田块模块 HTTP 处理器
type FieldHandler struct {
	fieldSvc    service.FieldService
	scheduleSvc service.CropScheduleService
	logger      *zap.Logger
}

// NewFieldHandler 创建 FieldHandler
func NewFieldHandler(fieldSvc service.FieldService, scheduleSvc service.CropScheduleService, logger *zap.Logger) *FieldHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldHandler{fieldSvc: fieldSvc, scheduleSvc: scheduleSvc, logger: logger}
}

// ListFields 获取田块列表
// GET /api/v1/fields
func (h *FieldHandler) ListFields(c *gin.Context) {
	fields, err := h.fieldSvc.List(c.Request.Context())
	if err != nil {
		h.handleFieldError(c, err)
		return
	}

	response.OK(c, gin.H{"list": fields})
}

// GetField 获取田块详情
// GET /api/v1/fields/:id
func (h *FieldHandler) GetField(c *gin.Context) {
	id, ok := MustGetID(c, "id", "田块")
	if !ok {
		return
	}

	field, err := h.fieldSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleFieldError(c, err)
		return
	}

	response.OK(c, field)
}

// CreateField 新建田块
// POST /api/v1/fields
func (h *FieldHandler) CreateField(c *gin.Context) {
	var req dto.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	field, err := h.fieldSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleFieldError(c, err)
		return
	}

	response.Created(c, field)
}

// UpdateField 更新田块
// PUT /api/v1/fields/:id
func (h *FieldHandler) UpdateField(c *gin.Context) {
	id, ok := MustGetID(c, "id", "田块")
	if !ok {
		return
	}

	var req dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	field, err := h.fieldSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleFieldError(c, err)
		return
	}

	response.OK(c, field)
}

// DeleteField 删除田块
// DELETE /api/v1/fields/:id
func (h *FieldHandler) DeleteField(c *gin.Context) {
	id, ok := MustGetID(c, "id", "田块")
	if !ok {
		return
	}

	if err := h.fieldSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleFieldError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListFieldSchedules 某田块下的作物计划（按日期升序）
// GET /api/v1/fields/:id/crop-schedules
func (h *FieldHandler) ListFieldSchedules(c *gin.Context) {
	id, ok := MustGetID(c, "id", "田块")
	if !ok {
		return
	}

	list, err := h.scheduleSvc.ListByField(c.Request.Context(), id)
	if err != nil {
		h.handleFieldError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list, "total": len(list)})
}

func (h *FieldHandler) handleFieldError(c *gin.Context, err error) {
	if handleCommonError(c, h.logger, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrFieldNotFound):
		response.NotFound(c, codeFieldNotFound, "田块不存在")
	default:
		internalError(c, h.logger, err)
	}
}
