package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crop-calendar/internal/dto"
	"crop-calendar/internal/service"
	"crop-calendar/pkg/response"
)

const (
	codeInspectionNotFound = 20401
	codeActivityNotFound   = 20501
)

// FieldLogHandler 巡检记录与田块活动日志 HTTP 处理器
type FieldLogHandler struct {
	inspectionSvc service.InspectionService
	activitySvc   service.ActivityService
	logger        *zap.Logger
}

// NewFieldLogHandler 创建 FieldLogHandler
func NewFieldLogHandler(inspectionSvc service.InspectionService, activitySvc service.ActivityService, logger *zap.Logger) *FieldLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldLogHandler{inspectionSvc: inspectionSvc, activitySvc: activitySvc, logger: logger}
}

// ── 巡检 ──

// ListInspections GET /api/v1/inspections
func (h *FieldLogHandler) ListInspections(c *gin.Context) {
	list, err := h.inspectionSvc.List(c.Request.Context())
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list, "total": len(list)})
}

// ListFieldInspections 某田块的巡检记录，日期降序
// GET /api/v1/fields/:id/inspections
func (h *FieldLogHandler) ListFieldInspections(c *gin.Context) {
	id, ok := MustGetID(c, "id", "田块")
	if !ok {
		return
	}
	list, err := h.inspectionSvc.ListByField(c.Request.Context(), id)
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list, "total": len(list)})
}

// GetInspection GET /api/v1/inspections/:id
func (h *FieldLogHandler) GetInspection(c *gin.Context) {
	id, ok := MustGetID(c, "id", "巡检记录")
	if !ok {
		return
	}
	in, err := h.inspectionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, in)
}

// CreateInspection POST /api/v1/inspections
func (h *FieldLogHandler) CreateInspection(c *gin.Context) {
	var req dto.CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}
	in, err := h.inspectionSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.Created(c, in)
}

// UpdateInspection PUT /api/v1/inspections/:id
func (h *FieldLogHandler) UpdateInspection(c *gin.Context) {
	id, ok := MustGetID(c, "id", "巡检记录")
	if !ok {
		return
	}
	var req dto.UpdateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}
	in, err := h.inspectionSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, in)
}

// DeleteInspection DELETE /api/v1/inspections/:id
func (h *FieldLogHandler) DeleteInspection(c *gin.Context) {
	id, ok := MustGetID(c, "id", "巡检记录")
	if !ok {
		return
	}
	if err := h.inspectionSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 田块活动 ──

// ListActivities GET /api/v1/activities
func (h *FieldLogHandler) ListActivities(c *gin.Context) {
	list, err := h.activitySvc.List(c.Request.Context())
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list, "total": len(list)})
}

// ListFieldActivities 某田块的活动日志，时间降序
// GET /api/v1/fields/:id/activities
func (h *FieldLogHandler) ListFieldActivities(c *gin.Context) {
	id, ok := MustGetID(c, "id", "田块")
	if !ok {
		return
	}
	list, err := h.activitySvc.ListByField(c.Request.Context(), id)
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list, "total": len(list)})
}

// GetActivity GET /api/v1/activities/:id
func (h *FieldLogHandler) GetActivity(c *gin.Context) {
	id, ok := MustGetID(c, "id", "活动")
	if !ok {
		return
	}
	a, err := h.activitySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, a)
}

// CreateActivity POST /api/v1/activities
func (h *FieldLogHandler) CreateActivity(c *gin.Context) {
	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}
	a, err := h.activitySvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.Created(c, a)
}

// UpdateActivity PUT /api/v1/activities/:id
func (h *FieldLogHandler) UpdateActivity(c *gin.Context) {
	id, ok := MustGetID(c, "id", "活动")
	if !ok {
		return
	}
	var req dto.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}
	a, err := h.activitySvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, a)
}

// DeleteActivity DELETE /api/v1/activities/:id
func (h *FieldLogHandler) DeleteActivity(c *gin.Context) {
	id, ok := MustGetID(c, "id", "活动")
	if !ok {
		return
	}
	if err := h.activitySvc.Delete(c.Request.Context(), id); err != nil {
		h.handleFieldLogError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *FieldLogHandler) handleFieldLogError(c *gin.Context, err error) {
	if handleCommonError(c, h.logger, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrInspectionNotFound):
		response.NotFound(c, codeInspectionNotFound, "巡检记录不存在")
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, codeActivityNotFound, "田块活动不存在")
	case errors.Is(err, service.ErrFieldNotFound):
		response.NotFound(c, codeFieldNotFound, "田块不存在")
	default:
		internalError(c, h.logger, err)
	}
}
