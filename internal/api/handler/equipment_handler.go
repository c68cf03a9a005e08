package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crop-calendar/internal/dto"
	"crop-calendar/internal/service"
	"crop-calendar/pkg/response"
)

const codeEquipmentNotFound = 20201

// EquipmentHandler 设备模块 HTTP 处理器
type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
	logger       *zap.Logger
}

// NewEquipmentHandler 创建 EquipmentHandler
func NewEquipmentHandler(equipmentSvc service.EquipmentService, logger *zap.Logger) *EquipmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EquipmentHandler{equipmentSvc: equipmentSvc, logger: logger}
}

// ListEquipment 获取设备列表
// GET /api/v1/equipment
func (h *EquipmentHandler) ListEquipment(c *gin.Context) {
	list, err := h.equipmentSvc.List(c.Request.Context())
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetEquipment 获取设备详情
// GET /api/v1/equipment/:id
func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	id, ok := MustGetID(c, "id", "设备")
	if !ok {
		return
	}

	eq, err := h.equipmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, eq)
}

// CreateEquipment 登记设备
// POST /api/v1/equipment
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	eq, err := h.equipmentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.Created(c, eq)
}

// UpdateEquipment 更新设备
// PUT /api/v1/equipment/:id
func (h *EquipmentHandler) UpdateEquipment(c *gin.Context) {
	id, ok := MustGetID(c, "id", "设备")
	if !ok {
		return
	}

	var req dto.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	eq, err := h.equipmentSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, eq)
}

// DeleteEquipment 删除设备
// DELETE /api/v1/equipment/:id
func (h *EquipmentHandler) DeleteEquipment(c *gin.Context) {
	id, ok := MustGetID(c, "id", "设备")
	if !ok {
		return
	}

	if err := h.equipmentSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// LogUsage 登记使用工时与油耗
// POST /api/v1/equipment/:id/usage
func (h *EquipmentHandler) LogUsage(c *gin.Context) {
	id, ok := MustGetID(c, "id", "设备")
	if !ok {
		return
	}

	var req dto.LogUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	result, err := h.equipmentSvc.LogUsage(c.Request.Context(), id, &req)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.Created(c, result)
}

// ScheduleMaintenance 排期保养
// POST /api/v1/equipment/:id/maintenance
func (h *EquipmentHandler) ScheduleMaintenance(c *gin.Context) {
	id, ok := MustGetID(c, "id", "设备")
	if !ok {
		return
	}

	var req dto.ScheduleMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	record, err := h.equipmentSvc.ScheduleMaintenance(c.Request.Context(), id, &req)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.Created(c, record)
}

// GetMaintenanceHistory 全部设备的保养排期
// GET /api/v1/equipment/maintenance-history
func (h *EquipmentHandler) GetMaintenanceHistory(c *gin.Context) {
	list, err := h.equipmentSvc.MaintenanceHistory(c.Request.Context())
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list, "total": len(list)})
}

// GetMaintenanceAlerts 保养提醒
// GET /api/v1/equipment/alerts
func (h *EquipmentHandler) GetMaintenanceAlerts(c *gin.Context) {
	alerts, err := h.equipmentSvc.MaintenanceAlerts(c.Request.Context())
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": alerts, "total": len(alerts)})
}

func (h *EquipmentHandler) handleEquipmentError(c *gin.Context, err error) {
	if handleCommonError(c, h.logger, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEquipmentNotFound):
		response.NotFound(c, codeEquipmentNotFound, "设备不存在")
	default:
		internalError(c, h.logger, err)
	}
}
