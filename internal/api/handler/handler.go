package handler

import (
	"go.uber.org/zap"

	"crop-calendar/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	CropSchedule *CropScheduleHandler
	Field        *FieldHandler
	Equipment    *EquipmentHandler
	FieldLog     *FieldLogHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		CropSchedule: NewCropScheduleHandler(svc.CropSchedule, logger),
		Field:        NewFieldHandler(svc.Field, svc.CropSchedule, logger),
		Equipment:    NewEquipmentHandler(svc.Equipment, logger),
		FieldLog:     NewFieldLogHandler(svc.Inspection, svc.Activity, logger),
		Export:       NewExportHandler(svc.Export, logger),
	}
}
