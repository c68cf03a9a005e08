package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crop-calendar/config"
	"crop-calendar/internal/api/handler"
	"crop-calendar/internal/api/middleware"
	"crop-calendar/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流中间件降级放行
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "store": cfg.Store.Driver})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window))
	{
		// 作物计划模块
		schedules := v1.Group("/crop-schedules")
		{
			schedules.GET("", h.CropSchedule.ListSchedules)
			schedules.GET("/calendar", h.CropSchedule.GetCalendar)
			schedules.GET("/:id", h.CropSchedule.GetSchedule)
			schedules.POST("", h.CropSchedule.CreateSchedule)
			schedules.PUT("/:id", h.CropSchedule.UpdateSchedule)
			schedules.PUT("/:id/reschedule", h.CropSchedule.RescheduleSchedule)
			schedules.DELETE("/:id", h.CropSchedule.DeleteSchedule)
		}

		// 田块模块
		fields := v1.Group("/fields")
		{
			fields.GET("", h.Field.ListFields)
			fields.GET("/:id", h.Field.GetField)
			fields.POST("", h.Field.CreateField)
			fields.PUT("/:id", h.Field.UpdateField)
			fields.DELETE("/:id", h.Field.DeleteField)
			fields.GET("/:id/crop-schedules", h.Field.ListFieldSchedules)
			fields.GET("/:id/inspections", h.FieldLog.ListFieldInspections)
			fields.GET("/:id/activities", h.FieldLog.ListFieldActivities)
		}

		// 设备模块
		equipment := v1.Group("/equipment")
		{
			equipment.GET("", h.Equipment.ListEquipment)
			equipment.GET("/alerts", h.Equipment.GetMaintenanceAlerts)
			equipment.GET("/maintenance-history", h.Equipment.GetMaintenanceHistory)
			equipment.GET("/:id", h.Equipment.GetEquipment)
			equipment.POST("", h.Equipment.CreateEquipment)
			equipment.PUT("/:id", h.Equipment.UpdateEquipment)
			equipment.DELETE("/:id", h.Equipment.DeleteEquipment)
			equipment.POST("/:id/usage", h.Equipment.LogUsage)
			equipment.POST("/:id/maintenance", h.Equipment.ScheduleMaintenance)
		}

		// 巡检与田块活动
		inspections := v1.Group("/inspections")
		{
			inspections.GET("", h.FieldLog.ListInspections)
			inspections.GET("/:id", h.FieldLog.GetInspection)
			inspections.POST("", h.FieldLog.CreateInspection)
			inspections.PUT("/:id", h.FieldLog.UpdateInspection)
			inspections.DELETE("/:id", h.FieldLog.DeleteInspection)
		}
		activities := v1.Group("/activities")
		{
			activities.GET("", h.FieldLog.ListActivities)
			activities.GET("/:id", h.FieldLog.GetActivity)
			activities.POST("", h.FieldLog.CreateActivity)
			activities.PUT("/:id", h.FieldLog.UpdateActivity)
			activities.DELETE("/:id", h.FieldLog.DeleteActivity)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/crop-schedules.xlsx", h.Export.ExportExcel)
			export.GET("/crop-schedules.ics", h.Export.ExportICS)
		}
	}

	return r
}
