package dto

// ── 设备模块 DTO ──

// CreateEquipmentRequest 登记设备请求
type CreateEquipmentRequest struct {
	Name                 string  `json:"name"                   binding:"required,max=255"`
	Type                 string  `json:"type"                   binding:"omitempty,max=100"`
	Location             string  `json:"location"               binding:"omitempty,max=255"`
	Status               string  `json:"status"                 binding:"omitempty,max=50"`
	TotalHours           float64 `json:"total_hours"            binding:"omitempty,min=0"`
	LastMaintenanceHours float64 `json:"last_maintenance_hours" binding:"omitempty,min=0"`
	NextMaintenanceHours float64 `json:"next_maintenance_hours" binding:"omitempty,min=0"`
	LastMaintenance      string  `json:"last_maintenance"`
	NextMaintenance      string  `json:"next_maintenance"`
}

// EquipmentResponse 设备信息响应
type EquipmentResponse struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Type                 string  `json:"type,omitempty"`
	Location             string  `json:"location,omitempty"`
	Status               string  `json:"status,omitempty"`
	TotalHours           float64 `json:"total_hours"`
	LastMaintenanceHours float64 `json:"last_maintenance_hours"`
	NextMaintenanceHours float64 `json:"next_maintenance_hours"`
	LastMaintenance      string  `json:"last_maintenance,omitempty"`
	NextMaintenance      string  `json:"next_maintenance,omitempty"`
	TotalFuel            float64 `json:"total_fuel"`
	LastUsed             string  `json:"last_used,omitempty"`
}

// MaintenanceAlertResponse 保养提醒
type MaintenanceAlertResponse struct {
	EquipmentID         int64   `json:"equipment_id"`
	EquipmentName       string  `json:"equipment_name"`
	EquipmentType       string  `json:"equipment_type,omitempty"`
	Location            string  `json:"location,omitempty"`
	NextMaintenanceDate string  `json:"next_maintenance_date,omitempty"`
	DaysUntil           *int    `json:"days_until_maintenance,omitempty"` // 无计划日期时为空
	HoursUntil          float64 `json:"hours_until_maintenance"`
	Priority            string  `json:"priority"` // high | medium | low
	Status              string  `json:"status"`   // overdue | due-soon | upcoming
}

// UpdateEquipmentRequest 更新设备请求；未出现的字段保持不变
type UpdateEquipmentRequest struct {
	Name                 *string  `json:"name"                   binding:"omitempty,max=255"`
	Type                 *string  `json:"type"                   binding:"omitempty,max=100"`
	Location             *string  `json:"location"               binding:"omitempty,max=255"`
	Status               *string  `json:"status"                 binding:"omitempty,max=50"`
	TotalHours           *float64 `json:"total_hours"            binding:"omitempty,min=0"`
	LastMaintenanceHours *float64 `json:"last_maintenance_hours" binding:"omitempty,min=0"`
	NextMaintenanceHours *float64 `json:"next_maintenance_hours" binding:"omitempty,min=0"`
	LastMaintenance      *string  `json:"last_maintenance"`
	NextMaintenance      *string  `json:"next_maintenance"`
}

// LogUsageRequest 登记一次使用
type LogUsageRequest struct {
	Date                 string  `json:"date"` // RFC3339，为空取当前时间
	Hours                float64 `json:"hours"     binding:"min=0"`
	FuelUsed             float64 `json:"fuel_used" binding:"min=0"`
	Operator             string  `json:"operator"  binding:"omitempty,max=100"`
	Notes                string  `json:"notes"`
	MaintenancePerformed bool    `json:"maintenance_performed"`
}

// UsageLogResponse 使用记录
type UsageLogResponse struct {
	ID                   int64   `json:"id"`
	Date                 string  `json:"date"`
	Hours                float64 `json:"hours"`
	FuelUsed             float64 `json:"fuel_used"`
	Operator             string  `json:"operator,omitempty"`
	Notes                string  `json:"notes,omitempty"`
	MaintenancePerformed bool    `json:"maintenance_performed"`
}

// LogUsageResponse 登记后的设备状态
type LogUsageResponse struct {
	Equipment EquipmentResponse `json:"equipment"`
	Log       UsageLogResponse  `json:"log"`
}

// ScheduleMaintenanceRequest 排期保养请求
type ScheduleMaintenanceRequest struct {
	ServiceType   string  `json:"service_type"   binding:"required,max=100"`
	ScheduledDate string  `json:"scheduled_date" binding:"required"`
	EstimatedCost float64 `json:"estimated_cost" binding:"min=0"`
	Priority      string  `json:"priority"       binding:"omitempty,oneof=low medium high"`
	Notes         string  `json:"notes"`
}

// MaintenanceRecordResponse 保养排期
type MaintenanceRecordResponse struct {
	ID            int64   `json:"id"`
	EquipmentID   int64   `json:"equipment_id"`
	EquipmentName string  `json:"equipment_name,omitempty"`
	ServiceType   string  `json:"service_type"`
	ScheduledDate string  `json:"scheduled_date"`
	EstimatedCost float64 `json:"estimated_cost"`
	Priority      string  `json:"priority,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}
