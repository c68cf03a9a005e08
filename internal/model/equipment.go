package model

import "time"

// 设备状态
const (
	EquipmentOperational    = "operational"
	EquipmentMaintenanceDue = "maintenance-due"
)

// Equipment 农机设备，对应 equipment
type Equipment struct {
	ID                   int64               `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name                 string              `gorm:"type:varchar(255);not null" json:"name"`
	Type                 string              `gorm:"type:varchar(100)"          json:"type"`
	Location             string              `gorm:"type:varchar(255)"          json:"location,omitempty"`
	Status               string              `gorm:"type:varchar(50)"           json:"status,omitempty"`
	TotalHours           float64             `gorm:"not null;default:0"         json:"total_hours"`
	LastMaintenanceHours float64             `gorm:"not null;default:0"         json:"last_maintenance_hours"`
	NextMaintenanceHours float64             `gorm:"not null;default:500"       json:"next_maintenance_hours"`
	LastMaintenance      *Date               `gorm:"type:date"                  json:"last_maintenance,omitempty"`
	NextMaintenance      *Date               `gorm:"type:date"                  json:"next_maintenance,omitempty"`
	TotalFuel            float64             `gorm:"not null;default:0"         json:"total_fuel"`
	LastUsed             *time.Time          `                                  json:"last_used,omitempty"`
	UsageLogs            []UsageLog          `gorm:"type:text;serializer:json"  json:"usage_logs"`
	MaintenanceHistory   []MaintenanceRecord `gorm:"type:text;serializer:json"  json:"maintenance_history"`
	BaseModel
}

func (Equipment) TableName() string { return "equipment" }

// UsageLog 一次使用登记（随设备整体存储）
type UsageLog struct {
	ID                   int64     `json:"id"`
	Date                 time.Time `json:"date"`
	Hours                float64   `json:"hours"`
	FuelUsed             float64   `json:"fuel_used"`
	Operator             string    `json:"operator,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	MaintenancePerformed bool      `json:"maintenance_performed"`
}

// MaintenanceRecord 已排期的保养
type MaintenanceRecord struct {
	ID            int64     `json:"id"`
	EquipmentID   int64     `json:"equipment_id"`
	ServiceType   string    `json:"service_type"`
	ScheduledDate Date      `json:"scheduled_date"`
	EstimatedCost float64   `json:"estimated_cost"`
	Priority      string    `json:"priority,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// MaintenanceScheduled 新排期保养的状态
const MaintenanceScheduled = "scheduled"
