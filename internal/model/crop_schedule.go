package model

import (
	"fmt"
	"time"
)

// ActivityType 农事活动类型
type ActivityType string

const (
	ActivityPlanting    ActivityType = "planting"
	ActivityWatering    ActivityType = "watering"
	ActivityFertilizing ActivityType = "fertilizing"
	ActivityHarvesting  ActivityType = "harvesting"
	ActivityPruning     ActivityType = "pruning"
	ActivityPestControl ActivityType = "pest-control"
)

// ActivityTypes 全部合法活动类型（按表单展示顺序）
var ActivityTypes = []ActivityType{
	ActivityPlanting,
	ActivityWatering,
	ActivityFertilizing,
	ActivityHarvesting,
	ActivityPruning,
	ActivityPestControl,
}

// Valid 是否为合法活动类型
func (a ActivityType) Valid() bool {
	for _, t := range ActivityTypes {
		if a == t {
			return true
		}
	}
	return false
}

// ParseActivityType 解析活动类型，空串返回默认值 planting
func ParseActivityType(s string) (ActivityType, error) {
	if s == "" {
		return ActivityPlanting, nil
	}
	a := ActivityType(s)
	if !a.Valid() {
		return "", fmt.Errorf("无效的活动类型 %q", s)
	}
	return a, nil
}

// Priority 计划优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid 是否为合法优先级
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CropSchedule 作物农事计划，对应 crop_schedules
type CropSchedule struct {
	ID            int64        `gorm:"primaryKey;autoIncrement"                         json:"id"`
	CropName      string       `gorm:"type:varchar(255);not null"                       json:"crop_name"`
	Variety       string       `gorm:"type:varchar(255)"                                json:"variety,omitempty"`
	ActivityType  ActivityType `gorm:"type:varchar(20);not null;default:'planting'"     json:"activity_type"`
	Date          Date         `gorm:"type:date;not null;index"                         json:"date"`
	FieldID       int64        `gorm:"not null;index"                                   json:"field_id"`
	Notes         string       `gorm:"type:text"                                        json:"notes,omitempty"`
	Priority      Priority     `gorm:"type:varchar(10);not null;default:'medium'"       json:"priority"`
	ExpectedYield string       `gorm:"type:varchar(100)"                                json:"expected_yield,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;autoCreateTime"                          json:"created_at"`
}

func (CropSchedule) TableName() string { return "crop_schedules" }

// Title 展示标题，如 "Tomato planting"
func (s CropSchedule) Title() string {
	return s.CropName + " " + string(s.ActivityType)
}

// SchedulePatch 部分更新；nil 字段保持不变
type SchedulePatch struct {
	CropName      *string
	Variety       *string
	ActivityType  *ActivityType
	Date          *Date
	FieldID       *int64
	Notes         *string
	Priority      *Priority
	ExpectedYield *string
}

// IsEmpty 是否没有任何待更新字段
func (p SchedulePatch) IsEmpty() bool {
	return p.CropName == nil && p.Variety == nil && p.ActivityType == nil && p.Date == nil &&
		p.FieldID == nil && p.Notes == nil && p.Priority == nil && p.ExpectedYield == nil
}

// Apply 将补丁应用到记录副本上并返回
func (p SchedulePatch) Apply(s CropSchedule) CropSchedule {
	if p.CropName != nil {
		s.CropName = *p.CropName
	}
	if p.Variety != nil {
		s.Variety = *p.Variety
	}
	if p.ActivityType != nil {
		s.ActivityType = *p.ActivityType
	}
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.FieldID != nil {
		s.FieldID = *p.FieldID
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.Priority != nil {
		s.Priority = *p.Priority
	}
	if p.ExpectedYield != nil {
		s.ExpectedYield = *p.ExpectedYield
	}
	return s
}

// ScheduleFilter 列表查询条件。
// FieldID 由存储端过滤；Year/Month 与 Season 在取回全量后由 calendar.Match 统一后置过滤。
type ScheduleFilter struct {
	FieldID *int64
	Year    int
	Month   time.Month // 0 表示不按月过滤
	Season  string     // 空串或 "All" 表示不按季节过滤
}
