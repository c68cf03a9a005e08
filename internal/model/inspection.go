package model

import "time"

// Inspection 田块巡检记录，对应 inspections
type Inspection struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FieldID int64  `gorm:"not null;index"           json:"field_id"`
	Date    Date   `gorm:"type:date;not null"       json:"date"`
	Status  string `gorm:"type:varchar(50)"         json:"status,omitempty"`
	Notes   string `gorm:"type:text"                json:"notes,omitempty"`
	UserID  int64  `gorm:"not null;default:1"       json:"user_id"`
	BaseModel
}

func (Inspection) TableName() string { return "inspections" }

// SystemUserID 未指定巡检人时记到系统用户
const SystemUserID int64 = 1

// FieldActivity 田块活动日志（浇水、施肥、巡检等的流水），对应 field_activities
type FieldActivity struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"  json:"id"`
	FieldID     int64     `gorm:"not null;index"            json:"field_id"`
	Type        string    `gorm:"type:varchar(50);not null" json:"type"`
	Description string    `gorm:"type:text"                 json:"description,omitempty"`
	Timestamp   time.Time `gorm:"column:occurred_at;not null;index" json:"timestamp"`
	BaseModel
}

func (FieldActivity) TableName() string { return "field_activities" }

// Title 记录标题：有描述用描述，否则为 "<type> activity"
func (a FieldActivity) Title() string {
	if a.Description != "" {
		return a.Description
	}
	return a.Type + " activity"
}
