package calendar

import (
	"strings"

	"cloud.google.com/go/civil"

	"crop-calendar/internal/model"
	pkgerrors "crop-calendar/pkg/errors"
)

// 表单字段错误文案
const (
	MsgCropNameRequired = "Crop name is required"
	MsgFieldRequired    = "Please select a field"
	MsgDateRequired     = "Please select a date"
)

// ScheduleDraft 新建/编辑计划的表单草稿
type ScheduleDraft struct {
	CropName      string
	Variety       string
	ActivityType  model.ActivityType
	FieldID       int64 // 0 表示未选择
	Notes         string
	Priority      model.Priority
	ExpectedYield string
}

// WithDefaults 补齐 activityType 与 priority 的默认值
func (d ScheduleDraft) WithDefaults() ScheduleDraft {
	if d.ActivityType == "" {
		d.ActivityType = model.ActivityPlanting
	}
	if d.Priority == "" {
		d.Priority = model.PriorityMedium
	}
	return d
}

// ValidateDraft 校验必填项，返回字段级错误（空表示通过）。
// 不做跨字段与唯一性校验，同一作物/日期/田块允许重复。
func ValidateDraft(d ScheduleDraft, selectedDate *civil.Date) pkgerrors.FieldErrors {
	errs := pkgerrors.FieldErrors{}
	if strings.TrimSpace(d.CropName) == "" {
		errs["cropName"] = MsgCropNameRequired
	}
	if d.FieldID == 0 {
		errs["fieldId"] = MsgFieldRequired
	}
	if selectedDate == nil {
		errs["date"] = MsgDateRequired
	}
	return errs
}

// ToSchedule 将通过校验的草稿转换为待创建记录（ID 与 CreatedAt 由存储端分配）
func (d ScheduleDraft) ToSchedule(date civil.Date) model.CropSchedule {
	d = d.WithDefaults()
	return model.CropSchedule{
		CropName:      strings.TrimSpace(d.CropName),
		Variety:       d.Variety,
		ActivityType:  d.ActivityType,
		Date:          model.NewDate(date),
		FieldID:       d.FieldID,
		Notes:         d.Notes,
		Priority:      d.Priority,
		ExpectedYield: d.ExpectedYield,
	}
}
