package calendar

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"crop-calendar/internal/model"
)

func TestValidateDraft_MissingNameAndField(t *testing.T) {
	date := civil.Date{Year: 2024, Month: time.June, Day: 15}
	errs := ValidateDraft(ScheduleDraft{}, &date)

	if len(errs) != 2 {
		t.Fatalf("期望 2 个字段错误，实际=%v", errs)
	}
	if errs["cropName"] != MsgCropNameRequired {
		t.Errorf("cropName 期望 %q，实际=%q", MsgCropNameRequired, errs["cropName"])
	}
	if errs["fieldId"] != MsgFieldRequired {
		t.Errorf("fieldId 期望 %q，实际=%q", MsgFieldRequired, errs["fieldId"])
	}
	if _, ok := errs["date"]; ok {
		t.Error("已选择日期时不应报 date 错误")
	}
}

func TestValidateDraft_WhitespaceName(t *testing.T) {
	date := civil.Date{Year: 2024, Month: time.June, Day: 15}
	errs := ValidateDraft(ScheduleDraft{CropName: "   \t", FieldID: 3}, &date)
	if len(errs) != 1 || errs["cropName"] != MsgCropNameRequired {
		t.Errorf("纯空白作物名应报错，实际=%v", errs)
	}
}

func TestValidateDraft_MissingDate(t *testing.T) {
	errs := ValidateDraft(ScheduleDraft{CropName: "Corn", FieldID: 3}, nil)
	if len(errs) != 1 || errs["date"] != MsgDateRequired {
		t.Errorf("未选择日期应报错，实际=%v", errs)
	}
}

func TestValidateDraft_Valid(t *testing.T) {
	date := civil.Date{Year: 2024, Month: time.June, Day: 15}
	if errs := ValidateDraft(ScheduleDraft{CropName: "Corn", FieldID: 3}, &date); len(errs) != 0 {
		t.Errorf("期望校验通过，实际=%v", errs)
	}
}

func TestScheduleDraft_ToScheduleAppliesDefaults(t *testing.T) {
	date := civil.Date{Year: 2024, Month: time.June, Day: 15}
	s := ScheduleDraft{CropName: "  Corn ", FieldID: 3}.ToSchedule(date)

	if s.CropName != "Corn" {
		t.Errorf("期望作物名去除首尾空白，实际=%q", s.CropName)
	}
	if s.ActivityType != model.ActivityPlanting {
		t.Errorf("期望默认活动类型 planting，实际=%s", s.ActivityType)
	}
	if s.Priority != model.PriorityMedium {
		t.Errorf("期望默认优先级 medium，实际=%s", s.Priority)
	}
	if s.Date.Date != date {
		t.Errorf("期望日期 %s，实际=%s", date, s.Date)
	}
	if s.ID != 0 || !s.CreatedAt.IsZero() {
		t.Error("ID 与 CreatedAt 应留给存储端分配")
	}
}
