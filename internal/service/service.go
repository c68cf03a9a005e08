package service

import (
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"crop-calendar/config"
	"crop-calendar/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	CropSchedule CropScheduleService
	Field        FieldService
	Equipment    EquipmentService
	Inspection   InspectionService
	Activity     ActivityService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	clock := NewClock(cfg.Calendar)
	return &Service{
		CropSchedule: NewCropScheduleService(&cfg.Calendar, repo, clock, logger),
		Field:        NewFieldService(repo, logger),
		Equipment:    NewEquipmentService(&cfg.Maintenance, repo, clock, logger),
		Inspection:   NewInspectionService(repo, clock, logger),
		Activity:     NewActivityService(repo, clock, logger),
		Export:       NewExportService(repo, clock, logger),
	}
}

// Clock 提供日历时区下的"今天"，测试中可替换 Now
type Clock struct {
	Now func() time.Time
	Loc *time.Location
}

// NewClock 按日历配置创建时钟；时区已在配置加载时校验
func NewClock(cfg config.CalendarConfig) Clock {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Loc: loc}
}

// Today 日历时区下的当天日期
func (c Clock) Today() civil.Date {
	loc := c.Loc
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(c.current().In(loc))
}

func (c Clock) current() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
