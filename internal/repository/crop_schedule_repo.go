package repository

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"gorm.io/gorm"

	"crop-calendar/internal/calendar"
	"crop-calendar/internal/model"
	pkgerrors "crop-calendar/pkg/errors"
)

// CropScheduleRepository 作物计划数据访问接口（满足 calendar.Store）
type CropScheduleRepository interface {
	List(ctx context.Context, filter model.ScheduleFilter) ([]model.CropSchedule, error)
	GetByID(ctx context.Context, id int64) (*model.CropSchedule, error)
	Create(ctx context.Context, schedule *model.CropSchedule) error
	Update(ctx context.Context, id int64, patch model.SchedulePatch) (*model.CropSchedule, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

var _ calendar.Store = (CropScheduleRepository)(nil)

type cropScheduleRepo struct {
	db *gorm.DB
}

// NewCropScheduleRepo 创建 CropScheduleRepository 实例
func NewCropScheduleRepo(db *gorm.DB) CropScheduleRepository {
	return &cropScheduleRepo{db: db}
}

// List 田块条件下推到 SQL；按月时先用日期区间缩小范围，
// 最终由 calendar.Match 统一做月份与季节判定
func (r *cropScheduleRepo) List(ctx context.Context, filter model.ScheduleFilter) ([]model.CropSchedule, error) {
	var schedules []model.CropSchedule
	db := r.db.WithContext(ctx)

	if filter.FieldID != nil {
		db = db.Where("field_id = ?", *filter.FieldID)
	}
	if filter.Month != 0 {
		first := civil.Date{Year: filter.Year, Month: filter.Month, Day: 1}
		start, end := model.NewDate(first), model.NewDate(calendar.AddMonths(first, 1))
		db = db.Where("date >= ? AND date < ?", start, end)
	}

	if err := db.Order("date ASC, id ASC").Find(&schedules).Error; err != nil {
		return nil, mapErr("查询作物计划", err)
	}
	return calendar.FilterSchedules(schedules, filter), nil
}

func (r *cropScheduleRepo) GetByID(ctx context.Context, id int64) (*model.CropSchedule, error) {
	var s model.CropSchedule
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, mapErr("查询作物计划", err)
	}
	return &s, nil
}

func (r *cropScheduleRepo) Create(ctx context.Context, s *model.CropSchedule) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return mapErr("创建作物计划", r.db.WithContext(ctx).Create(s).Error)
}

// Update 只写入补丁中非 nil 的列，返回更新后的完整记录
func (r *cropScheduleRepo) Update(ctx context.Context, id int64, patch model.SchedulePatch) (*model.CropSchedule, error) {
	cols := patchColumns(patch)
	if len(cols) == 0 {
		return r.GetByID(ctx, id)
	}

	result := r.db.WithContext(ctx).
		Model(&model.CropSchedule{}).
		Where("id = ?", id).
		Updates(cols)
	if result.Error != nil {
		return nil, mapErr("更新作物计划", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *cropScheduleRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.CropSchedule{})
	if result.Error != nil {
		return false, mapErr("删除作物计划", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func patchColumns(p model.SchedulePatch) map[string]interface{} {
	cols := make(map[string]interface{})
	if p.CropName != nil {
		cols["crop_name"] = *p.CropName
	}
	if p.Variety != nil {
		cols["variety"] = *p.Variety
	}
	if p.ActivityType != nil {
		cols["activity_type"] = *p.ActivityType
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.FieldID != nil {
		cols["field_id"] = *p.FieldID
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	if p.Priority != nil {
		cols["priority"] = *p.Priority
	}
	if p.ExpectedYield != nil {
		cols["expected_yield"] = *p.ExpectedYield
	}
	return cols
}
