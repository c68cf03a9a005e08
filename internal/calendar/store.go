package calendar

import (
	"context"

	"crop-calendar/internal/model"
)

// Store 作物计划存储端（唯一可信数据源）。
// 实现方需返回 pkg/errors 中的 ErrNotFound / ErrStoreUnavailable。
type Store interface {
	List(ctx context.Context, filter model.ScheduleFilter) ([]model.CropSchedule, error)
	GetByID(ctx context.Context, id int64) (*model.CropSchedule, error)
	Create(ctx context.Context, schedule *model.CropSchedule) error
	Update(ctx context.Context, id int64, patch model.SchedulePatch) (*model.CropSchedule, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
