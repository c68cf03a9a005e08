package repository

import (
	"context"

	"gorm.io/gorm"

	"crop-calendar/internal/model"
)

// ActivityRepository 田块活动日志数据访问接口
type ActivityRepository interface {
	Create(ctx context.Context, a *model.FieldActivity) error
	GetByID(ctx context.Context, id int64) (*model.FieldActivity, error)
	// List 按时间降序；fieldID 为 nil 时返回全部
	List(ctx context.Context, fieldID *int64) ([]model.FieldActivity, error)
	Update(ctx context.Context, a *model.FieldActivity) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo 创建 ActivityRepository 实例
func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, a *model.FieldActivity) error {
	return mapErr("记录田块活动", r.db.WithContext(ctx).Create(a).Error)
}

func (r *activityRepo) GetByID(ctx context.Context, id int64) (*model.FieldActivity, error) {
	var a model.FieldActivity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, mapErr("查询田块活动", err)
	}
	return &a, nil
}

func (r *activityRepo) List(ctx context.Context, fieldID *int64) ([]model.FieldActivity, error) {
	var list []model.FieldActivity
	db := r.db.WithContext(ctx)
	if fieldID != nil {
		db = db.Where("field_id = ?", *fieldID)
	}
	if err := db.Order("occurred_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, mapErr("查询田块活动", err)
	}
	return list, nil
}

func (r *activityRepo) Update(ctx context.Context, a *model.FieldActivity) error {
	return updateRow(ctx, r.db, "更新田块活动", a.ID, a)
}

func (r *activityRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteRow(ctx, r.db, "删除田块活动", id, &model.FieldActivity{})
}
