package repository

import (
	"context"

	"gorm.io/gorm"

	"crop-calendar/internal/model"
)

// InspectionRepository 巡检记录数据访问接口
type InspectionRepository interface {
	Create(ctx context.Context, in *model.Inspection) error
	GetByID(ctx context.Context, id int64) (*model.Inspection, error)
	// List 按日期降序；fieldID 为 nil 时返回全部
	List(ctx context.Context, fieldID *int64) ([]model.Inspection, error)
	Update(ctx context.Context, in *model.Inspection) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type inspectionRepo struct {
	db *gorm.DB
}

// NewInspectionRepo 创建 InspectionRepository 实例
func NewInspectionRepo(db *gorm.DB) InspectionRepository {
	return &inspectionRepo{db: db}
}

func (r *inspectionRepo) Create(ctx context.Context, in *model.Inspection) error {
	return mapErr("创建巡检记录", r.db.WithContext(ctx).Create(in).Error)
}

func (r *inspectionRepo) GetByID(ctx context.Context, id int64) (*model.Inspection, error) {
	var in model.Inspection
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&in).Error; err != nil {
		return nil, mapErr("查询巡检记录", err)
	}
	return &in, nil
}

func (r *inspectionRepo) List(ctx context.Context, fieldID *int64) ([]model.Inspection, error) {
	var list []model.Inspection
	db := r.db.WithContext(ctx)
	if fieldID != nil {
		db = db.Where("field_id = ?", *fieldID)
	}
	if err := db.Order("date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, mapErr("查询巡检记录", err)
	}
	return list, nil
}

func (r *inspectionRepo) Update(ctx context.Context, in *model.Inspection) error {
	return updateRow(ctx, r.db, "更新巡检记录", in.ID, in)
}

func (r *inspectionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteRow(ctx, r.db, "删除巡检记录", id, &model.Inspection{})
}
