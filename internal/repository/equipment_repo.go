package repository

import (
	"context"

	"gorm.io/gorm"

	"crop-calendar/internal/model"
)

// EquipmentRepository 设备数据访问接口
type EquipmentRepository interface {
	Create(ctx context.Context, eq *model.Equipment) error
	GetByID(ctx context.Context, id int64) (*model.Equipment, error)
	List(ctx context.Context) ([]model.Equipment, error)
	// Update 整行更新，记录不存在时返回 ErrNotFound
	Update(ctx context.Context, eq *model.Equipment) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type equipmentRepo struct {
	db *gorm.DB
}

// NewEquipmentRepo 创建 EquipmentRepository 实例
func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Create(ctx context.Context, eq *model.Equipment) error {
	return mapErr("创建设备", r.db.WithContext(ctx).Create(eq).Error)
}

func (r *equipmentRepo) GetByID(ctx context.Context, id int64) (*model.Equipment, error) {
	var eq model.Equipment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&eq).Error
	if err != nil {
		return nil, mapErr("查询设备", err)
	}
	return &eq, nil
}

func (r *equipmentRepo) List(ctx context.Context) ([]model.Equipment, error) {
	var list []model.Equipment
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, mapErr("查询设备列表", err)
	}
	return list, nil
}

func (r *equipmentRepo) Update(ctx context.Context, eq *model.Equipment) error {
	return updateRow(ctx, r.db, "更新设备", eq.ID, eq)
}

func (r *equipmentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteRow(ctx, r.db, "删除设备", id, &model.Equipment{})
}
