package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "crop-calendar/pkg/errors"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	CropSchedule CropScheduleRepository
	Field        FieldRepository
	Equipment    EquipmentRepository
	Inspection   InspectionRepository
	Activity     ActivityRepository
}

// NewRepository 创建基于 GORM 的 Repository 聚合（postgres / sqlite 共用）
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		CropSchedule: NewCropScheduleRepo(db),
		Field:        NewFieldRepo(db),
		Equipment:    NewEquipmentRepo(db),
		Inspection:   NewInspectionRepo(db),
		Activity:     NewActivityRepo(db),
	}
}

// mapErr 将 GORM 错误统一为存储端错误分类：
// 记录不存在 → ErrNotFound，其余 → ErrStoreUnavailable
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.ErrNotFound
	}
	return fmt.Errorf("%s: %w: %v", op, pkgerrors.ErrStoreUnavailable, err)
}

// updateRow 按主键整行更新已存在的记录（含零值列），记录不存在时返回 ErrNotFound。
// 不使用 Save：Save 在未命中时会退化为插入。
func updateRow(ctx context.Context, db *gorm.DB, op string, id int64, value interface{}) error {
	result := db.WithContext(ctx).
		Model(value).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(value)
	if result.Error != nil {
		return mapErr(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

// deleteRow 按主键删除，返回是否删除了记录
func deleteRow(ctx context.Context, db *gorm.DB, op string, id int64, value interface{}) (bool, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(value)
	if result.Error != nil {
		return false, mapErr(op, result.Error)
	}
	return result.RowsAffected > 0, nil
}
