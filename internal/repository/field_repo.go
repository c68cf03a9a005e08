package repository

import (
	"context"

	"gorm.io/gorm"

	"crop-calendar/internal/model"
)

// FieldRepository 田块数据访问接口
type FieldRepository interface {
	Create(ctx context.Context, field *model.Field) error
	GetByID(ctx context.Context, id int64) (*model.Field, error)
	List(ctx context.Context) ([]model.Field, error)
	// Update 整行更新，记录不存在时返回 ErrNotFound
	Update(ctx context.Context, field *model.Field) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type fieldRepo struct {
	db *gorm.DB
}

// NewFieldRepo 创建 FieldRepository 实例
func NewFieldRepo(db *gorm.DB) FieldRepository {
	return &fieldRepo{db: db}
}

func (r *fieldRepo) Create(ctx context.Context, field *model.Field) error {
	return mapErr("创建田块", r.db.WithContext(ctx).Create(field).Error)
}

func (r *fieldRepo) GetByID(ctx context.Context, id int64) (*model.Field, error) {
	var f model.Field
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&f).Error
	if err != nil {
		return nil, mapErr("查询田块", err)
	}
	return &f, nil
}

func (r *fieldRepo) List(ctx context.Context) ([]model.Field, error) {
	var fields []model.Field
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&fields).Error; err != nil {
		return nil, mapErr("查询田块列表", err)
	}
	return fields, nil
}

func (r *fieldRepo) Update(ctx context.Context, field *model.Field) error {
	return updateRow(ctx, r.db, "更新田块", field.ID, field)
}

func (r *fieldRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteRow(ctx, r.db, "删除田块", id, &model.Field{})
}
