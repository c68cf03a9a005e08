package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"crop-calendar/internal/dto"
	"crop-calendar/internal/model"
	"crop-calendar/internal/repository"
	pkgerrors "crop-calendar/pkg/errors"
)

// ── 田块模块业务错误 ──

var (
	ErrFieldNotFound = errors.New("田块不存在")
)

// FieldService 田块业务接口
type FieldService interface {
	Create(ctx context.Context, req *dto.CreateFieldRequest) (*dto.FieldResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.FieldResponse, error)
	List(ctx context.Context) ([]dto.FieldResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateFieldRequest) (*dto.FieldResponse, error)
	// Delete 删除田块；引用它的计划、巡检与活动保留，田块名显示为空
	Delete(ctx context.Context, id int64) error
}

type fieldService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewFieldService 创建 FieldService 实例
func NewFieldService(repo *repository.Repository, logger *zap.Logger) FieldService {
	return &fieldService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *fieldService) Create(ctx context.Context, req *dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	errs := pkgerrors.FieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Field name is required"
	}
	planting, err := parseOptionalDate(req.PlantingDate)
	if err != nil {
		errs["plantingDate"] = msgDateInvalid
	}
	inspection, err := parseOptionalDate(req.LastInspection)
	if err != nil {
		errs["lastInspection"] = msgDateInvalid
	}
	if err := pkgerrors.NewValidationError(errs); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = "active"
	}
	field := &model.Field{
		Name:           strings.TrimSpace(req.Name),
		Size:           req.Size,
		CropType:       req.CropType,
		PlantingDate:   planting,
		GrowthStage:    req.GrowthStage,
		Status:         status,
		LastInspection: inspection,
		Notes:          req.Notes,
	}
	if err := s.repo.Field.Create(ctx, field); err != nil {
		s.logger.Error("创建田块失败", zap.String("name", field.Name), zap.Error(err))
		return nil, err
	}

	return toFieldResponse(field), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *fieldService) GetByID(ctx context.Context, id int64) (*dto.FieldResponse, error) {
	field, err := s.repo.Field.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询田块失败", id, err)
	}
	return toFieldResponse(field), nil
}

// ────────────────────── List ──────────────────────

func (s *fieldService) List(ctx context.Context) ([]dto.FieldResponse, error) {
	fields, err := s.repo.Field.List(ctx)
	if err != nil {
		s.logger.Error("列出田块失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.FieldResponse, 0, len(fields))
	for i := range fields {
		result = append(result, *toFieldResponse(&fields[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *fieldService) Update(ctx context.Context, id int64, req *dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	field, err := s.repo.Field.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询田块失败", id, err)
	}

	errs := pkgerrors.FieldErrors{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			errs["name"] = "Field name is required"
		}
		field.Name = strings.TrimSpace(*req.Name)
	}
	if req.PlantingDate != nil {
		if field.PlantingDate, err = parseOptionalDate(*req.PlantingDate); err != nil {
			errs["plantingDate"] = msgDateInvalid
		}
	}
	if req.LastInspection != nil {
		if field.LastInspection, err = parseOptionalDate(*req.LastInspection); err != nil {
			errs["lastInspection"] = msgDateInvalid
		}
	}
	if err := pkgerrors.NewValidationError(errs); err != nil {
		return nil, err
	}

	if req.Size != nil {
		field.Size = *req.Size
	}
	if req.CropType != nil {
		field.CropType = *req.CropType
	}
	if req.GrowthStage != nil {
		field.GrowthStage = *req.GrowthStage
	}
	if req.Status != nil {
		field.Status = *req.Status
	}
	if req.Notes != nil {
		field.Notes = *req.Notes
	}

	if err := s.repo.Field.Update(ctx, field); err != nil {
		return nil, s.mapStoreErr("更新田块失败", id, err)
	}
	return toFieldResponse(field), nil
}

// ────────────────────── Delete ──────────────────────

func (s *fieldService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Field.Delete(ctx, id)
	if err != nil {
		return s.mapStoreErr("删除田块失败", id, err)
	}
	if !deleted {
		return ErrFieldNotFound
	}
	s.logger.Info("田块已删除", zap.Int64("id", id))
	return nil
}

func (s *fieldService) mapStoreErr(msg string, id int64, err error) error {
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return ErrFieldNotFound
	}
	s.logger.Error(msg, zap.Int64("id", id), zap.Error(err))
	return err
}

func toFieldResponse(f *model.Field) *dto.FieldResponse {
	return &dto.FieldResponse{
		ID:             f.ID,
		Name:           f.Name,
		Size:           f.Size,
		CropType:       f.CropType,
		PlantingDate:   formatOptionalDate(f.PlantingDate),
		GrowthStage:    f.GrowthStage,
		Status:         f.Status,
		LastInspection: formatOptionalDate(f.LastInspection),
		Notes:          f.Notes,
	}
}

// parseOptionalDate 空串返回 nil
func parseOptionalDate(s string) (*model.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatOptionalDate(d *model.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.String()
}
