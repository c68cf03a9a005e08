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

var (
	ErrInspectionNotFound = errors.New("巡检记录不存在")
)

// InspectionService 田块巡检业务接口
type InspectionService interface {
	Create(ctx context.Context, req *dto.CreateInspectionRequest) (*dto.InspectionResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.InspectionResponse, error)
	List(ctx context.Context) ([]dto.InspectionResponse, error)
	// ListByField 田块不存在时返回 ErrFieldNotFound
	ListByField(ctx context.Context, fieldID int64) ([]dto.InspectionResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateInspectionRequest) (*dto.InspectionResponse, error)
	Delete(ctx context.Context, id int64) error
}

type inspectionService struct {
	repo   *repository.Repository
	clock  Clock
	logger *zap.Logger
}

// NewInspectionService 创建 InspectionService 实例
func NewInspectionService(repo *repository.Repository, clock Clock, logger *zap.Logger) InspectionService {
	return &inspectionService{repo: repo, clock: clock, logger: logger}
}

func (s *inspectionService) Create(ctx context.Context, req *dto.CreateInspectionRequest) (*dto.InspectionResponse, error) {
	date := model.NewDate(s.clock.Today())
	if strings.TrimSpace(req.Date) != "" {
		d, err := model.ParseDate(req.Date)
		if err != nil {
			return nil, pkgerrors.NewValidationError(pkgerrors.FieldErrors{"date": msgDateInvalid})
		}
		date = d
	}
	userID := req.UserID
	if userID == 0 {
		userID = model.SystemUserID
	}

	in := &model.Inspection{
		FieldID: req.FieldID,
		Date:    date,
		Status:  req.Status,
		Notes:   req.Notes,
		UserID:  userID,
	}
	if err := s.repo.Inspection.Create(ctx, in); err != nil {
		s.logger.Error("创建巡检记录失败", zap.Int64("field_id", req.FieldID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("巡检记录已创建", zap.Int64("id", in.ID), zap.Int64("field_id", in.FieldID))
	return s.toResponse(ctx, in, nil), nil
}

func (s *inspectionService) GetByID(ctx context.Context, id int64) (*dto.InspectionResponse, error) {
	in, err := s.repo.Inspection.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询巡检记录失败", id, err)
	}
	return s.toResponse(ctx, in, nil), nil
}

func (s *inspectionService) List(ctx context.Context) ([]dto.InspectionResponse, error) {
	list, err := s.repo.Inspection.List(ctx, nil)
	if err != nil {
		s.logger.Error("查询巡检记录失败", zap.Error(err))
		return nil, err
	}
	names := map[int64]string{}
	if fields, err := s.repo.Field.List(ctx); err == nil {
		for _, f := range fields {
			names[f.ID] = f.Name
		}
	} else {
		s.logger.Warn("读取田块名失败，巡检记录不带田块名", zap.Error(err))
	}
	return s.toResponses(ctx, list, names), nil
}

func (s *inspectionService) ListByField(ctx context.Context, fieldID int64) ([]dto.InspectionResponse, error) {
	field, err := s.repo.Field.GetByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrFieldNotFound
		}
		s.logger.Error("查询田块失败", zap.Int64("field_id", fieldID), zap.Error(err))
		return nil, err
	}
	list, err := s.repo.Inspection.List(ctx, &fieldID)
	if err != nil {
		s.logger.Error("按田块查询巡检记录失败", zap.Int64("field_id", fieldID), zap.Error(err))
		return nil, err
	}
	return s.toResponses(ctx, list, map[int64]string{field.ID: field.Name}), nil
}

func (s *inspectionService) Update(ctx context.Context, id int64, req *dto.UpdateInspectionRequest) (*dto.InspectionResponse, error) {
	in, err := s.repo.Inspection.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询巡检记录失败", id, err)
	}
	if req.Date != nil {
		d, err := model.ParseDate(*req.Date)
		if err != nil {
			return nil, pkgerrors.NewValidationError(pkgerrors.FieldErrors{"date": msgDateInvalid})
		}
		in.Date = d
	}
	if req.FieldID != nil {
		in.FieldID = *req.FieldID
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Notes != nil {
		in.Notes = *req.Notes
	}
	if req.UserID != nil {
		in.UserID = *req.UserID
	}

	if err := s.repo.Inspection.Update(ctx, in); err != nil {
		return nil, s.mapStoreErr("更新巡检记录失败", id, err)
	}
	return s.toResponse(ctx, in, nil), nil
}

func (s *inspectionService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Inspection.Delete(ctx, id)
	if err != nil {
		return s.mapStoreErr("删除巡检记录失败", id, err)
	}
	if !deleted {
		return ErrInspectionNotFound
	}
	return nil
}

func (s *inspectionService) mapStoreErr(msg string, id int64, err error) error {
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return ErrInspectionNotFound
	}
	s.logger.Error(msg, zap.Int64("id", id), zap.Error(err))
	return err
}

// toResponse names 为 nil 时单独查田块名，查不到留空
func (s *inspectionService) toResponse(ctx context.Context, in *model.Inspection, names map[int64]string) *dto.InspectionResponse {
	var fieldName string
	if names != nil {
		fieldName = names[in.FieldID]
	} else if f, err := s.repo.Field.GetByID(ctx, in.FieldID); err == nil {
		fieldName = f.Name
	}
	return &dto.InspectionResponse{
		ID:        in.ID,
		FieldID:   in.FieldID,
		FieldName: fieldName,
		Date:      in.Date.String(),
		Status:    in.Status,
		Notes:     in.Notes,
		UserID:    in.UserID,
	}
}

func (s *inspectionService) toResponses(ctx context.Context, list []model.Inspection, names map[int64]string) []dto.InspectionResponse {
	result := make([]dto.InspectionResponse, 0, len(list))
	for i := range list {
		result = append(result, *s.toResponse(ctx, &list[i], names))
	}
	return result
}
