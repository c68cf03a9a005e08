package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"crop-calendar/internal/dto"
	"crop-calendar/internal/model"
	"crop-calendar/internal/repository"
	pkgerrors "crop-calendar/pkg/errors"
)

var (
	ErrActivityNotFound = errors.New("田块活动不存在")
)

// ActivityService 田块活动日志业务接口
type ActivityService interface {
	Create(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.ActivityResponse, error)
	List(ctx context.Context) ([]dto.ActivityResponse, error)
	ListByField(ctx context.Context, fieldID int64) ([]dto.ActivityResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error)
	Delete(ctx context.Context, id int64) error
}

type activityService struct {
	repo   *repository.Repository
	clock  Clock
	logger *zap.Logger
}

// NewActivityService 创建 ActivityService 实例
func NewActivityService(repo *repository.Repository, clock Clock, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, clock: clock, logger: logger}
}

func (s *activityService) Create(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	errs := pkgerrors.FieldErrors{}
	if strings.TrimSpace(req.Type) == "" {
		errs["type"] = "Activity type is required"
	}
	ts := s.clock.current().UTC()
	if strings.TrimSpace(req.Timestamp) != "" {
		t, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			errs["timestamp"] = msgDateInvalid
		}
		ts = t.UTC()
	}
	if err := pkgerrors.NewValidationError(errs); err != nil {
		return nil, err
	}

	a := &model.FieldActivity{
		FieldID:     req.FieldID,
		Type:        strings.TrimSpace(req.Type),
		Description: req.Description,
		Timestamp:   ts,
	}
	if err := s.repo.Activity.Create(ctx, a); err != nil {
		s.logger.Error("记录田块活动失败", zap.Int64("field_id", req.FieldID), zap.Error(err))
		return nil, err
	}
	return toActivityResponse(a), nil
}

func (s *activityService) GetByID(ctx context.Context, id int64) (*dto.ActivityResponse, error) {
	a, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询田块活动失败", id, err)
	}
	return toActivityResponse(a), nil
}

func (s *activityService) List(ctx context.Context) ([]dto.ActivityResponse, error) {
	list, err := s.repo.Activity.List(ctx, nil)
	if err != nil {
		s.logger.Error("查询田块活动失败", zap.Error(err))
		return nil, err
	}
	return toActivityResponses(list), nil
}

func (s *activityService) ListByField(ctx context.Context, fieldID int64) ([]dto.ActivityResponse, error) {
	if _, err := s.repo.Field.GetByID(ctx, fieldID); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrFieldNotFound
		}
		s.logger.Error("查询田块失败", zap.Int64("field_id", fieldID), zap.Error(err))
		return nil, err
	}
	list, err := s.repo.Activity.List(ctx, &fieldID)
	if err != nil {
		s.logger.Error("按田块查询田块活动失败", zap.Int64("field_id", fieldID), zap.Error(err))
		return nil, err
	}
	return toActivityResponses(list), nil
}

func (s *activityService) Update(ctx context.Context, id int64, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	a, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询田块活动失败", id, err)
	}

	errs := pkgerrors.FieldErrors{}
	if req.Type != nil {
		if strings.TrimSpace(*req.Type) == "" {
			errs["type"] = "Activity type is required"
		}
		a.Type = strings.TrimSpace(*req.Type)
	}
	if req.Timestamp != nil {
		t, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			errs["timestamp"] = msgDateInvalid
		}
		a.Timestamp = t.UTC()
	}
	if err := pkgerrors.NewValidationError(errs); err != nil {
		return nil, err
	}
	if req.FieldID != nil {
		a.FieldID = *req.FieldID
	}
	if req.Description != nil {
		a.Description = *req.Description
	}

	if err := s.repo.Activity.Update(ctx, a); err != nil {
		return nil, s.mapStoreErr("更新田块活动失败", id, err)
	}
	return toActivityResponse(a), nil
}

func (s *activityService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Activity.Delete(ctx, id)
	if err != nil {
		return s.mapStoreErr("删除田块活动失败", id, err)
	}
	if !deleted {
		return ErrActivityNotFound
	}
	return nil
}

func (s *activityService) mapStoreErr(msg string, id int64, err error) error {
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return ErrActivityNotFound
	}
	s.logger.Error(msg, zap.Int64("id", id), zap.Error(err))
	return err
}

func toActivityResponse(a *model.FieldActivity) *dto.ActivityResponse {
	return &dto.ActivityResponse{
		ID:          a.ID,
		FieldID:     a.FieldID,
		Type:        a.Type,
		Description: a.Description,
		Timestamp:   a.Timestamp.UTC().Format(time.RFC3339),
	}
}

func toActivityResponses(list []model.FieldActivity) []dto.ActivityResponse {
	result := make([]dto.ActivityResponse, 0, len(list))
	for i := range list {
		result = append(result, *toActivityResponse(&list[i]))
	}
	return result
}
