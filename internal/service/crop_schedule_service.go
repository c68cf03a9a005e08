package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crop-calendar/config"
	"crop-calendar/internal/calendar"
	"crop-calendar/internal/dto"
	"crop-calendar/internal/model"
	"crop-calendar/internal/repository"
	pkgerrors "crop-calendar/pkg/errors"
)

// ── 作物计划模块业务错误 ──

var (
	ErrCropScheduleNotFound = errors.New("作物计划不存在")
)

// 表单之外的字段错误文案
const (
	msgDateInvalid     = "Invalid date"
	msgMonthInvalid    = "Month must be YYYY-MM"
	msgActivityInvalid = "Unknown activity type"
	msgPriorityInvalid = "Unknown priority"
)

// CropScheduleService 作物计划业务接口
type CropScheduleService interface {
	List(ctx context.Context, req *dto.CropScheduleListRequest) ([]dto.CropScheduleResponse, error)
	MonthView(ctx context.Context, month string, fieldID *int64) (*dto.CalendarMonthResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.CropScheduleResponse, error)
	ListByField(ctx context.Context, fieldID int64) ([]dto.CropScheduleResponse, error)
	Create(ctx context.Context, req *dto.CreateCropScheduleRequest) (*dto.CropScheduleResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateCropScheduleRequest) (*dto.CropScheduleResponse, error)
	Reschedule(ctx context.Context, id int64, req *dto.RescheduleRequest) (*dto.RescheduleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type cropScheduleService struct {
	cfg         *config.CalendarConfig
	repo        *repository.Repository
	rescheduler *calendar.Rescheduler
	clock       Clock
	logger      *zap.Logger
}

// NewCropScheduleService 创建 CropScheduleService 实例
func NewCropScheduleService(cfg *config.CalendarConfig, repo *repository.Repository, clock Clock, logger *zap.Logger) CropScheduleService {
	return &cropScheduleService{
		cfg:         cfg,
		repo:        repo,
		rescheduler: calendar.NewRescheduler(repo.CropSchedule, logger),
		clock:       clock,
		logger:      logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *cropScheduleService) List(ctx context.Context, req *dto.CropScheduleListRequest) ([]dto.CropScheduleResponse, error) {
	opts, filter, err := parseListRequest(req)
	if err != nil {
		return nil, err
	}

	schedules, names, err := s.loadWithFieldNames(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts.FieldNames = names
	projected := calendar.Project(schedules, opts)
	return s.toResponses(projected, names), nil
}

func parseListRequest(req *dto.CropScheduleListRequest) (calendar.ProjectOptions, model.ScheduleFilter, error) {
	var opts calendar.ProjectOptions
	var filter model.ScheduleFilter
	errs := pkgerrors.FieldErrors{}

	season, err := calendar.ParseSeasonFilter(req.Season)
	if err != nil {
		errs["season"] = "Season must be one of All, Spring, Summer, Fall, Winter"
	}
	key, err := calendar.ParseSortKey(req.Sort)
	if err != nil {
		errs["sort"] = "Sort must be one of date, cropName, fieldId, activityType"
	}
	dir, err := calendar.ParseSortDirection(req.Order)
	if err != nil {
		errs["order"] = "Order must be asc or desc"
	}
	if req.Month != "" {
		ref, err := parseMonth(req.Month)
		if err != nil {
			errs["month"] = msgMonthInvalid
		} else {
			filter.Year, filter.Month = ref.Year, ref.Month
		}
	}
	if err := pkgerrors.NewValidationError(errs); err != nil {
		return opts, filter, err
	}

	filter.FieldID = req.FieldID
	// 季节在投影阶段过滤，存储端不重复处理
	opts = calendar.ProjectOptions{Season: season, SortKey: key, Direction: dir}
	return opts, filter, nil
}

// ────────────────────── MonthView ──────────────────────

// MonthView 月视图：month 为空时取当月；每一格附带当天的计划，前后月用于翻页
func (s *cropScheduleService) MonthView(ctx context.Context, month string, fieldID *int64) (*dto.CalendarMonthResponse, error) {
	today := s.clock.Today()
	ref := calendar.MonthStart(today)
	if month != "" {
		parsed, err := parseMonth(month)
		if err != nil {
			return nil, pkgerrors.NewValidationError(pkgerrors.FieldErrors{"month": msgMonthInvalid})
		}
		ref = parsed
	}

	filter := model.ScheduleFilter{FieldID: fieldID, Year: ref.Year, Month: ref.Month}
	schedules, names, err := s.loadWithFieldNames(ctx, filter)
	if err != nil {
		return nil, err
	}

	idx := calendar.IndexByDate(schedules)
	view := calendar.BuildMonthView(ref, idx)

	resp := &dto.CalendarMonthResponse{
		Month:       formatMonth(ref),
		PrevMonth:   formatMonth(calendar.AddMonths(ref, -1)),
		NextMonth:   formatMonth(calendar.AddMonths(ref, 1)),
		DaysInMonth: calendar.DaysIn(ref.Year, ref.Month),
		Cells:       make([]dto.CalendarCellResponse, 0, len(view)),
		Total:       len(schedules),
	}
	for _, dc := range view {
		if dc.Blank {
			resp.LeadingBlanks++
			resp.Cells = append(resp.Cells, dto.CalendarCellResponse{Blank: true, Schedules: []dto.CropScheduleResponse{}})
			continue
		}
		resp.Cells = append(resp.Cells, dto.CalendarCellResponse{
			Date:      dc.Date.String(),
			Day:       dc.Date.Day,
			IsToday:   dc.Date == today,
			Schedules: s.toResponses(dc.Schedules, names),
		})
	}
	return resp, nil
}

// loadWithFieldNames 并发读取计划与田块名称。
// 田块读取失败只降级为未解析名称，不影响计划本身。
func (s *cropScheduleService) loadWithFieldNames(ctx context.Context, filter model.ScheduleFilter) ([]model.CropSchedule, map[int64]string, error) {
	var schedules []model.CropSchedule
	names := map[int64]string{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.repo.CropSchedule.List(gctx, filter)
		if err != nil {
			return err
		}
		schedules = list
		return nil
	})
	g.Go(func() error {
		fields, err := s.repo.Field.List(gctx)
		if err != nil {
			s.logger.Warn("读取田块列表失败，田块名称将留空", zap.Error(err))
			return nil
		}
		names = model.FieldNames(fields)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("查询作物计划失败", zap.Error(err))
		return nil, nil, err
	}
	return schedules, names, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *cropScheduleService) GetByID(ctx context.Context, id int64) (*dto.CropScheduleResponse, error) {
	schedule, err := s.repo.CropSchedule.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询作物计划失败", id, err)
	}
	resp := s.toResponse(*schedule, s.fieldName(ctx, schedule.FieldID))
	return &resp, nil
}

// ────────────────────── ListByField ──────────────────────

func (s *cropScheduleService) ListByField(ctx context.Context, fieldID int64) ([]dto.CropScheduleResponse, error) {
	field, err := s.repo.Field.GetByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrFieldNotFound
		}
		s.logger.Error("查询田块失败", zap.Int64("field_id", fieldID), zap.Error(err))
		return nil, err
	}

	schedules, err := s.repo.CropSchedule.List(ctx, model.ScheduleFilter{FieldID: &fieldID})
	if err != nil {
		s.logger.Error("按田块查询作物计划失败", zap.Int64("field_id", fieldID), zap.Error(err))
		return nil, err
	}

	projected := calendar.Project(schedules, calendar.ProjectOptions{SortKey: calendar.SortByDate})
	return s.toResponses(projected, map[int64]string{field.ID: field.Name}), nil
}

// ────────────────────── Create ──────────────────────

func (s *cropScheduleService) Create(ctx context.Context, req *dto.CreateCropScheduleRequest) (*dto.CropScheduleResponse, error) {
	errs := pkgerrors.FieldErrors{}

	draft := calendar.ScheduleDraft{
		CropName:      req.CropName,
		Variety:       req.Variety,
		FieldID:       req.FieldID,
		Notes:         req.Notes,
		ExpectedYield: req.ExpectedYield,
	}
	if at, err := model.ParseActivityType(req.ActivityType); err != nil {
		errs["activityType"] = msgActivityInvalid
	} else {
		draft.ActivityType = at
	}
	if req.Priority != "" {
		if p := model.Priority(req.Priority); p.Valid() {
			draft.Priority = p
		} else {
			errs["priority"] = msgPriorityInvalid
		}
	}

	var selected *civil.Date
	if strings.TrimSpace(req.Date) != "" {
		d, err := model.ParseDate(req.Date)
		if err != nil {
			errs["date"] = msgDateInvalid
		} else {
			selected = &d.Date
		}
	}

	for k, v := range calendar.ValidateDraft(draft, selected) {
		if _, exists := errs[k]; !exists {
			errs[k] = v
		}
	}
	if err := pkgerrors.NewValidationError(errs); err != nil {
		return nil, err
	}

	schedule := draft.ToSchedule(*selected)
	if err := s.repo.CropSchedule.Create(ctx, &schedule); err != nil {
		s.logger.Error("创建作物计划失败", zap.String("crop", schedule.CropName), zap.Error(err))
		return nil, err
	}

	s.logger.Info("作物计划已创建",
		zap.Int64("id", schedule.ID),
		zap.String("title", schedule.Title()),
		zap.String("date", schedule.Date.String()),
	)
	resp := s.toResponse(schedule, s.fieldName(ctx, schedule.FieldID))
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

// Update 局部更新。只改日期时走重排引擎，与拖放共享空操作判定。
func (s *cropScheduleService) Update(ctx context.Context, id int64, req *dto.UpdateCropScheduleRequest) (*dto.CropScheduleResponse, error) {
	patch, err := buildPatch(req)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return s.GetByID(ctx, id)
	}

	var updated *model.CropSchedule
	if onlyDate(patch) {
		res, err := s.rescheduler.EditDate(ctx, nil, id, patch.Date.Date)
		if err != nil {
			return nil, s.mapStoreErr("更新作物计划失败", id, err)
		}
		updated = &res.Schedule
	} else {
		updated, err = s.repo.CropSchedule.Update(ctx, id, patch)
		if err != nil {
			return nil, s.mapStoreErr("更新作物计划失败", id, err)
		}
	}

	resp := s.toResponse(*updated, s.fieldName(ctx, updated.FieldID))
	return &resp, nil
}

func buildPatch(req *dto.UpdateCropScheduleRequest) (model.SchedulePatch, error) {
	var p model.SchedulePatch
	errs := pkgerrors.FieldErrors{}

	if req.CropName != nil {
		name := strings.TrimSpace(*req.CropName)
		if name == "" {
			errs["cropName"] = calendar.MsgCropNameRequired
		}
		p.CropName = &name
	}
	if req.FieldID != nil {
		if *req.FieldID <= 0 {
			errs["fieldId"] = calendar.MsgFieldRequired
		}
		p.FieldID = req.FieldID
	}
	if req.Date != nil {
		d, err := model.ParseDate(*req.Date)
		if err != nil {
			errs["date"] = msgDateInvalid
		}
		p.Date = &d
	}
	if req.ActivityType != nil {
		at := model.ActivityType(*req.ActivityType)
		if !at.Valid() {
			errs["activityType"] = msgActivityInvalid
		}
		p.ActivityType = &at
	}
	if req.Priority != nil {
		pr := model.Priority(*req.Priority)
		if !pr.Valid() {
			errs["priority"] = msgPriorityInvalid
		}
		p.Priority = &pr
	}
	p.Variety = req.Variety
	p.Notes = req.Notes
	p.ExpectedYield = req.ExpectedYield

	if err := pkgerrors.NewValidationError(errs); err != nil {
		return model.SchedulePatch{}, err
	}
	return p, nil
}

func onlyDate(p model.SchedulePatch) bool {
	if p.Date == nil {
		return false
	}
	rest := p
	rest.Date = nil
	return rest.IsEmpty()
}

// ────────────────────── Reschedule ──────────────────────

func (s *cropScheduleService) Reschedule(ctx context.Context, id int64, req *dto.RescheduleRequest) (*dto.RescheduleResponse, error) {
	d, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, pkgerrors.NewValidationError(pkgerrors.FieldErrors{"date": msgDateInvalid})
	}
	src := calendar.SourceEdit
	if req.Source == string(calendar.SourceDrag) {
		src = calendar.SourceDrag
	}

	res, err := s.rescheduler.Via(ctx, src, nil, id, d.Date)
	if err != nil {
		return nil, s.mapStoreErr("重排作物计划失败", id, err)
	}

	return &dto.RescheduleResponse{
		Schedule: s.toResponse(res.Schedule, s.fieldName(ctx, res.Schedule.FieldID)),
		Changed:  res.Changed,
	}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *cropScheduleService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.CropSchedule.Delete(ctx, id)
	if err != nil {
		return s.mapStoreErr("删除作物计划失败", id, err)
	}
	if !deleted {
		return ErrCropScheduleNotFound
	}
	s.logger.Info("作物计划已删除", zap.Int64("id", id))
	return nil
}

// ── 辅助函数 ──

// mapStoreErr 记录不存在映射为模块错误；校验错误与存储不可用原样上抛
func (s *cropScheduleService) mapStoreErr(msg string, id int64, err error) error {
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return ErrCropScheduleNotFound
	}
	if _, ok := pkgerrors.IsValidation(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error(msg, zap.Int64("id", id), zap.Error(err))
	return err
}

// fieldName 单条记录的田块名；查不到时留空
func (s *cropScheduleService) fieldName(ctx context.Context, fieldID int64) string {
	f, err := s.repo.Field.GetByID(ctx, fieldID)
	if err != nil {
		return ""
	}
	return f.Name
}

func (s *cropScheduleService) toResponses(list []model.CropSchedule, names map[int64]string) []dto.CropScheduleResponse {
	result := make([]dto.CropScheduleResponse, 0, len(list))
	for _, sc := range list {
		result = append(result, s.toResponse(sc, names[sc.FieldID]))
	}
	return result
}

func (s *cropScheduleService) toResponse(sc model.CropSchedule, fieldName string) dto.CropScheduleResponse {
	resp := dto.CropScheduleResponse{
		ID:            sc.ID,
		Title:         sc.Title(),
		CropName:      sc.CropName,
		Variety:       sc.Variety,
		ActivityType:  string(sc.ActivityType),
		Date:          sc.Date.String(),
		Season:        string(calendar.SeasonOfDate(sc.Date.Date)),
		FieldID:       sc.FieldID,
		FieldName:     fieldName,
		Notes:         sc.Notes,
		Priority:      string(sc.Priority),
		ExpectedYield: sc.ExpectedYield,
		Upcoming:      calendar.IsUpcoming(sc.Date.Date, s.clock.Today(), s.cfg.UpcomingWindowDays),
	}
	if !sc.CreatedAt.IsZero() {
		resp.CreatedAt = sc.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func parseMonth(s string) (civil.Date, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("无效的月份 %q: %w", s, err)
	}
	return civil.Date{Year: t.Year(), Month: t.Month(), Day: 1}, nil
}

func formatMonth(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}
