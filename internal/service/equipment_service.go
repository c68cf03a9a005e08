package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"crop-calendar/config"
	"crop-calendar/internal/dto"
	"crop-calendar/internal/model"
	"crop-calendar/internal/repository"
	pkgerrors "crop-calendar/pkg/errors"
)

// 保养提醒优先级与状态
const (
	AlertPriorityHigh   = "high"
	AlertPriorityMedium = "medium"
	AlertPriorityLow    = "low"

	AlertStatusOverdue  = "overdue"
	AlertStatusDueSoon  = "due-soon"
	AlertStatusUpcoming = "upcoming"
)

var (
	ErrEquipmentNotFound = errors.New("设备不存在")
)

var alertPriorityRank = map[string]int{
	AlertPriorityHigh:   3,
	AlertPriorityMedium: 2,
	AlertPriorityLow:    1,
}

// EquipmentService 设备业务接口
type EquipmentService interface {
	Create(ctx context.Context, req *dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.EquipmentResponse, error)
	List(ctx context.Context) ([]dto.EquipmentResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateEquipmentRequest) (*dto.EquipmentResponse, error)
	Delete(ctx context.Context, id int64) error
	// MaintenanceAlerts 按优先级降序、剩余天数升序返回保养提醒
	MaintenanceAlerts(ctx context.Context) ([]dto.MaintenanceAlertResponse, error)
	// LogUsage 累加工时与油耗；累计工时达到下次保养工时后状态置为 maintenance-due
	LogUsage(ctx context.Context, id int64, req *dto.LogUsageRequest) (*dto.LogUsageResponse, error)
	ScheduleMaintenance(ctx context.Context, id int64, req *dto.ScheduleMaintenanceRequest) (*dto.MaintenanceRecordResponse, error)
	// MaintenanceHistory 全部设备的保养排期，按排期日期降序
	MaintenanceHistory(ctx context.Context) ([]dto.MaintenanceRecordResponse, error)
}

type equipmentService struct {
	cfg    *config.MaintenanceConfig
	repo   *repository.Repository
	clock  Clock
	logger *zap.Logger
}

// NewEquipmentService 创建 EquipmentService 实例
func NewEquipmentService(cfg *config.MaintenanceConfig, repo *repository.Repository, clock Clock, logger *zap.Logger) EquipmentService {
	return &equipmentService{cfg: cfg, repo: repo, clock: clock, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *equipmentService) Create(ctx context.Context, req *dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error) {
	errs := pkgerrors.FieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Equipment name is required"
	}
	last, err := parseOptionalDate(req.LastMaintenance)
	if err != nil {
		errs["lastMaintenance"] = msgDateInvalid
	}
	next, err := parseOptionalDate(req.NextMaintenance)
	if err != nil {
		errs["nextMaintenance"] = msgDateInvalid
	}
	if err := pkgerrors.NewValidationError(errs); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.EquipmentOperational
	}
	nextHours := req.NextMaintenanceHours
	if nextHours == 0 {
		nextHours = req.LastMaintenanceHours + 500
	}

	eq := &model.Equipment{
		Name:                 strings.TrimSpace(req.Name),
		Type:                 req.Type,
		Location:             req.Location,
		Status:               status,
		TotalHours:           req.TotalHours,
		LastMaintenanceHours: req.LastMaintenanceHours,
		NextMaintenanceHours: nextHours,
		LastMaintenance:      last,
		NextMaintenance:      next,
	}
	if err := s.repo.Equipment.Create(ctx, eq); err != nil {
		s.logger.Error("登记设备失败", zap.String("name", eq.Name), zap.Error(err))
		return nil, err
	}
	return toEquipmentResponse(eq), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *equipmentService) GetByID(ctx context.Context, id int64) (*dto.EquipmentResponse, error) {
	eq, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询设备失败", id, err)
	}
	return toEquipmentResponse(eq), nil
}

// ────────────────────── List ──────────────────────

func (s *equipmentService) List(ctx context.Context) ([]dto.EquipmentResponse, error) {
	list, err := s.repo.Equipment.List(ctx)
	if err != nil {
		s.logger.Error("列出设备失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.EquipmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toEquipmentResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *equipmentService) Update(ctx context.Context, id int64, req *dto.UpdateEquipmentRequest) (*dto.EquipmentResponse, error) {
	eq, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询设备失败", id, err)
	}

	errs := pkgerrors.FieldErrors{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			errs["name"] = "Equipment name is required"
		}
		eq.Name = strings.TrimSpace(*req.Name)
	}
	if req.LastMaintenance != nil {
		if eq.LastMaintenance, err = parseOptionalDate(*req.LastMaintenance); err != nil {
			errs["lastMaintenance"] = msgDateInvalid
		}
	}
	if req.NextMaintenance != nil {
		if eq.NextMaintenance, err = parseOptionalDate(*req.NextMaintenance); err != nil {
			errs["nextMaintenance"] = msgDateInvalid
		}
	}
	if err := pkgerrors.NewValidationError(errs); err != nil {
		return nil, err
	}

	if req.Type != nil {
		eq.Type = *req.Type
	}
	if req.Location != nil {
		eq.Location = *req.Location
	}
	if req.Status != nil {
		eq.Status = *req.Status
	}
	if req.TotalHours != nil {
		eq.TotalHours = *req.TotalHours
	}
	if req.LastMaintenanceHours != nil {
		eq.LastMaintenanceHours = *req.LastMaintenanceHours
	}
	if req.NextMaintenanceHours != nil {
		eq.NextMaintenanceHours = *req.NextMaintenanceHours
	}

	if err := s.repo.Equipment.Update(ctx, eq); err != nil {
		return nil, s.mapStoreErr("更新设备失败", id, err)
	}
	return toEquipmentResponse(eq), nil
}

// ────────────────────── Delete ──────────────────────

func (s *equipmentService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Equipment.Delete(ctx, id)
	if err != nil {
		return s.mapStoreErr("删除设备失败", id, err)
	}
	if !deleted {
		return ErrEquipmentNotFound
	}
	s.logger.Info("设备已删除", zap.Int64("id", id))
	return nil
}

// ────────────────────── LogUsage ──────────────────────

func (s *equipmentService) LogUsage(ctx context.Context, id int64, req *dto.LogUsageRequest) (*dto.LogUsageResponse, error) {
	when := s.clock.current().UTC()
	if strings.TrimSpace(req.Date) != "" {
		t, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return nil, pkgerrors.NewValidationError(pkgerrors.FieldErrors{"date": msgDateInvalid})
		}
		when = t.UTC()
	}

	eq, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询设备失败", id, err)
	}

	entry := model.UsageLog{
		ID:                   int64(len(eq.UsageLogs) + 1),
		Date:                 when,
		Hours:                req.Hours,
		FuelUsed:             req.FuelUsed,
		Operator:             req.Operator,
		Notes:                req.Notes,
		MaintenancePerformed: req.MaintenancePerformed,
	}
	eq.UsageLogs = append(eq.UsageLogs, entry)
	eq.TotalHours += entry.Hours
	eq.TotalFuel += entry.FuelUsed
	eq.LastUsed = &when
	if eq.TotalHours >= eq.NextMaintenanceHours {
		eq.Status = model.EquipmentMaintenanceDue
	}

	if err := s.repo.Equipment.Update(ctx, eq); err != nil {
		return nil, s.mapStoreErr("登记设备使用失败", id, err)
	}
	s.logger.Info("设备使用已登记",
		zap.Int64("id", id),
		zap.Float64("hours", entry.Hours),
		zap.Float64("total_hours", eq.TotalHours),
	)
	return &dto.LogUsageResponse{
		Equipment: *toEquipmentResponse(eq),
		Log:       toUsageLogResponse(entry),
	}, nil
}

// ────────────────────── ScheduleMaintenance ──────────────────────

func (s *equipmentService) ScheduleMaintenance(ctx context.Context, id int64, req *dto.ScheduleMaintenanceRequest) (*dto.MaintenanceRecordResponse, error) {
	errs := pkgerrors.FieldErrors{}
	if strings.TrimSpace(req.ServiceType) == "" {
		errs["serviceType"] = "Service type is required"
	}
	date, err := model.ParseDate(req.ScheduledDate)
	if err != nil {
		errs["scheduledDate"] = msgDateInvalid
	}
	if err := pkgerrors.NewValidationError(errs); err != nil {
		return nil, err
	}

	eq, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr("查询设备失败", id, err)
	}

	record := model.MaintenanceRecord{
		ID:            int64(len(eq.MaintenanceHistory) + 1),
		EquipmentID:   eq.ID,
		ServiceType:   strings.TrimSpace(req.ServiceType),
		ScheduledDate: date,
		EstimatedCost: req.EstimatedCost,
		Priority:      req.Priority,
		Notes:         req.Notes,
		Status:        model.MaintenanceScheduled,
		CreatedAt:     s.clock.current().UTC(),
	}
	eq.MaintenanceHistory = append(eq.MaintenanceHistory, record)

	if err := s.repo.Equipment.Update(ctx, eq); err != nil {
		return nil, s.mapStoreErr("排期保养失败", id, err)
	}
	resp := toMaintenanceRecordResponse(record, eq.Name)
	return &resp, nil
}

// ────────────────────── MaintenanceHistory ──────────────────────

func (s *equipmentService) MaintenanceHistory(ctx context.Context) ([]dto.MaintenanceRecordResponse, error) {
	list, err := s.repo.Equipment.List(ctx)
	if err != nil {
		s.logger.Error("读取设备列表失败", zap.Error(err))
		return nil, err
	}

	type entry struct {
		rec  model.MaintenanceRecord
		name string
	}
	var all []entry
	for _, eq := range list {
		for _, rec := range eq.MaintenanceHistory {
			all = append(all, entry{rec: rec, name: eq.Name})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].rec.ScheduledDate.After(all[j].rec.ScheduledDate.Date)
	})

	result := make([]dto.MaintenanceRecordResponse, 0, len(all))
	for _, e := range all {
		result = append(result, toMaintenanceRecordResponse(e.rec, e.name))
	}
	return result, nil
}

// ────────────────────── MaintenanceAlerts ──────────────────────

func (s *equipmentService) MaintenanceAlerts(ctx context.Context) ([]dto.MaintenanceAlertResponse, error) {
	list, err := s.repo.Equipment.List(ctx)
	if err != nil {
		s.logger.Error("读取设备列表失败", zap.Error(err))
		return nil, err
	}

	today := s.clock.Today()
	alerts := make([]dto.MaintenanceAlertResponse, 0)
	for _, eq := range list {
		if alert, ok := evaluateMaintenance(eq, today, s.cfg); ok {
			alerts = append(alerts, alert)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		pi, pj := alertPriorityRank[alerts[i].Priority], alertPriorityRank[alerts[j].Priority]
		if pi != pj {
			return pi > pj
		}
		return daysOrMax(alerts[i].DaysUntil) < daysOrMax(alerts[j].DaysUntil)
	})
	return alerts, nil
}

// evaluateMaintenance 计算单台设备的提醒；未进入提醒窗口时返回 false。
// 没有计划保养日期的设备只按工时判断。
func evaluateMaintenance(eq model.Equipment, today civil.Date, cfg *config.MaintenanceConfig) (dto.MaintenanceAlertResponse, bool) {
	hours := eq.NextMaintenanceHours - eq.TotalHours

	var days *int
	if eq.NextMaintenance != nil && !eq.NextMaintenance.IsZero() {
		d := eq.NextMaintenance.DaysSince(today)
		days = &d
	}

	inWindow := hours <= cfg.AlertWindowHours || (days != nil && *days <= cfg.AlertWindowDays)
	if !inWindow {
		return dto.MaintenanceAlertResponse{}, false
	}

	priority, status := AlertPriorityLow, AlertStatusUpcoming
	switch {
	case hours <= 0 || (days != nil && *days < 0):
		priority, status = AlertPriorityHigh, AlertStatusOverdue
	case hours <= cfg.DueSoonHours || (days != nil && *days <= cfg.DueSoonDays):
		priority, status = AlertPriorityMedium, AlertStatusDueSoon
	}

	return dto.MaintenanceAlertResponse{
		EquipmentID:         eq.ID,
		EquipmentName:       eq.Name,
		EquipmentType:       eq.Type,
		Location:            eq.Location,
		NextMaintenanceDate: formatOptionalDate(eq.NextMaintenance),
		DaysUntil:           days,
		HoursUntil:          hours,
		Priority:            priority,
		Status:              status,
	}, true
}

func (s *equipmentService) mapStoreErr(msg string, id int64, err error) error {
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return ErrEquipmentNotFound
	}
	s.logger.Error(msg, zap.Int64("id", id), zap.Error(err))
	return err
}

func daysOrMax(d *int) int {
	if d == nil {
		return int(^uint(0) >> 1)
	}
	return *d
}

func toEquipmentResponse(e *model.Equipment) *dto.EquipmentResponse {
	return &dto.EquipmentResponse{
		ID:                   e.ID,
		Name:                 e.Name,
		Type:                 e.Type,
		Location:             e.Location,
		Status:               e.Status,
		TotalHours:           e.TotalHours,
		LastMaintenanceHours: e.LastMaintenanceHours,
		NextMaintenanceHours: e.NextMaintenanceHours,
		LastMaintenance:      formatOptionalDate(e.LastMaintenance),
		NextMaintenance:      formatOptionalDate(e.NextMaintenance),
		TotalFuel:            e.TotalFuel,
		LastUsed:             formatOptionalTime(e.LastUsed),
	}
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toUsageLogResponse(l model.UsageLog) dto.UsageLogResponse {
	return dto.UsageLogResponse{
		ID:                   l.ID,
		Date:                 l.Date.UTC().Format(time.RFC3339),
		Hours:                l.Hours,
		FuelUsed:             l.FuelUsed,
		Operator:             l.Operator,
		Notes:                l.Notes,
		MaintenancePerformed: l.MaintenancePerformed,
	}
}

func toMaintenanceRecordResponse(r model.MaintenanceRecord, equipmentName string) dto.MaintenanceRecordResponse {
	return dto.MaintenanceRecordResponse{
		ID:            r.ID,
		EquipmentID:   r.EquipmentID,
		EquipmentName: equipmentName,
		ServiceType:   r.ServiceType,
		ScheduledDate: r.ScheduledDate.String(),
		EstimatedCost: r.EstimatedCost,
		Priority:      r.Priority,
		Notes:         r.Notes,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
