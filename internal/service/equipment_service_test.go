package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"crop-calendar/config"
	"crop-calendar/internal/dto"
	"crop-calendar/internal/model"
	pkgerrors "crop-calendar/pkg/errors"
)

// ── 测试辅助 ──

func setupTestEquipmentService() (EquipmentService, *mockRepos) {
	repo, mocks := newMockRepository()
	cfg := &config.MaintenanceConfig{
		DueSoonDays:      7,
		DueSoonHours:     50,
		AlertWindowDays:  30,
		AlertWindowHours: 100,
	}
	return NewEquipmentService(cfg, repo, fixedClock(), zap.NewNop()), mocks
}

func datePtr(s string) *model.Date {
	d := model.MustParseDate(s)
	return &d
}

// ── MaintenanceAlerts 测试 ──

func TestEquipmentService_MaintenanceAlerts(t *testing.T) {
	svc, mocks := setupTestEquipmentService()
	// 今天 2024-06-15
	for _, e := range []model.Equipment{
		{ID: 1, Name: "Tractor", TotalHours: 100, NextMaintenanceHours: 500, NextMaintenance: datePtr("2024-07-10")},   // 25 天 → low
		{ID: 2, Name: "Harvester", TotalHours: 480, NextMaintenanceHours: 500, NextMaintenance: datePtr("2024-09-01")}, // 20 小时 → medium
		{ID: 3, Name: "Sprayer", TotalHours: 100, NextMaintenanceHours: 500, NextMaintenance: datePtr("2024-06-10")},   // 逾期 → high
		{ID: 4, Name: "Seeder", TotalHours: 100, NextMaintenanceHours: 500, NextMaintenance: datePtr("2024-12-01")},    // 窗口外
		{ID: 5, Name: "Baler", TotalHours: 100, NextMaintenanceHours: 500, NextMaintenance: datePtr("2024-06-20")},     // 5 天 → medium
		{ID: 6, Name: "Mower", TotalHours: 520, NextMaintenanceHours: 500},                                               // 超工时 → high
	} {
		e := e
		mocks.equipment.items[e.ID] = &e
	}

	alerts, err := svc.MaintenanceAlerts(context.Background())
	if err != nil {
		t.Fatalf("MaintenanceAlerts 应成功: %v", err)
	}

	type row struct {
		ID       int64
		Priority string
		Status   string
	}
	got := make([]row, 0, len(alerts))
	for _, a := range alerts {
		got = append(got, row{a.EquipmentID, a.Priority, a.Status})
	}
	want := []row{
		{3, AlertPriorityHigh, AlertStatusOverdue},
		{6, AlertPriorityHigh, AlertStatusOverdue}, // 无计划日期排在同优先级末尾
		{5, AlertPriorityMedium, AlertStatusDueSoon},
		{2, AlertPriorityMedium, AlertStatusDueSoon},
		{1, AlertPriorityLow, AlertStatusUpcoming},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("提醒列表不符 (-want +got):\n%s", diff)
	}

	if alerts[0].DaysUntil == nil || *alerts[0].DaysUntil != -5 {
		t.Errorf("Sprayer 期望剩余 -5 天，实际=%v", alerts[0].DaysUntil)
	}
	if alerts[1].DaysUntil != nil || alerts[1].HoursUntil != -20 {
		t.Errorf("Mower 期望无日期且剩余 -20 小时，实际=%v / %v", alerts[1].DaysUntil, alerts[1].HoursUntil)
	}
}

func TestEquipmentService_MaintenanceAlerts_StoreError(t *testing.T) {
	svc, mocks := setupTestEquipmentService()
	mocks.equipment.err = pkgerrors.ErrStoreUnavailable

	if _, err := svc.MaintenanceAlerts(context.Background()); err == nil {
		t.Error("存储不可用时应返回错误")
	}
}

// ── Create 测试 ──

func TestEquipmentService_Create(t *testing.T) {
	svc, _ := setupTestEquipmentService()
	ctx := context.Background()

	result, err := svc.Create(ctx, &dto.CreateEquipmentRequest{
		Name:                 "Tractor",
		Type:                 "tractor",
		LastMaintenanceHours: 200,
		NextMaintenance:      "2024-08-01",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.NextMaintenanceHours != 700 || result.Status != "operational" {
		t.Errorf("默认值不符: hours=%v status=%s", result.NextMaintenanceHours, result.Status)
	}
	if result.NextMaintenance != "2024-08-01" {
		t.Errorf("期望下次保养 2024-08-01，实际=%s", result.NextMaintenance)
	}

	_, err = svc.Create(ctx, &dto.CreateEquipmentRequest{Name: " ", NextMaintenance: "someday"})
	fields, ok := pkgerrors.IsValidation(err)
	if !ok || len(fields) != 2 {
		t.Errorf("期望 name 与 nextMaintenance 两个错误，实际=%v", err)
	}
}

func TestEquipmentService_GetByID(t *testing.T) {
	svc, _ := setupTestEquipmentService()
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateEquipmentRequest{Name: "Sprayer"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if got.Name != "Sprayer" {
		t.Errorf("期望 Sprayer，实际=%s", got.Name)
	}

	if _, err := svc.GetByID(ctx, 999); !errors.Is(err, ErrEquipmentNotFound) {
		t.Errorf("期望 ErrEquipmentNotFound，实际=%v", err)
	}
}

// ── Update / Delete 测试 ──

func TestEquipmentService_UpdateDelete(t *testing.T) {
	svc, mocks := setupTestEquipmentService()
	ctx := context.Background()
	mocks.equipment.items[1] = &model.Equipment{ID: 1, Name: "Tractor", Status: model.EquipmentOperational, NextMaintenanceHours: 500}

	location := "Barn B"
	hours := 120.0
	got, err := svc.Update(ctx, 1, &dto.UpdateEquipmentRequest{Location: &location, TotalHours: &hours})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got.Location != "Barn B" || got.TotalHours != 120 || got.Name != "Tractor" {
		t.Errorf("部分更新不符: %+v", got)
	}

	bad := "next week"
	_, err = svc.Update(ctx, 1, &dto.UpdateEquipmentRequest{NextMaintenance: &bad})
	if fields, ok := pkgerrors.IsValidation(err); !ok || fields["nextMaintenance"] == "" {
		t.Errorf("期望 nextMaintenance 校验错误，实际=%v", err)
	}

	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if err := svc.Delete(ctx, 1); !errors.Is(err, ErrEquipmentNotFound) {
		t.Errorf("重复删除期望 ErrEquipmentNotFound，实际=%v", err)
	}
	if _, err := svc.Update(ctx, 1, &dto.UpdateEquipmentRequest{}); !errors.Is(err, ErrEquipmentNotFound) {
		t.Errorf("期望 ErrEquipmentNotFound，实际=%v", err)
	}
}

// ── LogUsage 测试 ──

func TestEquipmentService_LogUsage(t *testing.T) {
	svc, mocks := setupTestEquipmentService()
	ctx := context.Background()
	mocks.equipment.items[1] = &model.Equipment{
		ID: 1, Name: "Tractor", Status: model.EquipmentOperational,
		TotalHours: 480, TotalFuel: 100, NextMaintenanceHours: 500,
	}

	first, err := svc.LogUsage(ctx, 1, &dto.LogUsageRequest{Hours: 8, FuelUsed: 20, Operator: "Ana"})
	if err != nil {
		t.Fatalf("LogUsage 应成功: %v", err)
	}
	if first.Equipment.TotalHours != 488 || first.Equipment.TotalFuel != 120 || first.Equipment.Status != model.EquipmentOperational {
		t.Errorf("首次登记后设备不符: %+v", first.Equipment)
	}
	// 未给日期取当前时间
	if first.Log.ID != 1 || first.Log.Date != "2024-06-15T10:00:00Z" || first.Equipment.LastUsed != first.Log.Date {
		t.Errorf("使用记录不符: %+v last_used=%s", first.Log, first.Equipment.LastUsed)
	}

	second, err := svc.LogUsage(ctx, 1, &dto.LogUsageRequest{Hours: 12, Date: "2024-06-16T07:30:00Z"})
	if err != nil {
		t.Fatalf("LogUsage 应成功: %v", err)
	}
	if second.Equipment.Status != model.EquipmentMaintenanceDue {
		t.Errorf("达到保养工时后期望 %s，实际=%s", model.EquipmentMaintenanceDue, second.Equipment.Status)
	}
	if second.Log.ID != 2 {
		t.Errorf("期望记录 ID 2，实际=%d", second.Log.ID)
	}
	if logs := mocks.equipment.items[1].UsageLogs; len(logs) != 2 || logs[1].Hours != 12 {
		t.Errorf("存储中的使用记录不符: %+v", logs)
	}

	_, err = svc.LogUsage(ctx, 1, &dto.LogUsageRequest{Hours: 1, Date: "2024-06-16"})
	if fields, ok := pkgerrors.IsValidation(err); !ok || fields["date"] == "" {
		t.Errorf("非 RFC3339 日期期望校验错误，实际=%v", err)
	}
	if _, err := svc.LogUsage(ctx, 9, &dto.LogUsageRequest{Hours: 1}); !errors.Is(err, ErrEquipmentNotFound) {
		t.Errorf("期望 ErrEquipmentNotFound，实际=%v", err)
	}
}

// ── ScheduleMaintenance / MaintenanceHistory 测试 ──

func TestEquipmentService_ScheduleMaintenanceAndHistory(t *testing.T) {
	svc, mocks := setupTestEquipmentService()
	ctx := context.Background()
	mocks.equipment.items[1] = &model.Equipment{ID: 1, Name: "Tractor"}
	mocks.equipment.items[2] = &model.Equipment{ID: 2, Name: "Sprayer"}

	_, err := svc.ScheduleMaintenance(ctx, 1, &dto.ScheduleMaintenanceRequest{ServiceType: " ", ScheduledDate: "July"})
	fields, ok := pkgerrors.IsValidation(err)
	if !ok || fields["serviceType"] == "" || fields["scheduledDate"] == "" {
		t.Errorf("期望 serviceType 与 scheduledDate 错误，实际=%v", err)
	}

	for _, c := range []struct {
		id   int64
		date string
	}{{1, "2024-07-01"}, {2, "2024-08-15"}, {1, "2024-06-20"}} {
		rec, err := svc.ScheduleMaintenance(ctx, c.id, &dto.ScheduleMaintenanceRequest{
			ServiceType: "Oil change", ScheduledDate: c.date, EstimatedCost: 80, Priority: "medium",
		})
		if err != nil {
			t.Fatalf("ScheduleMaintenance 应成功: %v", err)
		}
		if rec.Status != model.MaintenanceScheduled || rec.CreatedAt != "2024-06-15T10:00:00Z" {
			t.Errorf("排期记录不符: %+v", rec)
		}
	}

	history, err := svc.MaintenanceHistory(ctx)
	if err != nil {
		t.Fatalf("MaintenanceHistory 应成功: %v", err)
	}
	type row struct {
		Equipment string
		Date      string
	}
	var got []row
	for _, h := range history {
		got = append(got, row{h.EquipmentName, h.ScheduledDate})
	}
	want := []row{{"Sprayer", "2024-08-15"}, {"Tractor", "2024-07-01"}, {"Tractor", "2024-06-20"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("保养排期不符 (-want +got):\n%s", diff)
	}

	if _, err := svc.ScheduleMaintenance(ctx, 9, &dto.ScheduleMaintenanceRequest{ServiceType: "x", ScheduledDate: "2024-07-01"}); !errors.Is(err, ErrEquipmentNotFound) {
		t.Errorf("期望 ErrEquipmentNotFound，实际=%v", err)
	}
}
