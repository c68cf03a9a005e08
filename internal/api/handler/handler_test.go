package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"crop-calendar/internal/calendar"
	"crop-calendar/internal/dto"
	"crop-calendar/internal/service"
	pkgerrors "crop-calendar/pkg/errors"
	"crop-calendar/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock CropScheduleService ──

type mockCropScheduleService struct {
	listResult       []dto.CropScheduleResponse
	listErr          error
	lastListReq      *dto.CropScheduleListRequest
	monthResult      *dto.CalendarMonthResponse
	monthErr         error
	lastMonth        string
	getResult        *dto.CropScheduleResponse
	getErr           error
	byFieldResult    []dto.CropScheduleResponse
	byFieldErr       error
	createResult     *dto.CropScheduleResponse
	createErr        error
	updateResult     *dto.CropScheduleResponse
	updateErr        error
	rescheduleResult *dto.RescheduleResponse
	rescheduleErr    error
	lastReschedule   *dto.RescheduleRequest
	deleteErr        error
	lastDeletedID    int64
}

func (m *mockCropScheduleService) List(_ context.Context, req *dto.CropScheduleListRequest) ([]dto.CropScheduleResponse, error) {
	m.lastListReq = req
	return m.listResult, m.listErr
}
func (m *mockCropScheduleService) MonthView(_ context.Context, month string, _ *int64) (*dto.CalendarMonthResponse, error) {
	m.lastMonth = month
	return m.monthResult, m.monthErr
}
func (m *mockCropScheduleService) GetByID(_ context.Context, _ int64) (*dto.CropScheduleResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockCropScheduleService) ListByField(_ context.Context, _ int64) ([]dto.CropScheduleResponse, error) {
	return m.byFieldResult, m.byFieldErr
}
func (m *mockCropScheduleService) Create(_ context.Context, _ *dto.CreateCropScheduleRequest) (*dto.CropScheduleResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockCropScheduleService) Update(_ context.Context, _ int64, _ *dto.UpdateCropScheduleRequest) (*dto.CropScheduleResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockCropScheduleService) Reschedule(_ context.Context, _ int64, req *dto.RescheduleRequest) (*dto.RescheduleResponse, error) {
	m.lastReschedule = req
	return m.rescheduleResult, m.rescheduleErr
}
func (m *mockCropScheduleService) Delete(_ context.Context, id int64) error {
	m.lastDeletedID = id
	return m.deleteErr
}

// ── Mock FieldService ──

type mockFieldService struct {
	getResult     *dto.FieldResponse
	getErr        error
	list          []dto.FieldResponse
	updateErr     error
	lastUpdate    *dto.UpdateFieldRequest
	deleteErr     error
	lastDeletedID int64
}

func (m *mockFieldService) Create(_ context.Context, req *dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	return &dto.FieldResponse{ID: 1, Name: req.Name}, nil
}
func (m *mockFieldService) GetByID(_ context.Context, _ int64) (*dto.FieldResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockFieldService) List(_ context.Context) ([]dto.FieldResponse, error) {
	return m.list, nil
}
func (m *mockFieldService) Update(_ context.Context, id int64, req *dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	m.lastUpdate = req
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	resp := &dto.FieldResponse{ID: id}
	if req.Name != nil {
		resp.Name = *req.Name
	}
	return resp, nil
}
func (m *mockFieldService) Delete(_ context.Context, id int64) error {
	m.lastDeletedID = id
	return m.deleteErr
}

// ── Mock EquipmentService ──

type mockEquipmentService struct {
	alerts      []dto.MaintenanceAlertResponse
	alertsErr   error
	getErr      error
	writeErr    error
	history     []dto.MaintenanceRecordResponse
	lastUsage   *dto.LogUsageRequest
	lastService *dto.ScheduleMaintenanceRequest
}

func (m *mockEquipmentService) Create(_ context.Context, req *dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error) {
	return &dto.EquipmentResponse{ID: 1, Name: req.Name}, nil
}
func (m *mockEquipmentService) GetByID(_ context.Context, id int64) (*dto.EquipmentResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.EquipmentResponse{ID: id}, nil
}
func (m *mockEquipmentService) List(_ context.Context) ([]dto.EquipmentResponse, error) {
	return nil, nil
}
func (m *mockEquipmentService) MaintenanceAlerts(_ context.Context) ([]dto.MaintenanceAlertResponse, error) {
	return m.alerts, m.alertsErr
}
func (m *mockEquipmentService) Update(_ context.Context, id int64, _ *dto.UpdateEquipmentRequest) (*dto.EquipmentResponse, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return &dto.EquipmentResponse{ID: id}, nil
}
func (m *mockEquipmentService) Delete(_ context.Context, _ int64) error {
	return m.writeErr
}
func (m *mockEquipmentService) LogUsage(_ context.Context, id int64, req *dto.LogUsageRequest) (*dto.LogUsageResponse, error) {
	m.lastUsage = req
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return &dto.LogUsageResponse{
		Equipment: dto.EquipmentResponse{ID: id, TotalHours: req.Hours},
		Log:       dto.UsageLogResponse{ID: 1, Hours: req.Hours},
	}, nil
}
func (m *mockEquipmentService) ScheduleMaintenance(_ context.Context, id int64, req *dto.ScheduleMaintenanceRequest) (*dto.MaintenanceRecordResponse, error) {
	m.lastService = req
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return &dto.MaintenanceRecordResponse{ID: 1, EquipmentID: id, ServiceType: req.ServiceType, Status: "scheduled"}, nil
}
func (m *mockEquipmentService) MaintenanceHistory(_ context.Context) ([]dto.MaintenanceRecordResponse, error) {
	return m.history, nil
}

// ── Mock InspectionService / ActivityService ──

type mockInspectionService struct {
	byField    []dto.InspectionResponse
	byFieldErr error
	getErr     error
	deleteErr  error
	lastCreate *dto.CreateInspectionRequest
}

func (m *mockInspectionService) Create(_ context.Context, req *dto.CreateInspectionRequest) (*dto.InspectionResponse, error) {
	m.lastCreate = req
	return &dto.InspectionResponse{ID: 1, FieldID: req.FieldID, Date: req.Date}, nil
}
func (m *mockInspectionService) GetByID(_ context.Context, id int64) (*dto.InspectionResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.InspectionResponse{ID: id}, nil
}
func (m *mockInspectionService) List(_ context.Context) ([]dto.InspectionResponse, error) {
	return nil, nil
}
func (m *mockInspectionService) ListByField(_ context.Context, _ int64) ([]dto.InspectionResponse, error) {
	return m.byField, m.byFieldErr
}
func (m *mockInspectionService) Update(_ context.Context, id int64, _ *dto.UpdateInspectionRequest) (*dto.InspectionResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.InspectionResponse{ID: id}, nil
}
func (m *mockInspectionService) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

type mockActivityService struct {
	byField   []dto.ActivityResponse
	getErr    error
	deleteErr error
}

func (m *mockActivityService) Create(_ context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	return &dto.ActivityResponse{ID: 1, FieldID: req.FieldID, Type: req.Type}, nil
}
func (m *mockActivityService) GetByID(_ context.Context, id int64) (*dto.ActivityResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.ActivityResponse{ID: id}, nil
}
func (m *mockActivityService) List(_ context.Context) ([]dto.ActivityResponse, error) {
	return nil, nil
}
func (m *mockActivityService) ListByField(_ context.Context, _ int64) ([]dto.ActivityResponse, error) {
	return m.byField, nil
}
func (m *mockActivityService) Update(_ context.Context, id int64, _ *dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.ActivityResponse{ID: id}, nil
}
func (m *mockActivityService) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportExcel(_ context.Context, _ *dto.CropScheduleListRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportICS(_ context.Context, _ *dto.CropScheduleListRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func scheduleRouter(mock *mockCropScheduleService) *gin.Engine {
	h := NewCropScheduleHandler(mock, nil)
	r := gin.New()
	r.GET("/crop-schedules", h.ListSchedules)
	r.GET("/crop-schedules/calendar", h.GetCalendar)
	r.GET("/crop-schedules/:id", h.GetSchedule)
	r.POST("/crop-schedules", h.CreateSchedule)
	r.PUT("/crop-schedules/:id", h.UpdateSchedule)
	r.PUT("/crop-schedules/:id/reschedule", h.RescheduleSchedule)
	r.DELETE("/crop-schedules/:id", h.DeleteSchedule)
	return r
}

// ═══════════════════════════════════════════════════════════
// CropScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCropScheduleHandler_List_Success(t *testing.T) {
	mock := &mockCropScheduleService{
		listResult: []dto.CropScheduleResponse{{ID: 1, CropName: "Tomato", Date: "2024-03-01"}},
	}
	w := serve(scheduleRouter(mock), "GET", "/crop-schedules?season=Spring&sort=cropName&order=desc&field_id=3", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if mock.lastListReq.Season != "Spring" || mock.lastListReq.Sort != "cropName" || mock.lastListReq.Order != "desc" {
		t.Errorf("查询参数未透传: %+v", mock.lastListReq)
	}
	if mock.lastListReq.FieldID == nil || *mock.lastListReq.FieldID != 3 {
		t.Errorf("期望 field_id=3，实际=%v", mock.lastListReq.FieldID)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Errorf("期望 total=1，实际=%v", data["total"])
	}
}

func TestCropScheduleHandler_List_ValidationError(t *testing.T) {
	mock := &mockCropScheduleService{
		listErr: pkgerrors.NewValidationError(pkgerrors.FieldErrors{"season": "bad"}),
	}
	w := serve(scheduleRouter(mock), "GET", "/crop-schedules?season=Monsoon", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际=%d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != response.CodeValidation {
		t.Errorf("期望错误码 %d，实际=%d", response.CodeValidation, resp.Code)
	}
	details, ok := resp.Details.(map[string]interface{})
	if !ok || details["season"] != "bad" {
		t.Errorf("期望 details.season=bad，实际=%v", resp.Details)
	}
}

func TestCropScheduleHandler_GetCalendar(t *testing.T) {
	mock := &mockCropScheduleService{
		monthResult: &dto.CalendarMonthResponse{Month: "2024-02", PrevMonth: "2024-01", NextMonth: "2024-03", DaysInMonth: 29},
	}
	w := serve(scheduleRouter(mock), "GET", "/crop-schedules/calendar?month=2024-02", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if mock.lastMonth != "2024-02" {
		t.Errorf("期望 month=2024-02，实际=%s", mock.lastMonth)
	}
}

func TestCropScheduleHandler_GetSchedule_InvalidID(t *testing.T) {
	w := serve(scheduleRouter(&mockCropScheduleService{}), "GET", "/crop-schedules/abc", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

func TestCropScheduleHandler_GetSchedule_NotFound(t *testing.T) {
	mock := &mockCropScheduleService{getErr: service.ErrCropScheduleNotFound}
	w := serve(scheduleRouter(mock), "GET", "/crop-schedules/42", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeCropScheduleNotFound {
		t.Errorf("期望错误码 %d，实际=%d", codeCropScheduleNotFound, resp.Code)
	}
}

func TestCropScheduleHandler_Create(t *testing.T) {
	mock := &mockCropScheduleService{
		createResult: &dto.CropScheduleResponse{ID: 9, CropName: "Corn"},
	}
	w := serve(scheduleRouter(mock), "POST", "/crop-schedules", jsonBody(dto.CreateCropScheduleRequest{
		CropName: "Corn", FieldID: 1, Date: "2024-05-01",
	}))

	if w.Code != http.StatusCreated {
		t.Errorf("期望 201，实际=%d", w.Code)
	}
}

func TestCropScheduleHandler_Create_BadActivity(t *testing.T) {
	w := serve(scheduleRouter(&mockCropScheduleService{}), "POST", "/crop-schedules",
		strings.NewReader(`{"crop_name":"Corn","activity_type":"dancing"}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

func TestCropScheduleHandler_Create_FieldErrors(t *testing.T) {
	mock := &mockCropScheduleService{
		createErr: pkgerrors.NewValidationError(pkgerrors.FieldErrors{
			"cropName": "Crop name is required",
			"fieldId":  "Please select a field",
		}),
	}
	w := serve(scheduleRouter(mock), "POST", "/crop-schedules", jsonBody(map[string]string{}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际=%d", w.Code)
	}
	details := parseResponse(w).Details.(map[string]interface{})
	if len(details) != 2 {
		t.Errorf("期望两个字段错误，实际=%v", details)
	}
}

func TestCropScheduleHandler_Reschedule(t *testing.T) {
	mock := &mockCropScheduleService{
		rescheduleResult: &dto.RescheduleResponse{
			Schedule: dto.CropScheduleResponse{ID: 1, Date: "2024-03-15"},
			Changed:  true,
		},
	}
	w := serve(scheduleRouter(mock), "PUT", "/crop-schedules/1/reschedule", jsonBody(dto.RescheduleRequest{
		Date: "2024-03-15", Source: "drag",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if mock.lastReschedule.Source != "drag" {
		t.Errorf("期望 source=drag，实际=%s", mock.lastReschedule.Source)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	if data["changed"] != true {
		t.Errorf("期望 changed=true，实际=%v", data["changed"])
	}
}

func TestCropScheduleHandler_Reschedule_MissingDate(t *testing.T) {
	w := serve(scheduleRouter(&mockCropScheduleService{}), "PUT", "/crop-schedules/1/reschedule", jsonBody(map[string]string{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

func TestCropScheduleHandler_Reschedule_StoreUnavailable(t *testing.T) {
	mock := &mockCropScheduleService{rescheduleErr: pkgerrors.ErrStoreUnavailable}
	w := serve(scheduleRouter(mock), "PUT", "/crop-schedules/1/reschedule", jsonBody(dto.RescheduleRequest{Date: "2024-03-15"}))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("期望 503，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeUnavailable {
		t.Errorf("期望错误码 %d，实际=%d", response.CodeUnavailable, resp.Code)
	}
}

func TestCropScheduleHandler_Delete(t *testing.T) {
	mock := &mockCropScheduleService{}
	w := serve(scheduleRouter(mock), "DELETE", "/crop-schedules/5", nil)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
	if mock.lastDeletedID != 5 {
		t.Errorf("期望删除 ID 5，实际=%d", mock.lastDeletedID)
	}

	mock.deleteErr = service.ErrCropScheduleNotFound
	w = serve(scheduleRouter(mock), "DELETE", "/crop-schedules/5", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("重复删除期望 404，实际=%d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// FieldHandler / EquipmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestFieldHandler_GetField_NotFound(t *testing.T) {
	h := NewFieldHandler(&mockFieldService{getErr: service.ErrFieldNotFound}, &mockCropScheduleService{}, nil)
	r := gin.New()
	r.GET("/fields/:id", h.GetField)

	w := serve(r, "GET", "/fields/3", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeFieldNotFound {
		t.Errorf("期望错误码 %d，实际=%d", codeFieldNotFound, resp.Code)
	}
}

func TestFieldHandler_ListFieldSchedules(t *testing.T) {
	scheduleMock := &mockCropScheduleService{
		byFieldResult: []dto.CropScheduleResponse{{ID: 1}, {ID: 2}},
	}
	h := NewFieldHandler(&mockFieldService{}, scheduleMock, nil)
	r := gin.New()
	r.GET("/fields/:id/crop-schedules", h.ListFieldSchedules)

	w := serve(r, "GET", "/fields/1/crop-schedules", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	if data["total"].(float64) != 2 {
		t.Errorf("期望 total=2，实际=%v", data["total"])
	}
}

func TestEquipmentHandler_Alerts(t *testing.T) {
	days := -2
	h := NewEquipmentHandler(&mockEquipmentService{
		alerts: []dto.MaintenanceAlertResponse{{EquipmentID: 1, DaysUntil: &days, Priority: "high", Status: "overdue"}},
	}, nil)
	r := gin.New()
	r.GET("/equipment/alerts", h.GetMaintenanceAlerts)
	r.GET("/equipment/:id", h.GetEquipment)

	w := serve(r, "GET", "/equipment/alerts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	data := parseResponse(w).Data.(map[string]interface{})
	list := data["list"].([]interface{})
	first := list[0].(map[string]interface{})
	if first["days_until_maintenance"].(float64) != -2 || first["priority"] != "high" {
		t.Errorf("提醒内容不符: %v", first)
	}
}

func TestEquipmentHandler_GetEquipment_NotFound(t *testing.T) {
	h := NewEquipmentHandler(&mockEquipmentService{getErr: service.ErrEquipmentNotFound}, nil)
	r := gin.New()
	r.GET("/equipment/:id", h.GetEquipment)

	w := serve(r, "GET", "/equipment/8", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际=%d", w.Code)
	}
}

func TestFieldHandler_UpdateAndDelete(t *testing.T) {
	mock := &mockFieldService{}
	h := NewFieldHandler(mock, &mockCropScheduleService{}, nil)
	r := gin.New()
	r.PUT("/fields/:id", h.UpdateField)
	r.DELETE("/fields/:id", h.DeleteField)

	w := serve(r, "PUT", "/fields/4", strings.NewReader(`{"name":"North 40"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if mock.lastUpdate.Name == nil || *mock.lastUpdate.Name != "North 40" {
		t.Errorf("name 未透传: %+v", mock.lastUpdate)
	}
	if mock.lastUpdate.Size != nil {
		t.Errorf("未出现的字段应为 nil，实际=%v", *mock.lastUpdate.Size)
	}

	w = serve(r, "DELETE", "/fields/4", nil)
	if w.Code != http.StatusOK || mock.lastDeletedID != 4 {
		t.Errorf("期望删除 ID 4 返回 200，实际 code=%d id=%d", w.Code, mock.lastDeletedID)
	}

	mock.deleteErr = service.ErrFieldNotFound
	w = serve(r, "DELETE", "/fields/4", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("重复删除期望 404，实际=%d", w.Code)
	}
}

func TestEquipmentHandler_LogUsageAndMaintenance(t *testing.T) {
	mock := &mockEquipmentService{
		history: []dto.MaintenanceRecordResponse{{ID: 1, EquipmentID: 2, ScheduledDate: "2024-07-01"}},
	}
	h := NewEquipmentHandler(mock, nil)
	r := gin.New()
	r.GET("/equipment/maintenance-history", h.GetMaintenanceHistory)
	r.POST("/equipment/:id/usage", h.LogUsage)
	r.POST("/equipment/:id/maintenance", h.ScheduleMaintenance)

	w := serve(r, "POST", "/equipment/2/usage", strings.NewReader(`{"hours":3.5,"fuel_used":12,"operator":"Ana"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d", w.Code)
	}
	if mock.lastUsage.Hours != 3.5 || mock.lastUsage.FuelUsed != 12 || mock.lastUsage.Operator != "Ana" {
		t.Errorf("使用记录未透传: %+v", mock.lastUsage)
	}

	w = serve(r, "POST", "/equipment/2/usage", strings.NewReader(`{"hours":-1}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("负工时期望 400，实际=%d", w.Code)
	}

	w = serve(r, "POST", "/equipment/2/maintenance", strings.NewReader(`{"service_type":"Oil change","scheduled_date":"2024-07-01","priority":"urgent"}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("未知优先级期望 400，实际=%d", w.Code)
	}

	w = serve(r, "POST", "/equipment/2/maintenance", strings.NewReader(`{"service_type":"Oil change","scheduled_date":"2024-07-01","priority":"high"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d", w.Code)
	}
	if data := parseResponse(w).Data.(map[string]interface{}); data["status"] != "scheduled" {
		t.Errorf("期望 status=scheduled，实际=%v", data["status"])
	}

	w = serve(r, "GET", "/equipment/maintenance-history", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if data := parseResponse(w).Data.(map[string]interface{}); data["total"].(float64) != 1 {
		t.Errorf("期望 total=1，实际=%v", data["total"])
	}
}

func TestEquipmentHandler_LogUsage_NotFound(t *testing.T) {
	h := NewEquipmentHandler(&mockEquipmentService{writeErr: service.ErrEquipmentNotFound}, nil)
	r := gin.New()
	r.POST("/equipment/:id/usage", h.LogUsage)

	w := serve(r, "POST", "/equipment/9/usage", strings.NewReader(`{"hours":1}`))
	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeEquipmentNotFound {
		t.Errorf("期望错误码 %d，实际=%d", codeEquipmentNotFound, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// FieldLogHandler Tests
// ═══════════════════════════════════════════════════════════

func fieldLogRouter(ins *mockInspectionService, act *mockActivityService) *gin.Engine {
	h := NewFieldLogHandler(ins, act, nil)
	r := gin.New()
	r.GET("/fields/:id/inspections", h.ListFieldInspections)
	r.GET("/fields/:id/activities", h.ListFieldActivities)
	r.GET("/inspections/:id", h.GetInspection)
	r.POST("/inspections", h.CreateInspection)
	r.DELETE("/inspections/:id", h.DeleteInspection)
	r.GET("/activities/:id", h.GetActivity)
	r.POST("/activities", h.CreateActivity)
	r.PUT("/activities/:id", h.UpdateActivity)
	return r
}

func TestFieldLogHandler_Inspections(t *testing.T) {
	ins := &mockInspectionService{
		byField: []dto.InspectionResponse{{ID: 2, FieldID: 1, Date: "2024-05-02"}, {ID: 1, FieldID: 1, Date: "2024-05-01"}},
	}
	r := fieldLogRouter(ins, &mockActivityService{})

	w := serve(r, "GET", "/fields/1/inspections", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if data := parseResponse(w).Data.(map[string]interface{}); data["total"].(float64) != 2 {
		t.Errorf("期望 total=2，实际=%v", data["total"])
	}

	w = serve(r, "POST", "/inspections", strings.NewReader(`{"date":"2024-05-03"}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少 field_id 期望 400，实际=%d", w.Code)
	}

	w = serve(r, "POST", "/inspections", strings.NewReader(`{"field_id":1,"date":"2024-05-03","notes":"aphids"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d", w.Code)
	}
	if ins.lastCreate.Notes != "aphids" {
		t.Errorf("notes 未透传: %+v", ins.lastCreate)
	}

	ins.byFieldErr = service.ErrFieldNotFound
	w = serve(r, "GET", "/fields/7/inspections", nil)
	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != codeFieldNotFound {
		t.Errorf("未知田块期望 404/%d，实际=%d/%d", codeFieldNotFound, w.Code, resp.Code)
	}

	ins.getErr = service.ErrInspectionNotFound
	w = serve(r, "GET", "/inspections/3", nil)
	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != codeInspectionNotFound {
		t.Errorf("期望 404/%d，实际=%d/%d", codeInspectionNotFound, w.Code, resp.Code)
	}
}

func TestFieldLogHandler_Activities(t *testing.T) {
	act := &mockActivityService{byField: []dto.ActivityResponse{{ID: 1, Type: "irrigation"}}}
	r := fieldLogRouter(&mockInspectionService{}, act)

	w := serve(r, "POST", "/activities", strings.NewReader(`{"field_id":1}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少 type 期望 400，实际=%d", w.Code)
	}

	w = serve(r, "POST", "/activities", strings.NewReader(`{"field_id":1,"type":"irrigation"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d", w.Code)
	}

	w = serve(r, "GET", "/fields/1/activities", nil)
	if data := parseResponse(w).Data.(map[string]interface{}); data["total"].(float64) != 1 {
		t.Errorf("期望 total=1，实际=%v", data["total"])
	}

	act.getErr = service.ErrActivityNotFound
	w = serve(r, "PUT", "/activities/5", strings.NewReader(`{"description":"x"}`))
	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != codeActivityNotFound {
		t.Errorf("期望 404/%d，实际=%d/%d", codeActivityNotFound, w.Code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// handleCommonError Tests
// ═══════════════════════════════════════════════════════════

func TestHandleCommonError_StoreAndContextOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"存储不可用", pkgerrors.ErrStoreUnavailable, http.StatusServiceUnavailable, response.CodeUnavailable},
		{"记录被拒", fmt.Errorf("写入 crop_schedule_c: %w: name_c 过长", pkgerrors.ErrRecordRejected), http.StatusUnprocessableEntity, response.CodeRejected},
		{"记录格式无效", fmt.Errorf("crop_schedule_c#3: %w", pkgerrors.ErrMalformedRecord), http.StatusBadGateway, response.CodeBadGateway},
		{"写入后取消", fmt.Errorf("重排计划 1: %w: %w", calendar.ErrCanceledAfterCommit, context.Canceled), response.StatusClientClosedRequest, response.CodeCanceled},
		{"请求取消", context.Canceled, response.StatusClientClosedRequest, response.CodeCanceled},
		{"请求超时", context.DeadlineExceeded, http.StatusGatewayTimeout, response.CodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCropScheduleService{rescheduleErr: tt.err}
			w := serve(scheduleRouter(mock), "PUT", "/crop-schedules/1/reschedule", jsonBody(dto.RescheduleRequest{Date: "2024-03-15"}))

			if w.Code != tt.wantStatus {
				t.Fatalf("期望 %d，实际=%d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望错误码 %d，实际=%d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestHandleCommonError_CanceledAfterCommitMentionsSavedChange(t *testing.T) {
	mock := &mockCropScheduleService{
		rescheduleErr: fmt.Errorf("重排计划 1: %w: %w", calendar.ErrCanceledAfterCommit, context.Canceled),
	}
	w := serve(scheduleRouter(mock), "PUT", "/crop-schedules/1/reschedule", jsonBody(dto.RescheduleRequest{Date: "2024-03-15"}))

	if msg := parseResponse(w).Message; !strings.Contains(msg, "改期已保存") {
		t.Errorf("提示应说明改期已保存，实际=%s", msg)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportExcel(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "crop-schedules_2024-06-15.xlsx",
	}, nil)
	r := gin.New()
	r.GET("/export/crop-schedules.xlsx", h.ExportExcel)

	w := serve(r, "GET", "/export/crop-schedules.xlsx?season=Spring", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "crop-schedules_2024-06-15.xlsx") {
		t.Errorf("Content-Disposition 不符: %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("响应体不符: %s", w.Body.String())
	}
}

func TestExportHandler_ExportICS_Empty(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportEmpty}, nil)
	r := gin.New()
	r.GET("/export/crop-schedules.ics", h.ExportICS)

	w := serve(r, "GET", "/export/crop-schedules.ics", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeExportEmpty {
		t.Errorf("期望错误码 %d，实际=%d", codeExportEmpty, resp.Code)
	}
}

func TestExportHandler_ExportICS_ContentType(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"),
		filename: "crop-schedules_2024-06-15.ics",
	}, nil)
	r := gin.New()
	r.GET("/export/crop-schedules.ics", h.ExportICS)

	w := serve(r, "GET", "/export/crop-schedules.ics", nil)
	if ct := w.Header().Get("Content-Type"); ct != contentTypeICS {
		t.Errorf("Content-Type 不符: %s", ct)
	}
}
