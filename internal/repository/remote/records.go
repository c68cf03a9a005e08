package remote

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crop-calendar/internal/model"
	pkgerrors "crop-calendar/pkg/errors"
)

// lookupID 兼容记录服务对外键列的三种返回形式：数字、数字字符串、{"Id": n, "Name": ...}
type lookupID int64

func (l *lookupID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null" || s == `""`:
		*l = 0
		return nil
	case strings.HasPrefix(s, "{"):
		var ref struct {
			ID int64 `json:"Id"`
		}
		if err := json.Unmarshal(b, &ref); err != nil {
			return err
		}
		*l = lookupID(ref.ID)
		return nil
	case strings.HasPrefix(s, `"`):
		n, err := strconv.ParseInt(strings.Trim(s, `"`), 10, 64)
		if err != nil {
			return err
		}
		*l = lookupID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*l = lookupID(n)
	return nil
}

// malformed 构造记录级格式错误，调用方据此跳过或上报
func malformed(table string, id int64, format string, args ...interface{}) error {
	return fmt.Errorf("%s/%d: %w: %s", table, id, pkgerrors.ErrMalformedRecord, fmt.Sprintf(format, args...))
}

// parseDate 必填日期列。记录服务可能带时间部分，仅取日历日期
func parseDate(s string) (model.Date, error) {
	var d model.Date
	if strings.TrimSpace(s) == "" {
		return d, fmt.Errorf("日期为空")
	}
	if err := d.Scan(s); err != nil {
		return model.Date{}, err
	}
	if !d.IsValid() {
		return model.Date{}, fmt.Errorf("无效的日期 %q", s)
	}
	return d, nil
}

// parseOptionalDate 可选日期列，空值或无法解析时视为未填
func parseOptionalDate(s string) *model.Date {
	d, err := parseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

func formatOptionalDate(d *model.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.String()
}

func parseOptionalTime(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatOptionalTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ── crop_schedule_c ──

const scheduleTable = "crop_schedule_c"

var scheduleFields = []string{
	"Name", "crop_name_c", "variety_c", "type_c", "date_c", "field_id_c",
	"notes_c", "priority_c", "created_at_c", "expected_yield_c",
}

type scheduleRecord struct {
	ID            int64    `json:"Id,omitempty"`
	Name          string   `json:"Name,omitempty"`
	CropName      string   `json:"crop_name_c"`
	Variety       string   `json:"variety_c"`
	Type          string   `json:"type_c"`
	Date          string   `json:"date_c"`
	FieldID       lookupID `json:"field_id_c"`
	Notes         string   `json:"notes_c"`
	Priority      string   `json:"priority_c,omitempty"`
	CreatedAt     string   `json:"created_at_c,omitempty"`
	ExpectedYield string   `json:"expected_yield_c"`
}

// toModel 在存储边界拒绝不满足数据模型的记录：
// 日期必须是合法日历日期，作物名非空，活动类型与优先级为空时取默认值、非空时必须合法
func (r scheduleRecord) toModel() (model.CropSchedule, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return model.CropSchedule{}, malformed(scheduleTable, r.ID, "date_c: %v", err)
	}
	if strings.TrimSpace(r.CropName) == "" {
		return model.CropSchedule{}, malformed(scheduleTable, r.ID, "crop_name_c 为空")
	}

	s := model.CropSchedule{
		ID:            r.ID,
		CropName:      r.CropName,
		Variety:       r.Variety,
		ActivityType:  model.ActivityType(r.Type),
		Date:          date,
		FieldID:       int64(r.FieldID),
		Notes:         r.Notes,
		Priority:      model.Priority(r.Priority),
		ExpectedYield: r.ExpectedYield,
	}
	if s.ActivityType == "" {
		s.ActivityType = model.ActivityPlanting
	}
	if !s.ActivityType.Valid() {
		return model.CropSchedule{}, malformed(scheduleTable, r.ID, "type_c %q 不是合法的活动类型", r.Type)
	}
	if s.Priority == "" {
		s.Priority = model.PriorityMedium
	}
	if !s.Priority.Valid() {
		return model.CropSchedule{}, malformed(scheduleTable, r.ID, "priority_c %q 不是合法的优先级", r.Priority)
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		s.CreatedAt = t
	}
	return s, nil
}

func scheduleFromModel(s *model.CropSchedule) scheduleRecord {
	return scheduleRecord{
		Name:          s.Title(),
		CropName:      s.CropName,
		Variety:       s.Variety,
		Type:          string(s.ActivityType),
		Date:          s.Date.String(),
		FieldID:       lookupID(s.FieldID),
		Notes:         s.Notes,
		Priority:      string(s.Priority),
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
		ExpectedYield: s.ExpectedYield,
	}
}

// schedulePatchRecord 只包含补丁中出现的列
func schedulePatchRecord(id int64, p model.SchedulePatch) map[string]interface{} {
	rec := map[string]interface{}{"Id": id}
	if p.CropName != nil {
		rec["crop_name_c"] = *p.CropName
	}
	if p.Variety != nil {
		rec["variety_c"] = *p.Variety
	}
	if p.ActivityType != nil {
		rec["type_c"] = string(*p.ActivityType)
	}
	if p.Date != nil {
		rec["date_c"] = p.Date.String()
	}
	if p.FieldID != nil {
		rec["field_id_c"] = *p.FieldID
	}
	if p.Notes != nil {
		rec["notes_c"] = *p.Notes
	}
	if p.Priority != nil {
		rec["priority_c"] = string(*p.Priority)
	}
	if p.ExpectedYield != nil {
		rec["expected_yield_c"] = *p.ExpectedYield
	}
	return rec
}

// ── field_c ──

const fieldTable = "field_c"

var fieldFields = []string{
	"Name", "name_c", "size_c", "crop_type_c", "planting_date_c",
	"growth_stage_c", "status_c", "last_inspection_c", "notes_c",
}

type fieldRecord struct {
	ID             int64   `json:"Id,omitempty"`
	Name           string  `json:"Name,omitempty"`
	FieldName      string  `json:"name_c"`
	Size           float64 `json:"size_c"`
	CropType       string  `json:"crop_type_c"`
	PlantingDate   string  `json:"planting_date_c,omitempty"`
	GrowthStage    string  `json:"growth_stage_c"`
	Status         string  `json:"status_c"`
	LastInspection string  `json:"last_inspection_c,omitempty"`
	Notes          string  `json:"notes_c"`
}

func (r fieldRecord) toModel() (model.Field, error) {
	name := r.FieldName
	if name == "" {
		name = r.Name
	}
	return model.Field{
		ID:             r.ID,
		Name:           name,
		Size:           r.Size,
		CropType:       r.CropType,
		PlantingDate:   parseOptionalDate(r.PlantingDate),
		GrowthStage:    r.GrowthStage,
		Status:         r.Status,
		LastInspection: parseOptionalDate(r.LastInspection),
		Notes:          r.Notes,
	}, nil
}

func fieldFromModel(f *model.Field) fieldRecord {
	return fieldRecord{
		ID:             f.ID,
		Name:           f.Name,
		FieldName:      f.Name,
		Size:           f.Size,
		CropType:       f.CropType,
		PlantingDate:   formatOptionalDate(f.PlantingDate),
		GrowthStage:    f.GrowthStage,
		Status:         f.Status,
		LastInspection: formatOptionalDate(f.LastInspection),
		Notes:          f.Notes,
	}
}

// ── equipment_c ──

const equipmentTable = "equipment_c"

var equipmentFields = []string{
	"Name", "name_c", "type_c", "status_c", "location_c", "total_hours_c",
	"last_maintenance_hours_c", "next_maintenance_hours_c",
	"last_maintenance_c", "next_maintenance_c",
	"total_fuel_c", "last_used_c", "usage_logs_c", "maintenance_history_c",
}

type equipmentRecord struct {
	ID                   int64   `json:"Id,omitempty"`
	Name                 string  `json:"Name,omitempty"`
	EquipmentName        string  `json:"name_c"`
	Type                 string  `json:"type_c"`
	Status               string  `json:"status_c"`
	Location             string  `json:"location_c"`
	TotalHours           float64 `json:"total_hours_c"`
	LastMaintenanceHours float64 `json:"last_maintenance_hours_c"`
	NextMaintenanceHours float64 `json:"next_maintenance_hours_c"`
	LastMaintenance      string  `json:"last_maintenance_c,omitempty"`
	NextMaintenance      string  `json:"next_maintenance_c,omitempty"`
	TotalFuel            float64 `json:"total_fuel_c"`
	LastUsed             string  `json:"last_used_c,omitempty"`
	// 记录服务把列表列存成 JSON 文本
	UsageLogs          string `json:"usage_logs_c"`
	MaintenanceHistory string `json:"maintenance_history_c"`
}

func (r equipmentRecord) toModel() (model.Equipment, error) {
	name := r.EquipmentName
	if name == "" {
		name = r.Name
	}
	e := model.Equipment{
		ID:                   r.ID,
		Name:                 name,
		Type:                 r.Type,
		Status:               r.Status,
		Location:             r.Location,
		TotalHours:           r.TotalHours,
		LastMaintenanceHours: r.LastMaintenanceHours,
		NextMaintenanceHours: r.NextMaintenanceHours,
		LastMaintenance:      parseOptionalDate(r.LastMaintenance),
		NextMaintenance:      parseOptionalDate(r.NextMaintenance),
		TotalFuel:            r.TotalFuel,
		LastUsed:             parseOptionalTime(r.LastUsed),
	}
	if err := decodeJSONColumn(r.UsageLogs, &e.UsageLogs); err != nil {
		return model.Equipment{}, malformed(equipmentTable, r.ID, "usage_logs_c: %v", err)
	}
	if err := decodeJSONColumn(r.MaintenanceHistory, &e.MaintenanceHistory); err != nil {
		return model.Equipment{}, malformed(equipmentTable, r.ID, "maintenance_history_c: %v", err)
	}
	return e, nil
}

func equipmentFromModel(e *model.Equipment) (equipmentRecord, error) {
	logs, err := encodeJSONColumn(e.UsageLogs)
	if err != nil {
		return equipmentRecord{}, err
	}
	history, err := encodeJSONColumn(e.MaintenanceHistory)
	if err != nil {
		return equipmentRecord{}, err
	}
	return equipmentRecord{
		ID:                   e.ID,
		Name:                 e.Name,
		EquipmentName:        e.Name,
		Type:                 e.Type,
		Status:               e.Status,
		Location:             e.Location,
		TotalHours:           e.TotalHours,
		LastMaintenanceHours: e.LastMaintenanceHours,
		NextMaintenanceHours: e.NextMaintenanceHours,
		LastMaintenance:      formatOptionalDate(e.LastMaintenance),
		NextMaintenance:      formatOptionalDate(e.NextMaintenance),
		TotalFuel:            e.TotalFuel,
		LastUsed:             formatOptionalTime(e.LastUsed),
		UsageLogs:            logs,
		MaintenanceHistory:   history,
	}, nil
}

func decodeJSONColumn(s string, out interface{}) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}

// encodeJSONColumn nil 切片写成 "[]"
func encodeJSONColumn[T any](list []T) (string, error) {
	if list == nil {
		list = []T{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("编码 JSON 列失败: %w", err)
	}
	return string(b), nil
}

// ── inspection_c ──

const inspectionTable = "inspection_c"

var inspectionFields = []string{"Name", "field_id_c", "date_c", "notes_c", "status_c", "user_id_c"}

type inspectionRecord struct {
	ID      int64    `json:"Id,omitempty"`
	Name    string   `json:"Name,omitempty"`
	FieldID lookupID `json:"field_id_c"`
	Date    string   `json:"date_c"`
	Notes   string   `json:"notes_c"`
	Status  string   `json:"status_c"`
	UserID  lookupID `json:"user_id_c"`
}

func (r inspectionRecord) toModel() (model.Inspection, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return model.Inspection{}, malformed(inspectionTable, r.ID, "date_c: %v", err)
	}
	return model.Inspection{
		ID:      r.ID,
		FieldID: int64(r.FieldID),
		Date:    date,
		Notes:   r.Notes,
		Status:  r.Status,
		UserID:  int64(r.UserID),
	}, nil
}

func inspectionFromModel(in *model.Inspection) inspectionRecord {
	return inspectionRecord{
		ID:      in.ID,
		Name:    "Inspection " + in.Date.String(),
		FieldID: lookupID(in.FieldID),
		Date:    in.Date.String(),
		Notes:   in.Notes,
		Status:  in.Status,
		UserID:  lookupID(in.UserID),
	}
}

// ── activity_c ──

const activityTable = "activity_c"

var activityFields = []string{"Name", "field_id_c", "type_c", "description_c", "timestamp_c"}

type activityRecord struct {
	ID          int64    `json:"Id,omitempty"`
	Name        string   `json:"Name,omitempty"`
	FieldID     lookupID `json:"field_id_c"`
	Type        string   `json:"type_c"`
	Description string   `json:"description_c"`
	Timestamp   string   `json:"timestamp_c"`
}

func (r activityRecord) toModel() (model.FieldActivity, error) {
	if strings.TrimSpace(r.Type) == "" {
		return model.FieldActivity{}, malformed(activityTable, r.ID, "type_c 为空")
	}
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return model.FieldActivity{}, malformed(activityTable, r.ID, "timestamp_c: %v", err)
	}
	return model.FieldActivity{
		ID:          r.ID,
		FieldID:     int64(r.FieldID),
		Type:        r.Type,
		Description: r.Description,
		Timestamp:   ts,
	}, nil
}

func activityFromModel(a *model.FieldActivity) activityRecord {
	return activityRecord{
		ID:          a.ID,
		Name:        a.Title(),
		FieldID:     lookupID(a.FieldID),
		Type:        a.Type,
		Description: a.Description,
		Timestamp:   a.Timestamp.UTC().Format(time.RFC3339),
	}
}
