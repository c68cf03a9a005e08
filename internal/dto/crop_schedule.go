package dto

// ── 作物计划模块 DTO ──

// CreateCropScheduleRequest 新建计划请求。
// crop_name / field_id / date 的必填校验由服务层完成，以返回逐字段提示文案。
type CreateCropScheduleRequest struct {
	CropName      string `json:"crop_name"      binding:"omitempty,max=255"`
	Variety       string `json:"variety"        binding:"omitempty,max=255"`
	ActivityType  string `json:"activity_type"  binding:"omitempty,oneof=planting watering fertilizing harvesting pruning pest-control"`
	Date          string `json:"date"`
	FieldID       int64  `json:"field_id"       binding:"omitempty,min=1"`
	Notes         string `json:"notes"`
	Priority      string `json:"priority"       binding:"omitempty,oneof=low medium high urgent"`
	ExpectedYield string `json:"expected_yield" binding:"omitempty,max=100"`
}

// UpdateCropScheduleRequest 局部更新请求；未出现的字段保持不变
type UpdateCropScheduleRequest struct {
	CropName      *string `json:"crop_name"      binding:"omitempty,max=255"`
	Variety       *string `json:"variety"        binding:"omitempty,max=255"`
	ActivityType  *string `json:"activity_type"  binding:"omitempty,oneof=planting watering fertilizing harvesting pruning pest-control"`
	Date          *string `json:"date"`
	FieldID       *int64  `json:"field_id"       binding:"omitempty,min=1"`
	Notes         *string `json:"notes"`
	Priority      *string `json:"priority"       binding:"omitempty,oneof=low medium high urgent"`
	ExpectedYield *string `json:"expected_yield" binding:"omitempty,max=100"`
}

// RescheduleRequest 改期请求（拖放或表单编辑）
type RescheduleRequest struct {
	Date   string `json:"date"   binding:"required"`
	Source string `json:"source" binding:"omitempty,oneof=drag edit"`
}

// CropScheduleListRequest 列表查询参数
type CropScheduleListRequest struct {
	Season  string `form:"season"`
	FieldID *int64 `form:"field_id"`
	Month   string `form:"month"` // YYYY-MM，可选
	Sort    string `form:"sort"`
	Order   string `form:"order"`
}

// CropScheduleResponse 计划信息响应
type CropScheduleResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	CropName      string `json:"crop_name"`
	Variety       string `json:"variety,omitempty"`
	ActivityType  string `json:"activity_type"`
	Date          string `json:"date"`
	Season        string `json:"season"`
	FieldID       int64  `json:"field_id"`
	FieldName     string `json:"field_name,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Priority      string `json:"priority"`
	ExpectedYield string `json:"expected_yield,omitempty"`
	Upcoming      bool   `json:"upcoming"`
	CreatedAt     string `json:"created_at"`
}

// RescheduleResponse 改期结果；changed=false 表示日期未变、未写存储
type RescheduleResponse struct {
	Schedule CropScheduleResponse `json:"schedule"`
	Changed  bool                 `json:"changed"`
}

// CalendarCellResponse 月视图格子；blank=true 为月初占位
type CalendarCellResponse struct {
	Blank     bool                   `json:"blank"`
	Date      string                 `json:"date,omitempty"`
	Day       int                    `json:"day,omitempty"`
	IsToday   bool                   `json:"is_today,omitempty"`
	Schedules []CropScheduleResponse `json:"schedules"`
}

// CalendarMonthResponse 月视图响应
type CalendarMonthResponse struct {
	Month         string                 `json:"month"` // YYYY-MM
	PrevMonth     string                 `json:"prev_month"`
	NextMonth     string                 `json:"next_month"`
	LeadingBlanks int                    `json:"leading_blanks"`
	DaysInMonth   int                    `json:"days_in_month"`
	Cells         []CalendarCellResponse `json:"cells"`
	Total         int                    `json:"total"`
}
