package dto

// ── 巡检与田块活动 DTO ──

// CreateInspectionRequest 新建巡检记录
type CreateInspectionRequest struct {
	FieldID int64  `json:"field_id" binding:"required,min=1"`
	Date    string `json:"date"` // 为空取今天
	Status  string `json:"status"   binding:"omitempty,max=50"`
	Notes   string `json:"notes"`
	UserID  int64  `json:"user_id"  binding:"omitempty,min=1"`
}

// UpdateInspectionRequest 更新巡检记录；未出现的字段保持不变
type UpdateInspectionRequest struct {
	FieldID *int64  `json:"field_id" binding:"omitempty,min=1"`
	Date    *string `json:"date"`
	Status  *string `json:"status"   binding:"omitempty,max=50"`
	Notes   *string `json:"notes"`
	UserID  *int64  `json:"user_id"  binding:"omitempty,min=1"`
}

// InspectionResponse 巡检记录
type InspectionResponse struct {
	ID        int64  `json:"id"`
	FieldID   int64  `json:"field_id"`
	FieldName string `json:"field_name,omitempty"`
	Date      string `json:"date"`
	Status    string `json:"status,omitempty"`
	Notes     string `json:"notes,omitempty"`
	UserID    int64  `json:"user_id"`
}

// CreateActivityRequest 记录田块活动
type CreateActivityRequest struct {
	FieldID     int64  `json:"field_id"    binding:"required,min=1"`
	Type        string `json:"type"        binding:"required,max=50"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"` // RFC3339，为空取当前时间
}

// UpdateActivityRequest 更新田块活动；未出现的字段保持不变
type UpdateActivityRequest struct {
	FieldID     *int64  `json:"field_id"  binding:"omitempty,min=1"`
	Type        *string `json:"type"      binding:"omitempty,max=50"`
	Description *string `json:"description"`
	Timestamp   *string `json:"timestamp"`
}

// ActivityResponse 田块活动
type ActivityResponse struct {
	ID          int64  `json:"id"`
	FieldID     int64  `json:"field_id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp"`
}
