package dto

// ── 田块模块 DTO ──

// CreateFieldRequest 新建田块请求
type CreateFieldRequest struct {
	Name           string  `json:"name"            binding:"required,max=255"`
	Size           float64 `json:"size"            binding:"omitempty,min=0"`
	CropType       string  `json:"crop_type"       binding:"omitempty,max=100"`
	PlantingDate   string  `json:"planting_date"`
	GrowthStage    string  `json:"growth_stage"    binding:"omitempty,max=50"`
	Status         string  `json:"status"          binding:"omitempty,max=50"`
	LastInspection string  `json:"last_inspection"`
	Notes          string  `json:"notes"`
}

// FieldResponse 田块信息响应
type FieldResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Size           float64 `json:"size"`
	CropType       string  `json:"crop_type,omitempty"`
	PlantingDate   string  `json:"planting_date,omitempty"`
	GrowthStage    string  `json:"growth_stage,omitempty"`
	Status         string  `json:"status,omitempty"`
	LastInspection string  `json:"last_inspection,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// UpdateFieldRequest 更新田块请求；未出现的字段保持不变
type UpdateFieldRequest struct {
	Name           *string  `json:"name"            binding:"omitempty,max=255"`
	Size           *float64 `json:"size"            binding:"omitempty,min=0"`
	CropType       *string  `json:"crop_type"       binding:"omitempty,max=100"`
	PlantingDate   *string  `json:"planting_date"`
	GrowthStage    *string  `json:"growth_stage"    binding:"omitempty,max=50"`
	Status         *string  `json:"status"          binding:"omitempty,max=50"`
	LastInspection *string  `json:"last_inspection"`
	Notes          *string  `json:"notes"`
}
