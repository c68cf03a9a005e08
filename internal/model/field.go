package model

// Field 田块，对应 fields
type Field struct {
	ID             int64   `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name           string  `gorm:"type:varchar(255);not null" json:"name"`
	Size           float64 `gorm:"not null;default:0"         json:"size"` // 英亩
	CropType       string  `gorm:"type:varchar(100)"          json:"crop_type,omitempty"`
	PlantingDate   *Date   `gorm:"type:date"                  json:"planting_date,omitempty"`
	GrowthStage    string  `gorm:"type:varchar(50)"           json:"growth_stage,omitempty"`
	Status         string  `gorm:"type:varchar(50)"           json:"status,omitempty"`
	LastInspection *Date   `gorm:"type:date"                  json:"last_inspection,omitempty"`
	Notes          string  `gorm:"type:text"                  json:"notes,omitempty"`
	BaseModel
}

func (Field) TableName() string { return "fields" }

// FieldNames 构建 id → 名称 索引，用于列表按田块名排序与标注
func FieldNames(fields []Field) map[int64]string {
	names := make(map[int64]string, len(fields))
	for _, f := range fields {
		names[f.ID] = f.Name
	}
	return names
}
