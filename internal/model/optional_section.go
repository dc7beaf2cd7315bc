package model

// DefaultPSIRSections 政治学与国际关系（PSIR）选修的默认章节及条目数
var DefaultPSIRSections = []OptionalSection{
	{SectionName: "Paper 1A - Political Theory", TotalItems: 14},
	{SectionName: "Paper 1B - Indian Government and Politics", TotalItems: 11},
	{SectionName: "Paper 2A - Comparative Politics and IR", TotalItems: 10},
	{SectionName: "Paper 2B - India and the World", TotalItems: 10},
}

// OptionalSection 选修科目的章节进度
// swagger:model OptionalSection
type OptionalSection struct {
	BaseModel
	UserID         uint   `gorm:"not null;uniqueIndex:idx_optional_user_section" json:"user_id"`
	SectionName    string `gorm:"size:150;not null;uniqueIndex:idx_optional_user_section" json:"section_name"`
	TotalItems     int    `gorm:"default:0" json:"total_items"`
	CompletedItems int    `gorm:"default:0" json:"completed_items"`
}

func (OptionalSection) TableName() string {
	return "optional_sections"
}

func (o *OptionalSection) Percentage() float64 {
	return Percent(o.CompletedItems, o.TotalItems)
}
