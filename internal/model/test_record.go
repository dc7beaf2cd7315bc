package model

type TestType string

const (
	TestPrelims TestType = "prelims"
	TestMains   TestType = "mains"
)

type TestCategory string

const (
	CategoryMock       TestCategory = "mock"
	CategorySectional  TestCategory = "sectional"
	CategoryFullLength TestCategory = "full_length"
	CategoryPYQ        TestCategory = "pyq"
)

// TestRecord 一次模考/测试成绩。ScoredMarks 允许大于 TotalMarks
// swagger:model TestRecord
type TestRecord struct {
	BaseModel
	UserID      uint     `gorm:"index;not null" json:"user_id"`
	TestType    TestType `gorm:"size:20;index" json:"test_type"`
	Category    string   `gorm:"size:30" json:"category"`
	Subject     string   `gorm:"size:100" json:"subject"`
	TotalMarks  float64  `gorm:"default:0" json:"total_marks"`
	ScoredMarks float64  `gorm:"default:0" json:"scored_marks"`
	AttemptDate string   `gorm:"size:10;index" json:"attempt_date"`
}

func (TestRecord) TableName() string {
	return "test_records"
}

// Percentage 得分率（未截断，可能大于 100）
func (t *TestRecord) Percentage() float64 {
	if t.TotalMarks <= 0 {
		return 0
	}
	return t.ScoredMarks / t.TotalMarks * 100
}

// TestTypeStats 单一考试阶段的成绩统计
type TestTypeStats struct {
	TestType       TestType `json:"test_type"`
	Count          int      `json:"count"`
	AveragePercent float64  `json:"average_percent"`
	BestPercent    float64  `json:"best_percent"`
	LatestPercent  float64  `json:"latest_percent"`
	Trend          string   `json:"trend"` // improving, declining, stable
}
