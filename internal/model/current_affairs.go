package model

// 时事与作文的固定总量
const (
	CurrentAffairsTotalTopics   = 300
	CurrentAffairsTotalLectures = 150

	EssayTotalEssays   = 40
	EssayTotalLectures = 25
	EssayTotalTopics   = 60
)

// CurrentAffairsProgress 每个用户一行
// swagger:model CurrentAffairsProgress
type CurrentAffairsProgress struct {
	BaseModel
	UserID            uint `gorm:"uniqueIndex;not null" json:"user_id"`
	CompletedTopics   int  `gorm:"default:0" json:"completed_topics"`
	CompletedLectures int  `gorm:"default:0" json:"completed_lectures"`
}

func (CurrentAffairsProgress) TableName() string {
	return "current_affairs_progress"
}

// Percentage 话题与讲座的平均完成率
func (c *CurrentAffairsProgress) Percentage() float64 {
	return Round2((Percent(c.CompletedTopics, CurrentAffairsTotalTopics) +
		Percent(c.CompletedLectures, CurrentAffairsTotalLectures)) / 2)
}

// EssayProgress 每个用户一行
// swagger:model EssayProgress
type EssayProgress struct {
	BaseModel
	UserID            uint `gorm:"uniqueIndex;not null" json:"user_id"`
	EssaysWritten     int  `gorm:"default:0" json:"essays_written"`
	CompletedLectures int  `gorm:"default:0" json:"completed_lectures"`
	TopicsPractised   int  `gorm:"default:0" json:"topics_practised"`
}

func (EssayProgress) TableName() string {
	return "essay_progress"
}

func (e *EssayProgress) Percentage() float64 {
	return Round2((Percent(e.EssaysWritten, EssayTotalEssays) +
		Percent(e.CompletedLectures, EssayTotalLectures) +
		Percent(e.TopicsPractised, EssayTotalTopics)) / 3)
}

// ProgressView 带固定总量与百分比的进度视图
type ProgressView struct {
	Completed  map[string]int `json:"completed"`
	Totals     map[string]int `json:"totals"`
	Percentage float64        `json:"percentage"`
}
