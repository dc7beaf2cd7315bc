package model

// DailyGoal 每日学习记录。同一天同一科目可以有多条
// swagger:model DailyGoal
type DailyGoal struct {
	BaseModel
	UserID          uint    `gorm:"index;not null" json:"user_id"`
	Date            string  `gorm:"size:10;index;not null" json:"date"`
	Subject         string  `gorm:"size:100" json:"subject"`
	HoursStudied    float64 `gorm:"default:0" json:"hours_studied"`
	TopicsCovered   int     `gorm:"default:0" json:"topics_covered"`
	QuestionsSolved int     `gorm:"default:0" json:"questions_solved"`
	Notes           string  `gorm:"type:text" json:"notes"`
}

func (DailyGoal) TableName() string {
	return "daily_goals"
}

// DayHours 某一天的学习时长汇总
type DayHours struct {
	Date            string  `json:"date"`
	Hours           float64 `json:"hours"`
	QuestionsSolved int     `json:"questions_solved"`
	TopicsCovered   int     `json:"topics_covered"`
}

// GoalSummary 最近 N 天学习汇总
type GoalSummary struct {
	Days           []DayHours         `json:"days"`
	TotalHours     float64            `json:"total_hours"`
	AverageHours   float64            `json:"average_hours"`
	TotalQuestions int                `json:"total_questions"`
	ActiveDays     int                `json:"active_days"`
	SubjectHours   map[string]float64 `json:"subject_hours"`
}
