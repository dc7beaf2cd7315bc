package model

import "time"

// SubjectMetric 单科聚合指标
type SubjectMetric struct {
	Subject    string  `json:"subject"`
	Category   string  `json:"category"`
	Completion float64 `json:"completion"`
	Revisions  int     `json:"revisions"`
	Questions  int     `json:"questions"`
}

// Metrics 由原始记录聚合得到的备考指标，除 TestTrend 外均为 0-100
type Metrics struct {
	Completion      float64         `json:"completion"`
	Accuracy        float64         `json:"accuracy"`
	Speed           float64         `json:"speed"`
	Consistency     float64         `json:"consistency"`
	Mood            float64         `json:"mood"`
	TestAverage     float64         `json:"test_average"`
	TestTrend       float64         `json:"test_trend"`
	Optional        float64         `json:"optional"`
	CurrentAffairs  float64         `json:"current_affairs"`
	Essay           float64         `json:"essay"`
	WeeklyHours     float64         `json:"weekly_hours"`
	AttemptsSampled int             `json:"attempts_sampled"`
	Subjects        []SubjectMetric `json:"subjects"`
}

// Readiness 备考就绪度及各分项贡献
type Readiness struct {
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"components"`
	Metrics    Metrics            `json:"metrics"`
}

// StageScores 三个考试阶段的估算分数
type StageScores struct {
	Prelims      float64 `json:"prelims"`
	PrelimsMax   float64 `json:"prelims_max"`
	Mains        float64 `json:"mains"`
	MainsMax     float64 `json:"mains_max"`
	Interview    float64 `json:"interview"`
	InterviewMax float64 `json:"interview_max"`
	Final        float64 `json:"final"`
	FinalMax     float64 `json:"final_max"`
}

// SubjectRank 单科估算排名
type SubjectRank struct {
	Subject       string  `json:"subject"`
	Completion    float64 `json:"completion"`
	EstimatedRank int     `json:"estimated_rank"`
	Percentile    float64 `json:"percentile"`
}

// Prediction 排名预测结果。Seed 相同且输入相同时结果相同
type Prediction struct {
	Readiness                float64       `json:"readiness"`
	Stages                   StageScores   `json:"stages"`
	BaseRank                 int           `json:"base_rank"`
	PredictedRank            int           `json:"predicted_rank"`
	Population               int           `json:"population"`
	Percentile               float64       `json:"percentile"`
	JitterBand               float64       `json:"jitter_band"`
	QualificationProbability float64       `json:"qualification_probability"`
	SubjectRanks             []SubjectRank `json:"subject_ranks"`
	Recommendations          []string      `json:"recommendations"`
	Metrics                  Metrics       `json:"metrics"`
	Seed                     int64         `json:"seed"`
	Fallback                 bool          `json:"fallback"`
	GeneratedAt              time.Time     `json:"generated_at"`
}

// DashboardOverview 首页仪表盘数据
type DashboardOverview struct {
	Subjects          []SubjectProgress `json:"subjects"`
	TodayGoals        []DailyGoal       `json:"today_goals"`
	WeeklySummary     *GoalSummary      `json:"weekly_summary"`
	RecentTests       []TestRecord      `json:"recent_tests"`
	LatestMood        *MoodEntry        `json:"latest_mood,omitempty"`
	Readiness         float64           `json:"readiness"`
	OverallCompletion float64           `json:"overall_completion"`
	OptionalPercent   float64           `json:"optional_percent"`
	CurrentAffairsPct float64           `json:"current_affairs_percent"`
	EssayPercent      float64           `json:"essay_percent"`
}
