package model

import "math"

// 科目权重：讲座 60%，练习 (DPP) 40%
const (
	LectureWeight  = 0.6
	PracticeWeight = 0.4
)

// SubjectProgress 单个科目的讲座/练习完成情况
// swagger:model SubjectProgress
type SubjectProgress struct {
	BaseModel
	UserID               uint    `gorm:"not null;uniqueIndex:idx_subject_user_name" json:"user_id"`
	SubjectName          string  `gorm:"size:100;not null;uniqueIndex:idx_subject_user_name" json:"subject_name"`
	Category             string  `gorm:"size:50" json:"category"`
	TotalLectures        int     `gorm:"default:0" json:"total_lectures"`
	CompletedLectures    int     `gorm:"default:0" json:"completed_lectures"`
	TotalDPPs            int     `gorm:"column:total_dpps;default:0" json:"total_dpps"`
	CompletedDPPs        int     `gorm:"column:completed_dpps;default:0" json:"completed_dpps"`
	RevisionCount        int     `gorm:"default:0" json:"revision_count"`
	QuestionsCount       int     `gorm:"default:0" json:"questions_count"`
	CompletionPercentage float64 `gorm:"default:0" json:"completion_percentage"`
}

func (SubjectProgress) TableName() string {
	return "subject_progress"
}

func (s *SubjectProgress) LecturePercent() float64 {
	return Percent(s.CompletedLectures, s.TotalLectures)
}

func (s *SubjectProgress) DPPPercent() float64 {
	return Percent(s.CompletedDPPs, s.TotalDPPs)
}

// Recalculate 根据讲座与练习完成数刷新 CompletionPercentage
func (s *SubjectProgress) Recalculate() {
	s.CompletionPercentage = Round2(LectureWeight*s.LecturePercent() + PracticeWeight*s.DPPPercent())
}

// Percent 返回 completed/total 的百分比，total 为 0 时返回 0，结果不超过 100
func Percent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(completed) / float64(total) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
