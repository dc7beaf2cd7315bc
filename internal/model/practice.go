package model

import "time"

// QuestionAttempt 单道练习题的作答记录
// swagger:model QuestionAttempt
type QuestionAttempt struct {
	BaseModel
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	Subject          string    `gorm:"size:100;index" json:"subject"`
	IsCorrect        bool      `gorm:"default:false" json:"is_correct"`
	TimeTakenSeconds int       `gorm:"default:0" json:"time_taken_seconds"`
	AttemptedAt      time.Time `gorm:"index" json:"attempted_at"`
}

func (QuestionAttempt) TableName() string {
	return "question_attempts"
}

// StudySession 一次计时学习
// swagger:model StudySession
type StudySession struct {
	BaseModel
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	Subject         string     `gorm:"size:100" json:"subject"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationMinutes int        `gorm:"default:0" json:"duration_minutes"`
	Activity        string     `gorm:"type:text" json:"activity"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}
