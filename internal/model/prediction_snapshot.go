package model

import "gorm.io/datatypes"

// PredictionSnapshot 每日定时保存的预测结果，用于趋势展示
// swagger:model PredictionSnapshot
type PredictionSnapshot struct {
	BaseModel
	UserID                   uint           `gorm:"not null;uniqueIndex:idx_snapshot_user_date" json:"user_id"`
	SnapshotDate             string         `gorm:"size:10;not null;uniqueIndex:idx_snapshot_user_date" json:"snapshot_date"`
	Readiness                float64        `json:"readiness"`
	PrelimsScore             float64        `json:"prelims_score"`
	MainsScore               float64        `json:"mains_score"`
	InterviewScore           float64        `json:"interview_score"`
	PredictedRank            int            `json:"predicted_rank"`
	QualificationProbability float64        `json:"qualification_probability"`
	Details                  datatypes.JSON `json:"details,omitempty"`
}

func (PredictionSnapshot) TableName() string {
	return "prediction_snapshots"
}
