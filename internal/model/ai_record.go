package model

import "gorm.io/datatypes"

type AIInteractionKind string

const (
	AIKindChat            AIInteractionKind = "chat"
	AIKindSuggestion      AIInteractionKind = "suggestion"
	AIKindQuestions       AIInteractionKind = "questions"
	AIKindEssayEvaluation AIInteractionKind = "essay_evaluation"
	AIKindNotes           AIInteractionKind = "notes"
)

// AIInteraction 生成器的 prompt/response 审计记录，聊天历史也来自此表
// swagger:model AIInteraction
type AIInteraction struct {
	BaseModel
	UserID   uint              `gorm:"index;not null" json:"user_id"`
	Kind     AIInteractionKind `gorm:"size:30;index" json:"kind"`
	Prompt   string            `gorm:"type:text" json:"prompt"`
	Response string            `gorm:"type:text" json:"response"`
	Payload  datatypes.JSON    `json:"payload,omitempty"`
	Fallback bool              `gorm:"default:false" json:"fallback"`
}

func (AIInteraction) TableName() string {
	return "ai_interactions"
}

// EssayEvaluation 作文评分结果
// swagger:model EssayEvaluation
type EssayEvaluation struct {
	BaseModel
	UserID       uint           `gorm:"index;not null" json:"user_id"`
	Topic        string         `gorm:"size:255" json:"topic"`
	Content      string         `gorm:"type:text" json:"content"`
	OverallScore float64        `gorm:"default:0" json:"overall_score"`
	Scores       datatypes.JSON `json:"scores,omitempty"`
	Feedback     string         `gorm:"type:text" json:"feedback"`
	Fallback     bool           `gorm:"default:false" json:"fallback"`
}

func (EssayEvaluation) TableName() string {
	return "essay_evaluations"
}
