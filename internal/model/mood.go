package model

type Mood string

const (
	MoodExcellent Mood = "excellent"
	MoodGood      Mood = "good"
	MoodNeutral   Mood = "neutral"
	MoodTired     Mood = "tired"
	MoodStressed  Mood = "stressed"
	MoodAnxious   Mood = "anxious"
)

// moodScores 心情到 0-100 分的映射，用于备考状态评估
var moodScores = map[Mood]float64{
	MoodExcellent: 100,
	MoodGood:      80,
	MoodNeutral:   60,
	MoodTired:     40,
	MoodStressed:  30,
	MoodAnxious:   25,
}

func (m Mood) Valid() bool {
	_, ok := moodScores[m]
	return ok
}

func (m Mood) Score() float64 {
	return moodScores[m]
}

// MoodEntry 每天一条心情记录
// swagger:model MoodEntry
type MoodEntry struct {
	BaseModel
	UserID uint   `gorm:"not null;uniqueIndex:idx_mood_user_date" json:"user_id"`
	Date   string `gorm:"size:10;not null;uniqueIndex:idx_mood_user_date" json:"date"`
	Mood   Mood   `gorm:"size:20;not null" json:"mood"`
	Note   string `gorm:"type:text" json:"note"`
}

func (MoodEntry) TableName() string {
	return "mood_entries"
}
