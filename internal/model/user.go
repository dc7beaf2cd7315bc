package model

import "time"

// User 备考账号。系统只有一个账号，但所有数据都按 UserID 归属
// swagger:model User
type User struct {
	BaseModel
	Username    string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Password    string     `gorm:"size:100;not null" json:"-"`
	DisplayName string     `gorm:"size:100" json:"display_name"`
	ExamYear    int        `gorm:"default:0" json:"exam_year"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}
