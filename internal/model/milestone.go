package model

import "time"

// UserMilestone 用户已解锁的里程碑，只记录首次达成
type UserMilestone struct {
	BaseModel
	UserID      uint      `gorm:"uniqueIndex:idx_user_milestone;type:bigint unsigned;not null" json:"userId"`
	MilestoneID string    `gorm:"uniqueIndex:idx_user_milestone;size:50;not null" json:"milestoneId"`
	Type        string    `gorm:"size:20" json:"type"`
	AchievedAt  time.Time `json:"achievedAt"`
}

func (UserMilestone) TableName() string {
	return "user_milestones"
}
