package model

import (
	"time"

	"vibeit_backend/internal/streak"
)

// CourseProgress 用户在某门课程上的学习进度
type CourseProgress struct {
	UUIDBase
	UserID           uint       `gorm:"uniqueIndex:idx_user_course;type:bigint unsigned;not null" json:"userId"`
	CourseID         string     `gorm:"uniqueIndex:idx_user_course;type:varchar(36);not null" json:"courseId"`
	CompletedLessons []string   `gorm:"serializer:json;type:json" json:"completedLessons"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"` // 整门课完成时才写入
}

func (CourseProgress) TableName() string {
	return "course_progress"
}

// HasLesson 判断课时是否已完成
func (p *CourseProgress) HasLesson(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

func (p *CourseProgress) ToRecord() streak.ProgressRecord {
	lessons := make([]string, len(p.CompletedLessons))
	copy(lessons, p.CompletedLessons)
	return streak.ProgressRecord{
		CourseID:         p.CourseID,
		CompletedLessons: lessons,
		CompletedAt:      p.CompletedAt,
	}
}
