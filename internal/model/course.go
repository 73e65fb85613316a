package model

// Course 课程，LessonCount 为课时总数，用于判断整门课是否完成
type Course struct {
	UUIDBase
	Slug        string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	LessonCount int    `gorm:"default:0" json:"lessonCount"`
	Published   bool   `gorm:"default:false;index" json:"published"`
}

func (Course) TableName() string {
	return "courses"
}
