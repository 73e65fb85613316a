package repository

import (
	"context"

	"vibeit_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// FindByUserID 获取用户所有课程的进度
func (r *ProgressRepository) FindByUserID(ctx context.Context, userID uint) ([]model.CourseProgress, error) {
	var progress []model.CourseProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&progress).Error
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// UpdateCourseProgress 在事务内锁定 (user_id, course_id) 对应的进度行后调用 fn。
// 行不存在时先插入空记录；fn 返回 false 表示无需写回。
func (r *ProgressRepository) UpdateCourseProgress(ctx context.Context, userID uint, courseID string, fn func(*model.CourseProgress) (bool, error)) (*model.CourseProgress, error) {
	var progress model.CourseProgress
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := model.CourseProgress{UserID: userID, CourseID: courseID, CompletedLessons: []string{}}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND course_id = ?", userID, courseID).
			First(&progress).Error; err != nil {
			return err
		}

		changed, err := fn(&progress)
		if err != nil || !changed {
			return err
		}
		return tx.Model(&progress).Select("CompletedLessons", "CompletedAt").Updates(&progress).Error
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
