package repository

import (
	"context"

	"vibeit_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MilestoneRepository struct {
	DB *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{DB: db}
}

func (r *MilestoneRepository) FindByUserID(ctx context.Context, userID uint) ([]model.UserMilestone, error) {
	var milestones []model.UserMilestone
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("achieved_at asc").Find(&milestones).Error
	if err != nil {
		return nil, err
	}
	return milestones, nil
}

// CreateBatch 批量写入，已存在的 (user_id, milestone_id) 直接忽略
func (r *MilestoneRepository) CreateBatch(ctx context.Context, milestones []model.UserMilestone) error {
	if len(milestones) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&milestones).Error
}
