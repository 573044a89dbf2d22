package repository

import (
	"gavel/internal/models"

	"gorm.io/gorm"
)

type notificationRepo struct {
	db *gorm.DB
}

func (r *notificationRepo) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepo) ListByUser(userID uint, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *notificationRepo) MarkRead(id, userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true).Error
}
