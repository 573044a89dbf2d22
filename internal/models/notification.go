package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is the persisted copy of an event also pushed over the
// websocket hub. Data holds the topic payload as JSON.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Topic     string         `gorm:"size:32;not null;index" json:"topic"`
	Data      string         `gorm:"type:text" json:"data"`
	Read      bool           `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
