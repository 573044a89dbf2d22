package service

import (
	"encoding/json"

	"gavel/internal/models"
	"gavel/internal/repository"
	"gavel/internal/ws"

	"github.com/sirupsen/logrus"
)

// NotificationService persists events and pushes them to connected clients
// over the websocket hub. It is the Publisher the engine services use.
type NotificationService struct {
	db  repository.DB
	hub *ws.Hub
}

func NewNotificationService(db repository.DB, hub *ws.Hub) *NotificationService {
	return &NotificationService{db: db, hub: hub}
}

// Publish is fire-and-forget: it runs after the originating commit, so a
// delivery failure is logged but never rolls the operation back.
func (s *NotificationService) Publish(userID uint, topic string, data map[string]interface{}) {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.db.Notifications().Create(&models.Notification{
		UserID: userID,
		Topic:  topic,
		Data:   dataJSON,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "topic": topic}).
			WithError(err).Warn("failed to persist notification")
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, map[string]interface{}{"topic": topic, "data": data})
	}
}

func (s *NotificationService) ListForUser(userID uint, limit, offset int) ([]models.Notification, error) {
	return s.db.Notifications().ListByUser(userID, limit, offset)
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	return s.db.Notifications().MarkRead(id, userID)
}
