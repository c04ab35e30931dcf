package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/ws"
)

// NotificationService persists notifications and pushes them to live
// websocket connections. It satisfies the Notifier the purchase flow uses.
type NotificationService struct {
	repo domain.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo domain.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

// Notify stores the notification and unicasts it to the user's open
// connections. Delivery failures are logged; notification is best effort.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message string, typ domain.NotificationType) {
	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		log.Printf("[NotificationService.Notify] failed to persist notification for %s: %v", userID, err)
		return
	}

	if s.hub != nil {
		if payload, err := json.Marshal(notification); err == nil {
			s.hub.SendToUser(userID, payload)
		}
	}
}

func (s *NotificationService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
