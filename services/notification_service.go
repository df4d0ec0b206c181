package services

import (
	"context"

	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/repository"
	"github.com/emirhan/joblink/ws"
)

// defaultNotificationPageSize, tek istekte dönen maksimum bildirim sayısı.
const defaultNotificationPageSize = 50

// NotificationService, uygulama içi bildirim business logic'i.
//
// Bildirim sayacı, mesaj sayacından bilinçli olarak ayrıdır:
// zil ikonu rozetine okunmamış bildirimler, mesaj ikonu rozetine
// okunmamış mesajlar düşer. İki endpoint iki ayrı sayacı rapor eder.
type NotificationService interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID string) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// notificationService, NotificationService implementasyonu.
type notificationService struct {
	notifRepo repository.NotificationRepository
	hub       ws.EventPublisher
}

// NewNotificationService, constructor.
func NewNotificationService(notifRepo repository.NotificationRepository, hub ws.EventPublisher) NotificationService {
	return &notificationService{notifRepo: notifRepo, hub: hub}
}

// Create, bildirim kaydeder ve sahibine ws ile push eder.
func (s *notificationService) Create(ctx context.Context, n *models.Notification) error {
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return err
	}

	s.hub.BroadcastToUser(n.UserID, ws.Event{Op: ws.OpNotificationCreate, Data: n})
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.notifRepo.ListForUser(ctx, userID, defaultNotificationPageSize)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notifRepo.CountUnreadForUser(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.notifRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}
