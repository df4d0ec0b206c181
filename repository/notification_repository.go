package repository

import (
	"context"

	"github.com/emirhan/joblink/models"
)

// NotificationRepository, uygulama içi bildirim işlemleri için interface.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	// CountUnreadForUser, okunmamış bildirim sayısını döner.
	// Zil ikonu rozeti bu sayacı gösterir — okunmamış mesaj sayısından ayrıdır.
	CountUnreadForUser(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}
