package repository

import (
	"context"
	"time"

	"github.com/emirhan/joblink/models"
)

// MessageRepository, mesaj veritabanı işlemleri için interface.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// List, cursor-based pagination ile mesajları döner (yeniden eskiye).
	List(ctx context.Context, conversationID string, beforeID string, limit int) ([]models.Message, error)
	// MarkConversationRead, konuşmadaki karşı taraf mesajlarını okundu işaretler.
	// Kendi mesajların işaretlenmez — read_at alıcının okuma zamanıdır.
	MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error)
	// CountUnreadForUser, kullanıcının tüm konuşmalarındaki okunmamış
	// mesaj sayısını döner. Badge bu değeri gösterir — client asla
	// kendi başına artırmaz, her zaman server'ın dediği sayı geçerlidir.
	CountUnreadForUser(ctx context.Context, userID string) (int, error)
	// ListUsersWithStaleUnread, verilen eşikten eski okunmamış mesajı olan
	// kullanıcıları okunmamış sayılarıyla döner — digest job'ı için.
	ListUsersWithStaleUnread(ctx context.Context, olderThan time.Time) ([]models.StaleUnread, error)
}
