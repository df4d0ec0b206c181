package repository

import (
	"context"

	"github.com/emirhan/joblink/models"
)

// ConversationRepository, konuşma veritabanı işlemleri için interface.
//
// GetByPairAndJob + Create birlikte create-or-resolve akışını oluşturur:
// service önce mevcut konuşmayı arar, yoksa oluşturur. Eşzamanlı iki istek
// aynı anda Create'e düşerse UNIQUE constraint ikinciyi durdurur —
// service bu hatada tekrar GetByPairAndJob çağırır.
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	// GetByPairAndJob, sıralı katılımcı çifti + ilan için konuşmayı döner.
	// jobID nil ise ilansız konuşma aranır. Bulunamazsa (nil, nil) döner.
	GetByPairAndJob(ctx context.Context, low, high string, jobID *string) (*models.Conversation, error)
	// ListForUser, kullanıcının konuşmalarını karşı taraf bilgisiyle döner,
	// son mesaj aktivitesine göre sıralı.
	ListForUser(ctx context.Context, userID string) ([]models.ConversationWithUser, error)
	// TouchLastMessage, last_message_at'i günceller — her yeni mesajda çağrılır.
	TouchLastMessage(ctx context.Context, conversationID string) error
}
