package services

import (
	"context"
	"fmt"
	"log"

	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg"
	"github.com/emirhan/joblink/pkg/cache"
	"github.com/emirhan/joblink/pkg/email"
	"github.com/emirhan/joblink/repository"
	"github.com/emirhan/joblink/ws"
)

// defaultMessagePageSize, tek istekte dönen maksimum mesaj sayısı.
const defaultMessagePageSize = 50

// MessageService, mesaj gönderme/listeleme ve okunmamış sayaç business logic'i.
//
// Okunmamış sayaç kuralı: sayı her zaman server tarafından hesaplanır.
// Client yeni mesaj geldiğinde sayacı kendi başına artırmaz — bir sonraki
// poll veya unread_update event'i server'ın saydığı değeri getirir.
type MessageService interface {
	Send(ctx context.Context, senderID, conversationID string, req *models.CreateMessageRequest) (*models.Message, error)
	List(ctx context.Context, userID, conversationID, beforeID string, limit int) (*models.MessagePage, error)
	MarkConversationRead(ctx context.Context, userID, conversationID string) error
	// UnreadCount, kullanıcının okunmamış mesaj toplamını döner.
	// Kısa TTL'li cache arkasında — badge polling'i SQLite'ı dövmesin.
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// messageService, MessageService implementasyonu.
type messageService struct {
	msgRepo  repository.MessageRepository
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
	hub      ws.EventPublisher
	sender   email.EmailSender
	// unreadCache: userID → okunmamış mesaj sayısı.
	// Cache invalidation: yeni mesaj ve mark-read işlemlerinde
	// ilgili kullanıcının entry'si silinir.
	unreadCache *cache.TTLCache[string, int]
}

// NewMessageService, constructor.
func NewMessageService(
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	hub ws.EventPublisher,
	sender email.EmailSender,
	unreadCache *cache.TTLCache[string, int],
) MessageService {
	return &messageService{
		msgRepo:     msgRepo,
		convRepo:    convRepo,
		userRepo:    userRepo,
		hub:         hub,
		sender:      sender,
		unreadCache: unreadCache,
	}
}

// Send, konuşmaya yeni mesaj ekler.
//
// Akış:
// 1. Validation + katılımcı kontrolü
// 2. DB kayıt + last_message_at güncelle
// 3. Her iki tarafa ws broadcast (gönderen diğer tab'ları da görsün)
// 4. Alıcının unread cache'i invalidate + güncel sayı push edilir
// 5. Alıcı offline ise email bildirimi (asenkron — HTTP yanıtını bekletmez)
func (s *messageService) Send(ctx context.Context, senderID, conversationID string, req *models.CreateMessageRequest) (*models.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.ParticipantLow != senderID && conv.ParticipantHigh != senderID {
		return nil, fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        req.Content,
	}

	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.convRepo.TouchLastMessage(ctx, conversationID); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err == nil {
		sender.PasswordHash = ""
		msg.Author = sender
	}

	recipientID := conv.ParticipantLow
	if recipientID == senderID {
		recipientID = conv.ParticipantHigh
	}

	s.hub.BroadcastToUser(recipientID, ws.Event{Op: ws.OpMessageCreate, Data: msg})
	s.hub.BroadcastToUser(senderID, ws.Event{Op: ws.OpMessageCreate, Data: msg})

	// Alıcının sayacı değişti — cache'i düşür, güncel değeri push et
	s.unreadCache.Delete(recipientID)
	if count, err := s.msgRepo.CountUnreadForUser(ctx, recipientID); err == nil {
		s.unreadCache.Set(recipientID, count)
		s.hub.BroadcastToUser(recipientID, ws.Event{
			Op:   ws.OpUnreadUpdate,
			Data: ws.UnreadData{UnreadCount: count},
		})
	}

	// Offline alıcıya email — goroutine'de, gönderim hatası mesajı geri almaz
	if !s.hub.IsUserOnline(recipientID) {
		go s.notifyOfflineRecipient(recipientID, msg.Author)
	}

	return msg, nil
}

// notifyOfflineRecipient, offline alıcıya yeni mesaj email'i gönderir.
// HTTP request context'inden bağımsız çalışır — istek çoktan yanıtlanmıştır.
func (s *messageService) notifyOfflineRecipient(recipientID string, author *models.User) {
	ctx := context.Background()

	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		log.Printf("[message] failed to load offline recipient %s: %v", recipientID, err)
		return
	}

	senderName := "Someone"
	if author != nil {
		senderName = author.Username
	}

	if err := s.sender.SendNewMessage(ctx, recipient.Email, recipient.Language, senderName); err != nil {
		log.Printf("[message] failed to send email to %s: %v", recipient.Email, err)
	}
}

// List, cursor-based pagination ile mesajları döner (eskiden yeniye sıralı).
func (s *messageService) List(ctx context.Context, userID, conversationID, beforeID string, limit int) (*models.MessagePage, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.ParticipantLow != userID && conv.ParticipantHigh != userID {
		return nil, fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}

	if limit <= 0 || limit > defaultMessagePageSize {
		limit = defaultMessagePageSize
	}

	// limit+1 iste: fazladan satır geldiyse daha eski mesajlar var demektir
	messages, err := s.msgRepo.List(ctx, conversationID, beforeID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	// Repo yeniden-eskiye döner; frontend eskiden-yeniye render eder
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return &models.MessagePage{Messages: messages, HasMore: hasMore}, nil
}

// MarkConversationRead, konuşmadaki karşı taraf mesajlarını okundu işaretler
// ve okuyucunun unread cache'ini düşürür.
func (s *messageService) MarkConversationRead(ctx context.Context, userID, conversationID string) error {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if conv.ParticipantLow != userID && conv.ParticipantHigh != userID {
		return fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}

	n, err := s.msgRepo.MarkConversationRead(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	if n > 0 {
		s.unreadCache.Delete(userID)
		if count, err := s.msgRepo.CountUnreadForUser(ctx, userID); err == nil {
			s.unreadCache.Set(userID, count)
			s.hub.BroadcastToUser(userID, ws.Event{
				Op:   ws.OpUnreadUpdate,
				Data: ws.UnreadData{UnreadCount: count},
			})
		}
	}

	return nil
}

// UnreadCount, kullanıcının okunmamış mesaj toplamını döner.
func (s *messageService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if count, ok := s.unreadCache.Get(userID); ok {
		return count, nil
	}

	count, err := s.msgRepo.CountUnreadForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.unreadCache.Set(userID, count)
	return count, nil
}
