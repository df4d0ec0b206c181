package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg"
	"github.com/emirhan/joblink/pkg/convkey"
	"github.com/emirhan/joblink/pkg/ratelimit"
	"github.com/emirhan/joblink/repository"
	"github.com/emirhan/joblink/ws"
)

// ConversationService, konuşma yönetimi business logic'i.
//
// StartConversation create-or-resolve semantiği taşır:
// aynı (katılımcı çifti, ilan) için ikinci kez çağrılırsa yeni konuşma
// oluşturmaz, mevcut olanı döner. Frontend aynı butona iki kez basılmasını
// veya iki ayrı ekrandan aynı konuşmanın başlatılmasını dert etmez.
type ConversationService interface {
	// StartConversation, konuşma başlatır veya mevcut olanı resolve eder.
	// İkinci dönüş değeri, istekle birlikte gönderilen ilk mesajdır (varsa).
	StartConversation(ctx context.Context, userID string, req *models.StartConversationRequest) (*models.Conversation, *models.Message, error)
	// ListCandidates, kullanıcının rolüne göre konuşma başlatabileceği
	// karşı tarafları döner: employer → başvuran adaylar, employee → işverenler.
	ListCandidates(ctx context.Context, userID string) ([]models.Candidate, error)
	ListConversations(ctx context.Context, userID string) ([]models.ConversationWithUser, error)
	GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error)
}

// conversationService, ConversationService implementasyonu.
type conversationService struct {
	convRepo     repository.ConversationRepository
	userRepo     repository.UserRepository
	jobRepo      repository.JobRepository
	msgRepo      repository.MessageRepository
	notifRepo    repository.NotificationRepository
	hub          ws.EventPublisher
	startLimiter *ratelimit.Limiter
}

// NewConversationService, constructor.
func NewConversationService(
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	jobRepo repository.JobRepository,
	msgRepo repository.MessageRepository,
	notifRepo repository.NotificationRepository,
	hub ws.EventPublisher,
	startLimiter *ratelimit.Limiter,
) ConversationService {
	return &conversationService{
		convRepo:     convRepo,
		userRepo:     userRepo,
		jobRepo:      jobRepo,
		msgRepo:      msgRepo,
		notifRepo:    notifRepo,
		hub:          hub,
		startLimiter: startLimiter,
	}
}

// StartConversation, create-or-resolve akışı:
//
// 1. Rate limit + validation
// 2. Karşı taraf var mı; kendinle konuşma yasak
// 3. Eligibility: employer sadece ilanına başvuran adayla, employee sadece
//    işverenle konuşma başlatabilir
// 4. Katılımcı çifti sıralanır (convkey.Sort) — DB tekilliği bu sıraya dayanır
// 5. Mevcut konuşma varsa onu dön; yoksa oluştur
// 6. Eşzamanlı yaratma yarışında UNIQUE constraint'e takılan istek
//    mevcut konuşmayı tekrar sorgulayıp onu döner
// 7. İlk mesaj (varsa) kaydedilir, karşı tarafa bildirim + ws event gider
func (s *conversationService) StartConversation(ctx context.Context, userID string, req *models.StartConversationRequest) (*models.Conversation, *models.Message, error) {
	if !s.startLimiter.Allow(userID) {
		return nil, nil, fmt.Errorf("%w: too many conversation attempts, slow down", pkg.ErrBadRequest)
	}

	if err := req.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if req.CounterpartID == userID {
		return nil, nil, fmt.Errorf("%w: cannot start a conversation with yourself", pkg.ErrBadRequest)
	}

	// Kimlik anahtarı türetme — boş id'leri burada da yakalar
	if _, err := convkey.Derive(userID, req.CounterpartID); err != nil {
		return nil, nil, err
	}

	caller, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	counterpart, err := s.userRepo.GetByID(ctx, req.CounterpartID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: counterpart not found", pkg.ErrBadRequest)
		}
		return nil, nil, err
	}

	if err := s.checkEligibility(ctx, caller, counterpart); err != nil {
		return nil, nil, err
	}

	// İlan bağlamı doğrulaması (varsa)
	if req.JobID != nil {
		job, err := s.jobRepo.GetByID(ctx, *req.JobID)
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: job not found", pkg.ErrBadRequest)
			}
			return nil, nil, err
		}
		// İlan, çiftteki işverene ait olmalı
		if job.EmployerID != caller.ID && job.EmployerID != counterpart.ID {
			return nil, nil, fmt.Errorf("%w: job does not belong to either participant", pkg.ErrForbidden)
		}
	}

	low, high := convkey.Sort(userID, req.CounterpartID)

	conv, err := s.convRepo.GetByPairAndJob(ctx, low, high, req.JobID)
	if err != nil {
		return nil, nil, err
	}

	created := false
	if conv == nil {
		conv = &models.Conversation{
			ParticipantLow:  low,
			ParticipantHigh: high,
			JobID:           req.JobID,
			ApplicationID:   req.ApplicationID,
		}

		if err := s.convRepo.Create(ctx, conv); err != nil {
			if errors.Is(err, pkg.ErrAlreadyExists) {
				// Yarışı kaybettik — diğer istek konuşmayı oluşturdu, resolve et
				conv, err = s.convRepo.GetByPairAndJob(ctx, low, high, req.JobID)
				if err != nil {
					return nil, nil, err
				}
				if conv == nil {
					return nil, nil, fmt.Errorf("conversation vanished after unique conflict")
				}
			} else {
				return nil, nil, err
			}
		} else {
			created = true
		}
	}

	// İlk mesaj (opsiyonel)
	var msg *models.Message
	if req.InitialMessage != "" {
		msg = &models.Message{
			ConversationID: conv.ID,
			SenderID:       userID,
			Content:        req.InitialMessage,
		}
		if err := s.msgRepo.Create(ctx, msg); err != nil {
			return nil, nil, err
		}
		if err := s.convRepo.TouchLastMessage(ctx, conv.ID); err != nil {
			return nil, nil, err
		}
		msg.Author = caller
	}

	if created {
		// Karşı tarafa uygulama içi bildirim
		notif := &models.Notification{
			UserID: counterpart.ID,
			Type:   models.NotificationNewMessage,
			Body:   fmt.Sprintf("%s started a conversation with you", caller.Username),
			LinkID: &conv.ID,
		}
		if err := s.notifRepo.Create(ctx, notif); err != nil {
			// Bildirim kaydı konuşma başlatmayı geri almaz — logla ve devam et
			log.Printf("[conversation] failed to create notification: %v", err)
		} else {
			s.hub.BroadcastToUser(counterpart.ID, ws.Event{Op: ws.OpNotificationCreate, Data: notif})
		}

		s.hub.BroadcastToUser(counterpart.ID, ws.Event{Op: ws.OpConversationCreate, Data: conv})
		s.hub.BroadcastToUser(userID, ws.Event{Op: ws.OpConversationCreate, Data: conv})
	}

	if msg != nil {
		s.hub.BroadcastToUser(counterpart.ID, ws.Event{Op: ws.OpMessageCreate, Data: msg})
	}

	return conv, msg, nil
}

// checkEligibility, iki kullanıcının konuşma başlatabilir olup olmadığını kontrol eder.
func (s *conversationService) checkEligibility(ctx context.Context, caller, counterpart *models.User) error {
	switch caller.Role {
	case models.RoleEmployer:
		// İşveren sadece ilanlarına başvurmuş adaylarla konuşabilir
		ok, err := s.jobRepo.HasApplicationBetween(ctx, caller.ID, counterpart.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: user has not applied to any of your jobs", pkg.ErrForbidden)
		}
	case models.RoleEmployee:
		// Çalışan sadece işverenlerle konuşma başlatabilir
		if counterpart.Role != models.RoleEmployer {
			return fmt.Errorf("%w: employees can only message employers", pkg.ErrForbidden)
		}
	case models.RoleAdmin:
		// Admin herkesle konuşabilir
	default:
		return fmt.Errorf("%w: unknown role", pkg.ErrForbidden)
	}

	return nil
}

// ListCandidates, role göre karşı taraf listesi döner.
// Liste boş olabilir — henüz başvuru yoksa veya platformda işveren yoksa.
func (s *conversationService) ListCandidates(ctx context.Context, userID string) ([]models.Candidate, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleEmployer:
		return s.jobRepo.ListApplicantsForEmployer(ctx, userID)

	case models.RoleEmployee, models.RoleAdmin:
		employers, err := s.userRepo.ListByRole(ctx, models.RoleEmployer)
		if err != nil {
			return nil, err
		}
		candidates := make([]models.Candidate, 0, len(employers))
		for _, u := range employers {
			if u.ID == userID {
				continue
			}
			candidates = append(candidates, models.Candidate{
				UserID:      u.ID,
				Username:    u.Username,
				DisplayName: u.DisplayName,
				AvatarURL:   u.AvatarURL,
			})
		}
		return candidates, nil

	default:
		return nil, fmt.Errorf("%w: unknown role", pkg.ErrForbidden)
	}
}

func (s *conversationService) ListConversations(ctx context.Context, userID string) ([]models.ConversationWithUser, error) {
	return s.convRepo.ListForUser(ctx, userID)
}

// GetConversation, konuşmayı döner — sadece katılımcılar erişebilir.
func (s *conversationService) GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.ParticipantLow != userID && conv.ParticipantHigh != userID {
		return nil, fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}

	return conv, nil
}
