package services

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/emirhan/joblink/config"
	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg"
	"github.com/emirhan/joblink/repository"
	"github.com/emirhan/joblink/ws"
)

// InterviewService, görüntülü mülakat odası erişim token'ları üretir.
//
// Mülakat, mevcut bir konuşmanın içinden başlatılır — LiveKit room adı
// konuşma ID'sidir. Böylece oda üyeliği = konuşma üyeliği: yalnızca iki
// katılımcı aynı odaya token alabilir.
type InterviewService interface {
	// CreateRoomToken, konuşma katılımcısına mülakat odası token'ı döner.
	// Mülakatı sadece işveren (veya admin) başlatabilir; çalışan mevcut
	// bir odaya katılmak için token alır.
	CreateRoomToken(ctx context.Context, userID, conversationID string) (*models.InterviewToken, error)
}

// interviewService, InterviewService implementasyonu.
type interviewService struct {
	convRepo   repository.ConversationRepository
	userRepo   repository.UserRepository
	notifRepo  repository.NotificationRepository
	hub        ws.EventPublisher
	livekitCfg config.LiveKitConfig
}

// NewInterviewService, constructor.
func NewInterviewService(
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	hub ws.EventPublisher,
	livekitCfg config.LiveKitConfig,
) InterviewService {
	return &interviewService{
		convRepo:   convRepo,
		userRepo:   userRepo,
		notifRepo:  notifRepo,
		hub:        hub,
		livekitCfg: livekitCfg,
	}
}

// CreateRoomToken, LiveKit access token üretir.
func (s *interviewService) CreateRoomToken(ctx context.Context, userID, conversationID string) (*models.InterviewToken, error) {
	if s.livekitCfg.APIKey == "" || s.livekitCfg.APISecret == "" {
		return nil, fmt.Errorf("%w: video interviews are not configured", pkg.ErrInternal)
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.ParticipantLow != userID && conv.ParticipantHigh != userID {
		return nil, fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// auth.NewAccessToken: LiveKit'in JWT builder'ı.
	// API key + secret ile imzalanır, client bununla LiveKit'e bağlanır.
	// LiveKit sunucusu token'ı doğrular ve grant'lara göre izin verir.
	at := auth.NewAccessToken(s.livekitCfg.APIKey, s.livekitCfg.APISecret)

	canPublish := true
	canSubscribe := true
	canPublishData := true

	grant := &auth.VideoGrant{
		RoomJoin:       true,
		Room:           conversationID, // LiveKit room name = conversation ID
		CanPublish:     &canPublish,
		CanSubscribe:   &canSubscribe,
		CanPublishData: &canPublishData,
	}

	at.AddGrant(grant).
		SetIdentity(userID).
		SetName(user.Username).
		SetValidFor(2 * time.Hour) // Mülakat süresi için yeterli

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("failed to generate livekit token: %w", err)
	}

	// Karşı tarafa davet bildirimi — işveren odayı açtığında
	// çalışanın zil ikonuna düşer
	counterpartID := conv.ParticipantLow
	if counterpartID == userID {
		counterpartID = conv.ParticipantHigh
	}

	if user.Role == models.RoleEmployer {
		notif := &models.Notification{
			UserID: counterpartID,
			Type:   models.NotificationInterviewInvite,
			Body:   fmt.Sprintf("%s invited you to a video interview", user.Username),
			LinkID: &conversationID,
		}
		if err := s.notifRepo.Create(ctx, notif); err == nil {
			s.hub.BroadcastToUser(counterpartID, ws.Event{Op: ws.OpNotificationCreate, Data: notif})
		}
	}

	return &models.InterviewToken{
		Token:          token,
		URL:            s.livekitCfg.URL,
		ConversationID: conversationID,
	}, nil
}
