// Package main — Service katmanı başlatma.
//
// initServices, business logic katmanını oluşturur: repository'ler,
// websocket hub'ı ve yardımcı altyapı (cache, rate limiter, email
// sender) service'lere bağlanır.
package main

import (
	"log"
	"time"

	"github.com/emirhan/joblink/config"
	"github.com/emirhan/joblink/pkg/cache"
	"github.com/emirhan/joblink/pkg/email"
	"github.com/emirhan/joblink/pkg/ratelimit"
	"github.com/emirhan/joblink/services"
	"github.com/emirhan/joblink/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth         services.AuthService
	Conversation services.ConversationService
	Message      services.MessageService
	Notification services.NotificationService
	Interview    services.InterviewService

	// Yardımcı altyapı — digest job'ı ve graceful shutdown buradan
	// erişir.
	Sender       email.EmailSender
	UnreadCache  *cache.TTLCache[string, int]
	LoginLimiter *ratelimit.Limiter
	StartLimiter *ratelimit.Limiter
}

// initServices, tüm service'leri ve destekleyici altyapıyı oluşturur.
func initServices(cfg *config.Config, repos *Repositories, hub *ws.Hub) *Services {
	// Email: API key yoksa noop sender — development'ta email gitmez,
	// sadece loglanır.
	var sender email.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		sender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		log.Println("[main] email sender: resend")
	} else {
		sender = email.NewNoopSender()
		log.Println("[main] email sender: noop (RESEND_API_KEY not set)")
	}

	// Okunmamış sayaç cache'i: kısa TTL yeterli — sayaç server
	// authoritative'dir, cache sadece poll yükünü düşürür.
	unreadCache := cache.New[string, int](30*time.Second, time.Minute)

	// Login: IP başına 5 deneme / 2 dakika — brute-force koruması.
	// Konuşma başlatma: kullanıcı başına 10 istek / dakika — spam koruması.
	loginLimiter := ratelimit.New(5, 2*time.Minute)
	startLimiter := ratelimit.New(10, time.Minute)

	return &Services{
		Auth: services.NewAuthService(
			repos.User,
			repos.Session,
			cfg.JWT.Secret,
			cfg.JWT.AccessTokenExpiry,
			cfg.JWT.RefreshTokenExpiry,
		),
		Conversation: services.NewConversationService(
			repos.Conversation,
			repos.User,
			repos.Job,
			repos.Message,
			repos.Notification,
			hub,
			startLimiter,
		),
		Message: services.NewMessageService(
			repos.Message,
			repos.Conversation,
			repos.User,
			hub,
			sender,
			unreadCache,
		),
		Notification: services.NewNotificationService(repos.Notification, hub),
		Interview: services.NewInterviewService(
			repos.Conversation,
			repos.User,
			repos.Notification,
			hub,
			cfg.LiveKit,
		),
		Sender:       sender,
		UnreadCache:  unreadCache,
		LoginLimiter: loginLimiter,
		StartLimiter: startLimiter,
	}
}
