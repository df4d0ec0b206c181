// Package main — Handler katmanı başlatma.
package main

import (
	"github.com/emirhan/joblink/handlers"
	"github.com/emirhan/joblink/middleware"
	"github.com/emirhan/joblink/repository"
	"github.com/emirhan/joblink/ws"
)

// Handlers, tüm HTTP handler instance'larını tutan container struct.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Message      *handlers.MessageHandler
	Conversation *handlers.ConversationHandler
	Notification *handlers.NotificationHandler
	Interview    *handlers.InterviewHandler
	WS           *ws.Handler

	AuthMiddleware *middleware.AuthMiddleware
}

// initHandlers, service'leri HTTP handler'larına bağlar.
func initHandlers(svcs *Services, userRepo repository.UserRepository, hub *ws.Hub) *Handlers {
	return &Handlers{
		Auth:           handlers.NewAuthHandler(svcs.Auth, svcs.LoginLimiter),
		Message:        handlers.NewMessageHandler(svcs.Message, svcs.Conversation, svcs.Notification),
		Conversation:   handlers.NewConversationHandler(svcs.Conversation),
		Notification:   handlers.NewNotificationHandler(svcs.Notification),
		Interview:      handlers.NewInterviewHandler(svcs.Interview),
		WS:             ws.NewHandler(hub, svcs.Auth),
		AuthMiddleware: middleware.NewAuthMiddleware(svcs.Auth, userRepo),
	}
}
