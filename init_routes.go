// Package main — HTTP route tanımları.
//
// Go 1.22 method pattern'leri kullanılır: "POST /api/auth/login" gibi.
// Path parametreleri handler'larda r.PathValue ile okunur.
package main

import (
	"fmt"
	"net/http"
)

// initRoutes, tüm endpoint'leri mux'a bağlar ve mux'ı döner.
func initRoutes(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	auth := h.AuthMiddleware

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"joblink"}`)
	})

	// Auth — public endpoint'ler (token gerekmez)
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)

	mux.Handle("GET /api/users/me", auth.Require(http.HandlerFunc(h.Auth.Me)))

	// Messages — okunmamış sayaçlar ve konuşma başlatma akışı.
	// Bu endpoint'ler web client'ın beklediği düz {success, ...} JSON
	// biçimini döner; /unread mesaj sayacı, /unread/count bildirim
	// sayacıdır ve ikisi ayrı sayaçlardır.
	mux.Handle("GET /api/messages/unread", auth.Require(
		http.HandlerFunc(h.Message.UnreadCount)))
	mux.Handle("GET /api/messages/unread/count", auth.Require(
		http.HandlerFunc(h.Message.UnreadNotificationCount)))
	mux.Handle("GET /api/messages/applicants", auth.Require(
		http.HandlerFunc(h.Message.Applicants)))
	mux.Handle("GET /api/messages/employers", auth.Require(
		http.HandlerFunc(h.Message.Employers)))
	mux.Handle("POST /api/messages/start", auth.Require(
		http.HandlerFunc(h.Message.Start)))

	// Conversations
	mux.Handle("GET /api/conversations", auth.Require(
		http.HandlerFunc(h.Conversation.List)))
	mux.Handle("GET /api/conversations/{conversationId}", auth.Require(
		http.HandlerFunc(h.Conversation.Get)))
	mux.Handle("GET /api/conversations/{conversationId}/messages", auth.Require(
		http.HandlerFunc(h.Message.List)))
	mux.Handle("POST /api/conversations/{conversationId}/messages", auth.Require(
		http.HandlerFunc(h.Message.Send)))
	mux.Handle("POST /api/conversations/{conversationId}/read", auth.Require(
		http.HandlerFunc(h.Message.MarkRead)))
	mux.Handle("POST /api/conversations/{conversationId}/interview", auth.Require(
		http.HandlerFunc(h.Interview.RoomToken)))

	// Notifications
	mux.Handle("GET /api/notifications", auth.Require(
		http.HandlerFunc(h.Notification.List)))
	mux.Handle("POST /api/notifications/{notificationId}/read", auth.Require(
		http.HandlerFunc(h.Notification.MarkRead)))
	mux.Handle("POST /api/notifications/read-all", auth.Require(
		http.HandlerFunc(h.Notification.MarkAllRead)))

	// WebSocket — token query parameter ile authenticate edilir.
	// Upgrade sırasında tarayıcılar custom header gönderemediği için
	// JWT, ws://server/ws?token=... şeklinde taşınır; handler kendi
	// içinde doğrulama yapar.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)

	return mux
}
