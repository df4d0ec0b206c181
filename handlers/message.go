package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg"
	"github.com/emirhan/joblink/services"
)

// MessageHandler, mesajlaşma endpoint'lerini yöneten struct.
//
// Rozet/liste endpoint'leri (unread, applicants, employers, start) eski
// frontend sözleşmesine bağlıdır: alanlar top-level döner, data objesi
// içinde değil. Bu endpoint'lerde pkg.JSONFlat kullanılır.
type MessageHandler struct {
	messageService      services.MessageService
	conversationService services.ConversationService
	notificationService services.NotificationService
}

// NewMessageHandler, constructor.
func NewMessageHandler(
	messageService services.MessageService,
	conversationService services.ConversationService,
	notificationService services.NotificationService,
) *MessageHandler {
	return &MessageHandler{
		messageService:      messageService,
		conversationService: conversationService,
		notificationService: notificationService,
	}
}

// UnreadCount godoc
// GET /api/messages/unread
// Response: { "success": true, "unreadCount": 5 }
//
// Okunmamış MESAJ sayısı — mesaj ikonu rozeti bu değeri gösterir.
// Client bu sayıyı olduğu gibi render eder, asla kendi başına artırmaz.
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	count, err := h.messageService.UnreadCount(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSONFlat(w, http.StatusOK, map[string]any{
		"success":     true,
		"unreadCount": count,
	})
}

// UnreadNotificationCount godoc
// GET /api/messages/unread/count
// Response: { "success": true, "unreadCount": 2 }
//
// Okunmamış BİLDİRİM sayısı — zil ikonu rozeti bu değeri gösterir.
// /unread ile aynı alan adını kullanır ama ayrı bir sayaçtır.
func (h *MessageHandler) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	count, err := h.notificationService.UnreadCount(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSONFlat(w, http.StatusOK, map[string]any{
		"success":     true,
		"unreadCount": count,
	})
}

// Applicants godoc
// GET /api/messages/applicants
// Response: { "success": true, "applicants": [...] }
//
// İşverenin konuşma başlatabileceği adaylar (ilanlarına başvuranlar).
func (h *MessageHandler) Applicants(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	// Sadece işveren: aday projeksiyonu işverenin ilan başvurularından
	// türetilir. Admin'in ilanı yok — admin seçim listesi için
	// /api/messages/employers kullanır.
	if user.Role != models.RoleEmployer {
		pkg.ErrorWithMessage(w, http.StatusForbidden, "only employers can list applicants")
		return
	}

	candidates, err := h.conversationService.ListCandidates(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSONFlat(w, http.StatusOK, map[string]any{
		"success":    true,
		"applicants": candidates,
	})
}

// Employers godoc
// GET /api/messages/employers
// Response: { "success": true, "employers": [...] }
//
// Çalışanın konuşma başlatabileceği işverenler.
func (h *MessageHandler) Employers(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if user.Role != models.RoleEmployee && user.Role != models.RoleAdmin {
		pkg.ErrorWithMessage(w, http.StatusForbidden, "only employees can list employers")
		return
	}

	candidates, err := h.conversationService.ListCandidates(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSONFlat(w, http.StatusOK, map[string]any{
		"success":   true,
		"employers": candidates,
	})
}

// Start godoc
// POST /api/messages/start
// Body: { "recipientId": "...", "jobId": "...", "initialMessage": "..." }
// Response: { "success": true, "conversation": "<id>", "message": "<id>",
//   "conversationDetail": {...}, "messageDetail": {...} }
//
// conversation ve message id string'dir — web client'ın beklediği biçim.
// Detail alanları tam objeleri taşır, yeni tüketiciler için ektir.
//
// Create-or-resolve: aynı (çift, ilan) için ikinci çağrı mevcut konuşmayı döner.
func (h *MessageHandler) Start(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, msg, err := h.conversationService.StartConversation(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	payload := map[string]any{
		"success":            true,
		"conversation":       conv.ID,
		"conversationDetail": conv,
	}
	if msg != nil {
		payload["message"] = msg.ID
		payload["messageDetail"] = msg
	}

	pkg.JSONFlat(w, http.StatusOK, payload)
}

// List godoc
// GET /api/conversations/{conversationId}/messages?before=<id>&limit=<n>
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	conversationID := r.PathValue("conversationId")
	beforeID := r.URL.Query().Get("before")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	page, err := h.messageService.List(r.Context(), user.ID, conversationID, beforeID, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Send godoc
// POST /api/conversations/{conversationId}/messages
// Body: { "content": "..." }
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	conversationID := r.PathValue("conversationId")

	var req models.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.messageService.Send(r.Context(), user.ID, conversationID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, msg)
}

// MarkRead godoc
// POST /api/conversations/{conversationId}/read
// Konuşmadaki karşı taraf mesajlarını okundu işaretler.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	conversationID := r.PathValue("conversationId")

	if err := h.messageService.MarkConversationRead(r.Context(), user.ID, conversationID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "conversation marked as read"})
}
