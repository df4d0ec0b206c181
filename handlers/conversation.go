package handlers

import (
	"net/http"

	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg"
	"github.com/emirhan/joblink/services"
)

// ConversationHandler, konuşma endpoint'lerini yöneten struct.
type ConversationHandler struct {
	conversationService services.ConversationService
}

// NewConversationHandler, constructor.
func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// List godoc
// GET /api/conversations
// Kullanıcının konuşmalarını karşı taraf bilgisiyle döner (son aktivite sıralı).
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	convs, err := h.conversationService.ListConversations(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, convs)
}

// Get godoc
// GET /api/conversations/{conversationId}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	conv, err := h.conversationService.GetConversation(r.Context(), user.ID, r.PathValue("conversationId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, conv)
}
