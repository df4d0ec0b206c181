package handlers

import (
	"net/http"

	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg"
	"github.com/emirhan/joblink/services"
)

// InterviewHandler, görüntülü mülakat endpoint'lerini yöneten struct.
type InterviewHandler struct {
	interviewService services.InterviewService
}

// NewInterviewHandler, constructor.
func NewInterviewHandler(interviewService services.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService}
}

// RoomToken godoc
// POST /api/conversations/{conversationId}/interview
// Konuşma katılımcısına LiveKit mülakat odası token'ı döner.
func (h *InterviewHandler) RoomToken(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	token, err := h.interviewService.CreateRoomToken(r.Context(), user.ID, r.PathValue("conversationId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, token)
}
