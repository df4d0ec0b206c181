package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/services"
)

// fakeConversationService, handler testleri için kaydedici stub.
type fakeConversationService struct {
	lastStartReq *models.StartConversationRequest
	candidates   []models.Candidate
}

func (s *fakeConversationService) StartConversation(ctx context.Context, userID string, req *models.StartConversationRequest) (*models.Conversation, *models.Message, error) {
	s.lastStartReq = req
	conv := &models.Conversation{ID: "c1", ParticipantLow: "u1", ParticipantHigh: "u2"}
	var msg *models.Message
	if req.InitialMessage != "" {
		msg = &models.Message{ID: "m1", ConversationID: "c1", SenderID: userID, Content: req.InitialMessage}
	}
	return conv, msg, nil
}

func (s *fakeConversationService) ListCandidates(ctx context.Context, userID string) ([]models.Candidate, error) {
	return s.candidates, nil
}

func (s *fakeConversationService) ListConversations(ctx context.Context, userID string) ([]models.ConversationWithUser, error) {
	return nil, nil
}

func (s *fakeConversationService) GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	return nil, nil
}

// fakeMessageService ve fakeNotificationService — handler constructor'ı
// için boş stub'lar.
type fakeMessageService struct{}

func (s *fakeMessageService) Send(ctx context.Context, senderID, conversationID string, req *models.CreateMessageRequest) (*models.Message, error) {
	return nil, nil
}

func (s *fakeMessageService) List(ctx context.Context, userID, conversationID, beforeID string, limit int) (*models.MessagePage, error) {
	return nil, nil
}

func (s *fakeMessageService) MarkConversationRead(ctx context.Context, userID, conversationID string) error {
	return nil
}

func (s *fakeMessageService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

type fakeNotificationService struct{}

func (s *fakeNotificationService) Create(ctx context.Context, n *models.Notification) error {
	return nil
}

func (s *fakeNotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return nil, nil
}

func (s *fakeNotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (s *fakeNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return nil
}

func (s *fakeNotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

var (
	_ services.ConversationService = (*fakeConversationService)(nil)
	_ services.MessageService      = (*fakeMessageService)(nil)
	_ services.NotificationService = (*fakeNotificationService)(nil)
)

func newTestMessageHandler(convSvc *fakeConversationService) *MessageHandler {
	return NewMessageHandler(&fakeMessageService{}, convSvc, &fakeNotificationService{})
}

// withUser, isteğe authenticated kullanıcıyı bağlar (middleware'in işi).
func withUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
}

func TestStartWireContract(t *testing.T) {
	convSvc := &fakeConversationService{}
	h := newTestMessageHandler(convSvc)

	// Gövde camelCase alan adlarını taşır — web client'ın gönderdiği biçim.
	body := `{"recipientId":"u2","initialMessage":"merhaba"}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages/start", strings.NewReader(body))
	req = withUser(req, &models.User{ID: "u1", Username: "acme", Role: models.RoleEmployer})
	rec := httptest.NewRecorder()

	h.Start(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if convSvc.lastStartReq == nil || convSvc.lastStartReq.CounterpartID != "u2" {
		t.Fatalf("decoded recipient = %+v, want u2", convSvc.lastStartReq)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	// conversation ve message id string'dir, obje değil.
	if got, ok := resp["conversation"].(string); !ok || got != "c1" {
		t.Errorf("conversation = %v (%T), want string c1", resp["conversation"], resp["conversation"])
	}
	if got, ok := resp["message"].(string); !ok || got != "m1" {
		t.Errorf("message = %v (%T), want string m1", resp["message"], resp["message"])
	}
	if _, ok := resp["conversationDetail"].(map[string]any); !ok {
		t.Errorf("conversationDetail missing or not an object: %v", resp["conversationDetail"])
	}
}

func TestApplicantsRoleGate(t *testing.T) {
	tests := []struct {
		name       string
		role       models.UserRole
		wantStatus int
	}{
		{"employer allowed", models.RoleEmployer, http.StatusOK},
		{"employee forbidden", models.RoleEmployee, http.StatusForbidden},
		// Admin'in ilanı yok — aday projeksiyonu ona uygulanamaz,
		// seçim listesi için employers endpoint'ini kullanır.
		{"admin forbidden", models.RoleAdmin, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			convSvc := &fakeConversationService{candidates: []models.Candidate{{UserID: "w1", Username: "worker"}}}
			h := newTestMessageHandler(convSvc)

			req := httptest.NewRequest(http.MethodGet, "/api/messages/applicants", nil)
			req = withUser(req, &models.User{ID: "x", Username: "x", Role: tt.role})
			rec := httptest.NewRecorder()

			h.Applicants(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var resp map[string]any
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if _, ok := resp["applicants"].([]any); !ok {
					t.Errorf("applicants key missing: %v", resp)
				}
			}
		})
	}
}
