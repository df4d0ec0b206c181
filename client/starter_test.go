package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/emirhan/joblink/models"
)

func strptr(s string) *string { return &s }

func TestFilter(t *testing.T) {
	ayse := strptr("Ayşe Yılmaz")
	candidates := []models.Candidate{
		{UserID: "u1", Username: "mehmet_dev", DisplayName: ayse},
		{UserID: "u2", Username: "can42"},
		{UserID: "u3", Username: "Deniz", DisplayName: strptr("Deniz Aksoy")},
	}

	tests := []struct {
		name  string
		query string
		want  []string // beklenen userID sırası
	}{
		{"empty query returns all", "", []string{"u1", "u2", "u3"}},
		{"whitespace query returns all", "   ", []string{"u1", "u2", "u3"}},
		{"username substring", "can", []string{"u2"}},
		{"case insensitive username", "DENIZ", []string{"u3"}},
		{"display name substring", "yılmaz", []string{"u1"}},
		{"no match returns empty slice", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(candidates, tt.query)
			if got == nil {
				t.Fatal("Filter returned nil, want a slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d candidates, want %d", len(got), len(tt.want))
			}
			for i, c := range got {
				if c.UserID != tt.want[i] {
					t.Errorf("result[%d] = %s, want %s", i, c.UserID, tt.want[i])
				}
			}
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := []models.Candidate{{UserID: "u1", Username: "a"}, {UserID: "u2", Username: "b"}}
	_ = Filter(in, "a")
	if in[0].UserID != "u1" || in[1].UserID != "u2" {
		t.Error("Filter mutated its input slice")
	}
}

func TestListCandidatesRoleRouting(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/messages/applicants":
			w.Write([]byte(`{"success":true,"applicants":[{"user_id":"a1","username":"applicant"}]}`))
		case "/api/messages/employers":
			w.Write([]byte(`{"success":true,"employers":[{"user_id":"e1","username":"boss"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	starter := NewConversationStarter(New(srv.URL+"/api", "tok"))

	got, err := starter.ListCandidates(context.Background(), models.RoleEmployer)
	if err != nil {
		t.Fatalf("employer list: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "a1" {
		t.Errorf("employer candidates = %+v, want applicant a1", got)
	}

	got, err = starter.ListCandidates(context.Background(), models.RoleEmployee)
	if err != nil {
		t.Fatalf("employee list: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "e1" {
		t.Errorf("employee candidates = %+v, want employer e1", got)
	}

	// Admin, applicants endpoint'ine giremez (işveren ilanlarına bağlı) —
	// işveren listesini kullanır.
	got, err = starter.ListCandidates(context.Background(), models.RoleAdmin)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "e1" {
		t.Errorf("admin candidates = %+v, want employer e1", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"/api/messages/applicants", "/api/messages/employers", "/api/messages/employers"}
	if len(paths) != len(want) {
		t.Fatalf("requested paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestListCandidatesFailureReturnsEmptyAndError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"error":"forbidden"}`))
	}))
	defer srv.Close()

	starter := NewConversationStarter(New(srv.URL+"/api", "tok"))

	got, err := starter.ListCandidates(context.Background(), models.RoleEmployer)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got == nil {
		t.Fatal("expected empty slice alongside the error, got nil")
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates on failure, want 0", len(got))
	}
}

func TestStartConversationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"error":"no application between users"}`))
	}))
	defer srv.Close()

	starter := NewConversationStarter(New(srv.URL+"/api", "tok"))

	conv, msg, err := starter.StartConversation(context.Background(), models.StartConversationRequest{
		CounterpartID: "u2",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() == "" {
		t.Error("error message is empty")
	}
	if conv != nil || msg != nil {
		t.Error("conversation/message must be nil on failure")
	}
}

func TestStartConversationSuccess(t *testing.T) {
	var mu sync.Mutex
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/messages/start" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		json.NewDecoder(r.Body).Decode(&body)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"conversation":"c1","message":"m1","conversationDetail":{"id":"c1","participant_low":"u1","participant_high":"u2"},"messageDetail":{"id":"m1","conversation_id":"c1","sender_id":"u1","content":"merhaba"}}`))
	}))
	defer srv.Close()

	starter := NewConversationStarter(New(srv.URL+"/api", "tok"))

	conv, msg, err := starter.StartConversation(context.Background(), models.StartConversationRequest{
		CounterpartID:  "u2",
		InitialMessage: "merhaba",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if conv == nil || conv.ID != "c1" {
		t.Fatalf("conversation = %+v, want id c1", conv)
	}
	if msg == nil || msg.Content != "merhaba" {
		t.Errorf("message = %+v, want content merhaba", msg)
	}

	// İstek gövdesi wire sözleşmesindeki camelCase alan adlarını taşımalı.
	mu.Lock()
	defer mu.Unlock()
	if got, ok := body["recipientId"]; !ok || got != "u2" {
		t.Errorf("request body recipientId = %v, want u2 (body: %v)", got, body)
	}
	if _, ok := body["counterpart_id"]; ok {
		t.Error("request body carries counterpart_id, want recipientId only")
	}
}

func TestStartConversationIDOnlyResponse(t *testing.T) {
	// Detail alanları göndermeyen bir sunucuda da id'lerden konuşma
	// ve mesaj kurulabilmeli.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"conversation":"c9","message":"m9"}`))
	}))
	defer srv.Close()

	starter := NewConversationStarter(New(srv.URL+"/api", "tok"))

	conv, msg, err := starter.StartConversation(context.Background(), models.StartConversationRequest{CounterpartID: "u2"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if conv == nil || conv.ID != "c9" {
		t.Fatalf("conversation = %+v, want id c9", conv)
	}
	if msg == nil || msg.ID != "m9" || msg.ConversationID != "c9" {
		t.Errorf("message = %+v, want id m9 in c9", msg)
	}
}

func TestStartConversationInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedOnce.Do(func() { close(started) })
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"conversation":"c1"}`))
	}))
	defer srv.Close()

	starter := NewConversationStarter(New(srv.URL+"/api", "tok"))

	done := make(chan error, 1)
	go func() {
		_, _, err := starter.StartConversation(context.Background(), models.StartConversationRequest{CounterpartID: "u2"})
		done <- err
	}()

	<-started

	// İlk istek uçuştayken ikinci çağrı reddedilir.
	_, _, err := starter.StartConversation(context.Background(), models.StartConversationRequest{CounterpartID: "u2"})
	if err == nil {
		t.Error("second concurrent start should be rejected")
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first start failed: %v", err)
	}

	// İlk istek bittikten sonra yeni başlatmaya izin verilir.
	_, _, err = starter.StartConversation(context.Background(), models.StartConversationRequest{CounterpartID: "u3"})
	if err != nil {
		t.Errorf("start after completion failed: %v", err)
	}
}
