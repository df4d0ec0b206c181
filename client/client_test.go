package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestClientUnreadCount(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    int
		wantErr bool
	}{
		{"positive count", 200, `{"success":true,"unreadCount":7}`, 7, false},
		{"zero count", 200, `{"success":true,"unreadCount":0}`, 0, false},
		{"negative clamped to zero", 200, `{"success":true,"unreadCount":-2}`, 0, false},
		{"server failure", 500, `{"success":false,"error":"db down"}`, 0, true},
		{"unauthorized", 401, `{"success":false,"error":"unauthorized"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/messages/unread" {
					http.NotFound(w, r)
					return
				}
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("Authorization header = %q, want Bearer tok", got)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL+"/api", "tok")
			got, err := c.UnreadCount(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("UnreadCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClientSetTokenConcurrentWithRequests(t *testing.T) {
	// Refresh, uçuştaki bir poll ile yarışabilir — SetToken ve istekler
	// eşzamanlı çalışırken sonraki istek güncel token'ı taşımalı.
	var mu sync.Mutex
	var lastAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lastAuth = r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"unreadCount":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", "old-token")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.UnreadCount(context.Background())
		}()
	}
	c.SetToken("new-token")
	wg.Wait()

	if _, err := c.UnreadCount(context.Background()); err != nil {
		t.Fatalf("post-refresh request: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if lastAuth != "Bearer new-token" {
		t.Errorf("Authorization after SetToken = %q, want Bearer new-token", lastAuth)
	}
}

func TestClientNotificationCountUsesSeparatePath(t *testing.T) {
	// /api/messages/unread mesaj sayacı, /api/messages/unread/count
	// bildirim sayacıdır — farklı endpoint, farklı sayaç.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/messages/unread":
			w.Write([]byte(`{"success":true,"unreadCount":3}`))
		case "/api/messages/unread/count":
			w.Write([]byte(`{"success":true,"unreadCount":9}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", "tok")

	messages, err := c.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	notifications, err := c.NotificationCount(context.Background())
	if err != nil {
		t.Fatalf("NotificationCount: %v", err)
	}

	if messages != 3 || notifications != 9 {
		t.Errorf("counts = (%d, %d), want (3, 9)", messages, notifications)
	}
}
