package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emirhan/joblink/ws"
)

// wsTestServer, gelen event'leri kaydeden sahte websocket sunucusu.
type wsTestServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	received []ws.Event
	conns    int
	active   []*websocket.Conn
}

func newWSTestServer(t *testing.T) *wsTestServer {
	t.Helper()
	s := &wsTestServer{}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns++
		s.active = append(s.active, conn)
		s.mu.Unlock()

		defer conn.Close()
		for {
			var ev ws.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			s.mu.Lock()
			s.received = append(s.received, ev)
			s.mu.Unlock()
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsTestServer) dialer() Dialer {
	wsURL := "ws" + strings.TrimPrefix(s.srv.URL, "http")
	return func(string) (*websocket.Conn, error) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		return conn, err
	}
}

func (s *wsTestServer) events() []ws.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ws.Event, len(s.received))
	copy(out, s.received)
	return out
}

// dropConns, aktif websocket bağlantılarını sunucu tarafından kapatır.
// httptest.Server.CloseClientConnections hijack edilmiş bağlantıları
// izlemez, bu yüzden upgrade edilen conn'lar burada elle kapatılır.
func (s *wsTestServer) dropConns() {
	s.mu.Lock()
	conns := s.active
	s.active = nil
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

func (s *wsTestServer) connCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns
}

func TestDeriveWSURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"http with api suffix", "http://localhost:8080/api", "ws://localhost:8080/ws"},
		{"https with api suffix", "https://joblink.app/api", "wss://joblink.app/ws"},
		{"trailing slash", "http://localhost:8080/api/", "ws://localhost:8080/ws"},
		{"bare origin", "http://localhost:8080", "ws://localhost:8080/ws"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveWSURL(tt.in); got != tt.want {
				t.Errorf("deriveWSURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestManagerSingleton(t *testing.T) {
	m1 := Get("http://localhost:8080/api", "tok", "u1")
	m2 := Get("http://localhost:8080/api", "other-token", "u2")

	if m1 != m2 {
		t.Error("Get returned different instances while manager is alive")
	}

	m1.Disconnect()

	m3 := Get("http://localhost:8080/api", "tok", "u1")
	defer m3.Disconnect()

	if m3 == m1 {
		t.Error("Get after Disconnect returned the closed instance, want a fresh one")
	}
	if m3.State() != StateUninitialized {
		t.Errorf("fresh manager state = %v, want uninitialized", m3.State())
	}
}

func TestManagerConnectAndAnnounce(t *testing.T) {
	srv := newWSTestServer(t)

	m := Get("http://localhost:8080/api", "tok", "user-42")
	defer m.Disconnect()
	m.SetDialer(srv.dialer())

	m.Connect()

	waitFor(t, 3*time.Second, func() bool { return m.State() == StateConnected })

	// Kimlik anonsu settle gecikmesinden sonra gelir.
	waitFor(t, 3*time.Second, func() bool {
		for _, ev := range srv.events() {
			if ev.Op == ws.OpUserConnected {
				return true
			}
		}
		return false
	})

	var announce ws.Event
	for _, ev := range srv.events() {
		if ev.Op == ws.OpUserConnected {
			announce = ev
		}
	}

	// Data, JSON roundtrip'ten map olarak gelir.
	raw, _ := json.Marshal(announce.Data)
	var data ws.UserConnectedData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("unmarshal announce payload: %v", err)
	}
	if data.UserID != "user-42" {
		t.Errorf("announced user_id = %q, want user-42", data.UserID)
	}
}

func TestManagerDisconnectIsFinal(t *testing.T) {
	srv := newWSTestServer(t)

	m := Get("http://localhost:8080/api", "tok", "u1")
	m.SetDialer(srv.dialer())
	m.Connect()

	waitFor(t, 3*time.Second, func() bool { return m.State() == StateConnected })

	m.Disconnect()

	if m.State() != StateClosed {
		t.Errorf("state after Disconnect = %v, want closed", m.State())
	}

	// Kapalı manager reconnect denemez.
	before := srv.connCount()
	time.Sleep(100 * time.Millisecond)
	if srv.connCount() != before {
		t.Error("closed manager attempted to reconnect")
	}

	m.Disconnect() // idempotent
}

func TestManagerStateTransitionsDeliveredInOrder(t *testing.T) {
	// Yavaş bir consumer callback'i sıralamayı bozamamalı: connecting
	// geçişi teslim edilirken üretilen disconnected geçişi kuyrukta
	// bekler, önce teslim edilmez.
	m := Get("http://localhost:8080/api", "tok", "u1")
	defer m.Disconnect()
	m.SetDialer(func(string) (*websocket.Conn, error) {
		return nil, errors.New("dial refused")
	})

	var mu sync.Mutex
	var observed []ConnState
	m.OnStateChange(func(s ConnState) {
		if s == StateConnecting {
			time.Sleep(150 * time.Millisecond)
		}
		mu.Lock()
		observed = append(observed, s)
		mu.Unlock()
	})

	m.Connect()

	waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(observed) >= 2
	})

	mu.Lock()
	defer mu.Unlock()
	if observed[0] != StateConnecting {
		t.Fatalf("first observed state = %v, want connecting", observed[0])
	}
	connectingIdx, disconnectedIdx := -1, -1
	for i, s := range observed {
		if s == StateConnecting && connectingIdx == -1 {
			connectingIdx = i
		}
		if s == StateDisconnected && disconnectedIdx == -1 {
			disconnectedIdx = i
		}
	}
	if disconnectedIdx != -1 && disconnectedIdx < connectingIdx {
		t.Errorf("disconnected observed before the connecting that preceded it: %v", observed)
	}
}

func TestManagerReconnects(t *testing.T) {
	srv := newWSTestServer(t)

	m := Get("http://localhost:8080/api", "tok", "u1")
	defer m.Disconnect()
	m.SetDialer(srv.dialer())

	var mu sync.Mutex
	var states []ConnState
	m.OnStateChange(func(s ConnState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	m.Connect()
	waitFor(t, 3*time.Second, func() bool { return srv.connCount() == 1 })

	// Sunucu tarafı bağlantıyı düşürür — manager yeniden bağlanmalı.
	srv.dropConns()

	waitFor(t, 5*time.Second, func() bool { return srv.connCount() >= 2 })
	waitFor(t, 3*time.Second, func() bool { return m.State() == StateConnected })

	mu.Lock()
	defer mu.Unlock()
	var sawDisconnected bool
	for _, s := range states {
		if s == StateDisconnected {
			sawDisconnected = true
		}
	}
	if !sawDisconnected {
		t.Error("state transitions never passed through disconnected during reconnect")
	}
}
