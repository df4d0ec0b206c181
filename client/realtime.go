package client

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emirhan/joblink/ws"
)

// ConnState, websocket bağlantısının yaşam döngüsü durumu.
type ConnState int

const (
	StateUninitialized ConnState = iota
	StateConnecting
	StateConnected
	StateDisconnected // bağlantı koptu, reconnect denenecek
	StateClosed       // Disconnect çağrıldı, kalıcı kapalı
)

func (s ConnState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Reconnect backoff parametreleri: her kopuşta gecikme ikiye katlanır,
// üst sınırda sabitlenir. Başarılı bağlantı gecikmeyi sıfırlar.
const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	heartbeatInterval  = 30 * time.Second
	announceDelay      = 500 * time.Millisecond
	// errorLogThreshold'dan sonra hata logları bastırılır; reconnect
	// denemeleri loglardan bağımsız olarak devam eder.
	errorLogThreshold = 5
)

// Dialer, websocket bağlantısı kuran fonksiyon tipi. Testlerde fake
// sunucuya bağlanan bir dialer enjekte edilir.
type Dialer func(url string) (*websocket.Conn, error)

func defaultDialer(url string) (*websocket.Conn, error) {
	d := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := d.Dial(url, nil)
	return conn, err
}

// Manager, websocket bağlantısını yöneten process-wide singleton.
//
// Uygulama boyunca tek bir bağlantı yaşar: Get her çağrıldığında aynı
// instance'ı döner. Bağlantı kopması reconnect döngüsünü tetikler;
// Manager'ı yalnızca açık Disconnect çağrısı kalıcı olarak kapatır.
// Disconnect sonrası singleton bırakılır — bir sonraki Get (örn. yeni
// login) taze bir instance oluşturur.
type Manager struct {
	wsURL  string
	token  string
	userID string
	dial   Dialer

	mu        sync.Mutex
	state     ConnState
	conn      *websocket.Conn
	closed    chan struct{}
	errCount  int
	connEpoch int // her yeni bağlantıda artar; eski goroutine'ler kendini tanır

	// stateCh, durum geçişlerini tek bir notifier goroutine'ine taşır.
	// Geçişler m.mu altında sıraya girer ve tek goroutine'den teslim
	// edilir — consumer'lar geçişleri her zaman oluş sırasıyla görür,
	// yavaş bir callback sıralamayı bozamaz.
	stateCh chan ConnState

	// cbMu, callback'leri m.mu'dan bağımsız korur — notifier m.mu'ya
	// dokunmaz, kuyruk dolsa bile boşaltmaya devam edebilir.
	cbMu    sync.Mutex
	cbEvent func(ev ws.Event)
	cbState func(state ConnState)
}

var (
	managerMu sync.Mutex
	manager   *Manager
)

// Get, singleton Manager'ı döner; yoksa oluşturur.
// apiOrigin "http://host:port/api" biçimindedir; bağlantı base origin'in
// /ws yoluna kurulur ve token query parametresiyle taşınır.
func Get(apiOrigin, token, userID string) *Manager {
	managerMu.Lock()
	defer managerMu.Unlock()

	if manager != nil {
		return manager
	}

	manager = &Manager{
		wsURL:   deriveWSURL(apiOrigin) + "?token=" + token,
		token:   token,
		userID:  userID,
		dial:    defaultDialer,
		state:   StateUninitialized,
		closed:  make(chan struct{}),
		stateCh: make(chan ConnState, 64),
	}
	go manager.notifyLoop()
	return manager
}

// notifyLoop, kuyruktaki durum geçişlerini sırayla callback'e teslim
// eder. Disconnect kanalı kapattığında döngü biter.
func (m *Manager) notifyLoop() {
	for s := range m.stateCh {
		m.cbMu.Lock()
		fn := m.cbState
		m.cbMu.Unlock()
		if fn != nil {
			fn(s)
		}
	}
}

// deriveWSURL, API origin'inden websocket URL'ini türetir:
// "http://host:port/api" → "ws://host:port/ws".
func deriveWSURL(apiOrigin string) string {
	origin := strings.TrimRight(apiOrigin, "/")
	origin = strings.TrimSuffix(origin, "/api")
	switch {
	case strings.HasPrefix(origin, "https://"):
		origin = "wss://" + strings.TrimPrefix(origin, "https://")
	case strings.HasPrefix(origin, "http://"):
		origin = "ws://" + strings.TrimPrefix(origin, "http://")
	}
	return origin + "/ws"
}

// SetDialer, bağlantı kuran fonksiyonu değiştirir (test için).
// Connect'ten önce çağrılmalıdır.
func (m *Manager) SetDialer(d Dialer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dial = d
}

// OnEvent, sunucudan gelen her event için çağrılacak callback'i ayarlar.
func (m *Manager) OnEvent(fn func(ev ws.Event)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.cbEvent = fn
}

// OnStateChange, durum değişimlerinde çağrılacak callback'i ayarlar.
func (m *Manager) OnStateChange(fn func(state ConnState)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.cbState = fn
}

// State, güncel bağlantı durumunu döner.
func (m *Manager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect, bağlantı döngüsünü başlatır. İkinci kez çağrılması no-op'tur.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return
	}
	m.setStateLocked(StateConnecting)
	m.mu.Unlock()

	go m.run()
}

// Disconnect, bağlantıyı kalıcı olarak kapatır ve singleton'ı bırakır.
// Bir sonraki Get taze bir Manager oluşturur.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.setStateLocked(StateClosed)
	conn := m.conn
	m.conn = nil
	close(m.closed)
	m.mu.Unlock()

	// Closed geçişi kuyruğa girdi ve Closed'dan sonra setStateLocked
	// no-op'tur — kanal güvenle kapatılır, notifier kuyruğu boşaltıp çıkar.
	close(m.stateCh)

	if conn != nil {
		conn.Close()
	}

	managerMu.Lock()
	if manager == m {
		manager = nil
	}
	managerMu.Unlock()

	log.Println("[realtime] disconnected")
}

// run, bağlan-oku-kopunca-tekrar-dene döngüsü. Yalnızca Disconnect
// döngüyü sonlandırır.
func (m *Manager) run() {
	delay := reconnectBaseDelay

	for {
		select {
		case <-m.closed:
			return
		default:
		}

		conn, err := m.dial(m.wsURL)
		if err != nil {
			m.noteError("dial failed", err)
			m.setState(StateDisconnected)

			select {
			case <-m.closed:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
			continue
		}

		delay = reconnectBaseDelay

		m.mu.Lock()
		if m.state == StateClosed {
			m.mu.Unlock()
			conn.Close()
			return
		}
		m.conn = conn
		m.connEpoch++
		epoch := m.connEpoch
		m.errCount = 0
		m.setStateLocked(StateConnected)
		m.mu.Unlock()

		log.Println("[realtime] connected")

		stopHeartbeat := make(chan struct{})
		go m.heartbeatLoop(epoch, stopHeartbeat)
		go m.announceIdentity(epoch)

		m.readLoop(conn)
		close(stopHeartbeat)

		select {
		case <-m.closed:
			return
		default:
			m.setState(StateDisconnected)
			log.Println("[realtime] connection lost, reconnecting")
		}
	}
}

// readLoop, bağlantı kopana kadar event okur ve callback'e iletir.
func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var ev ws.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			m.noteError("bad event payload", err)
			continue
		}

		m.cbMu.Lock()
		fn := m.cbEvent
		m.cbMu.Unlock()
		if fn != nil {
			fn(ev)
		}
	}
}

// heartbeatLoop, aktif bağlantıya periyodik heartbeat gönderir.
// Sunucu heartbeat_ack ile cevaplar; cevapsız bağlantıyı sunucu
// tarafındaki read deadline düşürür.
func (m *Manager) heartbeatLoop(epoch int, stop chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-m.closed:
			return
		case <-ticker.C:
			if err := m.send(epoch, ws.Event{Op: ws.OpHeartbeat}); err != nil {
				return
			}
		}
	}
}

// announceIdentity, bağlantı oturduktan kısa bir süre sonra
// user_connected event'iyle kimliği bildirir. userID bilinmiyorsa
// (token-only akış) anons atlanır; sunucu kimliği zaten token'dan bilir.
func (m *Manager) announceIdentity(epoch int) {
	if m.userID == "" {
		return
	}

	select {
	case <-m.closed:
		return
	case <-time.After(announceDelay):
	}

	ev := ws.Event{Op: ws.OpUserConnected, Data: ws.UserConnectedData{UserID: m.userID}}
	if err := m.send(epoch, ev); err != nil {
		m.noteError("identity announce failed", err)
	}
}

// send, event'i aktif bağlantıya yazar. Bağlantı bu epoch'tan sonra
// yenilendiyse yazma yapılmaz — eski goroutine yeni bağlantıya yazamaz.
func (m *Manager) send(epoch int, ev ws.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil || m.connEpoch != epoch || m.state != StateConnected {
		return websocket.ErrCloseSent
	}
	return m.conn.WriteJSON(ev)
}

// noteError, hatayı sayar ve eşiğe kadar loglar. Eşik aşıldıktan sonra
// loglar bastırılır ama sayaç ve reconnect davranışı değişmez.
func (m *Manager) noteError(msg string, err error) {
	m.mu.Lock()
	m.errCount++
	n := m.errCount
	m.mu.Unlock()

	if n <= errorLogThreshold {
		log.Printf("[realtime] %s: %v", msg, err)
		if n == errorLogThreshold {
			log.Println("[realtime] further errors suppressed")
		}
	}
}

func (m *Manager) setState(s ConnState) {
	m.mu.Lock()
	m.setStateLocked(s)
	m.mu.Unlock()
}

// setStateLocked, m.mu tutulurken çağrılır. Closed durumundan geri
// dönüş yoktur. Geçiş, lock altında kuyruğa eklenir — state değişimi
// ve bildirim sırası atomik olarak aynıdır.
func (m *Manager) setStateLocked(s ConnState) {
	if m.state == StateClosed && s != StateClosed {
		return
	}
	if m.state == s {
		return
	}
	m.state = s
	// Buffer, yavaş bir consumer'ın birikmesini emer; geçişler reconnect
	// temposunda (saniyeler) üretilir, 64'lük kuyruk pratikte dolmaz.
	m.stateCh <- s
}
