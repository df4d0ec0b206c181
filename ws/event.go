// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Kullanıcı mesaj gönderir → HTTP POST → Service → DB kayıt
// 2. Service, Hub'ın BroadcastToUser metodunu çağırır (her iki katılımcıya)
// 3. Hub, event'i ilgili client'lara iletir
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
// 5. Karşı taraf event'i alır, konuşma ekranını ve badge sayacını günceller
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "message_create", "heartbeat" vb.
// Data: Event'e özgü payload — mesaj objesi, konuşma bilgisi vb.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
//   Client eksik event tespit etmek için seq'i takip eder.
//   Örnek: seq 5'ten sonra seq 7 gelirse, 6 kaybolmuş demektir.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// ────────────────────────────────────────────
// Operation sabitleri
// ────────────────────────────────────────────

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client periyodik gönderir — "hâlâ bağlıyım" sinyali
	// OpUserConnected, client'ın bağlantı oturduktan sonra gönderdiği kimlik duyurusu.
	// Payload'daki user id, bağlantının JWT'sindeki id ile eşleşmeli —
	// eşleşmezse event yoksayılır (başkası adına presence duyurulamaz).
	OpUserConnected = "user_connected"
	OpTyping        = "typing" // Kullanıcı bir konuşmada yazıyor
)

// Server → Client operasyonları
const (
	OpReady              = "ready"               // Bağlantı kurulduğunda ilk gönderilen — online kullanıcı listesi
	OpHeartbeatAck       = "heartbeat_ack"       // Heartbeat'e yanıt — "seni duydum"
	OpMessageCreate      = "message_create"      // Yeni mesaj oluşturuldu
	OpConversationCreate = "conversation_create" // Yeni konuşma başlatıldı
	OpNotificationCreate = "notification_create" // Yeni bildirim oluşturuldu
	OpUnreadUpdate       = "unread_update"       // Okunmamış mesaj sayısı değişti
	OpPresenceUpdate     = "presence_update"     // Bir kullanıcı online/offline oldu
	OpTypingStart        = "typing_start"        // Bir kullanıcı yazıyor
)

// ReadyData, bağlantı kurulduğunda client'a gönderilen ilk event'in payload'ı.
// Client bu event ile online kullanıcı listesini başlatır.
type ReadyData struct {
	OnlineUserIDs []string `json:"online_user_ids"`
}

// UserConnectedData, user_connected event'inin payload'ı (Client → Server).
type UserConnectedData struct {
	UserID string `json:"user_id"`
}

// PresenceData, bir kullanıcının bağlantı durumu değiştiğinde broadcast edilen payload.
type PresenceData struct {
	UserID string `json:"user_id"`
	Status string `json:"status"` // "online" veya "offline"
}

// UnreadData, unread_update event'inin payload'ı.
// Server'ın saydığı güncel değer — client bu sayıyı olduğu gibi gösterir.
type UnreadData struct {
	UnreadCount int `json:"unread_count"`
}

// TypingData, typing event'inin payload'ı (Client → Server).
type TypingData struct {
	ConversationID string `json:"conversation_id"`
}

// TypingStartData, typing_start event'inin payload'ı (Server → Client).
type TypingStartData struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	ConversationID string `json:"conversation_id"`
}
