package models

import (
	"fmt"
	"strings"
	"time"
)

// Conversation, iki kullanıcı arasındaki mesajlaşma kanalını temsil eder.
//
// participant_low < participant_high sıralaması service katmanında sağlanır
// (pkg/convkey.Sort). Bu sayede aynı iki kullanıcı + aynı ilan için sadece
// tek bir konuşma oluşabilir — UNIQUE constraint
// (participant_low, participant_high, job_id) üçlüsü üzerindedir.
type Conversation struct {
	ID              string     `json:"id"`
	ParticipantLow  string     `json:"participant_low"`
	ParticipantHigh string     `json:"participant_high"`
	JobID           *string    `json:"job_id"`          // Nullable — ilan bağlamı olmayan konuşmalar için nil
	ApplicationID   *string    `json:"application_id"`  // Nullable — başvurudan doğan konuşmalarda dolu
	CreatedAt       time.Time  `json:"created_at"`
	LastMessageAt   *time.Time `json:"last_message_at"` // Nullable — henüz mesaj yoksa nil
}

// ConversationWithUser, konuşma bilgisi + karşı taraf kullanıcı bilgisi.
// Frontend'de konuşma listesi render etmek için kullanılır —
// hangi kullanıcıyla konuştuğunu göstermek için karşı tarafın bilgisi gerekli.
type ConversationWithUser struct {
	ID            string     `json:"id"`
	OtherUser     *User      `json:"other_user"`
	JobTitle      *string    `json:"job_title"` // JOIN ile gelen ilan başlığı (varsa)
	CreatedAt     time.Time  `json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at"` // Son mesaj aktivitesi — sıralama için
}

// Candidate, konuşma başlatma ekranındaki seçilebilir karşı tarafı temsil eder.
//
// İşveren için: ilanlarına başvuran adaylar (JobID/JobTitle başvurulan ilanı gösterir).
// Çalışan için: platformdaki işverenler (JobID/JobTitle nil).
type Candidate struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	JobID       *string `json:"job_id,omitempty"`
	JobTitle    *string `json:"job_title,omitempty"`
}

// StartConversationRequest, yeni konuşma başlatma isteği.
//
// Aynı (çift, ilan) için zaten bir konuşma varsa yenisi oluşturulmaz,
// mevcut olan döner (create-or-resolve). InitialMessage opsiyonel —
// doluysa konuşmanın ilk mesajı olarak kaydedilir.
// Wire alan adları camelCase'tir (recipientId, jobId, ...) — web client'ın
// gönderdiği biçim budur, diğer modellerin snake_case'inden ayrışır.
type StartConversationRequest struct {
	CounterpartID  string  `json:"recipientId"`
	JobID          *string `json:"jobId,omitempty"`
	ApplicationID  *string `json:"applicationId,omitempty"`
	InitialMessage string  `json:"initialMessage,omitempty"`
}

// Validate, StartConversationRequest'in geçerli olup olmadığını kontrol eder.
func (r *StartConversationRequest) Validate() error {
	r.CounterpartID = strings.TrimSpace(r.CounterpartID)
	if r.CounterpartID == "" {
		return fmt.Errorf("recipientId is required")
	}
	r.InitialMessage = strings.TrimSpace(r.InitialMessage)
	return nil
}
