package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Message, bir konuşma mesajını temsil eder.
// DB'deki "messages" tablosunun Go karşılığı.
//
// Author alanı JOIN sorgusu ile doldurulur — veritabanında ayrı tablodadır
// ama API response'unda birlikte döner. Bu sayede frontend tek bir istekle
// mesaj + gönderen bilgisini alır.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at"` // Nullable — alıcı okumadıysa nil
	Author         *User      `json:"author,omitempty"`
}

// MessagePage, cursor-based pagination (sayfalama) sonucu.
//
// Offset-based ("LIMIT 50 OFFSET 100") yerine "bu ID'den önceki 50 mesajı
// getir" kullanılır. Avantajı: yeni mesaj eklendiğinde sayfa kayması olmaz.
type MessagePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"` // Daha eski mesajlar var mı?
}

// StaleUnread, uzun süredir okunmamış mesajı olan bir kullanıcıyı temsil eder.
// Digest email job'ı bu satırlar üzerinden çalışır.
type StaleUnread struct {
	UserID      string
	Email       string
	Language    string
	UnreadCount int
}

// CreateMessageRequest, yeni mesaj gönderme isteği.
type CreateMessageRequest struct {
	Content string `json:"content"`
}

// Validate, CreateMessageRequest'in geçerli olup olmadığını kontrol eder.
// İçerik 1-2000 karakter arası olmalı.
func (r *CreateMessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	contentLen := utf8.RuneCountInString(r.Content)
	if contentLen < 1 {
		return fmt.Errorf("message content is required")
	}
	if contentLen > 2000 {
		return fmt.Errorf("message content must be at most 2000 characters")
	}
	return nil
}
