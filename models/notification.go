package models

import "time"

// NotificationType, bildirimin hangi olaydan doğduğunu temsil eder.
type NotificationType string

const (
	NotificationNewMessage        NotificationType = "new_message"
	NotificationNewApplication    NotificationType = "new_application"
	NotificationApplicationStatus NotificationType = "application_status"
	NotificationInterviewInvite   NotificationType = "interview_invite"
)

// Notification, bir kullanıcıya gösterilecek uygulama içi bildirimi temsil eder.
//
// Okunmamış bildirim sayısı, okunmamış mesaj sayısından AYRI bir sayaçtır —
// iki ayrı endpoint iki ayrı badge besler (mesaj rozetine karşılık
// zil ikonu rozeti).
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Body      string           `json:"body"`
	LinkID    *string          `json:"link_id"` // Nullable — ilgili konuşma/başvuru ID'si
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
