// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository bir DB bağlantısı alır ve interface döner.
// main.go'daki wire-up'ı modülerleştirmek için bu dosyaya taşındı.
package main

import (
	"database/sql"

	"github.com/emirhan/joblink/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
// Tek struct, fonksiyon imzalarını temiz tutar ve yeni repository
// eklendiğinde sadece bu dosya güncellenir.
type Repositories struct {
	User         repository.UserRepository
	Session      repository.SessionRepository
	Job          repository.JobRepository
	Conversation repository.ConversationRepository
	Message      repository.MessageRepository
	Notification repository.NotificationRepository
}

// initRepositories, DB bağlantısıyla tüm repository'leri oluşturur.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:         repository.NewSQLiteUserRepo(conn),
		Session:      repository.NewSQLiteSessionRepo(conn),
		Job:          repository.NewSQLiteJobRepo(conn),
		Conversation: repository.NewSQLiteConversationRepo(conn),
		Message:      repository.NewSQLiteMessageRepo(conn),
		Notification: repository.NewSQLiteNotificationRepo(conn),
	}
}
