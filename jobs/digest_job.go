// Package jobs, periyodik arka plan işlerini barındırır.
//
// Scheduler olarak robfig/cron kullanılır — main.go'da Scheduler oluşturul
// ve job'lar cron ifadeleriyle kaydedilir. Her job kendi context timeout'u
// ile çalışır; bir job'ın takılması diğerlerini etkilemez.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/emirhan/joblink/pkg/email"
	"github.com/emirhan/joblink/repository"
)

// jobTimeout, tek bir job çalışmasının üst sınırı.
const jobTimeout = 2 * time.Minute

// Scheduler, cron tabanlı job zamanlayıcısını sarar.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler, yeni bir Scheduler oluşturur.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Start, zamanlayıcıyı kendi goroutine'inde başlatır.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[jobs] scheduler started")
}

// Stop, zamanlayıcıyı durdurur ve çalışan job'ların bitmesini bekler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[jobs] scheduler stopped")
}

// AddJob, verilen cron ifadesiyle bir job kaydeder.
// Standart 5 alanlı format: "*/30 * * * *" → her 30 dakikada bir.
func (s *Scheduler) AddJob(spec string, fn func()) error {
	_, err := s.cron.AddFunc(spec, fn)
	return err
}

// DigestJob, uzun süredir okunmamış mesajı olan kullanıcılara
// özet email'i gönderir.
//
// Her çalışmada:
// 1. minAge'den eski okunmamış mesajı olan kullanıcılar bulunur
// 2. Hâlâ online olanlar atlanır — mesajı zaten ekranda görüyorlar
// 3. Kalanlara okunmamış sayısıyla digest email'i gider
//
// Aynı kullanıcıya üst üste email gitmesin diye son gönderim zamanı
// in-memory tutulur; cooldown süresi geçmeden tekrar gönderilmez.
type DigestJob struct {
	msgRepo  repository.MessageRepository
	sender   email.EmailSender
	presence PresenceChecker
	minAge   time.Duration
	cooldown time.Duration
	lastSent map[string]time.Time
}

// PresenceChecker, kullanıcının bağlı olup olmadığını kontrol eder.
// ws.Hub bu interface'i karşılar — jobs paketi ws'e bağımlı olmasın diye
// burada küçük bir interface tanımlanır (ISP).
type PresenceChecker interface {
	IsUserOnline(userID string) bool
}

// NewDigestJob, constructor.
// minAgeMinutes: mesajın digest'e girmesi için gereken minimum yaş.
func NewDigestJob(msgRepo repository.MessageRepository, sender email.EmailSender, presence PresenceChecker, minAgeMinutes int) *DigestJob {
	return &DigestJob{
		msgRepo:  msgRepo,
		sender:   sender,
		presence: presence,
		minAge:   time.Duration(minAgeMinutes) * time.Minute,
		cooldown: 24 * time.Hour,
		lastSent: make(map[string]time.Time),
	}
}

// Run, tek bir digest turu çalıştırır. Scheduler tarafından çağrılır.
// Cron job'ları seri çalışır (robfig/cron varsayılanı) — lastSent map'i
// için ayrıca lock gerekmez.
func (j *DigestJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	threshold := time.Now().Add(-j.minAge)

	stale, err := j.msgRepo.ListUsersWithStaleUnread(ctx, threshold)
	if err != nil {
		log.Printf("[jobs] digest query failed: %v", err)
		return
	}

	sent := 0
	for _, s := range stale {
		if j.presence.IsUserOnline(s.UserID) {
			continue
		}

		if last, ok := j.lastSent[s.UserID]; ok && time.Since(last) < j.cooldown {
			continue
		}

		if err := j.sender.SendUnreadDigest(ctx, s.Email, s.Language, s.UnreadCount); err != nil {
			log.Printf("[jobs] digest email to %s failed: %v", s.Email, err)
			continue
		}

		j.lastSent[s.UserID] = time.Now()
		sent++
	}

	if sent > 0 {
		log.Printf("[jobs] digest run complete: %d emails sent (%d candidates)", sent, len(stale))
	}
}

// SessionCleanupJob, süresi dolmuş refresh token oturumlarını siler.
type SessionCleanupJob struct {
	sessionRepo repository.SessionRepository
}

// NewSessionCleanupJob, constructor.
func NewSessionCleanupJob(sessionRepo repository.SessionRepository) *SessionCleanupJob {
	return &SessionCleanupJob{sessionRepo: sessionRepo}
}

// Run, tek bir temizlik turu çalıştırır.
func (j *SessionCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := j.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("[jobs] session cleanup failed: %v", err)
		return
	}

	if n > 0 {
		log.Printf("[jobs] session cleanup: %d expired sessions removed", n)
	}
}
