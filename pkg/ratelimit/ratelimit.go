// Package ratelimit — sliding window rate limiting.
//
// İki yerde kullanılır:
//   - Login: IP bazlı brute-force koruması (4xx'e bakılmaksızın her deneme sayılır).
//   - Conversation start: kullanıcı bazlı spam koruması — bir kullanıcının
//     kısa sürede onlarca konuşma açmasını engeller.
//
// İki kullanım da aynı mekanizmayı ister (window içinde en fazla N istek),
// sadece key farklıdır (IP vs userID). Bu yüzden tek bir generic Limiter var;
// key anlamını caller belirler.
//
// Neden in-memory?
// - SQLite'a her request'te yazmak gereksiz I/O + contention yaratır.
// - Tek instance deploy için Redis bağımlılığı eklemeye gerek yok.
//
// Neden ayrı paket?
// handlers ↔ middleware arasında import cycle oluşmaması için limiter
// bağımsız bir leaf paket olarak konumlandırıldı.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// bucket, bir key için istek sayacı ve window başlangıç zamanı tutar.
//
// Sliding window algoritması:
// - İlk istek geldiğinde windowStart = now, count = 1.
// - Sonraki istekler: window süresi geçmemişse count++.
// - Süre geçmişse window sıfırlanır (yeni pencere başlar).
type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter, key bazlı sliding window rate limiter.
//
// Kullanım:
//
//	limiter := ratelimit.New(5, 2*time.Minute)
//	if !limiter.Allow(ip) { return 429 }
//	// başarılı login'de:
//	limiter.Reset(ip)
type Limiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	stopCleanup chan struct{}
}

// New, yeni bir Limiter oluşturur ve arka plan temizleme goroutine'ini başlatır.
//
// maxAttempts: bir window içinde izin verilen maksimum istek sayısı.
// window: pencere süresi (ör: 2*time.Minute → 2 dakikada maxAttempts istek).
//
// Temizleme goroutine'i her dakika çalışır ve süresi dolmuş bucket'ları siler —
// uzun süre çalışan sunucularda bellek sızıntısını önler.
func New(maxAttempts int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets:     make(map[string]*bucket),
		maxAttempts: maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow, verilen key'in yeni bir isteğe izinli olup olmadığını kontrol eder.
//
// true: istek kabul edildi (limit aşılmadı).
// false: rate limit aşıldı → caller 429 dönmeli.
//
// Her çağrı sayacı artırır (istek başarılı olsun veya olmasın).
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists {
		l.buckets[key] = &bucket{count: 1, windowStart: now}
		return true
	}

	// Window süresi dolmuş mu?
	if now.Sub(b.windowStart) > l.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	return b.count <= l.maxAttempts
}

// Reset, bir key'in sayacını sıfırlar.
// Login kullanım: başarılı giriş sonrası meşru kullanıcının sayacı
// temizlenmezse sonraki denemelerde gereksiz bloke olabilir.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.buckets, key)
}

// Stop, arka plan temizleme goroutine'ini durdurur.
func (l *Limiter) Stop() {
	close(l.stopCleanup)
}

// cleanupLoop, süresi dolmuş bucket'ları periyodik olarak siler.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictStale()
		case <-l.stopCleanup:
			return
		}
	}
}

// ExtractIP, request'ten client IP'sini çıkarır.
// Reverse proxy arkasında X-Forwarded-For / X-Real-IP header'larına bakılır,
// doğrudan bağlantıda RemoteAddr kullanılır.
func ExtractIP(r *http.Request) string {
	// X-Forwarded-For: client, proxy1, proxy2 — ilk değer gerçek client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Doğrudan bağlantı — host:port formatından host'u ayır
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// evictStale, window süresi geçmiş bucket'ları map'ten siler.
func (l *Limiter) evictStale() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.windowStart) > l.window {
			delete(l.buckets, key)
		}
	}
}
