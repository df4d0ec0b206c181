package client

import (
	"context"
	"log"
	"sync"
	"time"
)

// defaultPollInterval, sayaç yenileme aralığı.
const defaultPollInterval = 30 * time.Second

// CountFetcher, okunmamış sayacını getiren fonksiyon tipi.
// Client.UnreadCount ve Client.NotificationCount bu imzayı karşılar;
// testlerde fake fonksiyon verilebilir.
type CountFetcher func(ctx context.Context) (int, error)

// UnreadPoller, okunmamış sayacını periyodik olarak sunucudan çeker.
//
// Sayaç sunucu otoritesindedir: poller lokal artırma/azaltma yapmaz,
// her başarılı fetch'te değeri olduğu gibi değiştirir. Fetch başarısız
// olursa son bilinen değer korunur — geçici ağ hatası rozeti sıfırlamaz.
type UnreadPoller struct {
	fetch    CountFetcher
	interval time.Duration

	mu       sync.Mutex
	count    int
	onChange func(count int)
	running  bool
	stopped  bool
	inFlight bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewUnreadPoller, verilen fetcher ile yeni bir poller oluşturur.
// interval <= 0 ise varsayılan aralık kullanılır.
func NewUnreadPoller(fetch CountFetcher, interval time.Duration) *UnreadPoller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &UnreadPoller{
		fetch:    fetch,
		interval: interval,
	}
}

// OnChange, sayaç değiştiğinde çağrılacak callback'i ayarlar.
// count her zaman >= 0'dır; 0 geldiğinde çağıran rozeti tamamen
// gizlemelidir, "0" göstermemelidir. Start'tan önce ayarlanmalıdır.
func (p *UnreadPoller) OnChange(fn func(count int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Count, son bilinen sayaç değerini döner.
func (p *UnreadPoller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Set, sayaç değerini dışarıdan günceller (ws üzerinden gelen
// unread_update push'ları için). Poller durdurulmuşsa yok sayılır.
func (p *UnreadPoller) Set(count int) {
	if count < 0 {
		count = 0
	}
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	changed := count != p.count
	p.count = count
	fn := p.onChange
	p.mu.Unlock()

	if changed && fn != nil {
		fn(count)
	}
}

// Start, poller'ı başlatır: önce hemen bir fetch yapılır, sonra her
// interval'da bir yenilenir. İkinci kez çağrılması no-op'tur.
func (p *UnreadPoller) Start() {
	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return
	}
	p.running = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.loop(ctx)
}

// Stop, poller'ı durdurur. İdempotenttir ve Start'tan önce çağrılması
// güvenlidir. Stop'tan sonra hiçbir callback çalışmaz; o sırada uçuşta
// olan bir fetch'in sonucu atılır.
func (p *UnreadPoller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (p *UnreadPoller) loop(ctx context.Context) {
	defer close(p.done)

	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// refresh, tek bir fetch turu yapar. Önceki fetch hâlâ uçuştaysa bu
// tur atlanır — yavaş bir sunucuya istek yığılmaz.
func (p *UnreadPoller) refresh(ctx context.Context) {
	p.mu.Lock()
	if p.inFlight || p.stopped {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	count, err := p.fetch(ctx)

	p.mu.Lock()
	p.inFlight = false
	if p.stopped {
		// Stop ile yarışan fetch'in sonucu kullanılmaz.
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.mu.Unlock()
		log.Printf("[poller] unread fetch failed, keeping last value: %v", err)
		return
	}
	if count < 0 {
		count = 0
	}
	changed := count != p.count
	p.count = count
	fn := p.onChange
	p.mu.Unlock()

	if changed && fn != nil {
		fn(count)
	}
}
