package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/emirhan/joblink/models"
)

// ConversationStarter, konuşma başlatma akışını yönetir: role göre
// aday listesini çeker, arama sorgusuyla filtreler ve seçilen adayla
// konuşmayı başlatır.
type ConversationStarter struct {
	client *Client

	mu       sync.Mutex
	starting bool
}

// NewConversationStarter, constructor.
func NewConversationStarter(c *Client) *ConversationStarter {
	return &ConversationStarter{client: c}
}

// ListCandidates, kullanıcının rolüne uygun aday listesini döner:
// işveren başvuranları, çalışan işverenleri görür. İstek başarısız
// olursa boş liste VE hata birlikte döner — çağıran listeyi güvenle
// render edip hatayı ayrıca gösterebilir.
func (s *ConversationStarter) ListCandidates(ctx context.Context, role models.UserRole) ([]models.Candidate, error) {
	var (
		candidates []models.Candidate
		err        error
	)

	switch role {
	case models.RoleEmployer:
		candidates, err = s.client.Applicants(ctx)
	case models.RoleEmployee, models.RoleAdmin:
		// Admin de işveren listesini görür — applicants endpoint'i
		// işverenin kendi ilan başvurularına bağlıdır.
		candidates, err = s.client.Employers(ctx)
	default:
		return []models.Candidate{}, fmt.Errorf("unknown role: %s", role)
	}

	if err != nil {
		return []models.Candidate{}, err
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	return candidates, nil
}

// Filter, aday listesini arama sorgusuyla daraltır. Saf fonksiyondur:
// girdiyi değiştirmez, yeni slice döner. Eşleşme kullanıcı adı ve
// görünen ad üzerinde büyük/küçük harf duyarsız substring aramasıdır.
// Boş sorgu tüm listeyi döner; eşleşme yoksa boş slice döner.
func Filter(candidates []models.Candidate, query string) []models.Candidate {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]models.Candidate, len(candidates))
		copy(out, candidates)
		return out
	}

	out := make([]models.Candidate, 0)
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Username), query) {
			out = append(out, c)
			continue
		}
		if c.DisplayName != nil && strings.Contains(strings.ToLower(*c.DisplayName), query) {
			out = append(out, c)
		}
	}
	return out
}

// StartConversation, seçilen adayla konuşma başlatır. Aynı anda tek
// başlatma yürür: önceki istek bitmeden gelen çağrı reddedilir, çift
// tıklama iki konuşma isteği üretmez.
func (s *ConversationStarter) StartConversation(ctx context.Context, req models.StartConversationRequest) (*models.Conversation, *models.Message, error) {
	s.mu.Lock()
	if s.starting {
		s.mu.Unlock()
		return nil, nil, fmt.Errorf("conversation start already in progress")
	}
	s.starting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.starting = false
		s.mu.Unlock()
	}()

	return s.client.StartConversation(ctx, req)
}
