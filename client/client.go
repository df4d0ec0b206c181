// Package client, sunucunun mesajlaşma API'sine Go'dan erişim sağlar.
//
// Dört parça içerir:
//   - Client: HTTP API istemcisi (okunmamış sayılar, aday listeleri,
//     konuşma başlatma)
//   - UnreadPoller: okunmamış sayacını periyodik yenileyen poller
//   - Manager: websocket bağlantısını yöneten process-wide singleton
//   - ConversationStarter: aday seçimi + konuşma başlatma akışı
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emirhan/joblink/models"
)

// httpTimeout, tüm API isteklerinin üst sınırı. Yavaş bir endpoint
// çağıranın UI thread'ini süresiz bloklamamalı.
const httpTimeout = 10 * time.Second

// Client, sunucu API'sine erişen HTTP istemcisi.
// Tüm metodlar goroutine-safe'dir; tek instance paylaşılabilir.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex // token'ı korur — refresh, uçuştaki poll ile yarışabilir
	token string
}

// New, verilen API origin'i için yeni bir istemci oluşturur.
// baseURL "http://host:port/api" biçimindedir; trailing slash temizlenir.
func New(baseURL, accessToken string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   accessToken,
		http:    &http.Client{Timeout: httpTimeout},
	}
}

// SetToken, erişim token'ını günceller (refresh sonrası).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// accessToken, güncel token'ı döner.
func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL, istemcinin yapılandırıldığı API origin'ini döner.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ─── Okunmamış Sayaçlar ───

// unreadResponse, /api/messages/unread ve /unread/count cevabı.
type unreadResponse struct {
	Success     bool   `json:"success"`
	UnreadCount int    `json:"unreadCount"`
	Error       string `json:"error,omitempty"`
}

// UnreadCount, kullanıcının okunmamış mesaj sayısını döner.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp unreadResponse
	if err := c.get(ctx, "/messages/unread", &resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, fmt.Errorf("unread count failed: %s", errOrUnknown(resp.Error))
	}
	if resp.UnreadCount < 0 {
		return 0, nil
	}
	return resp.UnreadCount, nil
}

// NotificationCount, kullanıcının okunmamış bildirim sayısını döner.
// Mesaj sayacından ayrı bir sayaçtır.
func (c *Client) NotificationCount(ctx context.Context) (int, error) {
	var resp unreadResponse
	if err := c.get(ctx, "/messages/unread/count", &resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, fmt.Errorf("notification count failed: %s", errOrUnknown(resp.Error))
	}
	if resp.UnreadCount < 0 {
		return 0, nil
	}
	return resp.UnreadCount, nil
}

// ─── Aday Listeleri ───

type applicantsResponse struct {
	Success    bool               `json:"success"`
	Applicants []models.Candidate `json:"applicants"`
	Error      string             `json:"error,omitempty"`
}

type employersResponse struct {
	Success   bool               `json:"success"`
	Employers []models.Candidate `json:"employers"`
	Error     string             `json:"error,omitempty"`
}

// Applicants, işverenin ilanlarına başvuran adayları listeler.
func (c *Client) Applicants(ctx context.Context) ([]models.Candidate, error) {
	var resp applicantsResponse
	if err := c.get(ctx, "/messages/applicants", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("applicants list failed: %s", errOrUnknown(resp.Error))
	}
	return resp.Applicants, nil
}

// Employers, çalışanın mesaj atabileceği işverenleri listeler.
func (c *Client) Employers(ctx context.Context) ([]models.Candidate, error) {
	var resp employersResponse
	if err := c.get(ctx, "/messages/employers", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("employers list failed: %s", errOrUnknown(resp.Error))
	}
	return resp.Employers, nil
}

// ─── Konuşma Başlatma ───

// startResponse — conversation ve message id string'dir; detail
// alanları tam objeleri taşır (ek bilgi, eski sunucularda olmayabilir).
type startResponse struct {
	Success            bool                 `json:"success"`
	Conversation       string               `json:"conversation,omitempty"`
	Message            string               `json:"message,omitempty"`
	ConversationDetail *models.Conversation `json:"conversationDetail,omitempty"`
	MessageDetail      *models.Message      `json:"messageDetail,omitempty"`
	Error              string               `json:"error,omitempty"`
}

// StartConversation, karşı tarafla konuşma başlatır veya mevcut
// konuşmayı çözümleyip döner. Başarısızlıkta conversation nil'dir
// ve hata mesajı her zaman boş değildir.
func (c *Client) StartConversation(ctx context.Context, req models.StartConversationRequest) (*models.Conversation, *models.Message, error) {
	var resp startResponse
	if err := c.post(ctx, "/messages/start", req, &resp); err != nil {
		return nil, nil, err
	}
	if !resp.Success || resp.Conversation == "" {
		return nil, nil, fmt.Errorf("start conversation failed: %s", errOrUnknown(resp.Error))
	}

	conv := resp.ConversationDetail
	if conv == nil {
		conv = &models.Conversation{ID: resp.Conversation}
	}

	msg := resp.MessageDetail
	if msg == nil && resp.Message != "" {
		msg = &models.Message{ID: resp.Message, ConversationID: resp.Conversation}
	}
	return conv, msg, nil
}

// ─── HTTP Yardımcıları ───

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	// Hata durumlarında da body parse edilir; sunucu {success:false,
	// error:...} şeklinde cevap döner ve çağıran anlamlı mesajı görür.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	return nil
}

// errOrUnknown, boş hata mesajlarını maskeleyerek çağırana her zaman
// anlamlı bir metin döner.
func errOrUnknown(msg string) string {
	if msg == "" {
		return "unknown error"
	}
	return msg
}
