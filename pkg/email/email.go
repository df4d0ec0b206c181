// Package email, uygulama genelinde email gönderimi için soyutlama katmanı sağlar.
//
// EmailSender interface'i ile gönderim detayları soyutlanır (Dependency Inversion).
// Şu anki implementasyon Resend API kullanır. Farklı bir sağlayıcıya geçmek
// için yeni bir implementasyon yazıp constructor'da değiştirmek yeterli.
//
// RESEND_API_KEY boşsa NewNoopSender kullanılır — development'ta email
// gönderimi sessizce log'a düşer, dışarı hiçbir istek gitmez.
package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v3"

	"github.com/emirhan/joblink/pkg/i18n"
)

// EmailSender, bildirim email'leri için interface.
// Service katmanı bu interface'e bağımlıdır, concrete Resend implementasyonuna değil.
type EmailSender interface {
	// SendNewMessage, offline bir kullanıcıya "yeni mesajın var" email'i gönderir.
	// lang: alıcının dil tercihi ("en"/"tr"), senderName: mesajı gönderen kişi.
	SendNewMessage(ctx context.Context, toEmail, lang, senderName string) error

	// SendUnreadDigest, uzun süredir okunmamış mesajı olan kullanıcıya
	// özet email'i gönderir. unreadCount: bekleyen mesaj sayısı.
	SendUnreadDigest(ctx context.Context, toEmail, lang string, unreadCount int) error
}

// resendSender, Resend API ile email gönderen EmailSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string // Gönderici adresi (ör: noreply@joblink.app)
	appURL    string // Uygulamanın public URL'i (ör: https://joblink.app)
}

// NewResendSender, Resend API client'ı ile yeni bir EmailSender oluşturur.
//
// apiKey: Resend dashboard'dan alınan API key (re_xxxxxxxx formatında).
// fromEmail: Gönderici adresi — Resend'de doğrulanmış domain altında olmalı.
// appURL: Email'lerdeki "Open Messages" linkinin hedefi.
func NewResendSender(apiKey, fromEmail, appURL string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

// SendNewMessage, yeni mesaj bildirim email'i gönderir.
func (s *resendSender) SendNewMessage(ctx context.Context, toEmail, lang, senderName string) error {
	loc := i18n.NewLocalizer(lang)

	subject := loc.T("email.newMessage.subject")
	body := fmt.Sprintf("<strong>%s</strong> %s", senderName, loc.T("email.newMessage.body"))

	return s.send(ctx, toEmail, subject, loc.T("email.newMessage.heading"), body, loc.T("email.newMessage.cta"))
}

// SendUnreadDigest, okunmamış mesaj özeti email'i gönderir.
func (s *resendSender) SendUnreadDigest(ctx context.Context, toEmail, lang string, unreadCount int) error {
	loc := i18n.NewLocalizer(lang)

	subject := loc.T("email.digest.subject")
	body := fmt.Sprintf("<strong>%d</strong> %s", unreadCount, loc.T("email.digest.body"))

	return s.send(ctx, toEmail, subject, loc.T("email.digest.heading"), body, loc.T("email.digest.cta"))
}

// send, ortak HTML şablonuyla email'i Resend API'ye iletir.
//
// Şablon bilinçli olarak inline-style tablo layout'u kullanır —
// email client'ları (Outlook dahil) modern CSS desteklemez.
func (s *resendSender) send(ctx context.Context, toEmail, subject, heading, body, cta string) error {
	messagesLink := fmt.Sprintf("%s/messages", s.appURL)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#f4f5f7;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#1e293b;font-size:24px;margin:0 0 8px 0;">joblink</h1>
              <h2 style="color:#1e293b;font-size:18px;margin:0 0 24px 0;">%s</h2>
              <p style="color:#475569;font-size:15px;line-height:1.6;margin:0 0 24px 0;">%s</p>
              <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
                <tr>
                  <td style="background-color:#2563eb;border-radius:6px;padding:12px 32px;">
                    <a href="%s" style="color:#ffffff;font-size:15px;text-decoration:none;font-weight:bold;">%s</a>
                  </td>
                </tr>
              </table>
              <p style="color:#94a3b8;font-size:13px;line-height:1.5;margin:0;">
                You can change notification emails from your profile settings.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, heading, body, messagesLink, cta)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("joblink <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email via resend: %w", err)
	}

	return nil
}

// noopSender, hiçbir yere email göndermeyen EmailSender.
// RESEND_API_KEY tanımlı değilken (development) kullanılır.
type noopSender struct{}

// NewNoopSender, sadece log'a yazan EmailSender döner.
func NewNoopSender() EmailSender {
	return &noopSender{}
}

func (n *noopSender) SendNewMessage(_ context.Context, toEmail, _, senderName string) error {
	log.Printf("[email] (noop) new message email to %s from %s", toEmail, senderName)
	return nil
}

func (n *noopSender) SendUnreadDigest(_ context.Context, toEmail, _ string, unreadCount int) error {
	log.Printf("[email] (noop) digest email to %s (%d unread)", toEmail, unreadCount)
	return nil
}
