// Package main — WebSocket Hub callback wire-up.
//
// Hub ws paketinde yaşar ama typing routing konuşma katılımcılarını
// bilmeyi gerektirir, o da repository katmanında. Hub'ın repo'lara
// bağımlı olmaması için callback main package'da bağlanır —
// wire-up noktası tüm katmanları birbirine bağlar.
package main

import (
	"context"
	"log"
	"time"

	"github.com/emirhan/joblink/repository"
	"github.com/emirhan/joblink/ws"
)

// registerHubCallbacks, Hub'ın typing callback'ini bağlar.
//
// Client "typing" event'i gönderdiğinde Hub bu callback'i ayrı bir
// goroutine'de tetikler; callback konuşmanın karşı tarafını bulup
// typing_start event'ini ona iletir. Yazan kişiye geri gönderilmez.
func registerHubCallbacks(hub *ws.Hub, convRepo repository.ConversationRepository) {
	hub.SetOnTyping(func(userID, username, conversationID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		conv, err := convRepo.GetByID(ctx, conversationID)
		if err != nil {
			log.Printf("[typing] conversation lookup failed: %v", err)
			return
		}

		// Katılımcı olmayan birinin typing event'i yok sayılır.
		var recipientID string
		switch userID {
		case conv.ParticipantLow:
			recipientID = conv.ParticipantHigh
		case conv.ParticipantHigh:
			recipientID = conv.ParticipantLow
		default:
			return
		}

		hub.BroadcastToUser(recipientID, ws.Event{
			Op: ws.OpTypingStart,
			Data: ws.TypingStartData{
				UserID:         userID,
				Username:       username,
				ConversationID: conversationID,
			},
		})
	})
}
