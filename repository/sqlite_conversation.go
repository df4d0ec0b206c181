package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/emirhan/joblink/database"
	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg"
)

// sqliteConversationRepo, ConversationRepository interface'inin SQLite implementasyonu.
type sqliteConversationRepo struct {
	db database.TxQuerier
}

// NewSQLiteConversationRepo, constructor.
func NewSQLiteConversationRepo(db database.TxQuerier) ConversationRepository {
	return &sqliteConversationRepo{db: db}
}

func (r *sqliteConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	query := `
		INSERT INTO conversations (participant_low, participant_high, job_id, application_id)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		conv.ParticipantLow,
		conv.ParticipantHigh,
		conv.JobID,
		conv.ApplicationID,
	).Scan(&conv.ID, &conv.CreatedAt)

	if err != nil {
		// Eşzamanlı create yarışında ikinci istek buraya düşer —
		// service ErrAlreadyExists görünce mevcut konuşmayı resolve eder.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: conversation already exists", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

func (r *sqliteConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, participant_low, participant_high, job_id, application_id, created_at, last_message_at
		FROM conversations WHERE id = ?`, id,
	).Scan(
		&conv.ID, &conv.ParticipantLow, &conv.ParticipantHigh,
		&conv.JobID, &conv.ApplicationID, &conv.CreatedAt, &conv.LastMessageAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: conversation not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conv, nil
}

func (r *sqliteConversationRepo) GetByPairAndJob(ctx context.Context, low, high string, jobID *string) (*models.Conversation, error) {
	// UNIQUE index COALESCE(job_id, '') üzerinde — sorgu da aynı ifadeyi kullanır
	// ki ilansız (NULL) konuşmalar tek satıra eşlensin.
	query := `
		SELECT id, participant_low, participant_high, job_id, application_id, created_at, last_message_at
		FROM conversations
		WHERE participant_low = ? AND participant_high = ? AND COALESCE(job_id, '') = COALESCE(?, '')`

	conv := &models.Conversation{}
	err := r.db.QueryRowContext(ctx, query, low, high, jobID).Scan(
		&conv.ID, &conv.ParticipantLow, &conv.ParticipantHigh,
		&conv.JobID, &conv.ApplicationID, &conv.CreatedAt, &conv.LastMessageAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Konuşma yok — nil döner (hata değil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation by pair: %w", err)
	}

	return conv, nil
}

// ListForUser, kullanıcının konuşmalarını karşı taraf bilgisiyle döner.
//
// JOIN mantığı:
// participant_low veya participant_high eşleşen konuşmaları bul,
// karşı tarafı (eşleşmeyen katılımcı) users tablosuyla JOIN et,
// ilan başlığını LEFT JOIN ile ekle (ilansız konuşmalarda NULL).
// Sıralama: en son mesaj alan konuşma üstte, hiç mesajı olmayan en altta.
func (r *sqliteConversationRepo) ListForUser(ctx context.Context, userID string) ([]models.ConversationWithUser, error) {
	query := `
		SELECT c.id, c.created_at, c.last_message_at, j.title,
			u.id, u.email, u.username, u.display_name, u.avatar_url, u.role, u.language, u.created_at
		FROM conversations c
		JOIN users u ON u.id = CASE
			WHEN c.participant_low = ? THEN c.participant_high
			ELSE c.participant_low
		END
		LEFT JOIN jobs j ON j.id = c.job_id
		WHERE c.participant_low = ? OR c.participant_high = ?
		ORDER BY c.last_message_at IS NULL, c.last_message_at DESC, c.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.ConversationWithUser
	for rows.Next() {
		var c models.ConversationWithUser
		var user models.User

		if err := rows.Scan(
			&c.ID, &c.CreatedAt, &c.LastMessageAt, &c.JobTitle,
			&user.ID, &user.Email, &user.Username, &user.DisplayName, &user.AvatarURL,
			&user.Role, &user.Language, &user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}

		c.OtherUser = &user
		convs = append(convs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	if convs == nil {
		convs = []models.ConversationWithUser{}
	}
	return convs, nil
}

func (r *sqliteConversationRepo) TouchLastMessage(ctx context.Context, conversationID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE conversations SET last_message_at = CURRENT_TIMESTAMP WHERE id = ?",
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}
