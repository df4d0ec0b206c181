package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/emirhan/joblink/database"
	"github.com/emirhan/joblink/models"
)

// sqliteMessageRepo, MessageRepository interface'inin SQLite implementasyonu.
type sqliteMessageRepo struct {
	db database.TxQuerier
}

// NewSQLiteMessageRepo, constructor.
func NewSQLiteMessageRepo(db database.TxQuerier) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

func (r *sqliteMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, content)
		VALUES (?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		msg.ConversationID,
		msg.SenderID,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// List, cursor-based pagination ile mesajları döner.
// Mesajlar created_at DESC sıralı döner (service katmanında ters çevrilir).
func (r *sqliteMessageRepo) List(ctx context.Context, conversationID string, beforeID string, limit int) ([]models.Message, error) {
	var rows *sql.Rows
	var err error

	baseQuery := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.created_at, m.read_at,
			u.id, u.email, u.username, u.display_name, u.avatar_url, u.role, u.language, u.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = ?`

	if beforeID != "" {
		rows, err = r.db.QueryContext(ctx, baseQuery+
			" AND m.created_at < (SELECT created_at FROM messages WHERE id = ?)"+
			" ORDER BY m.created_at DESC LIMIT ?",
			conversationID, beforeID, limit,
		)
	} else {
		rows, err = r.db.QueryContext(ctx, baseQuery+
			" ORDER BY m.created_at DESC LIMIT ?",
			conversationID, limit,
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		var author models.User

		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt, &m.ReadAt,
			&author.ID, &author.Email, &author.Username, &author.DisplayName, &author.AvatarURL,
			&author.Role, &author.Language, &author.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		m.Author = &author
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

func (r *sqliteMessageRepo) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	// sender_id != readerID → sadece karşı tarafın mesajları işaretlenir
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages
		SET read_at = CURRENT_TIMESTAMP
		WHERE conversation_id = ? AND sender_id != ? AND read_at IS NULL`,
		conversationID, readerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark conversation read: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// CountUnreadForUser, kullanıcının katıldığı tüm konuşmalardaki
// okunmamış karşı taraf mesajlarını sayar.
func (r *sqliteMessageRepo) CountUnreadForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.participant_low = ? OR c.participant_high = ?)
			AND m.sender_id != ?
			AND m.read_at IS NULL`,
		userID, userID, userID,
	).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}

	return count, nil
}

// ListUsersWithStaleUnread, eşikten eski okunmamış mesajı olan kullanıcıları
// okunmamış toplamlarıyla döner. GROUP BY alıcı bazında toplar —
// alıcı = konuşmanın gönderen olmayan katılımcısı.
func (r *sqliteMessageRepo) ListUsersWithStaleUnread(ctx context.Context, olderThan time.Time) ([]models.StaleUnread, error) {
	query := `
		SELECT u.id, u.email, u.language, COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		JOIN users u ON u.id = CASE
			WHEN c.participant_low = m.sender_id THEN c.participant_high
			ELSE c.participant_low
		END
		WHERE m.read_at IS NULL AND m.created_at < ?
		GROUP BY u.id, u.email, u.language`

	rows, err := r.db.QueryContext(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale unread: %w", err)
	}
	defer rows.Close()

	var result []models.StaleUnread
	for rows.Next() {
		var s models.StaleUnread
		if err := rows.Scan(&s.UserID, &s.Email, &s.Language, &s.UnreadCount); err != nil {
			return nil, fmt.Errorf("failed to scan stale unread: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stale unread: %w", err)
	}

	return result, nil
}
