package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveNotification persists a copy of a pushed notification so users who are
// offline at broadcast time can fetch it later.
func (s *Store) SaveNotification(ctx context.Context, userID string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, payload) VALUES (?, ?, ?)`,
		uuid.New().String(), userID, string(payload))
	if err != nil {
		return fmt.Errorf("store: save notification: %w", err)
	}
	return nil
}

// NotificationsForUser returns up to limit notifications, most recent first.
func (s *Store) NotificationsForUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, payload, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Payload, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
