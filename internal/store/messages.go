package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveMessage persists one discussion message.
func (s *Store) SaveMessage(ctx context.Context, classID, sentBy, content, attachment, replyTo string) (Message, error) {
	if classID == "" || sentBy == "" {
		return Message{}, fmt.Errorf("store: class_id and sent_by are required")
	}
	m := Message{
		ID:         uuid.New().String(),
		ClassID:    classID,
		SentBy:     sentBy,
		Content:    content,
		Attachment: attachment,
		ReplyTo:    replyTo,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, class_id, sent_by, content, attachment, reply_to)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ClassID, m.SentBy, m.Content, m.Attachment, m.ReplyTo)
	if err != nil {
		return Message{}, fmt.Errorf("store: save message: %w", err)
	}
	return m, nil
}

// MessagesForClass returns up to limit messages for a class, most recent
// first.
func (s *Store) MessagesForClass(ctx context.Context, classID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, class_id, sent_by, content, attachment, reply_to, created_at
		 FROM messages WHERE class_id = ? ORDER BY created_at DESC LIMIT ?`, classID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ClassID, &m.SentBy, &m.Content, &m.Attachment,
			&m.ReplyTo, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
