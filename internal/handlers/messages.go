package handlers

import (
	"context"

	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// SendMessage persists a discussion message and broadcasts it to every
// online user. Broadcast failures are per-recipient and never fail the send.
func SendMessage(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		ClassID    string `json:"class_id"`
		Content    string `json:"content"`
		Attachment string `json:"attachment"`
		Reply      string `json:"reply"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	m, err := deps.messages.SaveMessage(ctx, p.ClassID, req.Session.Email, p.Content, p.Attachment, p.Reply)
	if err != nil {
		return wire.Errorf(err.Error())
	}

	delivered := deps.notifier.MessageSent(m)
	logger.Debugf("message %s broadcast to %d online users", m.ID, delivered)

	return struct {
		Type    string        `json:"type"`
		Success bool          `json:"success"`
		Message store.Message `json:"message"`
	}{wire.TypeSuccess, true, m}
}

// FetchMessages returns a class's recent messages, most recent first.
func FetchMessages(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		ClassID string `json:"class_id"`
		Limit   int    `json:"limit"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	if p.ClassID == "" {
		return wire.Errorf("class_id required")
	}
	messages, err := deps.messages.MessagesForClass(ctx, p.ClassID, p.Limit)
	if err != nil {
		logger.Errorf("fetch messages: %v", err)
		return wire.Errorf("Failed to load messages")
	}
	return struct {
		Type     string          `json:"type"`
		Success  bool            `json:"success"`
		Messages []store.Message `json:"messages"`
	}{wire.TypeSuccess, true, messages}
}
