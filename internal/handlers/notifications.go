package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// NotificationView is one stored notification with its payload decoded back
// into an object.
type NotificationView struct {
	ID           string          `json:"notification_id"`
	Notification json.RawMessage `json:"notification"`
	CreatedAt    time.Time       `json:"created_at"`
}

// GetNotifications returns the user's stored notifications, most recent
// first.
func GetNotifications(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		Limit int `json:"limit"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	stored, err := deps.notifications.NotificationsForUser(ctx, req.Session.UserID, p.Limit)
	if err != nil {
		logger.Errorf("get notifications: %v", err)
		return wire.Errorf("Failed to load notifications")
	}

	views := make([]NotificationView, 0, len(stored))
	for _, n := range stored {
		views = append(views, NotificationView{
			ID:           n.ID,
			Notification: json.RawMessage(n.Payload),
			CreatedAt:    n.CreatedAt,
		})
	}
	return struct {
		Type          string             `json:"type"`
		Success       bool               `json:"success"`
		Notifications []NotificationView `json:"notifications"`
	}{wire.TypeSuccess, true, views}
}
